package serverutils

import (
	"errors"

	"ai-assistant-be/internal/apperror"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps domain errors bubbling out of handlers to
// HTTP status codes so controllers can just return them.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := fiber.StatusInternalServerError
		message := "Internal server error"

		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &fiberErr):
			code = fiberErr.Code
			message = fiberErr.Message
		case errors.Is(err, apperror.ErrNotFound):
			code = fiber.StatusNotFound
			message = err.Error()
		case errors.Is(err, apperror.ErrConflict):
			code = fiber.StatusConflict
			message = err.Error()
		case errors.Is(err, apperror.ErrBadRequest):
			code = fiber.StatusBadRequest
			message = err.Error()
		}

		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}
