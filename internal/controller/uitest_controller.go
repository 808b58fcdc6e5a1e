package controller

import (
	"fmt"

	"ai-assistant-be/internal/apperror"
	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/pkg/serverutils"
	"ai-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IUiTestController interface {
	RegisterRoutes(r fiber.Router)
	CreateSnapshot(ctx *fiber.Ctx) error
	GetSnapshot(ctx *fiber.Ctx) error
	GenerateTests(ctx *fiber.Ctx) error
	ListTests(ctx *fiber.Ctx) error
}

type uiTestController struct {
	uiTestService service.IUiTestService
}

func NewUiTestController(uiTestService service.IUiTestService) IUiTestController {
	return &uiTestController{
		uiTestService: uiTestService,
	}
}

func (c *uiTestController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/ui/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("snapshots", c.CreateSnapshot)
	h.Get("snapshots/:id", c.GetSnapshot)
	h.Post("tests/generate", c.GenerateTests)
	h.Get("tests", c.ListTests)
}

func (c *uiTestController) CreateSnapshot(ctx *fiber.Ctx) error {
	userId, err := requestUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateSnapshotRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrBadRequest, err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrBadRequest, err)
	}

	res, err := c.uiTestService.CreateSnapshot(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create snapshot", res))
}

func (c *uiTestController) GetSnapshot(ctx *fiber.Ctx) error {
	userId, err := requestUserId(ctx)
	if err != nil {
		return err
	}
	snapshotId, err := pathId(ctx)
	if err != nil {
		return err
	}

	res, err := c.uiTestService.GetSnapshot(ctx.Context(), userId, snapshotId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show snapshot", res))
}

func (c *uiTestController) GenerateTests(ctx *fiber.Ctx) error {
	userId, err := requestUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.GenerateTestsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrBadRequest, err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrBadRequest, err)
	}

	res, err := c.uiTestService.GenerateTests(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success generate tests", res))
}

func (c *uiTestController) ListTests(ctx *fiber.Ctx) error {
	userId, err := requestUserId(ctx)
	if err != nil {
		return err
	}

	snapshotId := uuid.Nil
	if raw := ctx.Query("snapshot_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("%w: invalid snapshot_id", apperror.ErrBadRequest)
		}
		snapshotId = parsed
	}

	res, err := c.uiTestService.ListTests(ctx.Context(), userId, snapshotId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list tests", res))
}
