package controller

import (
	"bufio"
	"context"
	"fmt"
	"sync"
	"time"

	"ai-assistant-be/internal/apperror"
	"ai-assistant-be/internal/constant"
	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/pkg/serverutils"
	"ai-assistant-be/internal/service"
	"ai-assistant-be/pkg/chatstream"
	"ai-assistant-be/pkg/sse"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	ListConversations(ctx *fiber.Ctx) error
	CreateConversation(ctx *fiber.Ctx) error
	RenameConversation(ctx *fiber.Ctx) error
	DeleteConversation(ctx *fiber.Ctx) error
	ListMessages(ctx *fiber.Ctx) error
	StreamChat(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("sessions", c.ListConversations)
	h.Post("sessions", c.CreateConversation)
	h.Put("sessions/:id", c.RenameConversation)
	h.Delete("sessions/:id", c.DeleteConversation)
	h.Get("sessions/:id/messages", c.ListMessages)
	h.Post("sessions/:id/messages/stream", c.StreamChat)
}

func (c *chatController) ListConversations(ctx *fiber.Ctx) error {
	userId, err := requestUserId(ctx)
	if err != nil {
		return err
	}

	res, err := c.chatService.ListConversations(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list conversations", res))
}

func (c *chatController) CreateConversation(ctx *fiber.Ctx) error {
	userId, err := requestUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateConversationRequest
	if err := ctx.BodyParser(&req); err != nil && err != fiber.ErrUnprocessableEntity {
		return fmt.Errorf("%w: %v", apperror.ErrBadRequest, err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrBadRequest, err)
	}

	res, err := c.chatService.CreateConversation(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create conversation", res))
}

func (c *chatController) RenameConversation(ctx *fiber.Ctx) error {
	userId, err := requestUserId(ctx)
	if err != nil {
		return err
	}
	conversationId, err := pathId(ctx)
	if err != nil {
		return err
	}

	var req dto.RenameConversationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrBadRequest, err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrBadRequest, err)
	}
	req.Id = conversationId

	res, err := c.chatService.RenameConversation(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success rename conversation", res))
}

func (c *chatController) DeleteConversation(ctx *fiber.Ctx) error {
	userId, err := requestUserId(ctx)
	if err != nil {
		return err
	}
	conversationId, err := pathId(ctx)
	if err != nil {
		return err
	}

	if err := c.chatService.DeleteConversation(ctx.Context(), userId, conversationId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete conversation", nil))
}

func (c *chatController) ListMessages(ctx *fiber.Ctx) error {
	userId, err := requestUserId(ctx)
	if err != nil {
		return err
	}
	conversationId, err := pathId(ctx)
	if err != nil {
		return err
	}

	req := dto.ListMessagesRequest{
		ConversationId: conversationId,
		Limit:          ctx.QueryInt("limit"),
	}
	if before := ctx.Query("before"); before != "" {
		cursor, err := time.Parse(time.RFC3339Nano, before)
		if err != nil {
			return fmt.Errorf("%w: before must be an RFC3339 timestamp", apperror.ErrBadRequest)
		}
		req.Before = cursor
	}

	res, err := c.chatService.ListMessages(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list messages", res))
}

// StreamChat runs one streaming exchange. Setup failures surface as plain
// JSON errors before any SSE bytes go out; once the stream starts, failures
// surface in-band as error events and the response is always 200.
func (c *chatController) StreamChat(ctx *fiber.Ctx) error {
	userId, err := requestUserId(ctx)
	if err != nil {
		return err
	}
	conversationId, err := pathId(ctx)
	if err != nil {
		return err
	}

	var req dto.StreamChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrBadRequest, err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrBadRequest, err)
	}
	req.ConversationId = conversationId

	session, err := c.chatService.BeginStream(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	sse.SetHeaders(ctx)

	ctx.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		writer := sse.NewWriter(w)
		emitter := newSSEEmitter(writer)
		streamCtx, stop := chatstream.Supervise(context.Background(), constant.StreamTimeout, emitter.Disconnected())
		defer stop()

		result := c.chatService.RunStream(streamCtx, session, emitter)
		if result.UpstreamErr != nil {
			_ = writer.WriteError()
		}
		_ = writer.WriteDone()
	})
	return nil
}

// sseEmitter adapts the SSE writer to the relay's emitter contract. Inside
// a fasthttp body stream writer a failed flush is the only signal that the
// client went away, so the first write failure closes the disconnected
// channel and aborts the upstream stream through the supervisor.
type sseEmitter struct {
	writer *sse.Writer
	once   sync.Once
	closed chan struct{}
}

func newSSEEmitter(writer *sse.Writer) *sseEmitter {
	return &sseEmitter{writer: writer, closed: make(chan struct{})}
}

// Disconnected fires once, on the first failed write.
func (e *sseEmitter) Disconnected() <-chan struct{} {
	return e.closed
}

func (e *sseEmitter) EmitVisible(text string) error {
	return e.observe(e.writer.WriteData(text))
}

func (e *sseEmitter) EmitHidden(text string) error {
	return e.observe(e.writer.WriteThink(text))
}

func (e *sseEmitter) observe(err error) error {
	if err != nil {
		e.once.Do(func() { close(e.closed) })
	}
	return err
}

func requestUserId(ctx *fiber.Ctx) (uuid.UUID, error) {
	userIdStr, ok := ctx.Locals("user_id").(string)
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	return userId, nil
}

func pathId(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id", apperror.ErrNotFound)
	}
	return id, nil
}
