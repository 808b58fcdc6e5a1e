package service

import (
	"context"
	"fmt"
	"time"

	"ai-assistant-be/internal/apperror"
	"ai-assistant-be/internal/constant"
	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/internal/repository/contract"
	"ai-assistant-be/internal/repository/specification"
	"ai-assistant-be/internal/repository/unitofwork"
	"ai-assistant-be/pkg/chatstream"
	"ai-assistant-be/pkg/events"
	"ai-assistant-be/pkg/llm"
	"ai-assistant-be/pkg/utils"

	"github.com/google/uuid"
)

// StreamSession is the state BeginStream hands to RunStream: the validated
// conversation, the model context window, and the registry slot to release.
type StreamSession struct {
	ConversationId uuid.UUID
	UserId         uuid.UUID
	History        []llm.Message
}

type IChatService interface {
	CreateConversation(ctx context.Context, userId uuid.UUID, request *dto.CreateConversationRequest) (*dto.ConversationResponse, error)
	ListConversations(ctx context.Context, userId uuid.UUID) ([]*dto.ConversationResponse, error)
	RenameConversation(ctx context.Context, userId uuid.UUID, request *dto.RenameConversationRequest) (*dto.ConversationResponse, error)
	DeleteConversation(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) error
	ListMessages(ctx context.Context, userId uuid.UUID, request *dto.ListMessagesRequest) (*dto.ListMessagesResponse, error)

	// BeginStream validates the request, claims the conversation's stream
	// slot, persists the user turn, and loads the model context. Callers
	// must follow up with RunStream or the slot leaks until its TTL.
	BeginStream(ctx context.Context, userId uuid.UUID, request *dto.StreamChatRequest) (*StreamSession, error)
	// RunStream drives the provider stream through the relay, persists the
	// assistant turn, and releases the stream slot.
	RunStream(ctx context.Context, session *StreamSession, emitter chatstream.Emitter) chatstream.Result
}

type chatService struct {
	uowFactory     unitofwork.RepositoryFactory
	llmProvider    llm.LLMProvider
	streamRegistry contract.StreamRegistry
	publisher      IEventPublisher
	logger         logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.LLMProvider,
	streamRegistry contract.StreamRegistry,
	publisher IEventPublisher,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:     uowFactory,
		llmProvider:    llmProvider,
		streamRegistry: streamRegistry,
		publisher:      publisher,
		logger:         log,
	}
}

func (cs *chatService) CreateConversation(ctx context.Context, userId uuid.UUID, request *dto.CreateConversationRequest) (*dto.ConversationResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	title := request.Title
	if title == "" {
		title = constant.DefaultConversationTitle
	}

	conversation := entity.Conversation{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     title,
		CreatedAt: time.Now(),
	}
	if err := uow.ConversationRepository().Create(ctx, &conversation); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	return toConversationResponse(&conversation), nil
}

func (cs *chatService) ListConversations(ctx context.Context, userId uuid.UUID) ([]*dto.ConversationResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	conversations, err := uow.ConversationRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	responses := make([]*dto.ConversationResponse, len(conversations))
	for i, conversation := range conversations {
		responses[i] = toConversationResponse(conversation)
	}
	return responses, nil
}

func (cs *chatService) RenameConversation(ctx context.Context, userId uuid.UUID, request *dto.RenameConversationRequest) (*dto.ConversationResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	conversation, err := cs.findOwnedConversation(ctx, uow, userId, request.Id)
	if err != nil {
		return nil, err
	}

	conversation.Title = request.Title
	now := time.Now()
	conversation.UpdatedAt = &now
	if err := uow.ConversationRepository().Update(ctx, conversation); err != nil {
		return nil, fmt.Errorf("failed to rename conversation: %w", err)
	}

	return toConversationResponse(conversation), nil
}

func (cs *chatService) DeleteConversation(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	conversation, err := cs.findOwnedConversation(ctx, uow, userId, conversationId)
	if err != nil {
		return err
	}

	// Conversation and transcript go together, so wrap both deletes.
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := uow.MessageRepository().DeleteAllByConversationId(ctx, conversation.Id); err != nil {
		_ = uow.Rollback()
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	if err := uow.ConversationRepository().Delete(ctx, conversation.Id); err != nil {
		_ = uow.Rollback()
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}

	cs.publisher.Publish(events.NewConversationDeletedEvent(conversation.Id, userId))
	return nil
}

func (cs *chatService) ListMessages(ctx context.Context, userId uuid.UUID, request *dto.ListMessagesRequest) (*dto.ListMessagesResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if _, err := cs.findOwnedConversation(ctx, uow, userId, request.ConversationId); err != nil {
		return nil, err
	}

	limit := request.Limit
	if limit <= 0 {
		limit = constant.TurnPageSizeDefault
	}
	if limit > constant.TurnPageSizeMax {
		limit = constant.TurnPageSizeMax
	}

	specs := []specification.Specification{
		specification.ByConversationID{ConversationID: request.ConversationId},
		specification.OrderBy{Field: "created_at", Desc: true},
		// One extra row tells us whether an older page exists.
		specification.Limit{N: limit + 1},
	}
	if !request.Before.IsZero() {
		specs = append(specs, specification.CreatedBefore{Cursor: request.Before})
	}

	messages, err := uow.MessageRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	hasMore := len(messages) > limit
	if hasMore {
		messages = messages[:limit]
	}

	// Rows come back newest first; the page reads oldest first.
	items := make([]dto.MessageResponse, len(messages))
	for i, m := range messages {
		items[len(messages)-1-i] = dto.MessageResponse{
			Id:             m.Id,
			ConversationId: m.ConversationId,
			Role:           m.Role,
			Content:        m.Content,
			Model:          m.Model,
			CreatedAt:      m.CreatedAt,
		}
	}

	return &dto.ListMessagesResponse{Items: items, HasMore: hasMore}, nil
}

func (cs *chatService) BeginStream(ctx context.Context, userId uuid.UUID, request *dto.StreamChatRequest) (*StreamSession, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	conversation, err := cs.findOwnedConversation(ctx, uow, userId, request.ConversationId)
	if err != nil {
		return nil, err
	}

	acquired, err := cs.streamRegistry.Acquire(ctx, conversation.Id, constant.StreamLockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to claim stream slot: %w", err)
	}
	if !acquired {
		return nil, fmt.Errorf("%w: a stream is already running for this conversation", apperror.ErrConflict)
	}

	session, err := cs.prepareStream(ctx, uow, conversation, request.Content)
	if err != nil {
		// The slot must not stay claimed when setup fails.
		if releaseErr := cs.streamRegistry.Release(ctx, conversation.Id); releaseErr != nil {
			cs.logger.Warn("ChatService", "Failed to release stream slot after setup failure", map[string]interface{}{
				"conversation_id": conversation.Id.String(),
				"error":           releaseErr.Error(),
			})
		}
		return nil, err
	}
	return session, nil
}

// prepareStream persists the user turn, derives the title on first use, and
// loads the trailing context window.
func (cs *chatService) prepareStream(ctx context.Context, uow unitofwork.UnitOfWork, conversation *entity.Conversation, content string) (*StreamSession, error) {
	now := time.Now()
	userTurn := entity.Message{
		Id:             uuid.New(),
		ConversationId: conversation.Id,
		Role:           constant.ChatMessageRoleUser,
		Content:        content,
		CreatedAt:      now,
	}
	if err := uow.MessageRepository().Create(ctx, &userTurn); err != nil {
		return nil, fmt.Errorf("failed to persist user turn: %w", err)
	}

	if conversation.Title == constant.DefaultConversationTitle && cs.isFirstTurn(ctx, uow, conversation.Id) {
		title := utils.DeriveTitle(content, constant.DefaultConversationTitle, constant.TitleMaxRunes)
		renamed, err := uow.ConversationRepository().UpdateTitleIfDefault(ctx, conversation.Id, title, constant.DefaultConversationTitle)
		if err != nil {
			cs.logger.Warn("ChatService", "Auto-title update failed", map[string]interface{}{
				"conversation_id": conversation.Id.String(),
				"error":           err.Error(),
			})
		} else if renamed {
			conversation.Title = title
		}
	}
	if err := uow.ConversationRepository().Touch(ctx, conversation.Id); err != nil {
		cs.logger.Warn("ChatService", "Failed to bump conversation", map[string]interface{}{
			"conversation_id": conversation.Id.String(),
			"error":           err.Error(),
		})
	}

	history, err := cs.loadHistory(ctx, uow, conversation.Id)
	if err != nil {
		return nil, err
	}

	return &StreamSession{
		ConversationId: conversation.Id,
		UserId:         conversation.UserId,
		History:        history,
	}, nil
}

// loadHistory returns the trailing context window in chronological order.
// The just-persisted user turn is the newest row, so it rides along.
// isFirstTurn checks the stored turn count, not a cached counter, so the
// auto-title can only fire on the conversation's opening message.
func (cs *chatService) isFirstTurn(ctx context.Context, uow unitofwork.UnitOfWork, conversationId uuid.UUID) bool {
	count, err := uow.MessageRepository().Count(ctx,
		specification.ByConversationID{ConversationID: conversationId},
	)
	if err != nil {
		cs.logger.Warn("ChatService", "Failed to count turns", map[string]interface{}{
			"conversation_id": conversationId.String(),
			"error":           err.Error(),
		})
		return false
	}
	return count == 1
}

func (cs *chatService) loadHistory(ctx context.Context, uow unitofwork.UnitOfWork, conversationId uuid.UUID) ([]llm.Message, error) {
	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversationId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Limit{N: constant.HistoryTurnWindow},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	history := make([]llm.Message, len(messages))
	for i, m := range messages {
		history[len(messages)-1-i] = llm.Message{
			Role:    m.Role,
			Content: m.Content,
		}
	}
	return history, nil
}

func (cs *chatService) RunStream(ctx context.Context, session *StreamSession, emitter chatstream.Emitter) chatstream.Result {
	defer func() {
		// Release on a detached context: the request context is often
		// already cancelled at this point.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := cs.streamRegistry.Release(releaseCtx, session.ConversationId); err != nil {
			cs.logger.Warn("ChatService", "Failed to release stream slot", map[string]interface{}{
				"conversation_id": session.ConversationId.String(),
				"error":           err.Error(),
			})
		}
	}()

	deltas, upstreamErrs := cs.llmProvider.ChatStream(ctx, session.History)
	result := chatstream.Relay(ctx, deltas, upstreamErrs, emitter)

	if result.UpstreamErr != nil {
		cs.logger.Error("ChatService", "Upstream stream failed", map[string]interface{}{
			"conversation_id": session.ConversationId.String(),
			"error":           result.UpstreamErr.Error(),
		})
	}

	cs.persistAssistantTurn(ctx, session, &result)

	cs.publisher.Publish(events.NewStreamCompletedEvent(
		session.ConversationId,
		session.UserId,
		cs.llmProvider.ModelName(),
		len(result.Visible),
		result.Cancelled,
		result.UpstreamErr != nil,
	))
	return result
}

// persistAssistantTurn stores the assistant reply when any visible text
// arrived, on every outcome including cancellation and upstream failure.
// Hidden-only streams leave no assistant row.
func (cs *chatService) persistAssistantTurn(ctx context.Context, session *StreamSession, result *chatstream.Result) {
	if result.Visible == "" {
		return
	}

	// Persistence must survive the stream context, which is cancelled by
	// this point on the disconnect and timeout paths.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	model := cs.llmProvider.ModelName()
	assistantTurn := entity.Message{
		Id:             uuid.New(),
		ConversationId: session.ConversationId,
		Role:           constant.ChatMessageRoleAssistant,
		Content:        result.Visible,
		Model:          &model,
		CreatedAt:      time.Now(),
	}

	uow := cs.uowFactory.NewUnitOfWork(persistCtx)
	if err := uow.MessageRepository().Create(persistCtx, &assistantTurn); err != nil {
		cs.logger.Error("ChatService", "Failed to persist assistant turn", map[string]interface{}{
			"conversation_id": session.ConversationId.String(),
			"error":           err.Error(),
		})
		return
	}
	if err := uow.ConversationRepository().Touch(persistCtx, session.ConversationId); err != nil {
		cs.logger.Warn("ChatService", "Failed to bump conversation", map[string]interface{}{
			"conversation_id": session.ConversationId.String(),
			"error":           err.Error(),
		})
	}
}

func (cs *chatService) findOwnedConversation(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, conversationId uuid.UUID) (*entity.Conversation, error) {
	conversation, err := uow.ConversationRepository().FindOne(ctx,
		specification.ByID{ID: conversationId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find conversation: %w", err)
	}
	if conversation == nil {
		return nil, fmt.Errorf("%w: conversation does not exist", apperror.ErrNotFound)
	}
	return conversation, nil
}

func toConversationResponse(conversation *entity.Conversation) *dto.ConversationResponse {
	return &dto.ConversationResponse{
		Id:        conversation.Id,
		Title:     conversation.Title,
		CreatedAt: conversation.CreatedAt,
		UpdatedAt: conversation.UpdatedAt,
	}
}
