package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"ai-assistant-be/internal/apperror"
	"ai-assistant-be/internal/constant"
	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/repository/contract"
	"ai-assistant-be/internal/repository/specification"
	"ai-assistant-be/internal/repository/unitofwork"
	"ai-assistant-be/pkg/events"
	"ai-assistant-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory store shared by the fake repositories. Specifications are
// interpreted structurally instead of being applied to a gorm.DB.

type fakeStore struct {
	mu            sync.Mutex
	conversations map[uuid.UUID]*entity.Conversation
	messages      []*entity.Message
}

func newFakeStore() *fakeStore {
	return &fakeStore{conversations: make(map[uuid.UUID]*entity.Conversation)}
}

type fakeConversationRepo struct{ store *fakeStore }

func (r *fakeConversationRepo) Create(_ context.Context, c *entity.Conversation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	clone := *c
	r.store.conversations[c.Id] = &clone
	return nil
}

func (r *fakeConversationRepo) Update(_ context.Context, c *entity.Conversation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	clone := *c
	r.store.conversations[c.Id] = &clone
	return nil
}

func (r *fakeConversationRepo) UpdateTitleIfDefault(_ context.Context, id uuid.UUID, title, defaultTitle string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.conversations[id]
	if !ok || c.Title != defaultTitle {
		return false, nil
	}
	c.Title = title
	now := time.Now()
	c.UpdatedAt = &now
	return true, nil
}

func (r *fakeConversationRepo) Touch(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if c, ok := r.store.conversations[id]; ok {
		now := time.Now()
		c.UpdatedAt = &now
	}
	return nil
}

func (r *fakeConversationRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.conversations, id)
	return nil
}

func (r *fakeConversationRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Conversation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, c := range r.store.conversations {
		if conversationMatches(c, specs) {
			clone := *c
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeConversationRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Conversation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.Conversation
	for _, c := range r.store.conversations {
		if conversationMatches(c, specs) {
			clone := *c
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeConversationRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func conversationMatches(c *entity.Conversation, specs []specification.Specification) bool {
	for _, s := range specs {
		switch spec := s.(type) {
		case specification.ByID:
			if c.Id != spec.ID {
				return false
			}
		case specification.UserOwnedBy:
			if c.UserId != spec.UserID {
				return false
			}
		}
	}
	return true
}

type fakeMessageRepo struct{ store *fakeStore }

func (r *fakeMessageRepo) Create(_ context.Context, m *entity.Message) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	clone := *m
	r.store.messages = append(r.store.messages, &clone)
	return nil
}

func (r *fakeMessageRepo) DeleteAllByConversationId(_ context.Context, conversationId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var kept []*entity.Message
	for _, m := range r.store.messages {
		if m.ConversationId != conversationId {
			kept = append(kept, m)
		}
	}
	r.store.messages = kept
	return nil
}

func (r *fakeMessageRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Message, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *fakeMessageRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	desc := false
	limit := 0
	var out []*entity.Message
	for _, m := range r.store.messages {
		if messageMatches(m, specs) {
			clone := *m
			out = append(out, &clone)
		}
	}
	for _, s := range specs {
		switch spec := s.(type) {
		case specification.OrderBy:
			desc = spec.Desc
		case specification.Limit:
			limit = spec.N
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func messageMatches(m *entity.Message, specs []specification.Specification) bool {
	for _, s := range specs {
		switch spec := s.(type) {
		case specification.ByConversationID:
			if m.ConversationId != spec.ConversationID {
				return false
			}
		case specification.CreatedBefore:
			if !m.CreatedAt.Before(spec.Cursor) {
				return false
			}
		}
	}
	return true
}

type fakeUow struct{ store *fakeStore }

func (u *fakeUow) Begin(context.Context) error { return nil }
func (u *fakeUow) Commit() error               { return nil }
func (u *fakeUow) Rollback() error             { return nil }
func (u *fakeUow) ConversationRepository() contract.ConversationRepository {
	return &fakeConversationRepo{store: u.store}
}
func (u *fakeUow) MessageRepository() contract.MessageRepository {
	return &fakeMessageRepo{store: u.store}
}
func (u *fakeUow) UiSnapshotRepository() contract.UiSnapshotRepository { return nil }
func (u *fakeUow) TestCaseRepository() contract.TestCaseRepository     { return nil }

type fakeUowFactory struct{ store *fakeStore }

func (f *fakeUowFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork {
	return &fakeUow{store: f.store}
}

type fakeRegistry struct {
	mu   sync.Mutex
	held map[uuid.UUID]bool
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{held: make(map[uuid.UUID]bool)}
}

func (r *fakeRegistry) Acquire(_ context.Context, id uuid.UUID, _ time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.held[id] {
		return false, nil
	}
	r.held[id] = true
	return true, nil
}

func (r *fakeRegistry) Release(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.held, id)
	return nil
}

type nopPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *nopPublisher) Publish(event events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

// scriptedProvider replays fixed deltas, optionally followed by an error.
type scriptedProvider struct {
	deltas []string
	err    error
}

func (p *scriptedProvider) Chat(context.Context, []llm.Message, ...llm.Option) (string, error) {
	return "", nil
}

func (p *scriptedProvider) Generate(context.Context, string, ...llm.Option) (string, error) {
	return "", nil
}

func (p *scriptedProvider) ChatStream(_ context.Context, _ []llm.Message, _ ...llm.Option) (<-chan string, <-chan error) {
	deltaChan := make(chan string, len(p.deltas)+1)
	errChan := make(chan error, 1)
	for _, d := range p.deltas {
		deltaChan <- d
	}
	if p.err != nil {
		errChan <- p.err
	}
	close(deltaChan)
	close(errChan)
	return deltaChan, errChan
}

func (p *scriptedProvider) ModelName() string { return "test-model" }

// stallingProvider emits its scripted deltas and then hangs with the
// stream still open, standing in for an upstream that stalls mid-answer.
type stallingProvider struct {
	scriptedProvider
}

func (p *stallingProvider) ChatStream(_ context.Context, _ []llm.Message, _ ...llm.Option) (<-chan string, <-chan error) {
	deltaChan := make(chan string, len(p.deltas))
	errChan := make(chan error, 1)
	for _, d := range p.deltas {
		deltaChan <- d
	}
	return deltaChan, errChan
}

type discardEmitter struct{}

func (discardEmitter) EmitVisible(string) error { return nil }
func (discardEmitter) EmitHidden(string) error  { return nil }

func newTestService(store *fakeStore, provider llm.LLMProvider, registry contract.StreamRegistry) (IChatService, *nopPublisher) {
	publisher := &nopPublisher{}
	svc := NewChatService(&fakeUowFactory{store: store}, provider, registry, publisher, nopLogger{})
	return svc, publisher
}

func seedConversation(store *fakeStore, userId uuid.UUID, title string) *entity.Conversation {
	c := &entity.Conversation{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     title,
		CreatedAt: time.Now().Add(-time.Hour),
	}
	store.conversations[c.Id] = c
	return c
}

func TestBeginStreamUnknownConversation(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, &scriptedProvider{}, newFakeRegistry())

	_, err := svc.BeginStream(context.Background(), uuid.New(), &dto.StreamChatRequest{
		ConversationId: uuid.New(),
		Content:        "hi",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestBeginStreamWrongOwner(t *testing.T) {
	store := newFakeStore()
	conversation := seedConversation(store, uuid.New(), "Someone else's")
	svc, _ := newTestService(store, &scriptedProvider{}, newFakeRegistry())

	_, err := svc.BeginStream(context.Background(), uuid.New(), &dto.StreamChatRequest{
		ConversationId: conversation.Id,
		Content:        "hi",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestBeginStreamConflictWhenSlotHeld(t *testing.T) {
	store := newFakeStore()
	userId := uuid.New()
	conversation := seedConversation(store, userId, constant.DefaultConversationTitle)
	registry := newFakeRegistry()
	svc, _ := newTestService(store, &scriptedProvider{}, registry)

	_, err := registry.Acquire(context.Background(), conversation.Id, time.Minute)
	require.NoError(t, err)

	_, err = svc.BeginStream(context.Background(), userId, &dto.StreamChatRequest{
		ConversationId: conversation.Id,
		Content:        "hi",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrConflict))
}

func TestBeginStreamPersistsUserTurnAndAutoTitles(t *testing.T) {
	store := newFakeStore()
	userId := uuid.New()
	conversation := seedConversation(store, userId, constant.DefaultConversationTitle)
	svc, _ := newTestService(store, &scriptedProvider{}, newFakeRegistry())

	session, err := svc.BeginStream(context.Background(), userId, &dto.StreamChatRequest{
		ConversationId: conversation.Id,
		Content:        "What is a goroutine?",
	})
	require.NoError(t, err)

	// User turn is durable before any streaming happens.
	require.Len(t, store.messages, 1)
	assert.Equal(t, constant.ChatMessageRoleUser, store.messages[0].Role)
	assert.Equal(t, "What is a goroutine?", store.messages[0].Content)
	assert.Nil(t, store.messages[0].Model)

	// The default title was replaced by one derived from the first turn.
	assert.Equal(t, "What is a goroutine?", store.conversations[conversation.Id].Title)

	// The new turn rides along in the model context.
	require.NotEmpty(t, session.History)
	last := session.History[len(session.History)-1]
	assert.Equal(t, constant.ChatMessageRoleUser, last.Role)
	assert.Equal(t, "What is a goroutine?", last.Content)
}

func TestBeginStreamDoesNotRetitleNamedConversation(t *testing.T) {
	store := newFakeStore()
	userId := uuid.New()
	conversation := seedConversation(store, userId, "My renamed chat")
	svc, _ := newTestService(store, &scriptedProvider{}, newFakeRegistry())

	_, err := svc.BeginStream(context.Background(), userId, &dto.StreamChatRequest{
		ConversationId: conversation.Id,
		Content:        "second message",
	})
	require.NoError(t, err)
	assert.Equal(t, "My renamed chat", store.conversations[conversation.Id].Title)
}

func TestAutoTitleFiresOnlyOnFirstTurn(t *testing.T) {
	store := newFakeStore()
	userId := uuid.New()
	conversation := seedConversation(store, userId, constant.DefaultConversationTitle)
	registry := newFakeRegistry()
	svc, _ := newTestService(store, &scriptedProvider{}, registry)

	// A code-only opening message derives nothing, so the default sticks.
	_, err := svc.BeginStream(context.Background(), userId, &dto.StreamChatRequest{
		ConversationId: conversation.Id,
		Content:        "```\nfmt.Println(1)\n```",
	})
	require.NoError(t, err)
	assert.Equal(t, constant.DefaultConversationTitle, store.conversations[conversation.Id].Title)

	require.NoError(t, registry.Release(context.Background(), conversation.Id))

	// Later turns never retitle, even though the title is still the default.
	_, err = svc.BeginStream(context.Background(), userId, &dto.StreamChatRequest{
		ConversationId: conversation.Id,
		Content:        "How do goroutines work?",
	})
	require.NoError(t, err)
	assert.Equal(t, constant.DefaultConversationTitle, store.conversations[conversation.Id].Title)
}

func TestBeginStreamFailureReleasesSlot(t *testing.T) {
	store := newFakeStore()
	userId := uuid.New()
	registry := newFakeRegistry()
	svc, _ := newTestService(store, &scriptedProvider{}, registry)

	_, err := svc.BeginStream(context.Background(), userId, &dto.StreamChatRequest{
		ConversationId: uuid.New(),
		Content:        "hi",
	})
	require.Error(t, err)

	// Not-found fails before the slot is touched, so nothing is held.
	assert.Empty(t, registry.held)
}

func TestRunStreamPersistsAssistantTurn(t *testing.T) {
	store := newFakeStore()
	userId := uuid.New()
	conversation := seedConversation(store, userId, constant.DefaultConversationTitle)
	registry := newFakeRegistry()
	provider := &scriptedProvider{deltas: []string{"<think>plan</think>", "Hello ", "there"}}
	svc, publisher := newTestService(store, provider, registry)

	session, err := svc.BeginStream(context.Background(), userId, &dto.StreamChatRequest{
		ConversationId: conversation.Id,
		Content:        "hi",
	})
	require.NoError(t, err)

	result := svc.RunStream(context.Background(), session, discardEmitter{})
	assert.Equal(t, "Hello there", result.Visible)
	assert.False(t, result.Cancelled)
	assert.NoError(t, result.UpstreamErr)

	// User turn plus assistant turn, assistant tagged with the model.
	require.Len(t, store.messages, 2)
	assistant := store.messages[1]
	assert.Equal(t, constant.ChatMessageRoleAssistant, assistant.Role)
	assert.Equal(t, "Hello there", assistant.Content)
	require.NotNil(t, assistant.Model)
	assert.Equal(t, "test-model", *assistant.Model)

	// Slot released, completion event published.
	assert.Empty(t, registry.held)
	require.NotEmpty(t, publisher.events)
	assert.Equal(t, events.TypeStreamCompleted, publisher.events[len(publisher.events)-1].EventType())
}

func TestRunStreamHiddenOnlyLeavesNoAssistantTurn(t *testing.T) {
	store := newFakeStore()
	userId := uuid.New()
	conversation := seedConversation(store, userId, constant.DefaultConversationTitle)
	provider := &scriptedProvider{deltas: []string{"<think>nothing visible</think>"}}
	svc, _ := newTestService(store, provider, newFakeRegistry())

	session, err := svc.BeginStream(context.Background(), userId, &dto.StreamChatRequest{
		ConversationId: conversation.Id,
		Content:        "hi",
	})
	require.NoError(t, err)

	result := svc.RunStream(context.Background(), session, discardEmitter{})
	assert.Empty(t, result.Visible)

	// Only the user turn is stored.
	require.Len(t, store.messages, 1)
	assert.Equal(t, constant.ChatMessageRoleUser, store.messages[0].Role)
}

func TestRunStreamUpstreamFailureKeepsPartialText(t *testing.T) {
	store := newFakeStore()
	userId := uuid.New()
	conversation := seedConversation(store, userId, constant.DefaultConversationTitle)
	provider := &scriptedProvider{
		deltas: []string{"partial "},
		err:    &llm.UpstreamError{Provider: "together", Err: errors.New("status 502")},
	}
	svc, _ := newTestService(store, provider, newFakeRegistry())

	session, err := svc.BeginStream(context.Background(), userId, &dto.StreamChatRequest{
		ConversationId: conversation.Id,
		Content:        "hi",
	})
	require.NoError(t, err)

	result := svc.RunStream(context.Background(), session, discardEmitter{})
	require.Error(t, result.UpstreamErr)

	// The partial reply still becomes a durable assistant turn.
	require.Len(t, store.messages, 2)
	assert.Equal(t, "partial ", store.messages[1].Content)
}

func TestRunStreamCancellationPersistsPartialTurn(t *testing.T) {
	store := newFakeStore()
	userId := uuid.New()
	conversation := seedConversation(store, userId, constant.DefaultConversationTitle)
	registry := newFakeRegistry()
	provider := &stallingProvider{scriptedProvider{deltas: []string{"Hello ", "wor"}}}
	svc, _ := newTestService(store, provider, registry)

	session, err := svc.BeginStream(context.Background(), userId, &dto.StreamChatRequest{
		ConversationId: conversation.Id,
		Content:        "hi",
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	result := svc.RunStream(ctx, session, discardEmitter{})
	assert.True(t, result.Cancelled)
	assert.NoError(t, result.UpstreamErr)

	// Exactly the text classified before the cancel is durable, tagged
	// like any completed answer, and the slot is freed for a retry.
	require.Len(t, store.messages, 2)
	assistant := store.messages[1]
	assert.Equal(t, constant.ChatMessageRoleAssistant, assistant.Role)
	assert.Equal(t, "Hello wor", assistant.Content)
	require.NotNil(t, assistant.Model)
	assert.Equal(t, "test-model", *assistant.Model)
	assert.Empty(t, registry.held)
}

func TestListMessagesPagesBackwards(t *testing.T) {
	store := newFakeStore()
	userId := uuid.New()
	conversation := seedConversation(store, userId, "titled")
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		store.messages = append(store.messages, &entity.Message{
			Id:             uuid.New(),
			ConversationId: conversation.Id,
			Role:           constant.ChatMessageRoleUser,
			Content:        string(rune('a' + i)),
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		})
	}
	svc, _ := newTestService(store, &scriptedProvider{}, newFakeRegistry())

	// Newest page of two.
	page, err := svc.ListMessages(context.Background(), userId, &dto.ListMessagesRequest{
		ConversationId: conversation.Id,
		Limit:          2,
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.True(t, page.HasMore)
	// Oldest first within the page.
	assert.Equal(t, "d", page.Items[0].Content)
	assert.Equal(t, "e", page.Items[1].Content)

	// Next page via the cursor.
	page2, err := svc.ListMessages(context.Background(), userId, &dto.ListMessagesRequest{
		ConversationId: conversation.Id,
		Before:         page.Items[0].CreatedAt,
		Limit:          2,
	})
	require.NoError(t, err)
	require.Len(t, page2.Items, 2)
	assert.Equal(t, "b", page2.Items[0].Content)
	assert.Equal(t, "c", page2.Items[1].Content)
}

func TestDeleteConversationRemovesTranscript(t *testing.T) {
	store := newFakeStore()
	userId := uuid.New()
	conversation := seedConversation(store, userId, "to delete")
	store.messages = append(store.messages, &entity.Message{
		Id:             uuid.New(),
		ConversationId: conversation.Id,
		Role:           constant.ChatMessageRoleUser,
		Content:        "bye",
		CreatedAt:      time.Now(),
	})
	svc, publisher := newTestService(store, &scriptedProvider{}, newFakeRegistry())

	require.NoError(t, svc.DeleteConversation(context.Background(), userId, conversation.Id))
	assert.Empty(t, store.conversations)
	assert.Empty(t, store.messages)
	require.NotEmpty(t, publisher.events)
	assert.Equal(t, events.TypeConversationDeleted, publisher.events[0].EventType())
}
