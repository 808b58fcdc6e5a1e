package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-assistant-be/internal/apperror"
	"ai-assistant-be/internal/constant"
	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/internal/repository/specification"
	"ai-assistant-be/internal/repository/unitofwork"
	"ai-assistant-be/pkg/events"
	"ai-assistant-be/pkg/llm"
	"ai-assistant-be/pkg/uitest"

	"github.com/google/uuid"
)

type IUiTestService interface {
	CreateSnapshot(ctx context.Context, userId uuid.UUID, request *dto.CreateSnapshotRequest) (*dto.SnapshotResponse, error)
	GetSnapshot(ctx context.Context, userId uuid.UUID, snapshotId uuid.UUID) (*dto.SnapshotResponse, error)
	GenerateTests(ctx context.Context, userId uuid.UUID, request *dto.GenerateTestsRequest) ([]*dto.TestCaseResponse, error)
	ListTests(ctx context.Context, userId uuid.UUID, snapshotId uuid.UUID) ([]*dto.TestCaseResponse, error)
}

type uiTestService struct {
	uowFactory unitofwork.RepositoryFactory
	generator  *uitest.Generator
	provider   llm.LLMProvider
	publisher  IEventPublisher
	logger     logger.ILogger
}

func NewUiTestService(
	uowFactory unitofwork.RepositoryFactory,
	provider llm.LLMProvider,
	publisher IEventPublisher,
	log logger.ILogger,
) IUiTestService {
	return &uiTestService{
		uowFactory: uowFactory,
		generator:  uitest.NewGenerator(provider),
		provider:   provider,
		publisher:  publisher,
		logger:     log,
	}
}

func (us *uiTestService) CreateSnapshot(ctx context.Context, userId uuid.UUID, request *dto.CreateSnapshotRequest) (*dto.SnapshotResponse, error) {
	uow := us.uowFactory.NewUnitOfWork(ctx)

	// Summarization is best effort: a snapshot without a UI map is still
	// useful, tests can be generated later once the provider recovers.
	uiMap, err := us.generator.SummarizeUi(ctx, request.Elements)
	if err != nil {
		us.logger.Warn("UiTestService", "UI summarization failed, storing empty map", map[string]interface{}{
			"url":   request.Url,
			"error": err.Error(),
		})
		uiMap = json.RawMessage(`{"pages":[],"components":[],"actions":[]}`)
	}

	snapshot := entity.UiSnapshot{
		Id:        uuid.New(),
		UserId:    userId,
		Url:       request.Url,
		Title:     request.Title,
		Elements:  request.Elements,
		UiMap:     uiMap,
		CreatedAt: time.Now(),
	}
	if err := uow.UiSnapshotRepository().Create(ctx, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to create snapshot: %w", err)
	}

	return toSnapshotResponse(&snapshot, true), nil
}

func (us *uiTestService) GetSnapshot(ctx context.Context, userId uuid.UUID, snapshotId uuid.UUID) (*dto.SnapshotResponse, error) {
	uow := us.uowFactory.NewUnitOfWork(ctx)

	snapshot, err := us.findOwnedSnapshot(ctx, uow, userId, snapshotId)
	if err != nil {
		return nil, err
	}
	return toSnapshotResponse(snapshot, true), nil
}

func (us *uiTestService) GenerateTests(ctx context.Context, userId uuid.UUID, request *dto.GenerateTestsRequest) ([]*dto.TestCaseResponse, error) {
	uow := us.uowFactory.NewUnitOfWork(ctx)

	snapshot, err := us.findOwnedSnapshot(ctx, uow, userId, request.SnapshotId)
	if err != nil {
		return nil, err
	}

	generated, err := us.generator.GenerateTestCases(ctx, snapshot.Url, snapshot.Title, snapshot.UiMap, request.Goals)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	testCases := make([]*entity.TestCase, len(generated))
	for i, t := range generated {
		testCases[i] = us.toTestCaseEntity(snapshot, t, i, now)
	}
	if err := uow.TestCaseRepository().CreateAll(ctx, testCases); err != nil {
		return nil, fmt.Errorf("failed to store test cases: %w", err)
	}

	us.publisher.Publish(events.NewTestSuiteGeneratedEvent(snapshot.Id, userId, len(testCases), us.provider.ModelName()))

	responses := make([]*dto.TestCaseResponse, len(testCases))
	for i, tc := range testCases {
		responses[i] = toTestCaseResponse(tc)
	}
	return responses, nil
}

func (us *uiTestService) ListTests(ctx context.Context, userId uuid.UUID, snapshotId uuid.UUID) ([]*dto.TestCaseResponse, error) {
	uow := us.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	}
	if snapshotId != uuid.Nil {
		specs = append(specs, specification.Filter("snapshot_id", snapshotId))
	}

	testCases, err := uow.TestCaseRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, fmt.Errorf("failed to list test cases: %w", err)
	}

	responses := make([]*dto.TestCaseResponse, len(testCases))
	for i, tc := range testCases {
		responses[i] = toTestCaseResponse(tc)
	}
	return responses, nil
}

func (us *uiTestService) toTestCaseEntity(snapshot *entity.UiSnapshot, t uitest.GeneratedTest, index int, now time.Time) *entity.TestCase {
	title := t.Title
	if title == "" {
		title = fmt.Sprintf("Test %d", index+1)
	}
	priority := t.Priority
	if priority == "" {
		priority = constant.TestCaseDefaultPriority
	}
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}

	steps := make([]entity.TestStep, len(t.Steps))
	for i, s := range t.Steps {
		stepIndex := s.Index
		if stepIndex == 0 {
			stepIndex = i + 1
		}
		steps[i] = entity.TestStep{
			Index:    stepIndex,
			Action:   s.Action,
			Selector: s.Selector,
			Details:  s.Details,
			Expected: s.Expected,
		}
	}

	return &entity.TestCase{
		Id:             uuid.New(),
		UserId:         snapshot.UserId,
		SnapshotId:     snapshot.Id,
		Url:            snapshot.Url,
		Title:          title,
		Description:    t.Description,
		Priority:       priority,
		Tags:           tags,
		Steps:          steps,
		Negative:       t.Negative,
		Preconditions:  t.Preconditions,
		Postconditions: t.Postconditions,
		Source:         "snapshot",
		Model:          us.provider.ModelName(),
		CreatedAt:      now,
	}
}

func (us *uiTestService) findOwnedSnapshot(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, snapshotId uuid.UUID) (*entity.UiSnapshot, error) {
	snapshot, err := uow.UiSnapshotRepository().FindOne(ctx,
		specification.ByID{ID: snapshotId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find snapshot: %w", err)
	}
	if snapshot == nil {
		return nil, fmt.Errorf("%w: snapshot does not exist", apperror.ErrNotFound)
	}
	return snapshot, nil
}

func toSnapshotResponse(snapshot *entity.UiSnapshot, includeElements bool) *dto.SnapshotResponse {
	resp := &dto.SnapshotResponse{
		Id:        snapshot.Id,
		Url:       snapshot.Url,
		Title:     snapshot.Title,
		UiMap:     snapshot.UiMap,
		CreatedAt: snapshot.CreatedAt,
	}
	if includeElements {
		resp.Elements = snapshot.Elements
	}
	return resp
}

func toTestCaseResponse(tc *entity.TestCase) *dto.TestCaseResponse {
	steps := make([]dto.TestStepResponse, len(tc.Steps))
	for i, s := range tc.Steps {
		steps[i] = dto.TestStepResponse{
			Index:    s.Index,
			Action:   s.Action,
			Selector: s.Selector,
			Details:  s.Details,
			Expected: s.Expected,
		}
	}
	return &dto.TestCaseResponse{
		Id:             tc.Id,
		SnapshotId:     tc.SnapshotId,
		Url:            tc.Url,
		Title:          tc.Title,
		Description:    tc.Description,
		Priority:       tc.Priority,
		Tags:           tc.Tags,
		Steps:          steps,
		Negative:       tc.Negative,
		Preconditions:  tc.Preconditions,
		Postconditions: tc.Postconditions,
		Model:          tc.Model,
		CreatedAt:      tc.CreatedAt,
	}
}
