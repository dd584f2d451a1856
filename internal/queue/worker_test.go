package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/service"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockDraftService struct {
	mock.Mock
}

func (m *MockDraftService) Draft(ctx context.Context, accountID, keyword, geo string) (*models.Post, error) {
	args := m.Called(ctx, accountID, keyword, geo)
	post, _ := args.Get(0).(*models.Post)
	return post, args.Error(1)
}

type MockEnqueuer struct {
	mock.Mock
}

func (m *MockEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task)
	info, _ := args.Get(0).(*asynq.TaskInfo)
	return info, args.Error(1)
}

func draftTask(t *testing.T) *asynq.Task {
	t.Helper()
	task, err := NewDraftPostTask(DraftPostPayload{AccountID: "acc", Keyword: "golang", Geo: "US"})
	require.NoError(t, err)
	return task
}

func TestHandleDraftPostTask(t *testing.T) {
	ds := new(MockDraftService)
	ds.On("Draft", mock.Anything, "acc", "golang", "US").Return(&models.Post{ID: "p1"}, nil)

	q := NewQueue(ds, zap.NewNop())
	require.NoError(t, q.HandleDraftPostTask(context.Background(), draftTask(t)))
	ds.AssertExpectations(t)
}

func TestHandleDraftPostTaskSkipsPermanentFailures(t *testing.T) {
	ds := new(MockDraftService)
	ds.On("Draft", mock.Anything, "acc", "golang", "US").Return(nil, service.ErrNoPreferredTime)

	q := NewQueue(ds, zap.NewNop())
	err := q.HandleDraftPostTask(context.Background(), draftTask(t))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleDraftPostTaskRetriesTransientFailures(t *testing.T) {
	ds := new(MockDraftService)
	ds.On("Draft", mock.Anything, "acc", "golang", "US").Return(nil, errors.New("openrouter timeout"))

	q := NewQueue(ds, zap.NewNop())
	err := q.HandleDraftPostTask(context.Background(), draftTask(t))
	require.Error(t, err)
	require.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandleDraftPostTaskBadPayload(t *testing.T) {
	q := NewQueue(new(MockDraftService), zap.NewNop())
	err := q.HandleDraftPostTask(context.Background(), asynq.NewTask(TaskTypeDraftPost, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestEnqueueDraft(t *testing.T) {
	client := new(MockEnqueuer)
	client.On("EnqueueContext", mock.Anything, mock.MatchedBy(func(task *asynq.Task) bool {
		var payload DraftPostPayload
		return task.Type() == TaskTypeDraftPost &&
			json.Unmarshal(task.Payload(), &payload) == nil &&
			payload.Keyword == "golang"
	})).Return(&asynq.TaskInfo{ID: "task-1"}, nil)

	id, err := EnqueueDraft(context.Background(), client, DraftPostPayload{AccountID: "acc", Keyword: "golang"})
	require.NoError(t, err)
	require.Equal(t, "task-1", id)
}
