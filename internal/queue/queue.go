package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// Enqueuer is the part of *asynq.Client the API needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

func NewDraftPostTask(payload DraftPostPayload) (*asynq.Task, error) {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode draft payload: %w", err)
	}
	return asynq.NewTask(TaskTypeDraftPost, taskPayload, asynq.MaxRetry(3), asynq.Timeout(2*time.Minute)), nil
}

// EnqueueDraft queues a drafting job and returns its task id.
func EnqueueDraft(ctx context.Context, client Enqueuer, payload DraftPostPayload) (string, error) {
	task, err := NewDraftPostTask(payload)
	if err != nil {
		return "", err
	}

	info, err := client.EnqueueContext(ctx, task)
	if err != nil {
		return "", fmt.Errorf("enqueue draft task: %w", err)
	}
	return info.ID, nil
}
