package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/postpilot/internal/service"
	"go.uber.org/zap"
)

func (q *Queue) HandleDraftPostTask(ctx context.Context, task *asynq.Task) error {
	var payload DraftPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode draft payload: %v: %w", err, asynq.SkipRetry)
	}

	log := q.logger.With(
		zap.String("account_id", payload.AccountID),
		zap.String("keyword", payload.Keyword))

	post, err := q.ds.Draft(ctx, payload.AccountID, payload.Keyword, payload.Geo)
	if err != nil {
		if permanent(err) {
			log.Warn("draft task dropped", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		log.Error("draft task failed", zap.Error(err))
		return err
	}

	log.Info("draft task done", zap.String("post_id", post.ID))
	return nil
}

// permanent reports failures that retrying cannot fix.
func permanent(err error) bool {
	return errors.Is(err, service.ErrNoPreferredTime) ||
		errors.Is(err, service.ErrNoTrends) ||
		errors.Is(err, service.ErrInvalidInput)
}

// Register wires the task handlers onto mux.
func (q *Queue) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskTypeDraftPost, q.HandleDraftPostTask)
}
