package queue

import (
	"github.com/maheshrc27/postpilot/internal/service"
	"go.uber.org/zap"
)

type Queue struct {
	ds     service.DraftService
	logger *zap.Logger
}

func NewQueue(ds service.DraftService, logger *zap.Logger) *Queue {
	return &Queue{ds: ds, logger: logger}
}

const TaskTypeDraftPost = "draft:post"

type DraftPostPayload struct {
	AccountID string `json:"account_id"`
	Keyword   string `json:"keyword"`
	Geo       string `json:"geo"`
}
