package task

import (
	"context"

	"cfp-api/core/queue"
	"cfp-api/modules/analytics/service"

	"github.com/hibiken/asynq"
)

type SnapshotHandler struct {
	analytics service.AnalyticsServiceInterface
}

func NewSnapshotHandler(analytics service.AnalyticsServiceInterface) *SnapshotHandler {
	return &SnapshotHandler{analytics: analytics}
}

func (h *SnapshotHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	if _, appErr := h.analytics.Snapshot(ctx); appErr != nil {
		return appErr
	}
	return nil
}

func Register(mux *asynq.ServeMux, h *SnapshotHandler) {
	mux.Handle(queue.TypeSnapshotMetrics, h)
}
