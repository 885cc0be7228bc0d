package task

import (
	"context"
	"fmt"

	"cfp-api/core/errors"
	"cfp-api/core/logger"
	"cfp-api/core/queue"
	eventEntity "cfp-api/modules/event/entity"
	"cfp-api/modules/review/service"

	"github.com/hibiken/asynq"
)

// EventResolver looks an event up by slug.
type EventResolver interface {
	Resolve(ctx context.Context, slug string) (*eventEntity.Event, *errors.AppError)
}

type RecalculateHandler struct {
	events EventResolver
	scores service.ScoreServiceInterface
}

func NewRecalculateHandler(events EventResolver, scores service.ScoreServiceInterface) *RecalculateHandler {
	return &RecalculateHandler{events: events, scores: scores}
}

// ProcessTask handles review:recalculate_scores. An unknown event is not
// retried.
func (h *RecalculateHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	payload, err := queue.Decode[queue.EventPayload](t)
	if err != nil {
		return err
	}

	event, appErr := h.events.Resolve(ctx, payload.EventSlug)
	if appErr != nil {
		if appErr.Code == errors.ErrNotFound {
			return fmt.Errorf("event %q: %w", payload.EventSlug, asynq.SkipRetry)
		}
		return appErr
	}

	updated, appErr := h.scores.RecalculateAll(ctx, event.ID)
	if appErr != nil {
		return appErr
	}
	logger.Info("Task:RecalculateReviewScores", "event", event.Slug, "updated", updated)
	return nil
}

func Register(mux *asynq.ServeMux, h *RecalculateHandler) {
	mux.Handle(queue.TypeRecalculateReviewScores, h)
}
