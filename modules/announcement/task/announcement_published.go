package task

import (
	"context"
	"fmt"

	"cfp-api/core/errors"
	"cfp-api/core/logger"
	"cfp-api/core/queue"
	"cfp-api/modules/announcement/service"
	eventEntity "cfp-api/modules/event/entity"

	"github.com/hibiken/asynq"
)

type EventResolver interface {
	Resolve(ctx context.Context, slug string) (*eventEntity.Event, *errors.AppError)
}

// AnnouncementPublishedHandler fans a freshly published announcement
// out to its audience.
type AnnouncementPublishedHandler struct {
	events        EventResolver
	announcements service.AnnouncementServiceInterface
}

func NewAnnouncementPublishedHandler(events EventResolver, announcements service.AnnouncementServiceInterface) *AnnouncementPublishedHandler {
	return &AnnouncementPublishedHandler{events: events, announcements: announcements}
}

// ProcessTask handles notification:announcement_published. A vanished
// event or announcement is not retried.
func (h *AnnouncementPublishedHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	payload, err := queue.Decode[queue.AnnouncementPayload](t)
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

	created, appErr := h.announcements.SendNotifications(ctx, event, payload.AnnouncementID)
	if appErr != nil {
		if appErr.Code == errors.ErrNotFound {
			return fmt.Errorf("announcement %s: %w", payload.AnnouncementID, asynq.SkipRetry)
		}
		return appErr
	}
	logger.Info("Task:AnnouncementPublished", "event", event.Slug, "announcement_id", payload.AnnouncementID, "created", created)
	return nil
}

func Register(mux *asynq.ServeMux, h *AnnouncementPublishedHandler) {
	mux.Handle(queue.TypeAnnouncementPublished, h)
}
