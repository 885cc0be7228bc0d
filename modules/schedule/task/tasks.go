package task

import (
	"context"
	"fmt"

	"cfp-api/core/errors"
	"cfp-api/core/logger"
	"cfp-api/core/queue"
	"cfp-api/core/storage"
	eventEntity "cfp-api/modules/event/entity"
	"cfp-api/modules/schedule/service"

	"github.com/hibiken/asynq"
)

// EventResolver looks an event up by slug.
type EventResolver interface {
	Resolve(ctx context.Context, slug string) (*eventEntity.Event, *errors.AppError)
}

func resolve(ctx context.Context, events EventResolver, slug string) (*eventEntity.Event, error) {
	event, appErr := events.Resolve(ctx, slug)
	if appErr != nil {
		if appErr.Code == errors.ErrNotFound {
			return nil, fmt.Errorf("event %q: %w", slug, asynq.SkipRetry)
		}
		return nil, appErr
	}
	return event, nil
}

type Handlers struct {
	events    EventResolver
	schedules service.ScheduleServiceInterface
	publisher storage.Publisher
	prefix    string
}

func NewHandlers(events EventResolver, schedules service.ScheduleServiceInterface, publisher storage.Publisher, prefix string) *Handlers {
	return &Handlers{events: events, schedules: schedules, publisher: publisher, prefix: prefix}
}

// UpdateUnreleasedChanges handles schedule:update_unreleased_changes.
func (h *Handlers) UpdateUnreleasedChanges(ctx context.Context, t *asynq.Task) error {
	payload, err := queue.Decode[queue.UnreleasedChangesPayload](t)
	if err != nil {
		return err
	}
	event, err := resolve(ctx, h.events, payload.EventSlug)
	if err != nil {
		return err
	}
	changed, appErr := h.schedules.UpdateUnreleasedChanges(ctx, event.ID, payload.Value)
	if appErr != nil {
		return appErr
	}
	logger.Info("Task:UpdateUnreleasedChanges", "event", event.Slug, "has_unreleased_changes", changed)
	return nil
}

// ExportSchedule handles schedule:export by writing the visible slots of
// a release to object storage.
func (h *Handlers) ExportSchedule(ctx context.Context, t *asynq.Task) error {
	payload, err := queue.Decode[queue.ReleasePayload](t)
	if err != nil {
		return err
	}
	event, err := resolve(ctx, h.events, payload.EventSlug)
	if err != nil {
		return err
	}
	schedule, appErr := h.schedules.GetRelease(ctx, event.ID, payload.Version, true)
	if appErr != nil {
		if appErr.Code == errors.ErrNotFound {
			return fmt.Errorf("schedule %q of %q: %w", payload.Version, event.Slug, asynq.SkipRetry)
		}
		return appErr
	}

	key := storage.ObjectKey(h.prefix, event.Slug, payload.Version+".json")
	if err := h.publisher.PutJSON(ctx, key, schedule); err != nil {
		return err
	}
	logger.Info("Task:ExportSchedule", "event", event.Slug, "version", payload.Version, "key", key)
	return nil
}

func (h *Handlers) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(queue.TypeUpdateUnreleasedChanges, h.UpdateUnreleasedChanges)
	mux.HandleFunc(queue.TypeExportSchedule, h.ExportSchedule)
}
