package task

import (
	"context"
	"fmt"

	"cfp-api/core/errors"
	"cfp-api/core/queue"
	eventEntity "cfp-api/modules/event/entity"
	"cfp-api/modules/notification/dto"
	"cfp-api/modules/notification/service"
	scheduleDto "cfp-api/modules/schedule/dto"
	submissionEntity "cfp-api/modules/submission/entity"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type EventResolver interface {
	Resolve(ctx context.Context, slug string) (*eventEntity.Event, *errors.AppError)
}

type ReleaseLoader interface {
	GetRelease(ctx context.Context, eventID uuid.UUID, version string, onlyVisible bool) (*scheduleDto.ScheduleResponse, *errors.AppError)
}

type SpeakerLookup interface {
	SpeakersBySubmission(ctx context.Context, submissionIDs []uuid.UUID) (map[uuid.UUID][]submissionEntity.Speaker, *errors.AppError)
}

// ScheduleReleasedHandler notifies the speakers of every talk in a
// released schedule version.
type ScheduleReleasedHandler struct {
	events        EventResolver
	schedules     ReleaseLoader
	speakers      SpeakerLookup
	notifications service.NotificationServiceInterface
}

func NewScheduleReleasedHandler(events EventResolver, schedules ReleaseLoader, speakers SpeakerLookup, notifications service.NotificationServiceInterface) *ScheduleReleasedHandler {
	return &ScheduleReleasedHandler{events: events, schedules: schedules, speakers: speakers, notifications: notifications}
}

func (h *ScheduleReleasedHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	payload, err := queue.Decode[queue.ReleasePayload](t)
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

	release, appErr := h.schedules.GetRelease(ctx, event.ID, payload.Version, false)
	if appErr != nil {
		if appErr.Code == errors.ErrNotFound {
			return fmt.Errorf("schedule %s/%s: %w", event.Slug, payload.Version, asynq.SkipRetry)
		}
		return appErr
	}

	codes := make(map[uuid.UUID]string)
	var ids []uuid.UUID
	for _, slot := range release.Slots {
		if slot.SubmissionID == nil {
			continue
		}
		if _, seen := codes[*slot.SubmissionID]; seen {
			continue
		}
		code := ""
		if slot.SubmissionCode != nil {
			code = *slot.SubmissionCode
		}
		codes[*slot.SubmissionID] = code
		ids = append(ids, *slot.SubmissionID)
	}
	if len(ids) == 0 {
		return nil
	}

	bySubmission, appErr := h.speakers.SpeakersBySubmission(ctx, ids)
	if appErr != nil {
		return appErr
	}

	var recipients []dto.Recipient
	for _, id := range ids {
		for _, speaker := range bySubmission[id] {
			recipients = append(recipients, dto.Recipient{UserID: speaker.UserID, SubmissionCode: codes[id]})
		}
	}

	if _, appErr := h.notifications.NotifyScheduleRelease(ctx, event.ID, event.Name, payload.Version, recipients); appErr != nil {
		return appErr
	}
	return nil
}

func Register(mux *asynq.ServeMux, h *ScheduleReleasedHandler) {
	mux.Handle(queue.TypeScheduleReleased, h)
}
