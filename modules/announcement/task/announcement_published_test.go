package task

import (
	"context"
	"errors"
	"testing"

	appErrors "cfp-api/core/errors"
	"cfp-api/core/queue"
	"cfp-api/modules/announcement/service"
	eventEntity "cfp-api/modules/event/entity"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeResolver struct {
	event *eventEntity.Event
}

func (f fakeResolver) Resolve(_ context.Context, slug string) (*eventEntity.Event, *appErrors.AppError) {
	if f.event == nil || f.event.Slug != slug {
		return nil, appErrors.NewAppError(appErrors.ErrNotFound, "Event not found", nil)
	}
	return f.event, nil
}

type fakeSender struct {
	service.AnnouncementServiceInterface
	known map[uuid.UUID]bool
	sent  []uuid.UUID
	err   *appErrors.AppError
}

func (f *fakeSender) SendNotifications(_ context.Context, _ *eventEntity.Event, id uuid.UUID) (int, *appErrors.AppError) {
	if f.err != nil {
		return 0, f.err
	}
	if !f.known[id] {
		return 0, appErrors.NewAppError(appErrors.ErrNotFound, "Announcement not found", nil)
	}
	f.sent = append(f.sent, id)
	return 1, nil
}

func TestAnnouncementPublishedHandler(t *testing.T) {
	ctx := context.Background()

	Convey("Given a handler for a known event", t, func() {
		event := &eventEntity.Event{Slug: "conf"}
		event.ID = uuid.New()
		id := uuid.New()
		sender := &fakeSender{known: map[uuid.UUID]bool{id: true}}
		h := NewAnnouncementPublishedHandler(fakeResolver{event: event}, sender)

		Convey("A published announcement is sent", func() {
			task, err := queue.NewAnnouncementPublishedTask("conf", id)
			So(err, ShouldBeNil)
			So(h.ProcessTask(ctx, task), ShouldBeNil)
			So(sender.sent, ShouldResemble, []uuid.UUID{id})
		})

		Convey("A deleted announcement is not retried", func() {
			task, _ := queue.NewAnnouncementPublishedTask("conf", uuid.New())
			So(errors.Is(h.ProcessTask(ctx, task), asynq.SkipRetry), ShouldBeTrue)
		})

		Convey("An unknown event is not retried", func() {
			task, _ := queue.NewAnnouncementPublishedTask("gone", id)
			So(errors.Is(h.ProcessTask(ctx, task), asynq.SkipRetry), ShouldBeTrue)
			So(sender.sent, ShouldBeEmpty)
		})

		Convey("A failed fan-out is retried", func() {
			sender.err = appErrors.NewAppError(appErrors.ErrCreateFailed, "Failed to create notification", errors.New("db down"))
			task, _ := queue.NewAnnouncementPublishedTask("conf", id)
			err := h.ProcessTask(ctx, task)
			So(err, ShouldNotBeNil)
			So(errors.Is(err, asynq.SkipRetry), ShouldBeFalse)
		})
	})
}
