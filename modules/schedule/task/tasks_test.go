package task

import (
	"context"
	"errors"
	"testing"

	appErrors "cfp-api/core/errors"
	"cfp-api/core/queue"
	"cfp-api/core/storage"
	eventEntity "cfp-api/modules/event/entity"
	"cfp-api/modules/schedule/dto"
	"cfp-api/modules/schedule/entity"
	"cfp-api/modules/schedule/service"

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

// stubSchedules implements only what the handlers call.
type stubSchedules struct {
	service.ScheduleServiceInterface
	flagged *bool
	release *dto.ScheduleResponse
}

func (s *stubSchedules) UpdateUnreleasedChanges(_ context.Context, _ uuid.UUID, value *bool) (bool, *appErrors.AppError) {
	changed := true
	if value != nil {
		changed = *value
	}
	s.flagged = &changed
	return changed, nil
}

func (s *stubSchedules) GetRelease(_ context.Context, _ uuid.UUID, version string, _ bool) (*dto.ScheduleResponse, *appErrors.AppError) {
	if s.release == nil || s.release.Version == nil || *s.release.Version != version {
		return nil, appErrors.NewAppError(appErrors.ErrNotFound, "Schedule not found", nil)
	}
	return s.release, nil
}

func TestHandlers(t *testing.T) {
	ctx := context.Background()

	Convey("Given schedule task handlers", t, func() {
		event := &eventEntity.Event{Slug: "conf"}
		event.ID = uuid.New()
		version := "v1"
		schedules := &stubSchedules{release: &dto.ScheduleResponse{ID: uuid.New(), Version: &version, Slots: []entity.TalkSlot{}}}
		publisher := storage.NewMemoryPublisher()
		h := NewHandlers(fakeResolver{event: event}, schedules, publisher, "exports")

		Convey("A forced value is passed through", func() {
			no := false
			task, err := queue.NewUpdateUnreleasedChangesTask("conf", &no)
			So(err, ShouldBeNil)
			So(h.UpdateUnreleasedChanges(ctx, task), ShouldBeNil)
			So(*schedules.flagged, ShouldBeFalse)
		})

		Convey("An unknown event is not retried", func() {
			task, _ := queue.NewUpdateUnreleasedChangesTask("gone", nil)
			err := h.UpdateUnreleasedChanges(ctx, task)
			So(errors.Is(err, asynq.SkipRetry), ShouldBeTrue)
		})

		Convey("A release is exported under the event and version", func() {
			task, _ := queue.NewExportScheduleTask("conf", "v1")
			So(h.ExportSchedule(ctx, task), ShouldBeNil)
			So(publisher.Objects, ShouldContainKey, "exports/conf/v1.json")
		})

		Convey("Exporting a missing version is not retried", func() {
			task, _ := queue.NewExportScheduleTask("conf", "v9")
			So(errors.Is(h.ExportSchedule(ctx, task), asynq.SkipRetry), ShouldBeTrue)
		})
	})
}
