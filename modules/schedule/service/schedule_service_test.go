package service

import (
	"context"
	"testing"
	"time"

	"cfp-api/core/config"
	"cfp-api/core/errors"
	"cfp-api/core/queue"
	"cfp-api/core/queue/queuetest"
	activityEntity "cfp-api/modules/activity/entity"
	activityService "cfp-api/modules/activity/service"
	eventEntity "cfp-api/modules/event/entity"
	"cfp-api/modules/schedule/dto"
	submissionEntity "cfp-api/modules/submission/entity"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"
)

func violationMessages(appErr *errors.AppError) []string {
	out := []string{}
	for _, v := range appErr.Violations() {
		out = append(out, v.Message)
	}
	return out
}

func TestScheduleService(t *testing.T) {
	ctx := context.Background()

	Convey("Given an event with a room and an accepted submission", t, func() {
		repo := newFakeScheduleRepo()
		events := &fakeEvents{flags: map[uuid.UUID]bool{}}
		talk := &submissionEntity.Submission{Code: "TALK01", Title: "Go", Abstract: "About Go", DurationMinutes: 45}
		talk.ID = uuid.New()
		submissions := &fakeSubmissions{byCode: map[string]*submissionEntity.Submission{"TALK01": talk}}
		dispatcher := &queuetest.Recorder{}
		recorder := &activityService.Recorder{}
		svc := NewScheduleService(repo, events, submissions, dispatcher, recorder, config.ComparisonExact)

		event := &eventEntity.Event{Slug: "conf"}
		event.ID = uuid.New()
		actor := uuid.New()

		room, appErr := svc.CreateRoom(ctx, event.ID, &dto.CreateRoomRequest{Name: "Main hall"})
		So(appErr, ShouldBeNil)

		start := time.Date(2026, time.June, 1, 10, 0, 0, 0, time.UTC)
		slot, appErr := svc.ScheduleSubmission(ctx, event, actor, &dto.ScheduleSubmissionRequest{
			SubmissionCode: "TALK01", RoomID: &room.ID, Start: &start,
		})
		So(appErr, ShouldBeNil)

		Convey("The slot follows the submission", func() {
			So(*slot.End, ShouldEqual, start.Add(45*time.Minute))
			So(slot.Description, ShouldEqual, "About Go")
			So(*slot.RoomName, ShouldEqual, "Main hall")
			So(dispatcher.Count(queue.TypeUpdateUnreleasedChanges), ShouldEqual, 1)
			So(recorder.Actions(), ShouldResemble, []string{activityEntity.ActionScheduleSlotUpdated})
		})

		Convey("Editing end or description with a submission attached fails", func() {
			end := start.Add(time.Hour)
			desc := "Other"
			_, appErr := svc.UpdateSlot(ctx, event, actor, slot.ID, &dto.UpdateSlotRequest{End: &end, Description: &desc})
			So(appErr.Code, ShouldEqual, errors.ErrValidationFailed)
			So(violationMessages(appErr), ShouldResemble, []string{msgEndLocked, msgDescriptionLocked})

			Convey("Clearing the submission first lets the edit through", func() {
				_, appErr := svc.UpdateSlot(ctx, event, actor, slot.ID, &dto.UpdateSlotRequest{ClearSubmission: true})
				So(appErr, ShouldBeNil)
				updated, appErr := svc.UpdateSlot(ctx, event, actor, slot.ID, &dto.UpdateSlotRequest{End: &end, Description: &desc})
				So(appErr, ShouldBeNil)
				So(*updated.End, ShouldEqual, end)
				So(updated.Description, ShouldEqual, "Other")
				So(updated.SubmissionID, ShouldBeNil)
			})
		})

		Convey("Moving the start moves the derived end", func() {
			later := start.Add(2 * time.Hour)
			updated, appErr := svc.UpdateSlot(ctx, event, actor, slot.ID, &dto.UpdateSlotRequest{Start: &later})
			So(appErr, ShouldBeNil)
			So(*updated.End, ShouldEqual, later.Add(45*time.Minute))
		})

		Convey("Free slots in the room skip the scheduled talk", func() {
			from, to := start.Add(-time.Hour), start.Add(2*time.Hour)
			free, appErr := svc.FreeSlots(ctx, event.ID, &dto.FreeSlotsRequest{RoomID: room.ID, From: &from, To: &to, DurationMinutes: 60})
			So(appErr, ShouldBeNil)
			starts := []time.Time{}
			for _, r := range free {
				starts = append(starts, r.Start)
			}
			So(starts, ShouldResemble, []time.Time{from, start.Add(45 * time.Minute), start.Add(time.Hour)})

			_, appErr = svc.FreeSlots(ctx, event.ID, &dto.FreeSlotsRequest{RoomID: uuid.New(), From: &from, To: &to, DurationMinutes: 60})
			So(appErr.Code, ShouldEqual, errors.ErrValidationFailed)
		})

		Convey("Releasing v1 twice fails the second time", func() {
			released, appErr := svc.Release(ctx, event, actor, &dto.ReleaseRequest{Version: " v1 ", Comment: "first"})
			So(appErr, ShouldBeNil)
			So(*released.Version, ShouldEqual, "v1")
			So(released.Slots, ShouldHaveLength, 1)
			So(released.Slots[0].ID, ShouldNotEqual, slot.ID)
			So(dispatcher.Count(queue.TypeScheduleReleased), ShouldEqual, 1)
			So(dispatcher.Count(queue.TypeExportSchedule), ShouldEqual, 1)

			_, appErr = svc.Release(ctx, event, actor, &dto.ReleaseRequest{Version: "v1"})
			So(appErr.Code, ShouldEqual, errors.ErrValidationFailed)
			So(violationMessages(appErr), ShouldResemble, []string{"A schedule with the version 'v1' already exists for this event."})

			count := 0
			for _, s := range repo.schedules {
				if s.Version != nil && *s.Version == "v1" {
					count++
				}
			}
			So(count, ShouldEqual, 1)

			Convey("Versions are case-sensitive", func() {
				_, appErr := svc.Release(ctx, event, actor, &dto.ReleaseRequest{Version: "V1"})
				So(appErr, ShouldBeNil)
			})

			Convey("A release lost to a concurrent one is a conflict", func() {
				repo.raceVersion = "v1"
				_, appErr := svc.Release(ctx, event, actor, &dto.ReleaseRequest{Version: "v1"})
				So(appErr.Code, ShouldEqual, errors.ErrAlreadyExists)
			})

			Convey("Later draft edits leave the release untouched", func() {
				later := start.Add(3 * time.Hour)
				_, appErr := svc.UpdateSlot(ctx, event, actor, slot.ID, &dto.UpdateSlotRequest{Start: &later})
				So(appErr, ShouldBeNil)

				snapshot, appErr := svc.GetSchedule(ctx, event.ID, released.ID, false, true)
				So(appErr, ShouldBeNil)
				So(*snapshot.Slots[0].Start, ShouldEqual, start)

				Convey("And the draft now differs from it", func() {
					changed, appErr := svc.UpdateUnreleasedChanges(ctx, event.ID, nil)
					So(appErr, ShouldBeNil)
					So(changed, ShouldBeTrue)
					So(events.flags[event.ID], ShouldBeTrue)
				})
			})

			Convey("Right after the release nothing is unreleased", func() {
				changed, _ := svc.UpdateUnreleasedChanges(ctx, event.ID, nil)
				So(changed, ShouldBeFalse)
			})

			Convey("Released slots cannot be edited", func() {
				_, appErr := svc.UpdateSlot(ctx, event, actor, released.Slots[0].ID, &dto.UpdateSlotRequest{})
				So(appErr.Code, ShouldEqual, errors.ErrNotFound)
			})
		})

		Convey("An empty version is rejected", func() {
			_, appErr := svc.Release(ctx, event, actor, &dto.ReleaseRequest{Version: "  "})
			So(appErr.Code, ShouldEqual, errors.ErrValidationFailed)
		})

		Convey("A given flag value is stored as-is", func() {
			no := false
			changed, appErr := svc.UpdateUnreleasedChanges(ctx, event.ID, &no)
			So(appErr, ShouldBeNil)
			So(changed, ShouldBeFalse)
			So(events.flags[event.ID], ShouldBeFalse)
		})

		Convey("Without a release a non-empty draft counts as changed", func() {
			changed, _ := svc.UpdateUnreleasedChanges(ctx, event.ID, nil)
			So(changed, ShouldBeTrue)
		})

		Convey("The public view hides the draft", func() {
			draft, _ := svc.GetDraft(ctx, event.ID)
			_, appErr := svc.GetSchedule(ctx, event.ID, draft.ID, true, true)
			So(appErr.Code, ShouldEqual, errors.ErrNotFound)
		})

		Convey("Breaks need an end", func() {
			_, appErr := svc.AddBreak(ctx, event, actor, &dto.CreateBreakRequest{Start: &start})
			So(appErr.Code, ShouldEqual, errors.ErrValidationFailed)
		})
	})
}
