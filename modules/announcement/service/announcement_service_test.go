package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"cfp-api/core/errors"
	"cfp-api/core/params"
	"cfp-api/core/queue"
	"cfp-api/core/queue/queuetest"
	activityEntity "cfp-api/modules/activity/entity"
	activityService "cfp-api/modules/activity/service"
	"cfp-api/modules/announcement/dto"
	"cfp-api/modules/announcement/entity"
	eventEntity "cfp-api/modules/event/entity"
	notificationDto "cfp-api/modules/notification/dto"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeAnnouncementRepo struct {
	rows      map[uuid.UUID]*entity.Announcement
	audiences map[string][]uuid.UUID
}

func newFakeRepo() *fakeAnnouncementRepo {
	return &fakeAnnouncementRepo{rows: map[uuid.UUID]*entity.Announcement{}, audiences: map[string][]uuid.UUID{}}
}

func (f *fakeAnnouncementRepo) Create(_ context.Context, a *entity.Announcement) error {
	a.ID = uuid.New()
	stored := *a
	f.rows[a.ID] = &stored
	return nil
}

func (f *fakeAnnouncementRepo) List(_ context.Context, eventID uuid.UUID, p params.QueryParams) (*entity.PaginatedAnnouncementEntity, error) {
	items := []entity.Announcement{}
	for _, a := range f.rows {
		if a.EventID == eventID {
			items = append(items, *a)
		}
	}
	return &entity.PaginatedAnnouncementEntity{Items: items, TotalItems: len(items), PageNumber: p.PageNumber, PageSize: p.PageSize}, nil
}

func (f *fakeAnnouncementRepo) Get(_ context.Context, eventID, id uuid.UUID) (*entity.Announcement, error) {
	a, ok := f.rows[id]
	if !ok || a.EventID != eventID {
		return nil, sql.ErrNoRows
	}
	copied := *a
	return &copied, nil
}

func (f *fakeAnnouncementRepo) Update(_ context.Context, a *entity.Announcement) error {
	if _, ok := f.rows[a.ID]; !ok {
		return sql.ErrNoRows
	}
	stored := *a
	f.rows[a.ID] = &stored
	return nil
}

func (f *fakeAnnouncementRepo) Delete(_ context.Context, eventID, id uuid.UUID) (bool, error) {
	a, ok := f.rows[id]
	if !ok || a.EventID != eventID {
		return false, nil
	}
	delete(f.rows, id)
	return true, nil
}

func (f *fakeAnnouncementRepo) Publish(_ context.Context, eventID, id uuid.UUID) (*entity.Announcement, bool, error) {
	a, ok := f.rows[id]
	if !ok || a.EventID != eventID {
		return nil, false, sql.ErrNoRows
	}
	first := !a.IsPublished
	if first {
		now := time.Now()
		a.IsPublished, a.PublishedAt = true, &now
	}
	copied := *a
	return &copied, first, nil
}

func (f *fakeAnnouncementRepo) MarkNotificationsSent(_ context.Context, id uuid.UUID) error {
	f.rows[id].NotificationsSent = true
	return nil
}

func (f *fakeAnnouncementRepo) Recipients(_ context.Context, _ uuid.UUID, audience string) ([]uuid.UUID, error) {
	return f.audiences[audience], nil
}

type recordingNotifier struct {
	calls []notificationDto.Announcement
	users [][]uuid.UUID
}

func (n *recordingNotifier) NotifyAnnouncement(_ context.Context, _ uuid.UUID, a notificationDto.Announcement, userIDs []uuid.UUID) (int, *errors.AppError) {
	n.calls = append(n.calls, a)
	n.users = append(n.users, userIDs)
	return len(userIDs), nil
}

func TestAnnouncementService(t *testing.T) {
	ctx := context.Background()

	Convey("Given an event", t, func() {
		repo := newFakeRepo()
		notifier := &recordingNotifier{}
		dispatcher := &queuetest.Recorder{}
		recorder := &activityService.Recorder{}
		svc := NewAnnouncementService(repo, notifier, dispatcher, recorder)

		event := &eventEntity.Event{Slug: "conf", Name: "Conf"}
		event.ID = uuid.New()
		actor := uuid.New()

		Convey("A draft is trimmed and targets everybody by default", func() {
			a, appErr := svc.Create(ctx, event, actor, &dto.AnnouncementRequest{Title: " Welcome ", Message: " Doors open at nine. "})
			So(appErr, ShouldBeNil)
			So(a.Title, ShouldEqual, "Welcome")
			So(a.Message, ShouldEqual, "Doors open at nine.")
			So(a.Audience, ShouldEqual, entity.AudienceAll)
			So(a.IsPublished, ShouldBeFalse)
			So(*a.AuthorID, ShouldEqual, actor)
			So(recorder.Actions(), ShouldResemble, []string{activityEntity.ActionAnnouncementSaved})
		})

		Convey("Invalid drafts name every bad field", func() {
			_, appErr := svc.Create(ctx, event, actor, &dto.AnnouncementRequest{
				Title:    strings.Repeat("x", 201),
				Audience: "sponsors",
			})
			So(appErr.Code, ShouldEqual, errors.ErrValidationFailed)
			fields := []string{}
			for _, v := range appErr.Violations() {
				fields = append(fields, v.Field)
			}
			So(fields, ShouldResemble, []string{"title", "message", "target_audience"})
			So(repo.rows, ShouldBeEmpty)
		})

		Convey("Given a draft that asks for notifications", func() {
			speaker, reviewer := uuid.New(), uuid.New()
			repo.audiences[entity.AudienceSpeakers] = []uuid.UUID{speaker}
			repo.audiences[entity.AudienceAll] = []uuid.UUID{speaker, reviewer}
			draft, appErr := svc.Create(ctx, event, actor, &dto.AnnouncementRequest{
				Title: "CfP extended", Message: "One more week.", Audience: entity.AudienceSpeakers, SendNotifications: true,
			})
			So(appErr, ShouldBeNil)

			Convey("The first publish queues the fan-out once", func() {
				res, appErr := svc.Publish(ctx, event, actor, draft.ID)
				So(appErr, ShouldBeNil)
				So(res.AlreadyPublished, ShouldBeFalse)
				So(res.NotificationsQueued, ShouldBeTrue)
				So(res.Announcement.PublishedAt, ShouldNotBeNil)
				So(dispatcher.Count(queue.TypeAnnouncementPublished), ShouldEqual, 1)

				payload, err := queue.Decode[queue.AnnouncementPayload](dispatcher.Tasks[0])
				So(err, ShouldBeNil)
				So(payload.EventSlug, ShouldEqual, "conf")
				So(payload.AnnouncementID, ShouldEqual, draft.ID)

				publishedAt := *res.Announcement.PublishedAt
				again, appErr := svc.Publish(ctx, event, actor, draft.ID)
				So(appErr, ShouldBeNil)
				So(again.AlreadyPublished, ShouldBeTrue)
				So(*again.Announcement.PublishedAt, ShouldEqual, publishedAt)
				So(dispatcher.Count(queue.TypeAnnouncementPublished), ShouldEqual, 1)
			})

			Convey("Sending reaches the audience and then stops", func() {
				_, _ = svc.Publish(ctx, event, actor, draft.ID)

				created, appErr := svc.SendNotifications(ctx, event, draft.ID)
				So(appErr, ShouldBeNil)
				So(created, ShouldEqual, 1)
				So(notifier.users[0], ShouldResemble, []uuid.UUID{speaker})
				So(notifier.calls[0].EventName, ShouldEqual, "Conf")
				So(notifier.calls[0].Title, ShouldEqual, "CfP extended")
				So(repo.rows[draft.ID].NotificationsSent, ShouldBeTrue)

				created, appErr = svc.SendNotifications(ctx, event, draft.ID)
				So(appErr, ShouldBeNil)
				So(created, ShouldEqual, 0)
				So(notifier.calls, ShouldHaveLength, 1)
			})

			Convey("Nothing is sent before publishing", func() {
				created, appErr := svc.SendNotifications(ctx, event, draft.ID)
				So(appErr, ShouldBeNil)
				So(created, ShouldEqual, 0)
				So(notifier.calls, ShouldBeEmpty)
			})

			Convey("Turning notifications off before publishing queues nothing", func() {
				_, appErr := svc.Update(ctx, event, actor, draft.ID, &dto.AnnouncementRequest{
					Title: "CfP extended", Message: "One more week.", Audience: entity.AudienceAll,
				})
				So(appErr, ShouldBeNil)

				res, appErr := svc.Publish(ctx, event, actor, draft.ID)
				So(appErr, ShouldBeNil)
				So(res.NotificationsQueued, ShouldBeFalse)
				So(dispatcher.Tasks, ShouldBeEmpty)
			})
		})

		Convey("Another event's announcement is not found", func() {
			a, _ := svc.Create(ctx, event, actor, &dto.AnnouncementRequest{Title: "Hi", Message: "Hello"})
			other := &eventEntity.Event{Slug: "other"}
			other.ID = uuid.New()

			_, appErr := svc.Get(ctx, other.ID, a.ID)
			So(appErr.Code, ShouldEqual, errors.ErrNotFound)
			_, appErr = svc.Publish(ctx, other, actor, a.ID)
			So(appErr.Code, ShouldEqual, errors.ErrNotFound)
			So(svc.Delete(ctx, other, actor, a.ID).Code, ShouldEqual, errors.ErrNotFound)
		})

		Convey("Deleting removes the announcement", func() {
			a, _ := svc.Create(ctx, event, actor, &dto.AnnouncementRequest{Title: "Hi", Message: "Hello"})
			So(svc.Delete(ctx, event, actor, a.ID), ShouldBeNil)
			_, appErr := svc.Get(ctx, event.ID, a.ID)
			So(appErr.Code, ShouldEqual, errors.ErrNotFound)
		})
	})
}
