package repository

import (
	"context"
	"testing"

	"cfp-api/core/params"
	"cfp-api/core/testutil"
	"cfp-api/modules/announcement/entity"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAnnouncementRepository(t *testing.T) {
	db := testutil.SetupPostgres(t)
	repo := NewAnnouncementRepository(db)
	ctx := context.Background()

	Convey("Given an event with a speaker, a reviewer and an attendee", t, func() {
		var eventID, submissionID uuid.UUID
		So(db.GetContext(ctx, &eventID,
			`INSERT INTO events (slug, name) VALUES ($1, 'Conf') RETURNING id`, "conf-"+uuid.NewString()[:8]), ShouldBeNil)
		So(db.GetContext(ctx, &submissionID,
			`INSERT INTO submissions (event_id, code, title) VALUES ($1, $2, 'Talk') RETURNING id`,
			eventID, uuid.NewString()[:8]), ShouldBeNil)

		speaker, reviewer, attendee := uuid.New(), uuid.New(), uuid.New()
		So(db.ExecContext(ctx,
			`INSERT INTO submission_speakers (submission_id, user_id, name) VALUES ($1, $2, 'Sam')`, submissionID, speaker), ShouldBeNil)
		So(db.ExecContext(ctx,
			`INSERT INTO reviews (event_id, submission_id, reviewer_id) VALUES ($1, $2, $3)`, eventID, submissionID, reviewer), ShouldBeNil)
		So(db.ExecContext(ctx,
			`INSERT INTO event_favourites (event_id, user_id) VALUES ($1, $2)`, eventID, attendee), ShouldBeNil)
		// A speaker who also favourited the event is listed once.
		So(db.ExecContext(ctx,
			`INSERT INTO event_favourites (event_id, user_id) VALUES ($1, $2)`, eventID, speaker), ShouldBeNil)

		Convey("Each audience resolves to its users", func() {
			users, err := repo.Recipients(ctx, eventID, entity.AudienceSpeakers)
			So(err, ShouldBeNil)
			So(users, ShouldResemble, []uuid.UUID{speaker})

			users, _ = repo.Recipients(ctx, eventID, entity.AudienceReviewers)
			So(users, ShouldResemble, []uuid.UUID{reviewer})

			users, _ = repo.Recipients(ctx, eventID, entity.AudienceAttendees)
			So(users, ShouldHaveLength, 2)
			So(users, ShouldContain, attendee)

			users, _ = repo.Recipients(ctx, eventID, entity.AudienceAll)
			So(users, ShouldHaveLength, 3)
			So(users, ShouldContain, speaker)
			So(users, ShouldContain, reviewer)
			So(users, ShouldContain, attendee)
		})

		Convey("Given a draft", func() {
			draft := &entity.Announcement{
				EventID: eventID, Title: "Welcome", Message: "Doors open at nine.",
				Audience: entity.AudienceAll, SendNotifications: true,
			}
			So(repo.Create(ctx, draft), ShouldBeNil)
			So(draft.ID, ShouldNotEqual, uuid.Nil)

			Convey("Publishing sets published_at only the first time", func() {
				first, ok, err := repo.Publish(ctx, eventID, draft.ID)
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(first.IsPublished, ShouldBeTrue)
				So(first.PublishedAt, ShouldNotBeNil)

				again, ok, err := repo.Publish(ctx, eventID, draft.ID)
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
				So(again.PublishedAt.Equal(*first.PublishedAt), ShouldBeTrue)
			})

			Convey("Another event cannot see or delete it", func() {
				_, err := repo.Get(ctx, uuid.New(), draft.ID)
				So(err, ShouldNotBeNil)
				deleted, err := repo.Delete(ctx, uuid.New(), draft.ID)
				So(err, ShouldBeNil)
				So(deleted, ShouldBeFalse)
			})

			Convey("Updates and the sent flag are stored", func() {
				draft.Title = "Welcome back"
				draft.Audience = entity.AudienceSpeakers
				So(repo.Update(ctx, draft), ShouldBeNil)
				So(repo.MarkNotificationsSent(ctx, draft.ID), ShouldBeNil)

				stored, err := repo.Get(ctx, eventID, draft.ID)
				So(err, ShouldBeNil)
				So(stored.Title, ShouldEqual, "Welcome back")
				So(stored.Audience, ShouldEqual, entity.AudienceSpeakers)
				So(stored.NotificationsSent, ShouldBeTrue)

				page, err := repo.List(ctx, eventID, params.QueryParams{PageNumber: 1, PageSize: 10})
				So(err, ShouldBeNil)
				So(page.TotalItems, ShouldEqual, 1)
			})
		})
	})
}
