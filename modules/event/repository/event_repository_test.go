package repository

import (
	"context"
	"testing"

	"cfp-api/core/database"
	"cfp-api/core/testutil"
	"cfp-api/modules/event/entity"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEventRepository(t *testing.T) {
	db := testutil.SetupPostgres(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	Convey("Given a stored event", t, func() {
		event := &entity.Event{Slug: "conf-" + uuid.NewString()[:8], Name: "Conf"}
		So(repo.Create(ctx, event), ShouldBeNil)
		So(event.ID, ShouldNotEqual, uuid.Nil)

		Convey("The slug is unique", func() {
			err := repo.Create(ctx, &entity.Event{Slug: event.Slug, Name: "Again"})
			So(database.IsUniqueViolation(err, ConstraintEventSlug), ShouldBeTrue)
		})

		Convey("A user can favourite it once", func() {
			userID := uuid.New()
			So(repo.AddFavourite(ctx, event.ID, userID), ShouldBeNil)
			err := repo.AddFavourite(ctx, event.ID, userID)
			So(database.IsUniqueViolation(err, ConstraintFavouriteOnce), ShouldBeTrue)

			removed, err := repo.RemoveFavourite(ctx, event.ID, userID)
			So(err, ShouldBeNil)
			So(removed, ShouldBeTrue)
			removed, _ = repo.RemoveFavourite(ctx, event.ID, userID)
			So(removed, ShouldBeFalse)
		})

		Convey("The unreleased changes flag is stored", func() {
			So(repo.SetUnreleasedScheduleChanges(ctx, event.ID, true), ShouldBeNil)
			got, err := repo.GetBySlug(ctx, event.Slug)
			So(err, ShouldBeNil)
			So(got.HasUnreleasedScheduleChanges, ShouldBeTrue)
		})
	})
}
