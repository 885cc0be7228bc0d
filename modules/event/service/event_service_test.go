package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"cfp-api/core/errors"
	"cfp-api/core/params"
	"cfp-api/modules/event/dto"
	"cfp-api/modules/event/entity"
	"cfp-api/modules/event/repository"

	"github.com/google/uuid"
	"github.com/lib/pq"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeEventRepo struct {
	events     map[string]*entity.Event
	favourites map[[2]uuid.UUID]bool
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: map[string]*entity.Event{}, favourites: map[[2]uuid.UUID]bool{}}
}

func (f *fakeEventRepo) Create(_ context.Context, event *entity.Event) error {
	if _, taken := f.events[event.Slug]; taken {
		return &pq.Error{Code: "23505", Constraint: repository.ConstraintEventSlug}
	}
	event.ID = uuid.New()
	event.CreatedAt = time.Now()
	stored := *event
	f.events[event.Slug] = &stored
	return nil
}

func (f *fakeEventRepo) GetBySlug(_ context.Context, slug string) (*entity.Event, error) {
	event, ok := f.events[slug]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *event
	return &copied, nil
}

func (f *fakeEventRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Event, error) {
	for _, event := range f.events {
		if event.ID == id {
			copied := *event
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeEventRepo) List(_ context.Context, p params.QueryParams) (*entity.PaginatedEventEntity, error) {
	items := []entity.Event{}
	for _, event := range f.events {
		items = append(items, *event)
	}
	return &entity.PaginatedEventEntity{Items: items, TotalItems: len(items), PageNumber: p.PageNumber, PageSize: p.PageSize}, nil
}

func (f *fakeEventRepo) ListAll(_ context.Context) ([]entity.Event, error) {
	items := []entity.Event{}
	for _, event := range f.events {
		items = append(items, *event)
	}
	return items, nil
}

func (f *fakeEventRepo) SetUnreleasedScheduleChanges(_ context.Context, eventID uuid.UUID, value bool) error {
	for _, event := range f.events {
		if event.ID == eventID {
			event.HasUnreleasedScheduleChanges = value
		}
	}
	return nil
}

func (f *fakeEventRepo) AddFavourite(_ context.Context, eventID, userID uuid.UUID) error {
	key := [2]uuid.UUID{eventID, userID}
	if f.favourites[key] {
		return &pq.Error{Code: "23505", Constraint: repository.ConstraintFavouriteOnce}
	}
	f.favourites[key] = true
	return nil
}

func (f *fakeEventRepo) RemoveFavourite(_ context.Context, eventID, userID uuid.UUID) (bool, error) {
	key := [2]uuid.UUID{eventID, userID}
	if !f.favourites[key] {
		return false, nil
	}
	delete(f.favourites, key)
	return true, nil
}

func (f *fakeEventRepo) IsFavourite(_ context.Context, eventID, userID uuid.UUID) (bool, error) {
	return f.favourites[[2]uuid.UUID{eventID, userID}], nil
}

func (f *fakeEventRepo) ListFavourites(_ context.Context, userID uuid.UUID) ([]entity.Event, error) {
	items := []entity.Event{}
	for _, event := range f.events {
		if f.favourites[[2]uuid.UUID{event.ID, userID}] {
			items = append(items, *event)
		}
	}
	return items, nil
}

func TestCreateEvent(t *testing.T) {
	Convey("Given an event service", t, func() {
		ctx := context.Background()
		svc := NewEventService(newFakeEventRepo())

		Convey("The slug is derived from the name", func() {
			event, appErr := svc.CreateEvent(ctx, &dto.CreateEventRequest{Name: "GopherCon EU 2026"})
			So(appErr, ShouldBeNil)
			So(event.Slug, ShouldEqual, "gophercon-eu-2026")
		})

		Convey("A taken derived slug gets a suffix", func() {
			first, _ := svc.CreateEvent(ctx, &dto.CreateEventRequest{Name: "DjangoCon"})
			second, appErr := svc.CreateEvent(ctx, &dto.CreateEventRequest{Name: "DjangoCon"})
			So(appErr, ShouldBeNil)
			So(second.Slug, ShouldNotEqual, first.Slug)
			So(second.Slug, ShouldStartWith, "djangocon-")
		})

		Convey("A taken explicit slug is a conflict", func() {
			_, _ = svc.CreateEvent(ctx, &dto.CreateEventRequest{Name: "One", Slug: "conf"})
			_, appErr := svc.CreateEvent(ctx, &dto.CreateEventRequest{Name: "Two", Slug: "conf"})
			So(appErr, ShouldNotBeNil)
			So(appErr.Code, ShouldEqual, errors.ErrAlreadyExists)
		})

		Convey("A blank name fails validation", func() {
			_, appErr := svc.CreateEvent(ctx, &dto.CreateEventRequest{Name: "  "})
			So(appErr.Code, ShouldEqual, errors.ErrValidationFailed)
		})

		Convey("Unknown slugs resolve to not found", func() {
			_, appErr := svc.Resolve(ctx, "nope")
			So(appErr.Code, ShouldEqual, errors.ErrNotFound)
		})
	})
}

func TestFavourites(t *testing.T) {
	Convey("Given an existing event", t, func() {
		ctx := context.Background()
		svc := NewEventService(newFakeEventRepo())
		event, _ := svc.CreateEvent(ctx, &dto.CreateEventRequest{Name: "PyCon"})
		userID := uuid.New()

		Convey("Adding twice is a conflict", func() {
			res, appErr := svc.AddFavourite(ctx, event.Slug, userID)
			So(appErr, ShouldBeNil)
			So(res.IsFavourite, ShouldBeTrue)

			_, appErr = svc.AddFavourite(ctx, event.Slug, userID)
			So(appErr, ShouldNotBeNil)
			So(appErr.Code, ShouldEqual, errors.ErrAlreadyExists)
		})

		Convey("Removing an absent favourite is not found", func() {
			_, appErr := svc.RemoveFavourite(ctx, event.Slug, userID)
			So(appErr.Code, ShouldEqual, errors.ErrNotFound)
		})

		Convey("Check and list follow add and remove", func() {
			_, _ = svc.AddFavourite(ctx, event.Slug, userID)
			res, _ := svc.IsFavourite(ctx, event.Slug, userID)
			So(res.IsFavourite, ShouldBeTrue)

			list, _ := svc.ListFavourites(ctx, userID)
			So(list, ShouldHaveLength, 1)

			_, appErr := svc.RemoveFavourite(ctx, event.Slug, userID)
			So(appErr, ShouldBeNil)
			res, _ = svc.IsFavourite(ctx, event.Slug, userID)
			So(res.IsFavourite, ShouldBeFalse)
		})
	})
}
