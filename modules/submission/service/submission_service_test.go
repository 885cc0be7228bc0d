package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"cfp-api/core/errors"
	"cfp-api/core/params"
	"cfp-api/core/queue"
	"cfp-api/core/queue/queuetest"
	eventEntity "cfp-api/modules/event/entity"
	"cfp-api/modules/submission/dto"
	"cfp-api/modules/submission/entity"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeSubmissionRepo struct {
	byCode     map[string]*entity.Submission
	draftSlots map[uuid.UUID]int
	propagated int
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{byCode: map[string]*entity.Submission{}, draftSlots: map[uuid.UUID]int{}}
}

func (f *fakeSubmissionRepo) Create(_ context.Context, s *entity.Submission) error {
	s.ID = uuid.New()
	stored := *s
	f.byCode[s.Code] = &stored
	return nil
}

func (f *fakeSubmissionRepo) GetByCode(_ context.Context, eventID uuid.UUID, code string) (*entity.Submission, error) {
	s, ok := f.byCode[code]
	if !ok || s.EventID != eventID {
		return nil, sql.ErrNoRows
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSubmissionRepo) List(_ context.Context, eventID uuid.UUID, state string, p params.QueryParams) (*entity.PaginatedSubmissionEntity, error) {
	items := []entity.Submission{}
	for _, s := range f.byCode {
		if s.EventID == eventID && (state == "" || string(s.State) == state) {
			items = append(items, *s)
		}
	}
	return &entity.PaginatedSubmissionEntity{Items: items, TotalItems: len(items), PageNumber: p.PageNumber, PageSize: p.PageSize}, nil
}

func (f *fakeSubmissionRepo) SpeakersBySubmission(_ context.Context, ids []uuid.UUID) (map[uuid.UUID][]entity.Speaker, error) {
	out := map[uuid.UUID][]entity.Speaker{}
	for _, s := range f.byCode {
		for _, id := range ids {
			if s.ID == id {
				out[id] = s.Speakers
			}
		}
	}
	return out, nil
}

func (f *fakeSubmissionRepo) UpdateContent(_ context.Context, s *entity.Submission, propagate bool) (int64, error) {
	stored := *s
	f.byCode[s.Code] = &stored
	if !propagate {
		return 0, nil
	}
	f.propagated++
	return int64(f.draftSlots[s.ID]), nil
}

func TestSubmissionService(t *testing.T) {
	Convey("Given a submission service", t, func() {
		ctx := context.Background()
		repo := newFakeSubmissionRepo()
		rec := &queuetest.Recorder{}
		svc := NewSubmissionService(repo, rec)
		event := &eventEntity.Event{Slug: "demo-conf"}
		event.ID = uuid.New()
		author := Author{UserID: uuid.New(), Name: "Ada"}

		Convey("Creating assigns a code and the author as speaker", func() {
			res, appErr := svc.CreateSubmission(ctx, event, author, &dto.CreateSubmissionRequest{Title: "Generics in practice"})
			So(appErr, ShouldBeNil)
			So(res.Code, ShouldHaveLength, 6)
			So(res.DurationMinutes, ShouldEqual, defaultDurationMinutes)
			So(res.State, ShouldEqual, "submitted")
			So(res.Speakers, ShouldHaveLength, 1)
			So(res.Speakers[0].Name, ShouldEqual, "Ada")
		})

		Convey("A missing title fails validation", func() {
			_, appErr := svc.CreateSubmission(ctx, event, author, &dto.CreateSubmissionRequest{})
			So(appErr.Code, ShouldEqual, errors.ErrValidationFailed)
		})

		Convey("Given an existing submission", func() {
			res, _ := svc.CreateSubmission(ctx, event, author, &dto.CreateSubmissionRequest{Title: "Talk", DurationMinutes: 30})
			repo.draftSlots[res.ID] = 1

			Convey("A duration change rewrites draft slots and queues a change check", func() {
				duration := 45
				updated, appErr := svc.UpdateSubmission(ctx, event, res.Code, &dto.UpdateSubmissionRequest{DurationMinutes: &duration})
				So(appErr, ShouldBeNil)
				So(updated.DurationMinutes, ShouldEqual, 45)
				So(repo.propagated, ShouldEqual, 1)
				So(rec.Types(), ShouldResemble, []string{queue.TypeUpdateUnreleasedChanges})
			})

			Convey("A title change leaves slots alone", func() {
				title := "Better title"
				_, appErr := svc.UpdateSubmission(ctx, event, res.Code, &dto.UpdateSubmissionRequest{Title: &title})
				So(appErr, ShouldBeNil)
				So(repo.propagated, ShouldEqual, 0)
				So(rec.Tasks, ShouldBeEmpty)
			})

			Convey("Unknown states are rejected", func() {
				state := "maybe"
				_, appErr := svc.UpdateSubmission(ctx, event, res.Code, &dto.UpdateSubmissionRequest{State: &state})
				So(appErr.Code, ShouldEqual, errors.ErrValidationFailed)
			})

			Convey("Codes are matched case-insensitively", func() {
				found, appErr := svc.FindByCode(ctx, event.ID, " "+strings.ToLower(res.Code)+" ")
				So(appErr, ShouldBeNil)
				So(found.ID, ShouldEqual, res.ID)
			})
		})

		Convey("Unknown codes are not found", func() {
			_, appErr := svc.GetSubmission(ctx, event.ID, "ZZZZZZ")
			So(appErr.Code, ShouldEqual, errors.ErrNotFound)
		})
	})
}
