package service

import (
	"context"
	"testing"

	"cfp-api/core/errors"
	"cfp-api/core/queue"
	"cfp-api/core/queue/queuetest"
	activityService "cfp-api/modules/activity/service"
	eventEntity "cfp-api/modules/event/entity"
	"cfp-api/modules/review/dto"
	"cfp-api/modules/review/entity"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"
)

func toInputs(categories []entity.ScoreCategory) []dto.CategoryInput {
	inputs := make([]dto.CategoryInput, 0, len(categories))
	for _, c := range categories {
		id := c.ID
		weight := c.Weight
		in := dto.CategoryInput{ID: &id, Name: c.Name, Weight: &weight, Required: c.Required, IsIndependent: c.IsIndependent}
		for _, s := range c.Scores {
			in.Scores = append(in.Scores, dto.ScoreInput{Value: s.Value, Label: s.Label})
		}
		inputs = append(inputs, in)
	}
	return inputs
}

func TestScoreService(t *testing.T) {
	ctx := context.Background()

	Convey("Given an event with a counted and an independent category", t, func() {
		categories := &fakeCategoryRepo{}
		reviews := newFakeReviewRepo(categories)
		dispatcher := &queuetest.Recorder{}
		recorder := &activityService.Recorder{}
		svc := NewScoreService(categories, reviews, dispatcher, recorder)

		event := &eventEntity.Event{Slug: "conf"}
		event.ID = uuid.New()
		actor := uuid.New()

		two := 2.0
		res, appErr := svc.SaveCategories(ctx, event, actor, []dto.CategoryInput{
			{Name: "Content", Weight: &two, Scores: []dto.ScoreInput{{Value: 1}, {Value: 3}}},
			{Name: "Fit", IsIndependent: true, Scores: []dto.ScoreInput{{Value: 1}}},
		})
		So(appErr, ShouldBeNil)
		So(res.RecalculationQueued, ShouldBeFalse)
		So(dispatcher.Tasks, ShouldBeEmpty)
		stored := res.Categories

		Convey("Deleting the counted category queues a recalculation", func() {
			res, appErr := svc.SaveCategories(ctx, event, actor, toInputs(stored[1:]))
			So(appErr, ShouldBeNil)
			So(res.RecalculationQueued, ShouldBeTrue)
			So(dispatcher.Count(queue.TypeRecalculateReviewScores), ShouldEqual, 1)

			payload, err := queue.Decode[queue.EventPayload](dispatcher.Tasks[0])
			So(err, ShouldBeNil)
			So(payload.EventSlug, ShouldEqual, "conf")
		})

		Convey("Deleting the independent category does not", func() {
			res, _ := svc.SaveCategories(ctx, event, actor, toInputs(stored[:1]))
			So(res.RecalculationQueued, ShouldBeFalse)
			So(dispatcher.Tasks, ShouldBeEmpty)
		})

		Convey("Changing a weight queues a recalculation", func() {
			inputs := toInputs(stored)
			five := 5.0
			inputs[0].Weight = &five
			res, _ := svc.SaveCategories(ctx, event, actor, inputs)
			So(res.RecalculationQueued, ShouldBeTrue)
		})

		Convey("An invalid list changes nothing", func() {
			inputs := toInputs(stored)
			inputs[0].Scores = nil
			_, appErr := svc.SaveCategories(ctx, event, actor, inputs)
			So(appErr.Code, ShouldEqual, errors.ErrValidationFailed)
			So(categories.categories, ShouldHaveLength, 2)
		})

		Convey("Recalculation rewrites scores and is idempotent", func() {
			content, fit := stored[0], stored[1]
			review := &entity.Review{
				EventID:      event.ID,
				SubmissionID: uuid.New(),
				ReviewerID:   uuid.New(),
				CategoryScores: []entity.CategoryScore{
					{CategoryID: content.ID, ScoreID: content.Scores[1].ID, Value: 3},
					{CategoryID: fit.ID, ScoreID: fit.Scores[0].ID, Value: 1},
				},
			}
			So(reviews.Upsert(ctx, review, AggregateScore), ShouldBeNil)
			stale := 99.0
			reviews.reviews[review.ID].Score = &stale

			updated, appErr := svc.RecalculateAll(ctx, event.ID)
			So(appErr, ShouldBeNil)
			So(updated, ShouldEqual, 1)
			So(*reviews.reviews[review.ID].Score, ShouldAlmostEqual, 3.0)

			updated, _ = svc.RecalculateAll(ctx, event.ID)
			So(updated, ShouldEqual, 0)
			So(*reviews.reviews[review.ID].Score, ShouldAlmostEqual, 3.0)
		})

		Convey("Recalculation scores the picks stored when it runs", func() {
			content := stored[0]
			review := &entity.Review{
				EventID:      event.ID,
				SubmissionID: uuid.New(),
				ReviewerID:   uuid.New(),
				CategoryScores: []entity.CategoryScore{
					{CategoryID: content.ID, ScoreID: content.Scores[0].ID, Value: 1},
				},
			}
			So(reviews.Upsert(ctx, review, AggregateScore), ShouldBeNil)
			So(*reviews.reviews[review.ID].Score, ShouldAlmostEqual, 1.0)

			// The reviewer resubmits with a higher pick just before the run.
			reviews.beforeWrite = func() {
				reviews.beforeWrite = nil
				resubmitted := *review
				resubmitted.CategoryScores = []entity.CategoryScore{
					{CategoryID: content.ID, ScoreID: content.Scores[1].ID, Value: 3},
				}
				So(reviews.Upsert(ctx, &resubmitted, AggregateScore), ShouldBeNil)
			}

			_, appErr := svc.RecalculateAll(ctx, event.ID)
			So(appErr, ShouldBeNil)
			So(*reviews.reviews[review.ID].Score, ShouldAlmostEqual, 3.0)
		})
	})
}
