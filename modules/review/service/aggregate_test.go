package service

import (
	"testing"

	"cfp-api/modules/review/entity"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"
)

func category(weight float64, independent bool) entity.ScoreCategory {
	c := entity.ScoreCategory{Weight: weight, IsIndependent: independent}
	c.ID = uuid.New()
	return c
}

func TestAggregateScore(t *testing.T) {
	Convey("Given weighted categories", t, func() {
		content := category(2, false)
		delivery := category(1, false)
		fit := category(5, true)
		categories := []entity.ScoreCategory{content, delivery, fit}

		Convey("The aggregate is the weighted mean", func() {
			score := AggregateScore(map[uuid.UUID]float64{content.ID: 3, delivery.ID: 0}, categories)
			So(score, ShouldNotBeNil)
			So(*score, ShouldAlmostEqual, 2.0)
		})

		Convey("Missing categories leave both sums", func() {
			score := AggregateScore(map[uuid.UUID]float64{delivery.ID: 4}, categories)
			So(*score, ShouldAlmostEqual, 4.0)
		})

		Convey("Independent categories never count", func() {
			with := AggregateScore(map[uuid.UUID]float64{content.ID: 1, delivery.ID: 2, fit.ID: 100}, categories)
			without := AggregateScore(map[uuid.UUID]float64{content.ID: 1, delivery.ID: 2}, categories)
			So(*with, ShouldAlmostEqual, *without)
		})

		Convey("Nothing recorded gives no score", func() {
			So(AggregateScore(map[uuid.UUID]float64{fit.ID: 3}, categories), ShouldBeNil)
			So(AggregateScore(nil, categories), ShouldBeNil)
		})
	})

	Convey("Zero weights give no score", t, func() {
		zero := category(0, false)
		So(AggregateScore(map[uuid.UUID]float64{zero.ID: 3}, []entity.ScoreCategory{zero}), ShouldBeNil)
	})
}
