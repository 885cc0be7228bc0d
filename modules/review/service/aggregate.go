package service

import (
	"cfp-api/modules/review/entity"

	"github.com/google/uuid"
)

// AggregateScore computes Σ(value·weight) / Σ(weight) over the
// non-independent categories that have a recorded value. Categories
// without a value drop out of both sums. It returns nil when nothing
// counts.
func AggregateScore(values map[uuid.UUID]float64, categories []entity.ScoreCategory) *float64 {
	var weighted, totalWeight float64
	for _, category := range categories {
		if category.IsIndependent {
			continue
		}
		value, ok := values[category.ID]
		if !ok {
			continue
		}
		weighted += value * category.Weight
		totalWeight += category.Weight
	}
	if totalWeight == 0 {
		return nil
	}
	score := weighted / totalWeight
	return &score
}
