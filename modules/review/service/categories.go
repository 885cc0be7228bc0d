package service

import (
	"fmt"
	"strings"

	"cfp-api/core/errors"
	"cfp-api/modules/review/dto"
	"cfp-api/modules/review/entity"

	"github.com/google/uuid"
)

const defaultCategoryWeight = 1.0

// BuildCategories validates the submitted list and turns it into
// entities positioned in list order. Nothing is stored on failure.
func BuildCategories(eventID uuid.UUID, inputs []dto.CategoryInput) ([]entity.ScoreCategory, []errors.Violation) {
	var violations []errors.Violation
	categories := make([]entity.ScoreCategory, 0, len(inputs))
	seenIDs := map[uuid.UUID]bool{}

	for i, in := range inputs {
		field := fmt.Sprintf("categories[%d]", i)
		name := strings.TrimSpace(in.Name)
		if name == "" {
			violations = append(violations, errors.Violation{Field: field + ".name", Message: "This field is required."})
		}

		weight := defaultCategoryWeight
		if in.Weight != nil {
			weight = *in.Weight
		}
		if weight < 0 {
			violations = append(violations, errors.Violation{Field: field + ".weight", Message: "Weight must not be negative."})
		}

		if len(in.Scores) == 0 {
			violations = append(violations, errors.Violation{Field: field + ".scores", Message: "A category needs at least one score."})
		}
		seenValues := map[float64]bool{}
		scores := make([]entity.Score, 0, len(in.Scores))
		for _, s := range in.Scores {
			if seenValues[s.Value] {
				violations = append(violations, errors.Violation{
					Field:   field + ".scores",
					Message: fmt.Sprintf("The score value %g is used twice.", s.Value),
				})
				continue
			}
			seenValues[s.Value] = true
			scores = append(scores, entity.Score{Value: s.Value, Label: strings.TrimSpace(s.Label)})
		}

		category := entity.ScoreCategory{
			EventID:       eventID,
			Name:          name,
			Weight:        weight,
			Required:      in.Required,
			IsIndependent: in.IsIndependent,
			Position:      i,
			Scores:        scores,
		}
		if in.ID != nil {
			if seenIDs[*in.ID] {
				violations = append(violations, errors.Violation{Field: field + ".id", Message: "This category is listed twice."})
			}
			seenIDs[*in.ID] = true
			category.ID = *in.ID
		}
		categories = append(categories, category)
	}
	return categories, violations
}

// WeightsChanged reports whether saving next over previous can change any
// aggregate score: a kept category changed its weight or independence, a
// counted category lost scale values, or a counted category was removed.
func WeightsChanged(previous, next []entity.ScoreCategory) bool {
	byID := make(map[uuid.UUID]entity.ScoreCategory, len(next))
	for _, c := range next {
		if c.ID != uuid.Nil {
			byID[c.ID] = c
		}
	}

	for _, old := range previous {
		updated, kept := byID[old.ID]
		if !kept {
			if !old.IsIndependent {
				return true
			}
			continue
		}
		if updated.IsIndependent != old.IsIndependent {
			return true
		}
		if old.IsIndependent {
			continue
		}
		if updated.Weight != old.Weight {
			return true
		}
		if lostValues(old.Scores, updated.Scores) {
			return true
		}
	}
	return false
}

func lostValues(old, updated []entity.Score) bool {
	values := make(map[float64]bool, len(updated))
	for _, s := range updated {
		values[s.Value] = true
	}
	for _, s := range old {
		if !values[s.Value] {
			return true
		}
	}
	return false
}
