package entity

import (
	"cfp-api/core/entity"

	"github.com/google/uuid"
)

// ScoreCategory is a scoring dimension. Independent categories are shown
// to reviewers but never count towards the aggregate score.
type ScoreCategory struct {
	EventID       uuid.UUID `db:"event_id" json:"event_id"`
	Name          string    `db:"name" json:"name"`
	Weight        float64   `db:"weight" json:"weight"`
	Required      bool      `db:"required" json:"required"`
	IsIndependent bool      `db:"is_independent" json:"is_independent"`
	Position      int       `db:"position" json:"position"`
	Scores        []Score   `db:"-" json:"scores"`
	entity.BaseEntity
}

// Score is one value on a category's scale.
type Score struct {
	ID         uuid.UUID `db:"id" json:"id"`
	CategoryID uuid.UUID `db:"category_id" json:"category_id"`
	Value      float64   `db:"value" json:"value"`
	Label      string    `db:"label" json:"label"`
}

// ScoreByID finds a scale value of the category.
func (c *ScoreCategory) ScoreByID(id uuid.UUID) (Score, bool) {
	for _, s := range c.Scores {
		if s.ID == id {
			return s, true
		}
	}
	return Score{}, false
}
