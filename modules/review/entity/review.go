package entity

import (
	"cfp-api/core/entity"

	"github.com/google/uuid"
)

type Review struct {
	EventID         uuid.UUID       `db:"event_id" json:"event_id"`
	SubmissionID    uuid.UUID       `db:"submission_id" json:"submission_id"`
	SubmissionCode  string          `db:"submission_code" json:"submission_code"`
	SubmissionTitle string          `db:"submission_title" json:"submission_title"`
	ReviewerID      uuid.UUID       `db:"reviewer_id" json:"reviewer_id"`
	ReviewerName    string          `db:"reviewer_name" json:"reviewer_name"`
	Text            string          `db:"text" json:"text"`
	Score           *float64        `db:"score" json:"score"`
	CategoryScores  []CategoryScore `db:"-" json:"category_scores"`
	entity.BaseEntity
}

// CategoryScore is the scale value a review picked for one category.
type CategoryScore struct {
	ReviewID   uuid.UUID `db:"review_id" json:"-"`
	CategoryID uuid.UUID `db:"category_id" json:"category_id"`
	ScoreID    uuid.UUID `db:"score_id" json:"score_id"`
	Value      float64   `db:"value" json:"value"`
}
