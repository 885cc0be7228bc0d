package entity

import (
	"time"

	"cfp-api/core/entity"

	"github.com/google/uuid"
)

// EventMetric is one day's snapshot of an event's call for papers.
type EventMetric struct {
	EventID             uuid.UUID `db:"event_id" json:"event_id"`
	Date                time.Time `db:"date" json:"date"`
	TotalSubmissions    int       `db:"total_submissions" json:"total_submissions"`
	AcceptedSubmissions int       `db:"accepted_submissions" json:"accepted_submissions"`
	RejectedSubmissions int       `db:"rejected_submissions" json:"rejected_submissions"`
	PendingSubmissions  int       `db:"pending_submissions" json:"pending_submissions"`
	TotalReviews        int       `db:"total_reviews" json:"total_reviews"`
	AvgReviewScore      *float64  `db:"avg_review_score" json:"avg_review_score"`
	entity.BaseEntity
}
