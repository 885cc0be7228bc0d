package entity

import (
	"cfp-api/core/entity"

	"github.com/google/uuid"
)

type SubmissionState string

const (
	StateSubmitted SubmissionState = "submitted"
	StateAccepted  SubmissionState = "accepted"
	StateRejected  SubmissionState = "rejected"
	StateConfirmed SubmissionState = "confirmed"
	StateWithdrawn SubmissionState = "withdrawn"
)

func (s SubmissionState) Valid() bool {
	switch s {
	case StateSubmitted, StateAccepted, StateRejected, StateConfirmed, StateWithdrawn:
		return true
	}
	return false
}

type Submission struct {
	EventID         uuid.UUID       `db:"event_id" json:"event_id"`
	Code            string          `db:"code" json:"code"`
	Title           string          `db:"title" json:"title"`
	Abstract        string          `db:"abstract" json:"abstract"`
	DurationMinutes int             `db:"duration_minutes" json:"duration_minutes"`
	State           SubmissionState `db:"state" json:"state"`
	Speakers        []Speaker       `db:"-" json:"speakers"`
	entity.BaseEntity
}

type Speaker struct {
	SubmissionID uuid.UUID `db:"submission_id" json:"-"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	Name         string    `db:"name" json:"name"`
}

type PaginatedSubmissionEntity = entity.Pagination[Submission]
