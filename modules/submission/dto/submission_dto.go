package dto

import (
	"time"

	"cfp-api/modules/submission/entity"

	"github.com/google/uuid"
)

type CreateSubmissionRequest struct {
	Title           string           `json:"title"`
	Abstract        string           `json:"abstract"`
	DurationMinutes int              `json:"duration_minutes"`
	Speakers        []SpeakerRequest `json:"speakers"`
}

// SpeakerRequest adds a co-speaker. The submitting user is always a speaker.
type SpeakerRequest struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
}

type UpdateSubmissionRequest struct {
	Title           *string `json:"title,omitempty"`
	Abstract        *string `json:"abstract,omitempty"`
	DurationMinutes *int    `json:"duration_minutes,omitempty"`
	State           *string `json:"state,omitempty"`
}

type SubmissionResponse struct {
	ID              uuid.UUID        `json:"id"`
	Code            string           `json:"code"`
	Title           string           `json:"title"`
	Abstract        string           `json:"abstract"`
	DurationMinutes int              `json:"duration_minutes"`
	State           string           `json:"state"`
	Speakers        []entity.Speaker `json:"speakers"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func ToSubmissionResponse(s *entity.Submission) *SubmissionResponse {
	speakers := s.Speakers
	if speakers == nil {
		speakers = []entity.Speaker{}
	}
	return &SubmissionResponse{
		ID:              s.ID,
		Code:            s.Code,
		Title:           s.Title,
		Abstract:        s.Abstract,
		DurationMinutes: s.DurationMinutes,
		State:           string(s.State),
		Speakers:        speakers,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}
