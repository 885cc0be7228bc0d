package dto

import (
	"time"

	"cfp-api/modules/review/entity"

	"github.com/google/uuid"
)

// PhaseInput is one entry of the complete, ordered phase list. Existing
// phases carry their ID; existing phases left out are deleted.
type PhaseInput struct {
	ID                  *uuid.UUID `json:"id,omitempty"`
	Name                string     `json:"name"`
	Start               *time.Time `json:"start"`
	End                 *time.Time `json:"end"`
	CanSeeSpeakerNames  *bool      `json:"can_see_speaker_names,omitempty"`
	CanSeeReviewerNames *bool      `json:"can_see_reviewer_names,omitempty"`
}

type SavePhasesRequest struct {
	Phases []PhaseInput `json:"phases"`
}

type ScoreInput struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// CategoryInput is one entry of the complete category list. Categories
// left out are deleted together with their scale.
type CategoryInput struct {
	ID            *uuid.UUID   `json:"id,omitempty"`
	Name          string       `json:"name"`
	Weight        *float64     `json:"weight,omitempty"`
	Required      bool         `json:"required"`
	IsIndependent bool         `json:"is_independent"`
	Scores        []ScoreInput `json:"scores"`
}

type SaveCategoriesRequest struct {
	Categories []CategoryInput `json:"categories"`
}

type SaveCategoriesResponse struct {
	Categories          []entity.ScoreCategory `json:"categories"`
	RecalculationQueued bool                   `json:"recalculation_queued"`
}

// SubmitReviewRequest maps category IDs to the chosen score IDs.
type SubmitReviewRequest struct {
	Text   string                  `json:"text"`
	Scores map[uuid.UUID]uuid.UUID `json:"scores"`
}

type ReviewResponse struct {
	ID                 uuid.UUID              `json:"id"`
	SubmissionCode     string                 `json:"submission_code"`
	SubmissionTitle    string                 `json:"submission_title"`
	Speakers           []string               `json:"speakers"`
	SpeakerNamesHidden bool                   `json:"speaker_names_hidden"`
	ReviewerID         *uuid.UUID             `json:"reviewer_id"`
	ReviewerName       string                 `json:"reviewer_name"`
	ReviewerHidden     bool                   `json:"reviewer_hidden"`
	IsOwn              bool                   `json:"is_own"`
	Text               string                 `json:"text"`
	Score              *float64               `json:"score"`
	CategoryScores     []entity.CategoryScore `json:"category_scores"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
}

type RecalculateResponse struct {
	Updated int `json:"updated"`
}
