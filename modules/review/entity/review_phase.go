package entity

import (
	"time"

	"cfp-api/core/entity"

	"github.com/google/uuid"
)

// ReviewPhase is a review window with its own name visibility policy.
// Start is open for the first phase only, End for the last phase only.
type ReviewPhase struct {
	EventID             uuid.UUID  `db:"event_id" json:"event_id"`
	Name                string     `db:"name" json:"name"`
	Start               *time.Time `db:"start_at" json:"start"`
	End                 *time.Time `db:"end_at" json:"end"`
	Position            int        `db:"position" json:"position"`
	CanSeeSpeakerNames  bool       `db:"can_see_speaker_names" json:"can_see_speaker_names"`
	CanSeeReviewerNames bool       `db:"can_see_reviewer_names" json:"can_see_reviewer_names"`
	IsActive            bool       `db:"is_active" json:"is_active"`
	entity.BaseEntity
}
