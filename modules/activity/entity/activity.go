package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"cfp-api/core/entity"

	"github.com/google/uuid"
)

// Action names written to the activity log.
const (
	ActionReviewPhasesSaved     = "review.phases.saved"
	ActionReviewPhaseActivated  = "review.phase.activated"
	ActionReviewCategoriesSaved = "review.categories.saved"
	ActionScheduleReleased      = "schedule.released"
	ActionScheduleSlotUpdated   = "schedule.slot.updated"
	ActionAnnouncementSaved     = "announcement.saved"
	ActionAnnouncementDeleted   = "announcement.deleted"
	ActionAnnouncementPublished = "announcement.published"
)

type Entry struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	EventID   uuid.UUID  `db:"event_id" json:"event_id"`
	ActorID   *uuid.UUID `db:"actor_id" json:"actor_id,omitempty"`
	Action    string     `db:"action_type" json:"action_type"`
	Data      JSONB      `db:"data" json:"data"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	if a == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(a)
}

func (a *JSONB) Scan(value any) error {
	if value == nil {
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, a)
}

type PaginatedEntryEntity = entity.Pagination[Entry]
