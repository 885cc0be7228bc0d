package entity

import (
	"time"

	"cfp-api/core/entity"

	"github.com/google/uuid"
)

type SlotType string

const (
	SlotTalk    SlotType = "talk"
	SlotBreak   SlotType = "break"
	SlotBlocker SlotType = "blocker"
)

func (t SlotType) Valid() bool {
	switch t {
	case SlotTalk, SlotBreak, SlotBlocker:
		return true
	}
	return false
}

type Room struct {
	EventID  uuid.UUID `db:"event_id" json:"event_id"`
	Name     string    `db:"name" json:"name"`
	Position int       `db:"position" json:"position"`
	entity.BaseEntity
}

// Schedule is the draft of an event when Version is nil, a released
// snapshot otherwise.
type Schedule struct {
	EventID   uuid.UUID  `db:"event_id" json:"event_id"`
	Version   *string    `db:"version" json:"version"`
	Comment   *string    `db:"comment" json:"comment"`
	Published *time.Time `db:"published" json:"published"`
	entity.BaseEntity
}

func (s *Schedule) IsDraft() bool {
	return s.Version == nil
}

type TalkSlot struct {
	ScheduleID   uuid.UUID  `db:"schedule_id" json:"schedule_id"`
	SubmissionID *uuid.UUID `db:"submission_id" json:"submission_id"`
	RoomID       *uuid.UUID `db:"room_id" json:"room_id"`
	Start        *time.Time `db:"start_at" json:"start"`
	End          *time.Time `db:"end_at" json:"end"`
	Description  string     `db:"description" json:"description"`
	IsVisible    bool       `db:"is_visible" json:"is_visible"`
	SlotType     SlotType   `db:"slot_type" json:"slot_type"`

	SubmissionCode  *string `db:"submission_code" json:"submission_code,omitempty"`
	SubmissionTitle *string `db:"submission_title" json:"submission_title,omitempty"`
	Duration        *int    `db:"duration_minutes" json:"-"`
	RoomName        *string `db:"room_name" json:"room_name,omitempty"`
	entity.BaseEntity
}

// HasSubmission reports whether end and description are derived from a
// submission.
func (s *TalkSlot) HasSubmission() bool {
	return s.SubmissionID != nil
}
