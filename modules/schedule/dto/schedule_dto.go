package dto

import (
	"time"

	"cfp-api/modules/schedule/entity"

	"github.com/google/uuid"
)

type CreateRoomRequest struct {
	Name     string `json:"name"`
	Position *int   `json:"position,omitempty"`
}

type ReleaseRequest struct {
	Version string `json:"version"`
	Comment string `json:"comment"`
}

// UpdateSlotRequest patches a draft slot. End and description cannot be
// set while a submission is attached; ClearSubmission detaches it first.
type UpdateSlotRequest struct {
	Start           *time.Time `json:"start,omitempty"`
	End             *time.Time `json:"end,omitempty"`
	Description     *string    `json:"description,omitempty"`
	RoomID          *uuid.UUID `json:"room_id,omitempty"`
	IsVisible       *bool      `json:"is_visible,omitempty"`
	ClearSubmission bool       `json:"clear_submission"`
	ClearRoom       bool       `json:"clear_room"`
}

type ScheduleSubmissionRequest struct {
	SubmissionCode string     `json:"submission_code"`
	RoomID         *uuid.UUID `json:"room_id"`
	Start          *time.Time `json:"start"`
	IsVisible      *bool      `json:"is_visible,omitempty"`
}

type FreeSlotsRequest struct {
	RoomID          uuid.UUID
	From            *time.Time
	To              *time.Time
	DurationMinutes int
}

type CreateBreakRequest struct {
	RoomID      *uuid.UUID      `json:"room_id"`
	Start       *time.Time      `json:"start"`
	End         *time.Time      `json:"end"`
	Description string          `json:"description"`
	SlotType    entity.SlotType `json:"slot_type"`
	IsVisible   *bool           `json:"is_visible,omitempty"`
}

type ScheduleResponse struct {
	ID        uuid.UUID         `json:"id"`
	Version   *string           `json:"version"`
	Comment   *string           `json:"comment"`
	Published *time.Time        `json:"published"`
	IsDraft   bool              `json:"is_draft"`
	Slots     []entity.TalkSlot `json:"slots"`
}

// UnreleasedChangesResponse reports the event's flag after a recompute.
type UnreleasedChangesResponse struct {
	HasUnreleasedChanges bool `json:"has_unreleased_changes"`
}

func ToScheduleResponse(schedule *entity.Schedule, slots []entity.TalkSlot) *ScheduleResponse {
	if slots == nil {
		slots = []entity.TalkSlot{}
	}
	return &ScheduleResponse{
		ID:        schedule.ID,
		Version:   schedule.Version,
		Comment:   schedule.Comment,
		Published: schedule.Published,
		IsDraft:   schedule.IsDraft(),
		Slots:     slots,
	}
}
