package dto

import (
	"github.com/google/uuid"
)

type MarkAsReadRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

type UnreadCountResponse struct {
	Count int `json:"count"`
}

// Recipient is a speaker to notify about a released schedule.
type Recipient struct {
	UserID         uuid.UUID
	SubmissionCode string
}

// Announcement is the part of an organiser announcement a notification
// carries.
type Announcement struct {
	ID        uuid.UUID
	EventName string
	Title     string
	Message   string
}
