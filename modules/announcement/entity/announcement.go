package entity

import (
	"time"

	"cfp-api/core/entity"

	"github.com/google/uuid"
)

// Audiences an announcement can target.
const (
	AudienceAll       = "all"
	AudienceSpeakers  = "speakers"
	AudienceReviewers = "reviewers"
	AudienceAttendees = "attendees"
)

// Announcement is a message from the organisers to the event's
// participants. Publishing it once may fan out notifications.
type Announcement struct {
	EventID           uuid.UUID  `db:"event_id" json:"event_id"`
	AuthorID          *uuid.UUID `db:"author_id" json:"author_id"`
	Title             string     `db:"title" json:"title"`
	Message           string     `db:"message" json:"message"`
	Audience          string     `db:"target_audience" json:"target_audience"`
	IsPublished       bool       `db:"is_published" json:"is_published"`
	PublishedAt       *time.Time `db:"published_at" json:"published_at"`
	SendNotifications bool       `db:"send_notifications" json:"send_notifications"`
	NotificationsSent bool       `db:"notifications_sent" json:"notifications_sent"`
	entity.BaseEntity
}

// ValidAudience reports whether a is one of the known audiences.
func ValidAudience(a string) bool {
	switch a {
	case AudienceAll, AudienceSpeakers, AudienceReviewers, AudienceAttendees:
		return true
	}
	return false
}

type PaginatedAnnouncementEntity = entity.Pagination[Announcement]
