package entity

import (
	"time"

	"cfp-api/core/entity"

	"github.com/google/uuid"
)

type Event struct {
	Slug                         string `db:"slug" json:"slug"`
	Name                         string `db:"name" json:"name"`
	HasUnreleasedScheduleChanges bool   `db:"has_unreleased_schedule_changes" json:"has_unreleased_schedule_changes"`
	entity.BaseEntity
}

type Favourite struct {
	ID        uuid.UUID `db:"id" json:"id"`
	EventID   uuid.UUID `db:"event_id" json:"event_id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type PaginatedEventEntity = entity.Pagination[Event]
