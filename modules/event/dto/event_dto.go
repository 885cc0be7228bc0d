package dto

import (
	"time"

	"cfp-api/modules/event/entity"

	"github.com/google/uuid"
)

type CreateEventRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

type EventResponse struct {
	ID                           uuid.UUID `json:"id"`
	Slug                         string    `json:"slug"`
	Name                         string    `json:"name"`
	HasUnreleasedScheduleChanges bool      `json:"has_unreleased_schedule_changes"`
	CreatedAt                    time.Time `json:"created_at"`
}

type FavouriteResponse struct {
	EventSlug   string `json:"event_slug"`
	IsFavourite bool   `json:"is_favourite"`
}

func ToEventResponse(e *entity.Event) *EventResponse {
	return &EventResponse{
		ID:                           e.ID,
		Slug:                         e.Slug,
		Name:                         e.Name,
		HasUnreleasedScheduleChanges: e.HasUnreleasedScheduleChanges,
		CreatedAt:                    e.CreatedAt,
	}
}

func ToEventResponses(events []entity.Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for i := range events {
		out = append(out, *ToEventResponse(&events[i]))
	}
	return out
}
