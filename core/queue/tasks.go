package queue

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task type names. Every handler behind these names must be idempotent:
// asynq delivers at least once and retries failed tasks.
const (
	TypeRecalculateReviewScores = "review:recalculate_scores"
	TypeUpdateUnreleasedChanges = "schedule:update_unreleased_changes"
	TypeExportSchedule          = "schedule:export"
	TypeScheduleReleased        = "notification:schedule_released"
	TypeSnapshotMetrics         = "analytics:snapshot_metrics"
	TypeAnnouncementPublished   = "notification:announcement_published"
)

type EventPayload struct {
	EventSlug string `json:"event_slug"`
}

// UnreleasedChangesPayload forces the flag to Value when set, otherwise
// the handler recomputes it.
type UnreleasedChangesPayload struct {
	EventSlug string `json:"event_slug"`
	Value     *bool  `json:"value,omitempty"`
}

type ReleasePayload struct {
	EventSlug string `json:"event_slug"`
	Version   string `json:"version"`
}

type AnnouncementPayload struct {
	EventSlug      string    `json:"event_slug"`
	AnnouncementID uuid.UUID `json:"announcement_id"`
}

func newTask(taskType string, payload any) (*asynq.Task, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", taskType, err)
	}
	return asynq.NewTask(taskType, raw), nil
}

func NewRecalculateReviewScoresTask(eventSlug string) (*asynq.Task, error) {
	return newTask(TypeRecalculateReviewScores, EventPayload{EventSlug: eventSlug})
}

func NewUpdateUnreleasedChangesTask(eventSlug string, value *bool) (*asynq.Task, error) {
	return newTask(TypeUpdateUnreleasedChanges, UnreleasedChangesPayload{EventSlug: eventSlug, Value: value})
}

func NewExportScheduleTask(eventSlug, version string) (*asynq.Task, error) {
	return newTask(TypeExportSchedule, ReleasePayload{EventSlug: eventSlug, Version: version})
}

func NewScheduleReleasedTask(eventSlug, version string) (*asynq.Task, error) {
	return newTask(TypeScheduleReleased, ReleasePayload{EventSlug: eventSlug, Version: version})
}

func NewAnnouncementPublishedTask(eventSlug string, announcementID uuid.UUID) (*asynq.Task, error) {
	return newTask(TypeAnnouncementPublished, AnnouncementPayload{EventSlug: eventSlug, AnnouncementID: announcementID})
}

func NewSnapshotMetricsTask() *asynq.Task {
	return asynq.NewTask(TypeSnapshotMetrics, nil)
}

// Decode unmarshals a task payload. A malformed payload never succeeds on
// retry, so the error is marked with asynq.SkipRetry.
func Decode[T any](t *asynq.Task) (T, error) {
	var payload T
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("decode %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	return payload, nil
}
