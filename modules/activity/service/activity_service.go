package service

import (
	"context"

	"cfp-api/core/errors"
	"cfp-api/core/logger"
	"cfp-api/core/params"
	"cfp-api/modules/activity/entity"
	"cfp-api/modules/activity/repository"

	"github.com/google/uuid"
)

// Publisher records domain actions. Callers publish after their own
// transaction has committed; a failed write is logged and never undoes
// the action.
type Publisher interface {
	Publish(ctx context.Context, entry entity.Entry)
}

type ActivityServiceInterface interface {
	Publisher
	ListActivity(ctx context.Context, eventID uuid.UUID, params params.QueryParams) (*entity.PaginatedEntryEntity, *errors.AppError)
}

type ActivityService struct {
	repo repository.ActivityRepositoryInterface
}

func NewActivityService(repo repository.ActivityRepositoryInterface) ActivityServiceInterface {
	return &ActivityService{repo: repo}
}

func (s *ActivityService) Publish(ctx context.Context, entry entity.Entry) {
	if err := s.repo.Create(ctx, &entry); err != nil {
		logger.Warn("ActivityService:Publish", "action", entry.Action, "event_id", entry.EventID, "error", err)
		return
	}
	logger.Debug("ActivityService:Publish", "action", entry.Action, "event_id", entry.EventID)
}

func (s *ActivityService) ListActivity(ctx context.Context, eventID uuid.UUID, params params.QueryParams) (*entity.PaginatedEntryEntity, *errors.AppError) {
	result, err := s.repo.ListByEvent(ctx, eventID, params)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to list activity", err)
	}
	return result, nil
}

// Recorder is an in-memory Publisher.
type Recorder struct {
	Entries []entity.Entry
}

func (r *Recorder) Publish(_ context.Context, entry entity.Entry) {
	r.Entries = append(r.Entries, entry)
}

// Actions lists the recorded action names in order.
func (r *Recorder) Actions() []string {
	out := make([]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		out = append(out, e.Action)
	}
	return out
}
