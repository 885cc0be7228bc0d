package service

import (
	"context"
	stderrors "errors"

	"cfp-api/core/errors"
	"cfp-api/core/logger"
	"cfp-api/core/metrics"
	"cfp-api/core/queue"
	activityEntity "cfp-api/modules/activity/entity"
	activityService "cfp-api/modules/activity/service"
	eventEntity "cfp-api/modules/event/entity"
	"cfp-api/modules/review/dto"
	"cfp-api/modules/review/entity"
	"cfp-api/modules/review/repository"

	"github.com/google/uuid"
)

type ScoreServiceInterface interface {
	ListCategories(ctx context.Context, eventID uuid.UUID) ([]entity.ScoreCategory, *errors.AppError)
	SaveCategories(ctx context.Context, event *eventEntity.Event, actorID uuid.UUID, inputs []dto.CategoryInput) (*dto.SaveCategoriesResponse, *errors.AppError)
	// RecalculateAll rewrites the aggregate score of every review of the
	// event from stored picks and weights. Running it twice is harmless.
	RecalculateAll(ctx context.Context, eventID uuid.UUID) (int, *errors.AppError)
}

type ScoreService struct {
	categories repository.CategoryRepositoryInterface
	reviews    repository.ReviewRepositoryInterface
	dispatcher queue.Dispatcher
	activity   activityService.Publisher
}

func NewScoreService(
	categories repository.CategoryRepositoryInterface,
	reviews repository.ReviewRepositoryInterface,
	dispatcher queue.Dispatcher,
	activity activityService.Publisher,
) ScoreServiceInterface {
	return &ScoreService{
		categories: categories,
		reviews:    reviews,
		dispatcher: dispatcher,
		activity:   activity,
	}
}

func (s *ScoreService) ListCategories(ctx context.Context, eventID uuid.UUID) ([]entity.ScoreCategory, *errors.AppError) {
	categories, err := s.categories.ListCategories(ctx, eventID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to list score categories", err)
	}
	return categories, nil
}

func (s *ScoreService) SaveCategories(ctx context.Context, event *eventEntity.Event, actorID uuid.UUID, inputs []dto.CategoryInput) (*dto.SaveCategoriesResponse, *errors.AppError) {
	categories, violations := BuildCategories(event.ID, inputs)
	if len(violations) > 0 {
		return nil, errors.NewValidationError("Invalid score categories", violations...)
	}

	before, after, err := s.categories.SaveCategories(ctx, event.ID, categories)
	if err != nil {
		if stderrors.Is(err, repository.ErrUnknownCategory) {
			return nil, errors.NewAppError(errors.ErrNotFound, "Score category not found", err)
		}
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to save score categories", err)
	}

	changed := WeightsChanged(before, categories)
	if changed {
		task, err := queue.NewRecalculateReviewScoresTask(event.Slug)
		queue.EnqueueAfterCommit(ctx, s.dispatcher, task, err)
	}

	s.activity.Publish(ctx, activityEntity.Entry{
		EventID: event.ID,
		ActorID: &actorID,
		Action:  activityEntity.ActionReviewCategoriesSaved,
		Data:    activityEntity.JSONB{"count": len(after), "weights_changed": changed},
	})
	logger.Info("ScoreService:SaveCategories", "event", event.Slug, "categories", len(after), "weights_changed", changed)
	return &dto.SaveCategoriesResponse{Categories: after, RecalculationQueued: changed}, nil
}

func (s *ScoreService) RecalculateAll(ctx context.Context, eventID uuid.UUID) (int, *errors.AppError) {
	changed, err := s.reviews.RecalculateScores(ctx, eventID, AggregateScore)
	if err != nil {
		return 0, errors.NewAppError(errors.ErrUpdateFailed, "Failed to recalculate review scores", err)
	}
	metrics.ScoresRecalculated.Add(float64(changed))
	logger.Info("ScoreService:RecalculateAll", "event_id", eventID, "changed", changed)
	return changed, nil
}
