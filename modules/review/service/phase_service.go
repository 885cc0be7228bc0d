package service

import (
	"context"
	stderrors "errors"
	"strings"

	"cfp-api/core/cache"
	"cfp-api/core/constants"
	"cfp-api/core/database"
	"cfp-api/core/errors"
	"cfp-api/core/logger"
	activityEntity "cfp-api/modules/activity/entity"
	activityService "cfp-api/modules/activity/service"
	eventEntity "cfp-api/modules/event/entity"
	"cfp-api/modules/review/dto"
	"cfp-api/modules/review/entity"
	"cfp-api/modules/review/repository"

	"github.com/google/uuid"
)

type PhaseServiceInterface interface {
	ListPhases(ctx context.Context, eventID uuid.UUID) ([]entity.ReviewPhase, *errors.AppError)
	SavePhases(ctx context.Context, event *eventEntity.Event, actorID uuid.UUID, inputs []dto.PhaseInput) ([]entity.ReviewPhase, *errors.AppError)
	ActivatePhase(ctx context.Context, event *eventEntity.Event, actorID, phaseID uuid.UUID) (*entity.ReviewPhase, *errors.AppError)
	// ActivePhase returns nil when no phase is active.
	ActivePhase(ctx context.Context, eventID uuid.UUID) (*entity.ReviewPhase, *errors.AppError)
}

type PhaseService struct {
	repo     repository.PhaseRepositoryInterface
	cache    cache.Cache
	activity activityService.Publisher
}

func NewPhaseService(repo repository.PhaseRepositoryInterface, c cache.Cache, activity activityService.Publisher) PhaseServiceInterface {
	return &PhaseService{repo: repo, cache: c, activity: activity}
}

// cachedPhase lets "no active phase" be cached as well.
type cachedPhase struct {
	Phase *entity.ReviewPhase `json:"phase"`
}

func activePhaseKey(eventID uuid.UUID) string {
	return constants.RedisKeyActiveReviewPhase + eventID.String()
}

func (s *PhaseService) ListPhases(ctx context.Context, eventID uuid.UUID) ([]entity.ReviewPhase, *errors.AppError) {
	phases, err := s.repo.ListPhases(ctx, eventID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to list review phases", err)
	}
	return phases, nil
}

func (s *PhaseService) SavePhases(ctx context.Context, event *eventEntity.Event, actorID uuid.UUID, inputs []dto.PhaseInput) ([]entity.ReviewPhase, *errors.AppError) {
	phases := make([]entity.ReviewPhase, 0, len(inputs))
	var violations []errors.Violation
	for _, in := range inputs {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			violations = append(violations, errors.Violation{Field: "phases", Message: "Every review phase needs a name."})
		}
		phase := entity.ReviewPhase{
			EventID:             event.ID,
			Name:                name,
			Start:               in.Start,
			End:                 in.End,
			CanSeeSpeakerNames:  in.CanSeeSpeakerNames == nil || *in.CanSeeSpeakerNames,
			CanSeeReviewerNames: in.CanSeeReviewerNames == nil || *in.CanSeeReviewerNames,
		}
		if in.ID != nil {
			phase.ID = *in.ID
		}
		phases = append(phases, phase)
	}
	if len(violations) > 0 {
		return nil, errors.NewValidationError("Invalid review phases", violations...)
	}

	saved, err := s.repo.SavePhases(ctx, event.ID, phases, ReorderPhases)
	if err != nil {
		if appErr, ok := errors.As(err); ok {
			return nil, appErr
		}
		if stderrors.Is(err, repository.ErrUnknownPhase) {
			return nil, errors.NewAppError(errors.ErrNotFound, "Review phase not found", err)
		}
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to save review phases", err)
	}

	s.invalidate(ctx, event.ID)
	s.activity.Publish(ctx, activityEntity.Entry{
		EventID: event.ID,
		ActorID: &actorID,
		Action:  activityEntity.ActionReviewPhasesSaved,
		Data:    activityEntity.JSONB{"count": len(saved)},
	})
	logger.Info("PhaseService:SavePhases", "event", event.Slug, "phases", len(saved))
	return saved, nil
}

func (s *PhaseService) ActivatePhase(ctx context.Context, event *eventEntity.Event, actorID, phaseID uuid.UUID) (*entity.ReviewPhase, *errors.AppError) {
	phase, err := s.repo.ActivatePhase(ctx, event.ID, phaseID)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, errors.NewAppError(errors.ErrNotFound, "Review phase not found", err)
		}
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to activate review phase", err)
	}

	s.invalidate(ctx, event.ID)
	s.activity.Publish(ctx, activityEntity.Entry{
		EventID: event.ID,
		ActorID: &actorID,
		Action:  activityEntity.ActionReviewPhaseActivated,
		Data:    activityEntity.JSONB{"phase_id": phase.ID.String(), "name": phase.Name},
	})
	logger.Info("PhaseService:ActivatePhase", "event", event.Slug, "phase", phase.Name)
	return phase, nil
}

func (s *PhaseService) ActivePhase(ctx context.Context, eventID uuid.UUID) (*entity.ReviewPhase, *errors.AppError) {
	key := activePhaseKey(eventID)
	var cached cachedPhase
	if err := s.cache.GetJSON(ctx, key, &cached); err == nil {
		return cached.Phase, nil
	}

	phase, err := s.repo.ActivePhase(ctx, eventID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load the active review phase", err)
	}
	if err := s.cache.SetJSON(ctx, key, cachedPhase{Phase: phase}, constants.ActiveReviewPhaseTTL); err != nil {
		logger.Warn("PhaseService:ActivePhase:Cache", "event_id", eventID, "error", err)
	}
	return phase, nil
}

func (s *PhaseService) invalidate(ctx context.Context, eventID uuid.UUID) {
	if err := s.cache.Del(ctx, activePhaseKey(eventID)); err != nil {
		logger.Warn("PhaseService:Invalidate", "event_id", eventID, "error", err)
	}
}
