package service

import (
	"context"
	"strings"

	"cfp-api/core/database"
	"cfp-api/core/errors"
	"cfp-api/core/logger"
	"cfp-api/core/params"
	"cfp-api/core/queue"
	"cfp-api/core/utils"
	eventEntity "cfp-api/modules/event/entity"
	"cfp-api/modules/submission/dto"
	"cfp-api/modules/submission/entity"
	"cfp-api/modules/submission/repository"

	"github.com/google/uuid"
)

const (
	codeAttempts           = 5
	defaultDurationMinutes = 30
)

type SubmissionServiceInterface interface {
	CreateSubmission(ctx context.Context, event *eventEntity.Event, author Author, req *dto.CreateSubmissionRequest) (*dto.SubmissionResponse, *errors.AppError)
	ListSubmissions(ctx context.Context, eventID uuid.UUID, state string, params params.QueryParams) (*entity.PaginatedSubmissionEntity, *errors.AppError)
	GetSubmission(ctx context.Context, eventID uuid.UUID, code string) (*dto.SubmissionResponse, *errors.AppError)
	UpdateSubmission(ctx context.Context, event *eventEntity.Event, code string, req *dto.UpdateSubmissionRequest) (*dto.SubmissionResponse, *errors.AppError)

	FindByCode(ctx context.Context, eventID uuid.UUID, code string) (*entity.Submission, *errors.AppError)
	SpeakersBySubmission(ctx context.Context, submissionIDs []uuid.UUID) (map[uuid.UUID][]entity.Speaker, *errors.AppError)
}

// Author is the authenticated user creating a submission.
type Author struct {
	UserID uuid.UUID
	Name   string
}

type SubmissionService struct {
	repo       repository.SubmissionRepositoryInterface
	dispatcher queue.Dispatcher
}

func NewSubmissionService(repo repository.SubmissionRepositoryInterface, dispatcher queue.Dispatcher) SubmissionServiceInterface {
	return &SubmissionService{repo: repo, dispatcher: dispatcher}
}

func (s *SubmissionService) CreateSubmission(ctx context.Context, event *eventEntity.Event, author Author, req *dto.CreateSubmissionRequest) (*dto.SubmissionResponse, *errors.AppError) {
	var violations []errors.Violation
	title := strings.TrimSpace(req.Title)
	if title == "" {
		violations = append(violations, errors.Violation{Field: "title", Message: "This field is required."})
	}
	duration := req.DurationMinutes
	if duration == 0 {
		duration = defaultDurationMinutes
	}
	if duration < 0 {
		violations = append(violations, errors.Violation{Field: "duration_minutes", Message: "Duration must be positive."})
	}
	if len(violations) > 0 {
		return nil, errors.NewValidationError("Invalid submission", violations...)
	}

	speakers := []entity.Speaker{{UserID: author.UserID, Name: author.Name}}
	for _, sp := range req.Speakers {
		if sp.UserID == uuid.Nil || sp.UserID == author.UserID {
			continue
		}
		speakers = append(speakers, entity.Speaker{UserID: sp.UserID, Name: strings.TrimSpace(sp.Name)})
	}

	submission := &entity.Submission{
		EventID:         event.ID,
		Title:           title,
		Abstract:        req.Abstract,
		DurationMinutes: duration,
		State:           entity.StateSubmitted,
	}
	for attempt := 0; attempt < codeAttempts; attempt++ {
		code, err := utils.GenerateSubmissionCode()
		if err != nil {
			return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to generate a submission code", err)
		}
		submission.Code = code
		submission.Speakers = append([]entity.Speaker(nil), speakers...)

		err = s.repo.Create(ctx, submission)
		if err == nil {
			logger.Info("SubmissionService:CreateSubmission", "event", event.Slug, "code", submission.Code)
			return dto.ToSubmissionResponse(submission), nil
		}
		if !database.IsUniqueViolation(err, repository.ConstraintSubmissionCode) {
			return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to create submission", err)
		}
	}
	return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to allocate a submission code", nil)
}

func (s *SubmissionService) ListSubmissions(ctx context.Context, eventID uuid.UUID, state string, params params.QueryParams) (*entity.PaginatedSubmissionEntity, *errors.AppError) {
	if state != "" && !entity.SubmissionState(state).Valid() {
		return nil, errors.NewValidationError("Invalid filter", errors.Violation{Field: "state", Message: "Unknown submission state."})
	}
	result, err := s.repo.List(ctx, eventID, state, params)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to list submissions", err)
	}
	return result, nil
}

func (s *SubmissionService) GetSubmission(ctx context.Context, eventID uuid.UUID, code string) (*dto.SubmissionResponse, *errors.AppError) {
	submission, appErr := s.FindByCode(ctx, eventID, code)
	if appErr != nil {
		return nil, appErr
	}
	return dto.ToSubmissionResponse(submission), nil
}

// UpdateSubmission applies a partial update. Duration and abstract feed
// the end and description of the submission's draft slots, so changing
// either rewrites those slots and schedules an unreleased changes check.
func (s *SubmissionService) UpdateSubmission(ctx context.Context, event *eventEntity.Event, code string, req *dto.UpdateSubmissionRequest) (*dto.SubmissionResponse, *errors.AppError) {
	submission, appErr := s.FindByCode(ctx, event.ID, code)
	if appErr != nil {
		return nil, appErr
	}

	var violations []errors.Violation
	propagate := false
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			violations = append(violations, errors.Violation{Field: "title", Message: "This field is required."})
		}
		submission.Title = strings.TrimSpace(*req.Title)
	}
	if req.Abstract != nil && *req.Abstract != submission.Abstract {
		submission.Abstract = *req.Abstract
		propagate = true
	}
	if req.DurationMinutes != nil && *req.DurationMinutes != submission.DurationMinutes {
		if *req.DurationMinutes <= 0 {
			violations = append(violations, errors.Violation{Field: "duration_minutes", Message: "Duration must be positive."})
		}
		submission.DurationMinutes = *req.DurationMinutes
		propagate = true
	}
	if req.State != nil {
		state := entity.SubmissionState(*req.State)
		if !state.Valid() {
			violations = append(violations, errors.Violation{Field: "state", Message: "Unknown submission state."})
		}
		submission.State = state
	}
	if len(violations) > 0 {
		return nil, errors.NewValidationError("Invalid submission", violations...)
	}

	rewritten, err := s.repo.UpdateContent(ctx, submission, propagate)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to update submission", err)
	}

	if rewritten > 0 {
		task, err := queue.NewUpdateUnreleasedChangesTask(event.Slug, nil)
		queue.EnqueueAfterCommit(ctx, s.dispatcher, task, err)
	}
	return dto.ToSubmissionResponse(submission), nil
}

func (s *SubmissionService) FindByCode(ctx context.Context, eventID uuid.UUID, code string) (*entity.Submission, *errors.AppError) {
	submission, err := s.repo.GetByCode(ctx, eventID, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, errors.NewAppError(errors.ErrNotFound, "Submission not found", err)
		}
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load submission", err)
	}
	return submission, nil
}

func (s *SubmissionService) SpeakersBySubmission(ctx context.Context, submissionIDs []uuid.UUID) (map[uuid.UUID][]entity.Speaker, *errors.AppError) {
	speakers, err := s.repo.SpeakersBySubmission(ctx, submissionIDs)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load speakers", err)
	}
	return speakers, nil
}
