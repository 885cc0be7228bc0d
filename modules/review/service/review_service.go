package service

import (
	"context"
	"strings"

	"cfp-api/core/errors"
	"cfp-api/core/logger"
	eventEntity "cfp-api/modules/event/entity"
	"cfp-api/modules/review/dto"
	"cfp-api/modules/review/entity"
	"cfp-api/modules/review/repository"
	submissionEntity "cfp-api/modules/submission/entity"

	"github.com/google/uuid"
)

// SubmissionLookup is the part of the submission module reviews depend on.
type SubmissionLookup interface {
	FindByCode(ctx context.Context, eventID uuid.UUID, code string) (*submissionEntity.Submission, *errors.AppError)
	SpeakersBySubmission(ctx context.Context, submissionIDs []uuid.UUID) (map[uuid.UUID][]submissionEntity.Speaker, *errors.AppError)
}

// Reviewer is the authenticated user writing a review.
type Reviewer struct {
	UserID uuid.UUID
	Name   string
}

type ReviewServiceInterface interface {
	SubmitReview(ctx context.Context, event *eventEntity.Event, submissionCode string, reviewer Reviewer, req *dto.SubmitReviewRequest) (*dto.ReviewResponse, *errors.AppError)
	// ListReviews returns the event's reviews, or a single submission's when
	// submissionCode is set, redacted for viewerID.
	ListReviews(ctx context.Context, eventID, viewerID uuid.UUID, submissionCode string) ([]dto.ReviewResponse, *errors.AppError)
}

type ReviewService struct {
	reviews     repository.ReviewRepositoryInterface
	categories  repository.CategoryRepositoryInterface
	phases      PhaseServiceInterface
	submissions SubmissionLookup
}

func NewReviewService(
	reviews repository.ReviewRepositoryInterface,
	categories repository.CategoryRepositoryInterface,
	phases PhaseServiceInterface,
	submissions SubmissionLookup,
) ReviewServiceInterface {
	return &ReviewService{
		reviews:     reviews,
		categories:  categories,
		phases:      phases,
		submissions: submissions,
	}
}

func (s *ReviewService) SubmitReview(ctx context.Context, event *eventEntity.Event, submissionCode string, reviewer Reviewer, req *dto.SubmitReviewRequest) (*dto.ReviewResponse, *errors.AppError) {
	submission, appErr := s.submissions.FindByCode(ctx, event.ID, submissionCode)
	if appErr != nil {
		return nil, appErr
	}
	categories, err := s.categories.ListCategories(ctx, event.ID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load score categories", err)
	}

	picks, violations := resolveScores(categories, req.Scores)
	if len(violations) > 0 {
		return nil, errors.NewValidationError("Invalid review", violations...)
	}

	review := &entity.Review{
		EventID:         event.ID,
		SubmissionID:    submission.ID,
		SubmissionCode:  submission.Code,
		SubmissionTitle: submission.Title,
		ReviewerID:      reviewer.UserID,
		ReviewerName:    reviewer.Name,
		Text:            strings.TrimSpace(req.Text),
		CategoryScores:  picks,
	}
	if err := s.reviews.Upsert(ctx, review, AggregateScore); err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to save review", err)
	}
	logger.Info("ReviewService:SubmitReview", "event", event.Slug, "submission", submission.Code, "reviewer", reviewer.UserID)

	// Authors always see their own review in full, speakers included.
	full := Visibility{CanSeeSpeakerNames: true, CanSeeReviewerNames: true}
	res := full.Present(review, speakerNames(submission.Speakers), reviewer.UserID)
	return &res, nil
}

// resolveScores checks every pick against the category scale and the
// required flags and returns the picks to store.
func resolveScores(categories []entity.ScoreCategory, chosen map[uuid.UUID]uuid.UUID) ([]entity.CategoryScore, []errors.Violation) {
	var violations []errors.Violation
	known := make(map[uuid.UUID]*entity.ScoreCategory, len(categories))
	for i := range categories {
		known[categories[i].ID] = &categories[i]
	}

	picks := make([]entity.CategoryScore, 0, len(chosen))
	for categoryID, scoreID := range chosen {
		category, ok := known[categoryID]
		if !ok {
			violations = append(violations, errors.Violation{Field: "scores", Message: "Unknown score category " + categoryID.String() + "."})
			continue
		}
		score, ok := category.ScoreByID(scoreID)
		if !ok {
			violations = append(violations, errors.Violation{Field: "scores", Message: "The chosen score does not belong to the category '" + category.Name + "'."})
			continue
		}
		picks = append(picks, entity.CategoryScore{CategoryID: categoryID, ScoreID: scoreID, Value: score.Value})
	}

	for _, c := range categories {
		if _, ok := chosen[c.ID]; c.Required && !ok {
			violations = append(violations, errors.Violation{Field: "scores", Message: "Please provide a score for '" + c.Name + "'."})
		}
	}
	return picks, violations
}

func (s *ReviewService) ListReviews(ctx context.Context, eventID, viewerID uuid.UUID, submissionCode string) ([]dto.ReviewResponse, *errors.AppError) {
	var submissionID *uuid.UUID
	if strings.TrimSpace(submissionCode) != "" {
		submission, appErr := s.submissions.FindByCode(ctx, eventID, submissionCode)
		if appErr != nil {
			return nil, appErr
		}
		submissionID = &submission.ID
	}

	active, appErr := s.phases.ActivePhase(ctx, eventID)
	if appErr != nil {
		return nil, appErr
	}
	visibility := VisibilityFor(active)

	reviews, err := s.reviews.List(ctx, eventID, submissionID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to list reviews", err)
	}

	ids := make([]uuid.UUID, 0, len(reviews))
	seen := map[uuid.UUID]bool{}
	for _, r := range reviews {
		if !seen[r.SubmissionID] {
			seen[r.SubmissionID] = true
			ids = append(ids, r.SubmissionID)
		}
	}
	speakers := map[uuid.UUID][]submissionEntity.Speaker{}
	if len(ids) > 0 && visibility.CanSeeSpeakerNames {
		speakers, appErr = s.submissions.SpeakersBySubmission(ctx, ids)
		if appErr != nil {
			return nil, appErr
		}
	}

	result := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		result = append(result, visibility.Present(&reviews[i], speakerNames(speakers[reviews[i].SubmissionID]), viewerID))
	}
	return result, nil
}

func speakerNames(speakers []submissionEntity.Speaker) []string {
	names := make([]string, 0, len(speakers))
	for _, sp := range speakers {
		names = append(names, sp.Name)
	}
	return names
}
