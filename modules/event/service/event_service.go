package service

import (
	"context"
	"strings"

	"cfp-api/core/database"
	"cfp-api/core/errors"
	"cfp-api/core/logger"
	"cfp-api/core/params"
	"cfp-api/core/utils"
	"cfp-api/modules/event/dto"
	"cfp-api/modules/event/entity"
	"cfp-api/modules/event/repository"

	"github.com/google/uuid"
)

const slugAttempts = 3

type EventServiceInterface interface {
	CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*dto.EventResponse, *errors.AppError)
	GetEvent(ctx context.Context, slug string) (*dto.EventResponse, *errors.AppError)
	ListEvents(ctx context.Context, params params.QueryParams) (*entity.PaginatedEventEntity, *errors.AppError)
	ListAllEvents(ctx context.Context) ([]entity.Event, *errors.AppError)
	// Resolve turns a URL or task slug into the event it names.
	Resolve(ctx context.Context, slug string) (*entity.Event, *errors.AppError)
	SetUnreleasedScheduleChanges(ctx context.Context, eventID uuid.UUID, value bool) *errors.AppError

	AddFavourite(ctx context.Context, slug string, userID uuid.UUID) (*dto.FavouriteResponse, *errors.AppError)
	RemoveFavourite(ctx context.Context, slug string, userID uuid.UUID) (*dto.FavouriteResponse, *errors.AppError)
	IsFavourite(ctx context.Context, slug string, userID uuid.UUID) (*dto.FavouriteResponse, *errors.AppError)
	ListFavourites(ctx context.Context, userID uuid.UUID) ([]dto.EventResponse, *errors.AppError)
}

type EventService struct {
	repo repository.EventRepositoryInterface
}

func NewEventService(repo repository.EventRepositoryInterface) EventServiceInterface {
	return &EventService{repo: repo}
}

// CreateEvent derives the slug from the name unless one is given. A taken
// slug gets a random suffix; an explicitly requested slug never does.
func (s *EventService) CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*dto.EventResponse, *errors.AppError) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errors.NewValidationError("Invalid event", errors.Violation{Field: "name", Message: "This field is required."})
	}

	explicit := strings.TrimSpace(req.Slug) != ""
	base := req.Slug
	if !explicit {
		base = name
	}

	event := &entity.Event{Name: name}
	for attempt := 0; attempt < slugAttempts; attempt++ {
		suffix := ""
		if attempt > 0 {
			suffix = utils.GenerateID()
		}
		event.Slug = utils.EventSlug(base, suffix)

		err := s.repo.Create(ctx, event)
		if err == nil {
			logger.Info("EventService:CreateEvent", "event", event.Slug)
			return dto.ToEventResponse(event), nil
		}
		if !database.IsUniqueViolation(err, repository.ConstraintEventSlug) {
			return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to create event", err)
		}
		if explicit {
			break
		}
	}
	return nil, errors.NewAppError(errors.ErrAlreadyExists, "An event with this slug already exists", nil)
}

func (s *EventService) GetEvent(ctx context.Context, slug string) (*dto.EventResponse, *errors.AppError) {
	event, appErr := s.Resolve(ctx, slug)
	if appErr != nil {
		return nil, appErr
	}
	return dto.ToEventResponse(event), nil
}

func (s *EventService) ListEvents(ctx context.Context, params params.QueryParams) (*entity.PaginatedEventEntity, *errors.AppError) {
	result, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to list events", err)
	}
	return result, nil
}

func (s *EventService) ListAllEvents(ctx context.Context) ([]entity.Event, *errors.AppError) {
	events, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to list events", err)
	}
	return events, nil
}

func (s *EventService) Resolve(ctx context.Context, slug string) (*entity.Event, *errors.AppError) {
	event, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, errors.NewAppError(errors.ErrNotFound, "Event not found", err)
		}
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load event", err)
	}
	return event, nil
}

func (s *EventService) SetUnreleasedScheduleChanges(ctx context.Context, eventID uuid.UUID, value bool) *errors.AppError {
	if err := s.repo.SetUnreleasedScheduleChanges(ctx, eventID, value); err != nil {
		return errors.NewAppError(errors.ErrUpdateFailed, "Failed to update schedule change flag", err)
	}
	return nil
}

// ===================== Favourites =====================

func (s *EventService) AddFavourite(ctx context.Context, slug string, userID uuid.UUID) (*dto.FavouriteResponse, *errors.AppError) {
	event, appErr := s.Resolve(ctx, slug)
	if appErr != nil {
		return nil, appErr
	}
	if err := s.repo.AddFavourite(ctx, event.ID, userID); err != nil {
		if database.IsUniqueViolation(err, repository.ConstraintFavouriteOnce) {
			return nil, errors.NewAppError(errors.ErrAlreadyExists, "Event is already a favourite", err)
		}
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to add favourite", err)
	}
	return &dto.FavouriteResponse{EventSlug: event.Slug, IsFavourite: true}, nil
}

func (s *EventService) RemoveFavourite(ctx context.Context, slug string, userID uuid.UUID) (*dto.FavouriteResponse, *errors.AppError) {
	event, appErr := s.Resolve(ctx, slug)
	if appErr != nil {
		return nil, appErr
	}
	removed, err := s.repo.RemoveFavourite(ctx, event.ID, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrDeleteFailed, "Failed to remove favourite", err)
	}
	if !removed {
		return nil, errors.NewAppError(errors.ErrNotFound, "Event is not a favourite", nil)
	}
	return &dto.FavouriteResponse{EventSlug: event.Slug, IsFavourite: false}, nil
}

func (s *EventService) IsFavourite(ctx context.Context, slug string, userID uuid.UUID) (*dto.FavouriteResponse, *errors.AppError) {
	event, appErr := s.Resolve(ctx, slug)
	if appErr != nil {
		return nil, appErr
	}
	ok, err := s.repo.IsFavourite(ctx, event.ID, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to check favourite", err)
	}
	return &dto.FavouriteResponse{EventSlug: event.Slug, IsFavourite: ok}, nil
}

func (s *EventService) ListFavourites(ctx context.Context, userID uuid.UUID) ([]dto.EventResponse, *errors.AppError) {
	events, err := s.repo.ListFavourites(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to list favourites", err)
	}
	return dto.ToEventResponses(events), nil
}
