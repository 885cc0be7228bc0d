package repository

import (
	"context"

	"cfp-api/core/database"
	"cfp-api/core/logger"
	"cfp-api/core/params"
	"cfp-api/modules/event/entity"

	"github.com/google/uuid"
)

const (
	ConstraintEventSlug     = "events_slug_key"
	ConstraintFavouriteOnce = "event_favourites_user_id_event_id_key"
	eventColumns            = `id, slug, name, has_unreleased_schedule_changes, created_at, updated_at`
)

type EventRepositoryInterface interface {
	Create(ctx context.Context, event *entity.Event) error
	GetBySlug(ctx context.Context, slug string) (*entity.Event, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Event, error)
	List(ctx context.Context, params params.QueryParams) (*entity.PaginatedEventEntity, error)
	ListAll(ctx context.Context) ([]entity.Event, error)
	SetUnreleasedScheduleChanges(ctx context.Context, eventID uuid.UUID, value bool) error

	AddFavourite(ctx context.Context, eventID, userID uuid.UUID) error
	RemoveFavourite(ctx context.Context, eventID, userID uuid.UUID) (bool, error)
	IsFavourite(ctx context.Context, eventID, userID uuid.UUID) (bool, error)
	ListFavourites(ctx context.Context, userID uuid.UUID) ([]entity.Event, error)
}

type EventRepository struct {
	db database.Database
}

func NewEventRepository(db database.Database) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, event *entity.Event) error {
	query := `
		INSERT INTO events (slug, name)
		VALUES ($1, $2)
		RETURNING ` + eventColumns
	if err := r.db.GetContext(ctx, event, query, event.Slug, event.Name); err != nil {
		if !database.IsUniqueViolation(err, ConstraintEventSlug) {
			logger.Error("EventRepository:Create", err)
		}
		return err
	}
	return nil
}

func (r *EventRepository) GetBySlug(ctx context.Context, slug string) (*entity.Event, error) {
	var event entity.Event
	query := `SELECT ` + eventColumns + ` FROM events WHERE slug = $1`
	if err := r.db.GetContext(ctx, &event, query, slug); err != nil {
		if !database.IsNoRows(err) {
			logger.Error("EventRepository:GetBySlug", err)
		}
		return nil, err
	}
	return &event, nil
}

func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	var event entity.Event
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		if !database.IsNoRows(err) {
			logger.Error("EventRepository:GetByID", err)
		}
		return nil, err
	}
	return &event, nil
}

func (r *EventRepository) List(ctx context.Context, params params.QueryParams) (*entity.PaginatedEventEntity, error) {
	var totalItems int
	if err := r.db.GetContext(ctx, &totalItems, `SELECT COUNT(*) FROM events`); err != nil {
		logger.Error("EventRepository:List:Count", err)
		return nil, err
	}

	query := `
		SELECT ` + eventColumns + `
		FROM events
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	events := []entity.Event{}
	if err := r.db.SelectContext(ctx, &events, query, params.PageSize, params.Offset()); err != nil {
		logger.Error("EventRepository:List:Select", err)
		return nil, err
	}

	return &entity.PaginatedEventEntity{
		Items:      events,
		TotalItems: totalItems,
		PageNumber: params.PageNumber,
		PageSize:   params.PageSize,
	}, nil
}

func (r *EventRepository) ListAll(ctx context.Context) ([]entity.Event, error) {
	events := []entity.Event{}
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &events, query); err != nil {
		logger.Error("EventRepository:ListAll", err)
		return nil, err
	}
	return events, nil
}

func (r *EventRepository) SetUnreleasedScheduleChanges(ctx context.Context, eventID uuid.UUID, value bool) error {
	query := `
		UPDATE events
		SET has_unreleased_schedule_changes = $2, updated_at = NOW()
		WHERE id = $1 AND has_unreleased_schedule_changes IS DISTINCT FROM $2
	`
	if err := r.db.ExecContext(ctx, query, eventID, value); err != nil {
		logger.Error("EventRepository:SetUnreleasedScheduleChanges", err)
		return err
	}
	return nil
}

// ===================== Favourites =====================

func (r *EventRepository) AddFavourite(ctx context.Context, eventID, userID uuid.UUID) error {
	query := `INSERT INTO event_favourites (event_id, user_id) VALUES ($1, $2)`
	if err := r.db.ExecContext(ctx, query, eventID, userID); err != nil {
		if !database.IsUniqueViolation(err, ConstraintFavouriteOnce) {
			logger.Error("EventRepository:AddFavourite", err)
		}
		return err
	}
	return nil
}

func (r *EventRepository) RemoveFavourite(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	query := `DELETE FROM event_favourites WHERE event_id = $1 AND user_id = $2`
	result, err := r.db.SQLx().ExecContext(ctx, query, eventID, userID)
	if err != nil {
		logger.Error("EventRepository:RemoveFavourite", err)
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *EventRepository) IsFavourite(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM event_favourites WHERE event_id = $1 AND user_id = $2)`
	if err := r.db.GetContext(ctx, &exists, query, eventID, userID); err != nil {
		logger.Error("EventRepository:IsFavourite", err)
		return false, err
	}
	return exists, nil
}

func (r *EventRepository) ListFavourites(ctx context.Context, userID uuid.UUID) ([]entity.Event, error) {
	query := `
		SELECT e.id, e.slug, e.name, e.has_unreleased_schedule_changes, e.created_at, e.updated_at
		FROM events e
		JOIN event_favourites f ON f.event_id = e.id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC
	`
	events := []entity.Event{}
	if err := r.db.SelectContext(ctx, &events, query, userID); err != nil {
		logger.Error("EventRepository:ListFavourites", err)
		return nil, err
	}
	return events, nil
}
