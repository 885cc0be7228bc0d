package repository

import (
	"context"

	"cfp-api/core/database"
	"cfp-api/core/logger"
	"cfp-api/core/params"
	"cfp-api/modules/activity/entity"

	"github.com/google/uuid"
)

type ActivityRepositoryInterface interface {
	Create(ctx context.Context, entry *entity.Entry) error
	ListByEvent(ctx context.Context, eventID uuid.UUID, params params.QueryParams) (*entity.PaginatedEntryEntity, error)
}

type ActivityRepository struct {
	db database.Database
}

func NewActivityRepository(db database.Database) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, entry *entity.Entry) error {
	query := `
		INSERT INTO activity_logs (event_id, actor_id, action_type, data)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	row := r.db.QueryRowContext(ctx, query, entry.EventID, entry.ActorID, entry.Action, entry.Data)
	if err := row.Scan(&entry.ID, &entry.CreatedAt); err != nil {
		logger.Error("ActivityRepository:Create", err)
		return err
	}
	return nil
}

func (r *ActivityRepository) ListByEvent(ctx context.Context, eventID uuid.UUID, params params.QueryParams) (*entity.PaginatedEntryEntity, error) {
	var totalItems int
	if err := r.db.GetContext(ctx, &totalItems, `SELECT COUNT(*) FROM activity_logs WHERE event_id = $1`, eventID); err != nil {
		logger.Error("ActivityRepository:ListByEvent:Count", err)
		return nil, err
	}

	query := `
		SELECT id, event_id, actor_id, action_type, data, created_at
		FROM activity_logs
		WHERE event_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	entries := []entity.Entry{}
	if err := r.db.SelectContext(ctx, &entries, query, eventID, params.PageSize, params.Offset()); err != nil {
		logger.Error("ActivityRepository:ListByEvent:Select", err)
		return nil, err
	}

	return &entity.PaginatedEntryEntity{
		Items:      entries,
		TotalItems: totalItems,
		PageNumber: params.PageNumber,
		PageSize:   params.PageSize,
	}, nil
}
