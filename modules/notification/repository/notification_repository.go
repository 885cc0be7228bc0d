package repository

import (
	"context"

	"cfp-api/core/database"
	"cfp-api/core/logger"
	"cfp-api/core/params"
	"cfp-api/modules/notification/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const notificationColumns = `id, user_id, event_id, title, message, type, data, is_read, created_at, updated_at`

type NotificationRepositoryInterface interface {
	// CreateOnce stores the notification unless the user already has one
	// of the same type for the same event and dedup key. It reports
	// whether a row was written.
	CreateOnce(ctx context.Context, notification *entity.Notification, dedupKey string) (bool, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, params params.QueryParams) (*entity.PaginatedNotificationEntity, error)
	MarkAsRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

type NotificationRepository struct {
	db database.Database
}

func NewNotificationRepository(db database.Database) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) CreateOnce(ctx context.Context, notification *entity.Notification, dedupKey string) (bool, error) {
	if notification.Data == nil {
		notification.Data = entity.JSONB{}
	}
	notification.Data["dedup_key"] = dedupKey

	// The conflict target matches notifications_dedup_key_idx.
	query := `
		INSERT INTO notifications (user_id, event_id, title, message, type, data)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, COALESCE(event_id, '00000000-0000-0000-0000-000000000000'::uuid), type, (data->>'dedup_key'))
		WHERE (data->>'dedup_key') IS NOT NULL
		DO NOTHING
		RETURNING id, created_at, updated_at
	`
	rows, err := r.db.QueryContext(ctx, query,
		notification.UserID, notification.EventID, notification.Title, notification.Message,
		notification.Type, notification.Data)
	if err != nil {
		logger.Error("NotificationRepository:CreateOnce", err)
		return false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return false, rows.Err()
	}
	if err := rows.Scan(&notification.ID, &notification.CreatedAt, &notification.UpdatedAt); err != nil {
		return false, err
	}
	return true, nil
}

func (r *NotificationRepository) GetByUserID(ctx context.Context, userID uuid.UUID, params params.QueryParams) (*entity.PaginatedNotificationEntity, error) {
	baseQuery := `FROM notifications WHERE user_id = $1`

	var totalItems int
	if err := r.db.GetContext(ctx, &totalItems, "SELECT COUNT(*) "+baseQuery, userID); err != nil {
		logger.Error("NotificationRepository:GetByUserID:Count", err)
		return nil, err
	}

	query := `SELECT ` + notificationColumns + ` ` + baseQuery + `
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	notifications := []entity.Notification{}
	if err := r.db.SelectContext(ctx, &notifications, query, userID, params.PageSize, params.Offset()); err != nil {
		logger.Error("NotificationRepository:GetByUserID:Select", err)
		return nil, err
	}

	return &entity.PaginatedNotificationEntity{
		Items:      notifications,
		TotalItems: totalItems,
		PageNumber: params.PageNumber,
		PageSize:   params.PageSize,
	}, nil
}

func (r *NotificationRepository) MarkAsRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`UPDATE notifications SET is_read = true, updated_at = NOW() WHERE user_id = ? AND id IN (?)`, userID, ids)
	if err != nil {
		return err
	}
	query = r.db.SQLx().Rebind(query)
	if err := r.db.ExecContext(ctx, query, args...); err != nil {
		logger.Error("NotificationRepository:MarkAsRead", err)
		return err
	}
	return nil
}

func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE notifications SET is_read = true, updated_at = NOW() WHERE user_id = $1 AND NOT is_read`
	if err := r.db.ExecContext(ctx, query, userID); err != nil {
		logger.Error("NotificationRepository:MarkAllAsRead", err)
		return err
	}
	return nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = false`
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		logger.Error("NotificationRepository:CountUnread", err)
		return 0, err
	}
	return count, nil
}
