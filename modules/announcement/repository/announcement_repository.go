package repository

import (
	"context"

	"cfp-api/core/database"
	"cfp-api/core/logger"
	"cfp-api/core/params"
	"cfp-api/modules/announcement/entity"

	"github.com/google/uuid"
)

const announcementColumns = `id, event_id, author_id, title, message, target_audience, is_published, published_at,
	send_notifications, notifications_sent, created_at, updated_at`

type AnnouncementRepositoryInterface interface {
	Create(ctx context.Context, announcement *entity.Announcement) error
	List(ctx context.Context, eventID uuid.UUID, params params.QueryParams) (*entity.PaginatedAnnouncementEntity, error)
	Get(ctx context.Context, eventID, id uuid.UUID) (*entity.Announcement, error)
	Update(ctx context.Context, announcement *entity.Announcement) error
	Delete(ctx context.Context, eventID, id uuid.UUID) (bool, error)
	// Publish marks the announcement published. It reports false when it
	// already was, leaving published_at untouched.
	Publish(ctx context.Context, eventID, id uuid.UUID) (*entity.Announcement, bool, error)
	MarkNotificationsSent(ctx context.Context, id uuid.UUID) error
	// Recipients lists the distinct users the audience covers: speakers
	// of the event's submissions, its reviewers, its attendees, or all.
	Recipients(ctx context.Context, eventID uuid.UUID, audience string) ([]uuid.UUID, error)
}

type AnnouncementRepository struct {
	db database.Database
}

func NewAnnouncementRepository(db database.Database) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

func (r *AnnouncementRepository) Create(ctx context.Context, a *entity.Announcement) error {
	err := r.db.GetContext(ctx, &a.BaseEntity, `
		INSERT INTO announcements (event_id, author_id, title, message, target_audience, send_notifications)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, a.EventID, a.AuthorID, a.Title, a.Message, a.Audience, a.SendNotifications)
	if err != nil {
		logger.Error("AnnouncementRepository:Create", err)
	}
	return err
}

func (r *AnnouncementRepository) List(ctx context.Context, eventID uuid.UUID, params params.QueryParams) (*entity.PaginatedAnnouncementEntity, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM announcements WHERE event_id = $1`, eventID); err != nil {
		logger.Error("AnnouncementRepository:List:Count", err)
		return nil, err
	}

	items := []entity.Announcement{}
	query := `SELECT ` + announcementColumns + ` FROM announcements WHERE event_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &items, query, eventID, params.PageSize, params.Offset()); err != nil {
		logger.Error("AnnouncementRepository:List:Select", err)
		return nil, err
	}
	return &entity.PaginatedAnnouncementEntity{
		Items:      items,
		TotalItems: total,
		PageNumber: params.PageNumber,
		PageSize:   params.PageSize,
	}, nil
}

func (r *AnnouncementRepository) Get(ctx context.Context, eventID, id uuid.UUID) (*entity.Announcement, error) {
	var a entity.Announcement
	query := `SELECT ` + announcementColumns + ` FROM announcements WHERE id = $1 AND event_id = $2`
	if err := r.db.GetContext(ctx, &a, query, id, eventID); err != nil {
		if !database.IsNoRows(err) {
			logger.Error("AnnouncementRepository:Get", err)
		}
		return nil, err
	}
	return &a, nil
}

func (r *AnnouncementRepository) Update(ctx context.Context, a *entity.Announcement) error {
	err := r.db.GetContext(ctx, &a.UpdatedAt, `
		UPDATE announcements
		SET title = $3, message = $4, target_audience = $5, send_notifications = $6, updated_at = NOW()
		WHERE id = $1 AND event_id = $2
		RETURNING updated_at
	`, a.ID, a.EventID, a.Title, a.Message, a.Audience, a.SendNotifications)
	if err != nil && !database.IsNoRows(err) {
		logger.Error("AnnouncementRepository:Update", err)
	}
	return err
}

func (r *AnnouncementRepository) Delete(ctx context.Context, eventID, id uuid.UUID) (bool, error) {
	var deleted uuid.UUID
	err := r.db.GetContext(ctx, &deleted,
		`DELETE FROM announcements WHERE id = $1 AND event_id = $2 RETURNING id`, id, eventID)
	if database.IsNoRows(err) {
		return false, nil
	}
	if err != nil {
		logger.Error("AnnouncementRepository:Delete", err)
		return false, err
	}
	return true, nil
}

func (r *AnnouncementRepository) Publish(ctx context.Context, eventID, id uuid.UUID) (*entity.Announcement, bool, error) {
	var a entity.Announcement
	err := r.db.GetContext(ctx, &a, `
		UPDATE announcements
		SET is_published = TRUE, published_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND event_id = $2 AND NOT is_published
		RETURNING `+announcementColumns, id, eventID)
	if err == nil {
		return &a, true, nil
	}
	if !database.IsNoRows(err) {
		logger.Error("AnnouncementRepository:Publish", err)
		return nil, false, err
	}

	existing, err := r.Get(ctx, eventID, id)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *AnnouncementRepository) MarkNotificationsSent(ctx context.Context, id uuid.UUID) error {
	err := r.db.ExecContext(ctx,
		`UPDATE announcements SET notifications_sent = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		logger.Error("AnnouncementRepository:MarkNotificationsSent", err)
	}
	return err
}

func (r *AnnouncementRepository) Recipients(ctx context.Context, eventID uuid.UUID, audience string) ([]uuid.UUID, error) {
	users := []uuid.UUID{}
	err := r.db.SelectContext(ctx, &users, `
		SELECT user_id FROM (
			SELECT ss.user_id
			FROM submission_speakers ss
			JOIN submissions s ON s.id = ss.submission_id
			WHERE s.event_id = $1 AND $2::text IN ('all', 'speakers')
			UNION
			SELECT reviewer_id FROM reviews
			WHERE event_id = $1 AND $2::text IN ('all', 'reviewers')
			UNION
			SELECT user_id FROM event_favourites
			WHERE event_id = $1 AND $2::text IN ('all', 'attendees')
		) audience
		ORDER BY user_id
	`, eventID, audience)
	if err != nil {
		logger.Error("AnnouncementRepository:Recipients", err)
		return nil, err
	}
	return users, nil
}
