package repository

import (
	"context"
	"time"

	"cfp-api/core/database"
	"cfp-api/core/logger"
	"cfp-api/modules/analytics/entity"

	"github.com/google/uuid"
)

type MetricsRepositoryInterface interface {
	// Collect counts an event's submissions and reviews as they are now.
	Collect(ctx context.Context, eventID uuid.UUID) (*entity.EventMetric, error)
	// Upsert writes the row for (event, date), replacing an earlier one.
	Upsert(ctx context.Context, metric *entity.EventMetric) error
	List(ctx context.Context, eventID uuid.UUID, from, to time.Time) ([]entity.EventMetric, error)
}

type MetricsRepository struct {
	db database.Database
}

func NewMetricsRepository(db database.Database) *MetricsRepository {
	return &MetricsRepository{db: db}
}

func (r *MetricsRepository) Collect(ctx context.Context, eventID uuid.UUID) (*entity.EventMetric, error) {
	metric := &entity.EventMetric{EventID: eventID}
	query := `
		SELECT
			COUNT(*) FILTER (WHERE state <> 'withdrawn') AS total_submissions,
			COUNT(*) FILTER (WHERE state IN ('accepted', 'confirmed')) AS accepted_submissions,
			COUNT(*) FILTER (WHERE state = 'rejected') AS rejected_submissions,
			COUNT(*) FILTER (WHERE state = 'submitted') AS pending_submissions
		FROM submissions
		WHERE event_id = $1
	`
	if err := r.db.GetContext(ctx, metric, query, eventID); err != nil {
		logger.Error("MetricsRepository:Collect:Submissions", err)
		return nil, err
	}

	query = `
		SELECT COUNT(*) AS total_reviews, AVG(score) AS avg_review_score
		FROM reviews
		WHERE event_id = $1
	`
	if err := r.db.GetContext(ctx, metric, query, eventID); err != nil {
		logger.Error("MetricsRepository:Collect:Reviews", err)
		return nil, err
	}
	return metric, nil
}

func (r *MetricsRepository) Upsert(ctx context.Context, metric *entity.EventMetric) error {
	query := `
		INSERT INTO event_metrics (event_id, date, total_submissions, accepted_submissions,
			rejected_submissions, pending_submissions, total_reviews, avg_review_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT ON CONSTRAINT event_metrics_event_id_date_key DO UPDATE SET
			total_submissions = EXCLUDED.total_submissions,
			accepted_submissions = EXCLUDED.accepted_submissions,
			rejected_submissions = EXCLUDED.rejected_submissions,
			pending_submissions = EXCLUDED.pending_submissions,
			total_reviews = EXCLUDED.total_reviews,
			avg_review_score = EXCLUDED.avg_review_score,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		metric.EventID, metric.Date, metric.TotalSubmissions, metric.AcceptedSubmissions,
		metric.RejectedSubmissions, metric.PendingSubmissions, metric.TotalReviews, metric.AvgReviewScore,
	).Scan(&metric.ID, &metric.CreatedAt, &metric.UpdatedAt)
	if err != nil {
		logger.Error("MetricsRepository:Upsert", err)
		return err
	}
	return nil
}

func (r *MetricsRepository) List(ctx context.Context, eventID uuid.UUID, from, to time.Time) ([]entity.EventMetric, error) {
	query := `
		SELECT id, event_id, date, total_submissions, accepted_submissions, rejected_submissions,
			pending_submissions, total_reviews, avg_review_score, created_at, updated_at
		FROM event_metrics
		WHERE event_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date
	`
	metrics := []entity.EventMetric{}
	if err := r.db.SelectContext(ctx, &metrics, query, eventID, from, to); err != nil {
		logger.Error("MetricsRepository:List", err)
		return nil, err
	}
	return metrics, nil
}
