package service

import (
	"context"
	"time"

	"cfp-api/core/errors"
	"cfp-api/core/logger"
	"cfp-api/core/metrics"
	"cfp-api/modules/analytics/entity"
	"cfp-api/modules/analytics/repository"
	eventEntity "cfp-api/modules/event/entity"

	"github.com/google/uuid"
)

const (
	DefaultHistoryDays = 30
	MaxHistoryDays     = 366
)

type EventLister interface {
	ListAllEvents(ctx context.Context) ([]eventEntity.Event, *errors.AppError)
}

type AnalyticsServiceInterface interface {
	// Snapshot writes today's row for every event. Running it twice on the
	// same day overwrites the first result.
	Snapshot(ctx context.Context) (int, *errors.AppError)
	History(ctx context.Context, eventID uuid.UUID, days int) ([]entity.EventMetric, *errors.AppError)
}

type AnalyticsService struct {
	repo   repository.MetricsRepositoryInterface
	events EventLister
	now    func() time.Time
}

func NewAnalyticsService(repo repository.MetricsRepositoryInterface, events EventLister) *AnalyticsService {
	return &AnalyticsService{repo: repo, events: events, now: time.Now}
}

func (s *AnalyticsService) today() time.Time {
	return s.now().UTC().Truncate(24 * time.Hour)
}

func (s *AnalyticsService) Snapshot(ctx context.Context) (int, *errors.AppError) {
	events, appErr := s.events.ListAllEvents(ctx)
	if appErr != nil {
		return 0, appErr
	}

	day := s.today()
	written := 0
	for _, event := range events {
		metric, err := s.repo.Collect(ctx, event.ID)
		if err != nil {
			return written, errors.NewAppError(errors.ErrGetFailed, "Failed to collect event metrics", err)
		}
		metric.Date = day
		if err := s.repo.Upsert(ctx, metric); err != nil {
			return written, errors.NewAppError(errors.ErrUpdateFailed, "Failed to store event metrics", err)
		}
		written++
	}

	metrics.MetricsSnapshots.Add(float64(written))
	logger.Info("AnalyticsService:Snapshot", "date", day.Format(time.DateOnly), "events", written)
	return written, nil
}

func (s *AnalyticsService) History(ctx context.Context, eventID uuid.UUID, days int) ([]entity.EventMetric, *errors.AppError) {
	if days <= 0 {
		days = DefaultHistoryDays
	}
	if days > MaxHistoryDays {
		days = MaxHistoryDays
	}
	to := s.today()
	from := to.AddDate(0, 0, -(days - 1))

	result, err := s.repo.List(ctx, eventID, from, to)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get event metrics", err)
	}
	return result, nil
}
