package service

import (
	"context"
	"fmt"

	"cfp-api/core/errors"
	"cfp-api/core/logger"
	"cfp-api/core/params"
	"cfp-api/modules/notification/dto"
	"cfp-api/modules/notification/entity"
	"cfp-api/modules/notification/repository"

	"github.com/google/uuid"
)

type NotificationServiceInterface interface {
	// NotifyScheduleRelease tells every recipient that a schedule version
	// is out. Repeated calls for the same version write nothing new.
	NotifyScheduleRelease(ctx context.Context, eventID uuid.UUID, eventName, version string, recipients []dto.Recipient) (int, *errors.AppError)
	// NotifyAnnouncement delivers a published announcement to each user
	// once, however often it is called.
	NotifyAnnouncement(ctx context.Context, eventID uuid.UUID, announcement dto.Announcement, userIDs []uuid.UUID) (int, *errors.AppError)
	GetMyNotifications(ctx context.Context, userID uuid.UUID, params params.QueryParams) (*entity.PaginatedNotificationEntity, *errors.AppError)
	MarkAsRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) *errors.AppError
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) *errors.AppError
	CountUnread(ctx context.Context, userID uuid.UUID) (int, *errors.AppError)
}

type NotificationService struct {
	repo repository.NotificationRepositoryInterface
}

func NewNotificationService(repo repository.NotificationRepositoryInterface) *NotificationService {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) NotifyScheduleRelease(ctx context.Context, eventID uuid.UUID, eventName, version string, recipients []dto.Recipient) (int, *errors.AppError) {
	codes := make(map[uuid.UUID][]string)
	var order []uuid.UUID
	for _, r := range recipients {
		if _, seen := codes[r.UserID]; !seen {
			order = append(order, r.UserID)
		}
		codes[r.UserID] = append(codes[r.UserID], r.SubmissionCode)
	}

	created := 0
	for _, userID := range order {
		notification := &entity.Notification{
			UserID:  userID,
			EventID: &eventID,
			Title:   fmt.Sprintf("%s: schedule %s released", eventName, version),
			Message: fmt.Sprintf("Version %s of the %s schedule is out. Check the time and room of your session.", version, eventName),
			Type:    entity.TypeScheduleChange,
			Data: entity.JSONB{
				"version":     version,
				"submissions": codes[userID],
			},
		}
		ok, err := s.repo.CreateOnce(ctx, notification, version)
		if err != nil {
			return created, errors.NewAppError(errors.ErrCreateFailed, "Failed to create notification", err)
		}
		if ok {
			created++
		}
	}
	logger.Info("NotificationService:NotifyScheduleRelease", "event_id", eventID, "version", version, "created", created)
	return created, nil
}

func (s *NotificationService) NotifyAnnouncement(ctx context.Context, eventID uuid.UUID, announcement dto.Announcement, userIDs []uuid.UUID) (int, *errors.AppError) {
	dedupKey := announcement.ID.String()
	seen := make(map[uuid.UUID]bool, len(userIDs))
	created := 0
	for _, userID := range userIDs {
		if seen[userID] {
			continue
		}
		seen[userID] = true

		notification := &entity.Notification{
			UserID:  userID,
			EventID: &eventID,
			Title:   fmt.Sprintf("[%s] %s", announcement.EventName, announcement.Title),
			Message: announcement.Message,
			Type:    entity.TypeEventAnnouncement,
			Data:    entity.JSONB{"announcement_id": dedupKey},
		}
		ok, err := s.repo.CreateOnce(ctx, notification, dedupKey)
		if err != nil {
			return created, errors.NewAppError(errors.ErrCreateFailed, "Failed to create notification", err)
		}
		if ok {
			created++
		}
	}
	logger.Info("NotificationService:NotifyAnnouncement", "event_id", eventID, "announcement_id", announcement.ID, "created", created)
	return created, nil
}

func (s *NotificationService) GetMyNotifications(ctx context.Context, userID uuid.UUID, params params.QueryParams) (*entity.PaginatedNotificationEntity, *errors.AppError) {
	result, err := s.repo.GetByUserID(ctx, userID, params)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get notifications", err)
	}
	return result, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) *errors.AppError {
	if err := s.repo.MarkAsRead(ctx, userID, ids); err != nil {
		return errors.NewAppError(errors.ErrUpdateFailed, "Failed to mark as read", err)
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) *errors.AppError {
	if err := s.repo.MarkAllAsRead(ctx, userID); err != nil {
		return errors.NewAppError(errors.ErrUpdateFailed, "Failed to mark all as read", err)
	}
	return nil
}

func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, *errors.AppError) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, errors.NewAppError(errors.ErrGetFailed, "Failed to count unread notifications", err)
	}
	return count, nil
}
