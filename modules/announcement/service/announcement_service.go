package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"cfp-api/core/database"
	"cfp-api/core/errors"
	"cfp-api/core/logger"
	"cfp-api/core/metrics"
	"cfp-api/core/params"
	"cfp-api/core/queue"
	activityEntity "cfp-api/modules/activity/entity"
	activityService "cfp-api/modules/activity/service"
	"cfp-api/modules/announcement/dto"
	"cfp-api/modules/announcement/entity"
	"cfp-api/modules/announcement/repository"
	eventEntity "cfp-api/modules/event/entity"
	notificationDto "cfp-api/modules/notification/dto"

	"github.com/google/uuid"
)

const maxTitleLength = 200

// Notifier delivers an announcement to users as in-app notifications.
type Notifier interface {
	NotifyAnnouncement(ctx context.Context, eventID uuid.UUID, announcement notificationDto.Announcement, userIDs []uuid.UUID) (int, *errors.AppError)
}

type AnnouncementServiceInterface interface {
	List(ctx context.Context, eventID uuid.UUID, params params.QueryParams) (*entity.PaginatedAnnouncementEntity, *errors.AppError)
	Get(ctx context.Context, eventID, id uuid.UUID) (*entity.Announcement, *errors.AppError)
	Create(ctx context.Context, event *eventEntity.Event, actorID uuid.UUID, req *dto.AnnouncementRequest) (*entity.Announcement, *errors.AppError)
	Update(ctx context.Context, event *eventEntity.Event, actorID, id uuid.UUID, req *dto.AnnouncementRequest) (*entity.Announcement, *errors.AppError)
	Delete(ctx context.Context, event *eventEntity.Event, actorID, id uuid.UUID) *errors.AppError
	// Publish makes the announcement visible. Only the first publish
	// queues the notification fan-out, and only when it was requested.
	Publish(ctx context.Context, event *eventEntity.Event, actorID, id uuid.UUID) (*dto.PublishResponse, *errors.AppError)
	// SendNotifications fans a published announcement out to its
	// audience and records that it did. Later calls do nothing.
	SendNotifications(ctx context.Context, event *eventEntity.Event, id uuid.UUID) (int, *errors.AppError)
}

type AnnouncementService struct {
	repo       repository.AnnouncementRepositoryInterface
	notifier   Notifier
	dispatcher queue.Dispatcher
	activity   activityService.Publisher
}

func NewAnnouncementService(
	repo repository.AnnouncementRepositoryInterface,
	notifier Notifier,
	dispatcher queue.Dispatcher,
	activity activityService.Publisher,
) AnnouncementServiceInterface {
	return &AnnouncementService{
		repo:       repo,
		notifier:   notifier,
		dispatcher: dispatcher,
		activity:   activity,
	}
}

func notFound(err error) *errors.AppError {
	return errors.NewAppError(errors.ErrNotFound, "Announcement not found", err)
}

// buildAnnouncement trims and checks the request. An empty audience
// targets everybody.
func buildAnnouncement(req *dto.AnnouncementRequest) (*entity.Announcement, *errors.AppError) {
	a := &entity.Announcement{
		Title:             strings.TrimSpace(req.Title),
		Message:           strings.TrimSpace(req.Message),
		Audience:          strings.TrimSpace(req.Audience),
		SendNotifications: req.SendNotifications,
	}
	if a.Audience == "" {
		a.Audience = entity.AudienceAll
	}

	var violations []errors.Violation
	switch {
	case a.Title == "":
		violations = append(violations, errors.Violation{Field: "title", Message: "This field is required."})
	case utf8.RuneCountInString(a.Title) > maxTitleLength:
		violations = append(violations, errors.Violation{Field: "title", Message: "Ensure this field has no more than 200 characters."})
	}
	if a.Message == "" {
		violations = append(violations, errors.Violation{Field: "message", Message: "This field is required."})
	}
	if !entity.ValidAudience(a.Audience) {
		violations = append(violations, errors.Violation{Field: "target_audience", Message: "Choose one of all, speakers, reviewers or attendees."})
	}
	if len(violations) > 0 {
		return nil, errors.NewValidationError("Invalid announcement", violations...)
	}
	return a, nil
}

func (s *AnnouncementService) List(ctx context.Context, eventID uuid.UUID, params params.QueryParams) (*entity.PaginatedAnnouncementEntity, *errors.AppError) {
	result, err := s.repo.List(ctx, eventID, params)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to list announcements", err)
	}
	return result, nil
}

func (s *AnnouncementService) Get(ctx context.Context, eventID, id uuid.UUID) (*entity.Announcement, *errors.AppError) {
	a, err := s.repo.Get(ctx, eventID, id)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, notFound(err)
		}
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get announcement", err)
	}
	return a, nil
}

func (s *AnnouncementService) Create(ctx context.Context, event *eventEntity.Event, actorID uuid.UUID, req *dto.AnnouncementRequest) (*entity.Announcement, *errors.AppError) {
	a, appErr := buildAnnouncement(req)
	if appErr != nil {
		return nil, appErr
	}
	a.EventID = event.ID
	a.AuthorID = &actorID

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to create announcement", err)
	}
	s.record(ctx, event, actorID, activityEntity.ActionAnnouncementSaved, a.ID)
	return a, nil
}

func (s *AnnouncementService) Update(ctx context.Context, event *eventEntity.Event, actorID, id uuid.UUID, req *dto.AnnouncementRequest) (*entity.Announcement, *errors.AppError) {
	current, appErr := s.Get(ctx, event.ID, id)
	if appErr != nil {
		return nil, appErr
	}
	next, appErr := buildAnnouncement(req)
	if appErr != nil {
		return nil, appErr
	}
	current.Title = next.Title
	current.Message = next.Message
	current.Audience = next.Audience
	current.SendNotifications = next.SendNotifications

	if err := s.repo.Update(ctx, current); err != nil {
		if database.IsNoRows(err) {
			return nil, notFound(err)
		}
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to update announcement", err)
	}
	s.record(ctx, event, actorID, activityEntity.ActionAnnouncementSaved, id)
	return current, nil
}

func (s *AnnouncementService) Delete(ctx context.Context, event *eventEntity.Event, actorID, id uuid.UUID) *errors.AppError {
	deleted, err := s.repo.Delete(ctx, event.ID, id)
	if err != nil {
		return errors.NewAppError(errors.ErrDeleteFailed, "Failed to delete announcement", err)
	}
	if !deleted {
		return notFound(nil)
	}
	s.record(ctx, event, actorID, activityEntity.ActionAnnouncementDeleted, id)
	return nil
}

func (s *AnnouncementService) Publish(ctx context.Context, event *eventEntity.Event, actorID, id uuid.UUID) (*dto.PublishResponse, *errors.AppError) {
	a, first, err := s.repo.Publish(ctx, event.ID, id)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, notFound(err)
		}
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to publish announcement", err)
	}
	res := &dto.PublishResponse{Announcement: a, AlreadyPublished: !first}
	if !first {
		return res, nil
	}

	metrics.AnnouncementsPublished.Inc()
	if a.SendNotifications && !a.NotificationsSent {
		task, err := queue.NewAnnouncementPublishedTask(event.Slug, a.ID)
		queue.EnqueueAfterCommit(ctx, s.dispatcher, task, err)
		res.NotificationsQueued = true
	}
	s.record(ctx, event, actorID, activityEntity.ActionAnnouncementPublished, a.ID)
	logger.Info("AnnouncementService:Publish", "event", event.Slug, "announcement_id", a.ID, "notify", res.NotificationsQueued)
	return res, nil
}

func (s *AnnouncementService) SendNotifications(ctx context.Context, event *eventEntity.Event, id uuid.UUID) (int, *errors.AppError) {
	a, appErr := s.Get(ctx, event.ID, id)
	if appErr != nil {
		return 0, appErr
	}
	if !a.IsPublished || !a.SendNotifications || a.NotificationsSent {
		return 0, nil
	}

	users, err := s.repo.Recipients(ctx, event.ID, a.Audience)
	if err != nil {
		return 0, errors.NewAppError(errors.ErrGetFailed, "Failed to resolve announcement audience", err)
	}
	created, appErr := s.notifier.NotifyAnnouncement(ctx, event.ID, notificationDto.Announcement{
		ID:        a.ID,
		EventName: event.Name,
		Title:     a.Title,
		Message:   a.Message,
	}, users)
	if appErr != nil {
		return created, appErr
	}

	// Marked only after the fan-out; a retry re-sends nothing already stored.
	if err := s.repo.MarkNotificationsSent(ctx, a.ID); err != nil {
		return created, errors.NewAppError(errors.ErrUpdateFailed, "Failed to mark announcement notified", err)
	}
	logger.Info("AnnouncementService:SendNotifications", "event", event.Slug, "announcement_id", a.ID, "audience", a.Audience, "recipients", len(users), "created", created)
	return created, nil
}

func (s *AnnouncementService) record(ctx context.Context, event *eventEntity.Event, actorID uuid.UUID, action string, id uuid.UUID) {
	s.activity.Publish(ctx, activityEntity.Entry{
		EventID: event.ID,
		ActorID: &actorID,
		Action:  action,
		Data:    activityEntity.JSONB{"announcement_id": id.String()},
	})
}
