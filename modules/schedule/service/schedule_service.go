package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cfp-api/core/database"
	"cfp-api/core/errors"
	"cfp-api/core/logger"
	"cfp-api/core/metrics"
	"cfp-api/core/queue"
	activityEntity "cfp-api/modules/activity/entity"
	activityService "cfp-api/modules/activity/service"
	eventEntity "cfp-api/modules/event/entity"
	"cfp-api/modules/schedule/dto"
	"cfp-api/modules/schedule/entity"
	"cfp-api/modules/schedule/repository"
	submissionEntity "cfp-api/modules/submission/entity"

	"github.com/google/uuid"
)

const (
	msgEndLocked         = "End can only be edited if there is no submission associated with the slot. Otherwise, update the submission duration."
	msgDescriptionLocked = "Description can only be edited if there is no submission associated with the slot. Otherwise, update the submission abstract."
	msgVersionTaken      = "A schedule with the version '%s' already exists for this event."
)

// EventFlagger stores the event's unreleased schedule changes flag.
type EventFlagger interface {
	SetUnreleasedScheduleChanges(ctx context.Context, eventID uuid.UUID, value bool) *errors.AppError
}

// SubmissionLookup resolves submission codes for slot assignment.
type SubmissionLookup interface {
	FindByCode(ctx context.Context, eventID uuid.UUID, code string) (*submissionEntity.Submission, *errors.AppError)
}

type ScheduleServiceInterface interface {
	CreateRoom(ctx context.Context, eventID uuid.UUID, req *dto.CreateRoomRequest) (*entity.Room, *errors.AppError)
	ListRooms(ctx context.Context, eventID uuid.UUID) ([]entity.Room, *errors.AppError)

	GetDraft(ctx context.Context, eventID uuid.UUID) (*dto.ScheduleResponse, *errors.AppError)
	ListSchedules(ctx context.Context, eventID uuid.UUID, releasedOnly bool) ([]entity.Schedule, *errors.AppError)
	// GetSchedule loads one schedule with its slots. releasedOnly hides the
	// draft, onlyVisible hides invisible slots.
	GetSchedule(ctx context.Context, eventID, scheduleID uuid.UUID, onlyVisible, releasedOnly bool) (*dto.ScheduleResponse, *errors.AppError)
	GetRelease(ctx context.Context, eventID uuid.UUID, version string, onlyVisible bool) (*dto.ScheduleResponse, *errors.AppError)
	Release(ctx context.Context, event *eventEntity.Event, actorID uuid.UUID, req *dto.ReleaseRequest) (*dto.ScheduleResponse, *errors.AppError)

	ScheduleSubmission(ctx context.Context, event *eventEntity.Event, actorID uuid.UUID, req *dto.ScheduleSubmissionRequest) (*entity.TalkSlot, *errors.AppError)
	AddBreak(ctx context.Context, event *eventEntity.Event, actorID uuid.UUID, req *dto.CreateBreakRequest) (*entity.TalkSlot, *errors.AppError)
	UpdateSlot(ctx context.Context, event *eventEntity.Event, actorID, slotID uuid.UUID, req *dto.UpdateSlotRequest) (*entity.TalkSlot, *errors.AppError)
	DeleteSlot(ctx context.Context, event *eventEntity.Event, actorID, slotID uuid.UUID) *errors.AppError
	// FreeSlots lists where a talk of the given length fits in a room of
	// the draft schedule.
	FreeSlots(ctx context.Context, eventID uuid.UUID, req *dto.FreeSlotsRequest) ([]TimeRange, *errors.AppError)

	// UpdateUnreleasedChanges stores value when given, otherwise compares
	// the draft with the latest release. It returns the stored flag.
	UpdateUnreleasedChanges(ctx context.Context, eventID uuid.UUID, value *bool) (bool, *errors.AppError)
}

type ScheduleService struct {
	repo        repository.ScheduleRepositoryInterface
	events      EventFlagger
	submissions SubmissionLookup
	dispatcher  queue.Dispatcher
	activity    activityService.Publisher
	comparison  string
}

func NewScheduleService(
	repo repository.ScheduleRepositoryInterface,
	events EventFlagger,
	submissions SubmissionLookup,
	dispatcher queue.Dispatcher,
	activity activityService.Publisher,
	comparison string,
) ScheduleServiceInterface {
	return &ScheduleService{
		repo:        repo,
		events:      events,
		submissions: submissions,
		dispatcher:  dispatcher,
		activity:    activity,
		comparison:  comparison,
	}
}

func (s *ScheduleService) CreateRoom(ctx context.Context, eventID uuid.UUID, req *dto.CreateRoomRequest) (*entity.Room, *errors.AppError) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errors.NewValidationError("Invalid room", errors.Violation{Field: "name", Message: "This field is required."})
	}
	room := &entity.Room{EventID: eventID, Name: name}
	if req.Position != nil {
		room.Position = *req.Position
	}
	if err := s.repo.CreateRoom(ctx, room); err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to create room", err)
	}
	return room, nil
}

func (s *ScheduleService) ListRooms(ctx context.Context, eventID uuid.UUID) ([]entity.Room, *errors.AppError) {
	rooms, err := s.repo.ListRooms(ctx, eventID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to list rooms", err)
	}
	return rooms, nil
}

func (s *ScheduleService) GetDraft(ctx context.Context, eventID uuid.UUID) (*dto.ScheduleResponse, *errors.AppError) {
	draft, err := s.repo.GetOrCreateDraft(ctx, eventID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load the draft schedule", err)
	}
	return s.withSlots(ctx, draft, false)
}

func (s *ScheduleService) withSlots(ctx context.Context, schedule *entity.Schedule, onlyVisible bool) (*dto.ScheduleResponse, *errors.AppError) {
	slots, err := s.repo.Slots(ctx, schedule.ID, onlyVisible)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load schedule slots", err)
	}
	return dto.ToScheduleResponse(schedule, slots), nil
}

func (s *ScheduleService) ListSchedules(ctx context.Context, eventID uuid.UUID, releasedOnly bool) ([]entity.Schedule, *errors.AppError) {
	schedules, err := s.repo.ListSchedules(ctx, eventID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to list schedules", err)
	}
	if !releasedOnly {
		return schedules, nil
	}
	released := make([]entity.Schedule, 0, len(schedules))
	for _, schedule := range schedules {
		if !schedule.IsDraft() {
			released = append(released, schedule)
		}
	}
	return released, nil
}

func (s *ScheduleService) GetSchedule(ctx context.Context, eventID, scheduleID uuid.UUID, onlyVisible, releasedOnly bool) (*dto.ScheduleResponse, *errors.AppError) {
	schedule, err := s.repo.GetSchedule(ctx, eventID, scheduleID)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, errors.NewAppError(errors.ErrNotFound, "Schedule not found", err)
		}
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load schedule", err)
	}
	if releasedOnly && schedule.IsDraft() {
		return nil, errors.NewAppError(errors.ErrNotFound, "Schedule not found", nil)
	}
	return s.withSlots(ctx, schedule, onlyVisible)
}

func (s *ScheduleService) GetRelease(ctx context.Context, eventID uuid.UUID, version string, onlyVisible bool) (*dto.ScheduleResponse, *errors.AppError) {
	schedule, err := s.repo.GetByVersion(ctx, eventID, version)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, errors.NewAppError(errors.ErrNotFound, "Schedule not found", err)
		}
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load schedule", err)
	}
	return s.withSlots(ctx, schedule, onlyVisible)
}

func (s *ScheduleService) Release(ctx context.Context, event *eventEntity.Event, actorID uuid.UUID, req *dto.ReleaseRequest) (*dto.ScheduleResponse, *errors.AppError) {
	version := strings.TrimSpace(req.Version)
	if version == "" {
		return nil, errors.NewValidationError("Invalid release", errors.Violation{Field: "version", Message: "This field is required."})
	}

	exists, err := s.repo.VersionExists(ctx, event.ID, version)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to check schedule versions", err)
	}
	if exists {
		return nil, errors.NewValidationError("Invalid release",
			errors.Violation{Field: "version", Message: fmt.Sprintf(msgVersionTaken, version)})
	}

	released, err := s.repo.Release(ctx, event.ID, version, strings.TrimSpace(req.Comment))
	if err != nil {
		if database.IsUniqueViolation(err, repository.ConstraintScheduleVersion) {
			return nil, errors.NewAppError(errors.ErrAlreadyExists, fmt.Sprintf(msgVersionTaken, version), err)
		}
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to release schedule", err)
	}
	metrics.ScheduleReleases.Inc()

	s.activity.Publish(ctx, activityEntity.Entry{
		EventID: event.ID,
		ActorID: &actorID,
		Action:  activityEntity.ActionScheduleReleased,
		Data:    activityEntity.JSONB{"version": version, "schedule_id": released.ID.String()},
	})
	task, buildErr := queue.NewScheduleReleasedTask(event.Slug, version)
	queue.EnqueueAfterCommit(ctx, s.dispatcher, task, buildErr)
	task, buildErr = queue.NewExportScheduleTask(event.Slug, version)
	queue.EnqueueAfterCommit(ctx, s.dispatcher, task, buildErr)

	logger.Info("ScheduleService:Release", "event", event.Slug, "version", version)
	return s.withSlots(ctx, released, false)
}

func (s *ScheduleService) draft(ctx context.Context, eventID uuid.UUID) (*entity.Schedule, *errors.AppError) {
	draft, err := s.repo.GetOrCreateDraft(ctx, eventID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load the draft schedule", err)
	}
	return draft, nil
}

func (s *ScheduleService) checkRoom(ctx context.Context, eventID uuid.UUID, roomID *uuid.UUID) (*entity.Room, *errors.AppError) {
	if roomID == nil {
		return nil, nil
	}
	room, err := s.repo.GetRoom(ctx, eventID, *roomID)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, errors.NewValidationError("Invalid slot", errors.Violation{Field: "room_id", Message: "Unknown room."})
		}
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load room", err)
	}
	return room, nil
}

func (s *ScheduleService) ScheduleSubmission(ctx context.Context, event *eventEntity.Event, actorID uuid.UUID, req *dto.ScheduleSubmissionRequest) (*entity.TalkSlot, *errors.AppError) {
	if req.Start == nil {
		return nil, errors.NewValidationError("Invalid slot", errors.Violation{Field: "start", Message: "This field is required."})
	}
	submission, appErr := s.submissions.FindByCode(ctx, event.ID, req.SubmissionCode)
	if appErr != nil {
		return nil, appErr
	}
	room, appErr := s.checkRoom(ctx, event.ID, req.RoomID)
	if appErr != nil {
		return nil, appErr
	}
	draft, appErr := s.draft(ctx, event.ID)
	if appErr != nil {
		return nil, appErr
	}

	start := req.Start.UTC()
	end := start.Add(time.Duration(submission.DurationMinutes) * time.Minute)
	duration := submission.DurationMinutes
	slot := &entity.TalkSlot{
		ScheduleID:      draft.ID,
		SubmissionID:    &submission.ID,
		RoomID:          req.RoomID,
		Start:           &start,
		End:             &end,
		Description:     submission.Abstract,
		IsVisible:       req.IsVisible != nil && *req.IsVisible,
		SlotType:        entity.SlotTalk,
		SubmissionCode:  &submission.Code,
		SubmissionTitle: &submission.Title,
		Duration:        &duration,
	}
	if room != nil {
		slot.RoomName = &room.Name
	}
	if err := s.repo.CreateSlot(ctx, slot); err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to schedule submission", err)
	}
	s.draftChanged(ctx, event, actorID, slot.ID, "created")
	return slot, nil
}

func (s *ScheduleService) AddBreak(ctx context.Context, event *eventEntity.Event, actorID uuid.UUID, req *dto.CreateBreakRequest) (*entity.TalkSlot, *errors.AppError) {
	slotType := req.SlotType
	if slotType == "" {
		slotType = entity.SlotBreak
	}
	var violations []errors.Violation
	if slotType == entity.SlotTalk || !slotType.Valid() {
		violations = append(violations, errors.Violation{Field: "slot_type", Message: "Use 'break' or 'blocker'."})
	}
	if req.Start == nil {
		violations = append(violations, errors.Violation{Field: "start", Message: "This field is required."})
	}
	if req.End == nil {
		violations = append(violations, errors.Violation{Field: "end", Message: "This field is required."})
	}
	if req.Start != nil && req.End != nil && req.End.Before(*req.Start) {
		violations = append(violations, errors.Violation{Field: "end", Message: "The end must not be before the start."})
	}
	if len(violations) > 0 {
		return nil, errors.NewValidationError("Invalid slot", violations...)
	}

	room, appErr := s.checkRoom(ctx, event.ID, req.RoomID)
	if appErr != nil {
		return nil, appErr
	}
	draft, appErr := s.draft(ctx, event.ID)
	if appErr != nil {
		return nil, appErr
	}

	slot := &entity.TalkSlot{
		ScheduleID:  draft.ID,
		RoomID:      req.RoomID,
		Start:       req.Start,
		End:         req.End,
		Description: strings.TrimSpace(req.Description),
		IsVisible:   req.IsVisible == nil || *req.IsVisible,
		SlotType:    slotType,
	}
	if room != nil {
		slot.RoomName = &room.Name
	}
	if err := s.repo.CreateSlot(ctx, slot); err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to create slot", err)
	}
	s.draftChanged(ctx, event, actorID, slot.ID, "created")
	return slot, nil
}

// slotGuard rejects edits of fields that follow the attached submission.
func slotGuard(slot *entity.TalkSlot, req *dto.UpdateSlotRequest) []errors.Violation {
	if !slot.HasSubmission() {
		return nil
	}
	var violations []errors.Violation
	if req.End != nil {
		violations = append(violations, errors.Violation{Field: "end", Message: msgEndLocked})
	}
	if req.Description != nil {
		violations = append(violations, errors.Violation{Field: "description", Message: msgDescriptionLocked})
	}
	return violations
}

func (s *ScheduleService) UpdateSlot(ctx context.Context, event *eventEntity.Event, actorID, slotID uuid.UUID, req *dto.UpdateSlotRequest) (*entity.TalkSlot, *errors.AppError) {
	slot, err := s.repo.GetDraftSlot(ctx, event.ID, slotID)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, errors.NewAppError(errors.ErrNotFound, "Slot not found", err)
		}
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load slot", err)
	}

	if req.ClearSubmission {
		slot.SubmissionID = nil
		slot.SubmissionCode = nil
		slot.SubmissionTitle = nil
		slot.Duration = nil
	}
	if violations := slotGuard(slot, req); len(violations) > 0 {
		return nil, errors.NewValidationError("Invalid slot", violations...)
	}

	if req.ClearRoom {
		slot.RoomID = nil
		slot.RoomName = nil
	} else if req.RoomID != nil {
		room, appErr := s.checkRoom(ctx, event.ID, req.RoomID)
		if appErr != nil {
			return nil, appErr
		}
		slot.RoomID = &room.ID
		slot.RoomName = &room.Name
	}
	if req.Start != nil {
		start := req.Start.UTC()
		slot.Start = &start
	}
	if req.IsVisible != nil {
		slot.IsVisible = *req.IsVisible
	}

	if slot.HasSubmission() {
		if slot.Start != nil && slot.Duration != nil {
			end := slot.Start.Add(time.Duration(*slot.Duration) * time.Minute)
			slot.End = &end
		}
	} else {
		if req.End != nil {
			end := req.End.UTC()
			slot.End = &end
		}
		if req.Description != nil {
			slot.Description = strings.TrimSpace(*req.Description)
		}
		if slot.Start != nil && slot.End != nil && slot.End.Before(*slot.Start) {
			return nil, errors.NewValidationError("Invalid slot",
				errors.Violation{Field: "end", Message: "The end must not be before the start."})
		}
	}

	if err := s.repo.UpdateSlot(ctx, slot); err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to update slot", err)
	}
	s.draftChanged(ctx, event, actorID, slot.ID, "updated")
	return slot, nil
}

func (s *ScheduleService) DeleteSlot(ctx context.Context, event *eventEntity.Event, actorID, slotID uuid.UUID) *errors.AppError {
	if _, err := s.repo.GetDraftSlot(ctx, event.ID, slotID); err != nil {
		if database.IsNoRows(err) {
			return errors.NewAppError(errors.ErrNotFound, "Slot not found", err)
		}
		return errors.NewAppError(errors.ErrGetFailed, "Failed to load slot", err)
	}
	if err := s.repo.DeleteSlot(ctx, slotID); err != nil {
		return errors.NewAppError(errors.ErrDeleteFailed, "Failed to delete slot", err)
	}
	s.draftChanged(ctx, event, actorID, slotID, "deleted")
	return nil
}

func (s *ScheduleService) FreeSlots(ctx context.Context, eventID uuid.UUID, req *dto.FreeSlotsRequest) ([]TimeRange, *errors.AppError) {
	var violations []errors.Violation
	if req.From == nil {
		violations = append(violations, errors.Violation{Field: "from", Message: "This field is required."})
	}
	if req.To == nil {
		violations = append(violations, errors.Violation{Field: "to", Message: "This field is required."})
	}
	if req.From != nil && req.To != nil && !req.From.Before(*req.To) {
		violations = append(violations, errors.Violation{Field: "to", Message: "The end must be after the start."})
	}
	if req.DurationMinutes <= 0 {
		violations = append(violations, errors.Violation{Field: "duration", Message: "Ensure this value is greater than 0."})
	}
	if len(violations) > 0 {
		return nil, errors.NewValidationError("Invalid search", violations...)
	}

	if _, appErr := s.checkRoom(ctx, eventID, &req.RoomID); appErr != nil {
		return nil, appErr
	}
	draft, appErr := s.draft(ctx, eventID)
	if appErr != nil {
		return nil, appErr
	}
	slots, err := s.repo.Slots(ctx, draft.ID, false)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load slots", err)
	}

	var busy []TimeRange
	for _, slot := range slots {
		if slot.RoomID == nil || *slot.RoomID != req.RoomID || slot.Start == nil || slot.End == nil {
			continue
		}
		busy = append(busy, TimeRange{Start: slot.Start.UTC(), End: slot.End.UTC()})
	}
	duration := time.Duration(req.DurationMinutes) * time.Minute
	return NewFreeSlotFinder().Find(req.From.UTC(), req.To.UTC(), duration, busy), nil
}

// draftChanged records the edit and queues the unreleased changes check.
func (s *ScheduleService) draftChanged(ctx context.Context, event *eventEntity.Event, actorID, slotID uuid.UUID, change string) {
	s.activity.Publish(ctx, activityEntity.Entry{
		EventID: event.ID,
		ActorID: &actorID,
		Action:  activityEntity.ActionScheduleSlotUpdated,
		Data:    activityEntity.JSONB{"slot_id": slotID.String(), "change": change},
	})
	task, err := queue.NewUpdateUnreleasedChangesTask(event.Slug, nil)
	queue.EnqueueAfterCommit(ctx, s.dispatcher, task, err)
}

func (s *ScheduleService) UpdateUnreleasedChanges(ctx context.Context, eventID uuid.UUID, value *bool) (bool, *errors.AppError) {
	var changed bool
	if value != nil {
		changed = *value
	} else {
		var appErr *errors.AppError
		changed, appErr = s.compareWithRelease(ctx, eventID)
		if appErr != nil {
			return false, appErr
		}
	}
	if appErr := s.events.SetUnreleasedScheduleChanges(ctx, eventID, changed); appErr != nil {
		return false, appErr
	}
	return changed, nil
}

func (s *ScheduleService) compareWithRelease(ctx context.Context, eventID uuid.UUID) (bool, *errors.AppError) {
	draft, appErr := s.draft(ctx, eventID)
	if appErr != nil {
		return false, appErr
	}
	draftSlots, err := s.repo.Slots(ctx, draft.ID, false)
	if err != nil {
		return false, errors.NewAppError(errors.ErrGetFailed, "Failed to load draft slots", err)
	}

	latest, err := s.repo.LatestRelease(ctx, eventID)
	if err != nil {
		return false, errors.NewAppError(errors.ErrGetFailed, "Failed to load the latest release", err)
	}
	if latest == nil {
		return HasChanges(draftSlots, nil, false, s.comparison), nil
	}
	releasedSlots, err := s.repo.Slots(ctx, latest.ID, false)
	if err != nil {
		return false, errors.NewAppError(errors.ErrGetFailed, "Failed to load released slots", err)
	}
	return HasChanges(draftSlots, releasedSlots, true, s.comparison), nil
}
