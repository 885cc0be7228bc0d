package service

import (
	"context"
	"database/sql"
	"time"

	"cfp-api/core/errors"
	"cfp-api/modules/schedule/entity"
	"cfp-api/modules/schedule/repository"
	submissionEntity "cfp-api/modules/submission/entity"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type fakeScheduleRepo struct {
	rooms     []entity.Room
	schedules []entity.Schedule
	slots     map[uuid.UUID]*entity.TalkSlot
	// raceVersion makes the pre-check miss a version that the insert then
	// hits, as if another release committed in between.
	raceVersion string
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{slots: map[uuid.UUID]*entity.TalkSlot{}}
}

func (f *fakeScheduleRepo) CreateRoom(_ context.Context, room *entity.Room) error {
	room.ID = uuid.New()
	f.rooms = append(f.rooms, *room)
	return nil
}

func (f *fakeScheduleRepo) ListRooms(_ context.Context, _ uuid.UUID) ([]entity.Room, error) {
	return append([]entity.Room{}, f.rooms...), nil
}

func (f *fakeScheduleRepo) GetRoom(_ context.Context, _, roomID uuid.UUID) (*entity.Room, error) {
	for _, r := range f.rooms {
		if r.ID == roomID {
			copied := r
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeScheduleRepo) GetOrCreateDraft(_ context.Context, eventID uuid.UUID) (*entity.Schedule, error) {
	for _, s := range f.schedules {
		if s.EventID == eventID && s.IsDraft() {
			copied := s
			return &copied, nil
		}
	}
	draft := entity.Schedule{EventID: eventID}
	draft.ID = uuid.New()
	f.schedules = append(f.schedules, draft)
	return &draft, nil
}

func (f *fakeScheduleRepo) VersionExists(_ context.Context, eventID uuid.UUID, version string) (bool, error) {
	for _, s := range f.schedules {
		if s.EventID == eventID && s.Version != nil && *s.Version == version && version != f.raceVersion {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeScheduleRepo) Release(ctx context.Context, eventID uuid.UUID, version, comment string) (*entity.Schedule, error) {
	for _, s := range f.schedules {
		if s.EventID == eventID && s.Version != nil && *s.Version == version {
			return nil, &pq.Error{Code: "23505", Constraint: repository.ConstraintScheduleVersion}
		}
	}
	draft, _ := f.GetOrCreateDraft(ctx, eventID)
	now := time.Now()
	released := entity.Schedule{EventID: eventID, Version: &version, Comment: &comment, Published: &now}
	released.ID = uuid.New()
	f.schedules = append(f.schedules, released)
	for _, slot := range f.slotsOf(draft.ID) {
		copied := slot
		copied.ID = uuid.New()
		copied.ScheduleID = released.ID
		f.slots[copied.ID] = &copied
	}
	return &released, nil
}

func (f *fakeScheduleRepo) ListSchedules(_ context.Context, eventID uuid.UUID) ([]entity.Schedule, error) {
	out := []entity.Schedule{}
	for _, s := range f.schedules {
		if s.EventID == eventID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeScheduleRepo) GetSchedule(_ context.Context, eventID, scheduleID uuid.UUID) (*entity.Schedule, error) {
	for _, s := range f.schedules {
		if s.EventID == eventID && s.ID == scheduleID {
			copied := s
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeScheduleRepo) GetByVersion(_ context.Context, eventID uuid.UUID, version string) (*entity.Schedule, error) {
	for _, s := range f.schedules {
		if s.EventID == eventID && s.Version != nil && *s.Version == version {
			copied := s
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeScheduleRepo) LatestRelease(_ context.Context, eventID uuid.UUID) (*entity.Schedule, error) {
	var latest *entity.Schedule
	for i := range f.schedules {
		s := f.schedules[i]
		if s.EventID == eventID && !s.IsDraft() {
			latest = &s
		}
	}
	return latest, nil
}

func (f *fakeScheduleRepo) slotsOf(scheduleID uuid.UUID) []entity.TalkSlot {
	out := []entity.TalkSlot{}
	for _, slot := range f.slots {
		if slot.ScheduleID == scheduleID {
			out = append(out, *slot)
		}
	}
	return out
}

func (f *fakeScheduleRepo) Slots(_ context.Context, scheduleID uuid.UUID, onlyVisible bool) ([]entity.TalkSlot, error) {
	out := []entity.TalkSlot{}
	for _, slot := range f.slotsOf(scheduleID) {
		if !onlyVisible || slot.IsVisible {
			out = append(out, slot)
		}
	}
	return out, nil
}

func (f *fakeScheduleRepo) GetDraftSlot(_ context.Context, eventID, slotID uuid.UUID) (*entity.TalkSlot, error) {
	slot, ok := f.slots[slotID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	for _, s := range f.schedules {
		if s.ID == slot.ScheduleID && s.EventID == eventID && s.IsDraft() {
			copied := *slot
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeScheduleRepo) CreateSlot(_ context.Context, slot *entity.TalkSlot) error {
	slot.ID = uuid.New()
	copied := *slot
	f.slots[slot.ID] = &copied
	return nil
}

func (f *fakeScheduleRepo) UpdateSlot(_ context.Context, slot *entity.TalkSlot) error {
	copied := *slot
	f.slots[slot.ID] = &copied
	return nil
}

func (f *fakeScheduleRepo) DeleteSlot(_ context.Context, slotID uuid.UUID) error {
	delete(f.slots, slotID)
	return nil
}

type fakeEvents struct {
	flags map[uuid.UUID]bool
}

func (f *fakeEvents) SetUnreleasedScheduleChanges(_ context.Context, eventID uuid.UUID, value bool) *errors.AppError {
	f.flags[eventID] = value
	return nil
}

type fakeSubmissions struct {
	byCode map[string]*submissionEntity.Submission
}

func (f *fakeSubmissions) FindByCode(_ context.Context, _ uuid.UUID, code string) (*submissionEntity.Submission, *errors.AppError) {
	s, ok := f.byCode[code]
	if !ok {
		return nil, errors.NewAppError(errors.ErrNotFound, "Submission not found", sql.ErrNoRows)
	}
	return s, nil
}
