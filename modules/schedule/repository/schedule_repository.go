package repository

import (
	"context"

	"cfp-api/core/database"
	"cfp-api/core/logger"
	"cfp-api/modules/schedule/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	ConstraintScheduleVersion = "schedules_event_id_version_key"

	scheduleColumns = `id, event_id, version, comment, published, created_at, updated_at`
	slotSelect      = `
		SELECT t.id, t.schedule_id, t.submission_id, t.room_id, t.start_at, t.end_at,
		       t.description, t.is_visible, t.slot_type, t.created_at, t.updated_at,
		       s.code AS submission_code, s.title AS submission_title, s.duration_minutes,
		       r.name AS room_name
		FROM talk_slots t
		LEFT JOIN submissions s ON s.id = t.submission_id
		LEFT JOIN rooms r ON r.id = t.room_id`
)

type ScheduleRepositoryInterface interface {
	CreateRoom(ctx context.Context, room *entity.Room) error
	ListRooms(ctx context.Context, eventID uuid.UUID) ([]entity.Room, error)
	GetRoom(ctx context.Context, eventID, roomID uuid.UUID) (*entity.Room, error)

	// GetOrCreateDraft returns the event's draft, creating it when missing.
	GetOrCreateDraft(ctx context.Context, eventID uuid.UUID) (*entity.Schedule, error)
	VersionExists(ctx context.Context, eventID uuid.UUID, version string) (bool, error)
	// Release stores a new version holding a copy of every draft slot and
	// clears the event's unreleased changes flag, in one transaction.
	Release(ctx context.Context, eventID uuid.UUID, version, comment string) (*entity.Schedule, error)
	ListSchedules(ctx context.Context, eventID uuid.UUID) ([]entity.Schedule, error)
	GetSchedule(ctx context.Context, eventID, scheduleID uuid.UUID) (*entity.Schedule, error)
	GetByVersion(ctx context.Context, eventID uuid.UUID, version string) (*entity.Schedule, error)
	// LatestRelease returns nil without error when nothing was released.
	LatestRelease(ctx context.Context, eventID uuid.UUID) (*entity.Schedule, error)

	Slots(ctx context.Context, scheduleID uuid.UUID, onlyVisible bool) ([]entity.TalkSlot, error)
	// GetDraftSlot finds a slot of the event's draft. Released slots are
	// reported as missing.
	GetDraftSlot(ctx context.Context, eventID, slotID uuid.UUID) (*entity.TalkSlot, error)
	CreateSlot(ctx context.Context, slot *entity.TalkSlot) error
	UpdateSlot(ctx context.Context, slot *entity.TalkSlot) error
	DeleteSlot(ctx context.Context, slotID uuid.UUID) error
}

type ScheduleRepository struct {
	db database.Database
}

func NewScheduleRepository(db database.Database) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) CreateRoom(ctx context.Context, room *entity.Room) error {
	query := `
		INSERT INTO rooms (event_id, name, position)
		VALUES ($1, $2, $3)
		RETURNING id, event_id, name, position, created_at, updated_at`
	if err := r.db.GetContext(ctx, room, query, room.EventID, room.Name, room.Position); err != nil {
		logger.Error("ScheduleRepository:CreateRoom", err)
		return err
	}
	return nil
}

func (r *ScheduleRepository) ListRooms(ctx context.Context, eventID uuid.UUID) ([]entity.Room, error) {
	rooms := []entity.Room{}
	err := r.db.SelectContext(ctx, &rooms, `
		SELECT id, event_id, name, position, created_at, updated_at
		FROM rooms WHERE event_id = $1 ORDER BY position, name`, eventID)
	if err != nil {
		logger.Error("ScheduleRepository:ListRooms", err)
		return nil, err
	}
	return rooms, nil
}

func (r *ScheduleRepository) GetRoom(ctx context.Context, eventID, roomID uuid.UUID) (*entity.Room, error) {
	var room entity.Room
	err := r.db.GetContext(ctx, &room, `
		SELECT id, event_id, name, position, created_at, updated_at
		FROM rooms WHERE id = $1 AND event_id = $2`, roomID, eventID)
	if err != nil {
		if !database.IsNoRows(err) {
			logger.Error("ScheduleRepository:GetRoom", err)
		}
		return nil, err
	}
	return &room, nil
}

type getter interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	ExecContext(ctx context.Context, query string, args ...any) error
}

// txGetter adapts *sqlx.Tx to getter.
type txGetter struct{ tx *sqlx.Tx }

func (t txGetter) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	return t.tx.GetContext(ctx, dest, query, args...)
}

func (t txGetter) ExecContext(ctx context.Context, query string, args ...any) error {
	_, err := t.tx.ExecContext(ctx, query, args...)
	return err
}

func getOrCreateDraft(ctx context.Context, q getter, eventID uuid.UUID) (*entity.Schedule, error) {
	err := q.ExecContext(ctx, `
		INSERT INTO schedules (event_id) VALUES ($1)
		ON CONFLICT (event_id) WHERE version IS NULL DO NOTHING`, eventID)
	if err != nil {
		return nil, err
	}
	var draft entity.Schedule
	err = q.GetContext(ctx, &draft,
		`SELECT `+scheduleColumns+` FROM schedules WHERE event_id = $1 AND version IS NULL`, eventID)
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

func (r *ScheduleRepository) GetOrCreateDraft(ctx context.Context, eventID uuid.UUID) (*entity.Schedule, error) {
	draft, err := getOrCreateDraft(ctx, &r.db, eventID)
	if err != nil {
		logger.Error("ScheduleRepository:GetOrCreateDraft", err)
		return nil, err
	}
	return draft, nil
}

func (r *ScheduleRepository) VersionExists(ctx context.Context, eventID uuid.UUID, version string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM schedules WHERE event_id = $1 AND version = $2)`, eventID, version)
	if err != nil {
		logger.Error("ScheduleRepository:VersionExists", err)
		return false, err
	}
	return exists, nil
}

func (r *ScheduleRepository) Release(ctx context.Context, eventID uuid.UUID, version, comment string) (*entity.Schedule, error) {
	var released entity.Schedule
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		var id uuid.UUID
		if err := tx.GetContext(ctx, &id, `SELECT id FROM events WHERE id = $1 FOR UPDATE`, eventID); err != nil {
			return err
		}

		draft, err := getOrCreateDraft(ctx, txGetter{tx}, eventID)
		if err != nil {
			return err
		}

		err = tx.GetContext(ctx, &released, `
			INSERT INTO schedules (event_id, version, comment, published)
			VALUES ($1, $2, $3, NOW())
			RETURNING `+scheduleColumns, eventID, version, comment)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO talk_slots (schedule_id, submission_id, room_id, start_at, end_at, description, is_visible, slot_type)
			SELECT $2::uuid, submission_id, room_id, start_at, end_at, description, is_visible, slot_type
			FROM talk_slots WHERE schedule_id = $1`, draft.ID, released.ID)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE events SET has_unreleased_schedule_changes = FALSE, updated_at = NOW() WHERE id = $1`, eventID)
		return err
	})
	if err != nil {
		if !database.IsUniqueViolation(err, ConstraintScheduleVersion) {
			logger.Error("ScheduleRepository:Release", err)
		}
		return nil, err
	}
	return &released, nil
}

func (r *ScheduleRepository) ListSchedules(ctx context.Context, eventID uuid.UUID) ([]entity.Schedule, error) {
	schedules := []entity.Schedule{}
	err := r.db.SelectContext(ctx, &schedules, `
		SELECT `+scheduleColumns+` FROM schedules
		WHERE event_id = $1
		ORDER BY version IS NOT NULL, published DESC NULLS LAST`, eventID)
	if err != nil {
		logger.Error("ScheduleRepository:ListSchedules", err)
		return nil, err
	}
	return schedules, nil
}

func (r *ScheduleRepository) GetSchedule(ctx context.Context, eventID, scheduleID uuid.UUID) (*entity.Schedule, error) {
	var schedule entity.Schedule
	err := r.db.GetContext(ctx, &schedule,
		`SELECT `+scheduleColumns+` FROM schedules WHERE id = $1 AND event_id = $2`, scheduleID, eventID)
	if err != nil {
		if !database.IsNoRows(err) {
			logger.Error("ScheduleRepository:GetSchedule", err)
		}
		return nil, err
	}
	return &schedule, nil
}

func (r *ScheduleRepository) GetByVersion(ctx context.Context, eventID uuid.UUID, version string) (*entity.Schedule, error) {
	var schedule entity.Schedule
	err := r.db.GetContext(ctx, &schedule,
		`SELECT `+scheduleColumns+` FROM schedules WHERE event_id = $1 AND version = $2`, eventID, version)
	if err != nil {
		if !database.IsNoRows(err) {
			logger.Error("ScheduleRepository:GetByVersion", err)
		}
		return nil, err
	}
	return &schedule, nil
}

func (r *ScheduleRepository) LatestRelease(ctx context.Context, eventID uuid.UUID) (*entity.Schedule, error) {
	var schedule entity.Schedule
	err := r.db.GetContext(ctx, &schedule, `
		SELECT `+scheduleColumns+` FROM schedules
		WHERE event_id = $1 AND version IS NOT NULL
		ORDER BY published DESC, created_at DESC
		LIMIT 1`, eventID)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		logger.Error("ScheduleRepository:LatestRelease", err)
		return nil, err
	}
	return &schedule, nil
}

func (r *ScheduleRepository) Slots(ctx context.Context, scheduleID uuid.UUID, onlyVisible bool) ([]entity.TalkSlot, error) {
	slots := []entity.TalkSlot{}
	query := slotSelect + `
		WHERE t.schedule_id = $1 AND (NOT $2 OR t.is_visible)
		ORDER BY t.start_at NULLS LAST, r.position, t.created_at`
	if err := r.db.SelectContext(ctx, &slots, query, scheduleID, onlyVisible); err != nil {
		logger.Error("ScheduleRepository:Slots", err)
		return nil, err
	}
	return slots, nil
}

func (r *ScheduleRepository) GetDraftSlot(ctx context.Context, eventID, slotID uuid.UUID) (*entity.TalkSlot, error) {
	var slot entity.TalkSlot
	query := slotSelect + `
		JOIN schedules sc ON sc.id = t.schedule_id
		WHERE t.id = $1 AND sc.event_id = $2 AND sc.version IS NULL`
	if err := r.db.GetContext(ctx, &slot, query, slotID, eventID); err != nil {
		if !database.IsNoRows(err) {
			logger.Error("ScheduleRepository:GetDraftSlot", err)
		}
		return nil, err
	}
	return &slot, nil
}

func (r *ScheduleRepository) CreateSlot(ctx context.Context, slot *entity.TalkSlot) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO talk_slots (schedule_id, submission_id, room_id, start_at, end_at, description, is_visible, slot_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		slot.ScheduleID, slot.SubmissionID, slot.RoomID, slot.Start, slot.End,
		slot.Description, slot.IsVisible, slot.SlotType,
	).Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt)
	if err != nil {
		logger.Error("ScheduleRepository:CreateSlot", err)
		return err
	}
	return nil
}

func (r *ScheduleRepository) UpdateSlot(ctx context.Context, slot *entity.TalkSlot) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE talk_slots
		SET submission_id = $2, room_id = $3, start_at = $4, end_at = $5,
		    description = $6, is_visible = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		slot.ID, slot.SubmissionID, slot.RoomID, slot.Start, slot.End, slot.Description, slot.IsVisible,
	).Scan(&slot.UpdatedAt)
	if err != nil {
		logger.Error("ScheduleRepository:UpdateSlot", err)
		return err
	}
	return nil
}

func (r *ScheduleRepository) DeleteSlot(ctx context.Context, slotID uuid.UUID) error {
	if err := r.db.ExecContext(ctx, `DELETE FROM talk_slots WHERE id = $1`, slotID); err != nil {
		logger.Error("ScheduleRepository:DeleteSlot", err)
		return err
	}
	return nil
}
