package repository

import (
	"context"
	stderrors "errors"

	"cfp-api/core/database"
	"cfp-api/core/logger"
	"cfp-api/modules/review/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrUnknownPhase is returned when a saved phase ID does not belong to the event.
var ErrUnknownPhase = stderrors.New("review phase does not belong to event")

const phaseColumns = `id, event_id, name, start_at, end_at, position,
	can_see_speaker_names, can_see_reviewer_names, is_active, created_at, updated_at`

// ReorderFunc sorts and validates the stored phases inside the saving
// transaction. An error rolls the whole save back.
type ReorderFunc func(phases []entity.ReviewPhase) ([]entity.ReviewPhase, error)

type PhaseRepositoryInterface interface {
	ListPhases(ctx context.Context, eventID uuid.UUID) ([]entity.ReviewPhase, error)
	SavePhases(ctx context.Context, eventID uuid.UUID, phases []entity.ReviewPhase, reorder ReorderFunc) ([]entity.ReviewPhase, error)
	ActivatePhase(ctx context.Context, eventID, phaseID uuid.UUID) (*entity.ReviewPhase, error)
	ActivePhase(ctx context.Context, eventID uuid.UUID) (*entity.ReviewPhase, error)
}

type PhaseRepository struct {
	db database.Database
}

func NewPhaseRepository(db database.Database) *PhaseRepository {
	return &PhaseRepository{db: db}
}

func (r *PhaseRepository) ListPhases(ctx context.Context, eventID uuid.UUID) ([]entity.ReviewPhase, error) {
	phases := []entity.ReviewPhase{}
	query := `SELECT ` + phaseColumns + ` FROM review_phases WHERE event_id = $1 ORDER BY position, created_at`
	if err := r.db.SelectContext(ctx, &phases, query, eventID); err != nil {
		logger.Error("PhaseRepository:ListPhases", err)
		return nil, err
	}
	return phases, nil
}

// lockEvent serialises writers of the event's review configuration.
func lockEvent(ctx context.Context, tx *sqlx.Tx, eventID uuid.UUID) error {
	var id uuid.UUID
	return tx.GetContext(ctx, &id, `SELECT id FROM events WHERE id = $1 FOR UPDATE`, eventID)
}

func (r *PhaseRepository) SavePhases(ctx context.Context, eventID uuid.UUID, phases []entity.ReviewPhase, reorder ReorderFunc) ([]entity.ReviewPhase, error) {
	var saved []entity.ReviewPhase
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockEvent(ctx, tx, eventID); err != nil {
			return err
		}

		var existing []uuid.UUID
		if err := tx.SelectContext(ctx, &existing, `SELECT id FROM review_phases WHERE event_id = $1`, eventID); err != nil {
			return err
		}
		known := make(map[uuid.UUID]bool, len(existing))
		for _, id := range existing {
			known[id] = true
		}

		keep := map[uuid.UUID]bool{}
		for _, phase := range phases {
			if phase.ID == uuid.Nil {
				continue
			}
			if !known[phase.ID] {
				return ErrUnknownPhase
			}
			keep[phase.ID] = true
		}

		for _, id := range existing {
			if keep[id] {
				continue
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM review_phases WHERE id = $1`, id); err != nil {
				return err
			}
		}

		for i := range phases {
			phase := &phases[i]
			if phase.ID == uuid.Nil {
				err := tx.GetContext(ctx, &phase.ID, `
					INSERT INTO review_phases (event_id, name, start_at, end_at, position, can_see_speaker_names, can_see_reviewer_names)
					VALUES ($1, $2, $3, $4, $5, $6, $7)
					RETURNING id
				`, eventID, phase.Name, phase.Start, phase.End, i, phase.CanSeeSpeakerNames, phase.CanSeeReviewerNames)
				if err != nil {
					return err
				}
				continue
			}
			_, err := tx.ExecContext(ctx, `
				UPDATE review_phases
				SET name = $2, start_at = $3, end_at = $4,
				    can_see_speaker_names = $5, can_see_reviewer_names = $6, updated_at = NOW()
				WHERE id = $1
			`, phase.ID, phase.Name, phase.Start, phase.End, phase.CanSeeSpeakerNames, phase.CanSeeReviewerNames)
			if err != nil {
				return err
			}
		}

		var stored []entity.ReviewPhase
		if err := tx.SelectContext(ctx, &stored, `SELECT `+phaseColumns+` FROM review_phases WHERE event_id = $1`, eventID); err != nil {
			return err
		}
		ordered, err := reorder(stored)
		if err != nil {
			return err
		}

		for _, phase := range ordered {
			if _, err := tx.ExecContext(ctx, `UPDATE review_phases SET position = $2 WHERE id = $1`, phase.ID, phase.Position); err != nil {
				return err
			}
		}
		saved = ordered
		return nil
	})
	if err != nil {
		logger.Debug("PhaseRepository:SavePhases", "event_id", eventID, "error", err)
		return nil, err
	}
	return saved, nil
}

// ActivatePhase deactivates every phase of the event, then activates the
// target, in one transaction.
func (r *PhaseRepository) ActivatePhase(ctx context.Context, eventID, phaseID uuid.UUID) (*entity.ReviewPhase, error) {
	var phase entity.ReviewPhase
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockEvent(ctx, tx, eventID); err != nil {
			return err
		}
		err := tx.GetContext(ctx, &phase,
			`SELECT `+phaseColumns+` FROM review_phases WHERE id = $1 AND event_id = $2`, phaseID, eventID)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE review_phases SET is_active = FALSE, updated_at = NOW() WHERE event_id = $1 AND is_active`, eventID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE review_phases SET is_active = TRUE, updated_at = NOW() WHERE id = $1`, phaseID); err != nil {
			return err
		}
		phase.IsActive = true
		return nil
	})
	if err != nil {
		if !database.IsNoRows(err) {
			logger.Error("PhaseRepository:ActivatePhase", err)
		}
		return nil, err
	}
	return &phase, nil
}

// ActivePhase returns nil without error when no phase is active.
func (r *PhaseRepository) ActivePhase(ctx context.Context, eventID uuid.UUID) (*entity.ReviewPhase, error) {
	var phase entity.ReviewPhase
	err := r.db.GetContext(ctx, &phase,
		`SELECT `+phaseColumns+` FROM review_phases WHERE event_id = $1 AND is_active`, eventID)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		logger.Error("PhaseRepository:ActivePhase", err)
		return nil, err
	}
	return &phase, nil
}
