package repository

import (
	"context"

	"cfp-api/core/database"
	"cfp-api/core/logger"
	"cfp-api/core/params"
	"cfp-api/modules/submission/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	ConstraintSubmissionCode = "submissions_code_key"
	submissionColumns        = `id, event_id, code, title, abstract, duration_minutes, state, created_at, updated_at`
)

type SubmissionRepositoryInterface interface {
	Create(ctx context.Context, submission *entity.Submission) error
	GetByCode(ctx context.Context, eventID uuid.UUID, code string) (*entity.Submission, error)
	List(ctx context.Context, eventID uuid.UUID, state string, params params.QueryParams) (*entity.PaginatedSubmissionEntity, error)
	SpeakersBySubmission(ctx context.Context, submissionIDs []uuid.UUID) (map[uuid.UUID][]entity.Speaker, error)
	// UpdateContent stores the submission and, when propagate is set,
	// rewrites end and description of its draft slots. It returns the
	// number of slots rewritten.
	UpdateContent(ctx context.Context, submission *entity.Submission, propagate bool) (int64, error)
}

type SubmissionRepository struct {
	db database.Database
}

func NewSubmissionRepository(db database.Database) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func (r *SubmissionRepository) Create(ctx context.Context, submission *entity.Submission) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO submissions (event_id, code, title, abstract, duration_minutes, state)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING ` + submissionColumns
		speakers := submission.Speakers
		err := tx.GetContext(ctx, submission, query,
			submission.EventID, submission.Code, submission.Title,
			submission.Abstract, submission.DurationMinutes, submission.State)
		if err != nil {
			if !database.IsUniqueViolation(err, ConstraintSubmissionCode) {
				logger.Error("SubmissionRepository:Create", err)
			}
			return err
		}

		for i := range speakers {
			speakers[i].SubmissionID = submission.ID
			_, err := tx.ExecContext(ctx,
				`INSERT INTO submission_speakers (submission_id, user_id, name) VALUES ($1, $2, $3)`,
				submission.ID, speakers[i].UserID, speakers[i].Name)
			if err != nil {
				logger.Error("SubmissionRepository:Create:Speaker", err)
				return err
			}
		}
		submission.Speakers = speakers
		return nil
	})
}

func (r *SubmissionRepository) GetByCode(ctx context.Context, eventID uuid.UUID, code string) (*entity.Submission, error) {
	var submission entity.Submission
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE event_id = $1 AND code = $2`
	if err := r.db.GetContext(ctx, &submission, query, eventID, code); err != nil {
		if !database.IsNoRows(err) {
			logger.Error("SubmissionRepository:GetByCode", err)
		}
		return nil, err
	}

	speakers, err := r.SpeakersBySubmission(ctx, []uuid.UUID{submission.ID})
	if err != nil {
		return nil, err
	}
	submission.Speakers = speakers[submission.ID]
	return &submission, nil
}

func (r *SubmissionRepository) List(ctx context.Context, eventID uuid.UUID, state string, params params.QueryParams) (*entity.PaginatedSubmissionEntity, error) {
	baseQuery := `FROM submissions WHERE event_id = $1 AND ($2 = '' OR state = $2)`

	var totalItems int
	if err := r.db.GetContext(ctx, &totalItems, "SELECT COUNT(*) "+baseQuery, eventID, state); err != nil {
		logger.Error("SubmissionRepository:List:Count", err)
		return nil, err
	}

	query := `SELECT ` + submissionColumns + ` ` + baseQuery + `
		ORDER BY created_at
		LIMIT $3 OFFSET $4
	`
	submissions := []entity.Submission{}
	if err := r.db.SelectContext(ctx, &submissions, query, eventID, state, params.PageSize, params.Offset()); err != nil {
		logger.Error("SubmissionRepository:List:Select", err)
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(submissions))
	for _, s := range submissions {
		ids = append(ids, s.ID)
	}
	speakers, err := r.SpeakersBySubmission(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range submissions {
		submissions[i].Speakers = speakers[submissions[i].ID]
	}

	return &entity.PaginatedSubmissionEntity{
		Items:      submissions,
		TotalItems: totalItems,
		PageNumber: params.PageNumber,
		PageSize:   params.PageSize,
	}, nil
}

func (r *SubmissionRepository) SpeakersBySubmission(ctx context.Context, submissionIDs []uuid.UUID) (map[uuid.UUID][]entity.Speaker, error) {
	result := make(map[uuid.UUID][]entity.Speaker, len(submissionIDs))
	if len(submissionIDs) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`
		SELECT submission_id, user_id, name
		FROM submission_speakers
		WHERE submission_id IN (?)
		ORDER BY name
	`, submissionIDs)
	if err != nil {
		return nil, err
	}

	var speakers []entity.Speaker
	if err := r.db.SelectContext(ctx, &speakers, r.db.SQLx().Rebind(query), args...); err != nil {
		logger.Error("SubmissionRepository:SpeakersBySubmission", err)
		return nil, err
	}
	for _, sp := range speakers {
		result[sp.SubmissionID] = append(result[sp.SubmissionID], sp)
	}
	return result, nil
}

func (r *SubmissionRepository) UpdateContent(ctx context.Context, submission *entity.Submission, propagate bool) (int64, error) {
	var rewritten int64
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE submissions
			SET title = $2, abstract = $3, duration_minutes = $4, state = $5, updated_at = NOW()
			WHERE id = $1
			RETURNING updated_at
		`
		err := tx.GetContext(ctx, &submission.UpdatedAt, query,
			submission.ID, submission.Title, submission.Abstract, submission.DurationMinutes, submission.State)
		if err != nil {
			logger.Error("SubmissionRepository:UpdateContent", err)
			return err
		}
		if !propagate {
			return nil
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE talk_slots ts
			SET end_at = ts.start_at + make_interval(mins => $2),
			    description = $3,
			    updated_at = NOW()
			FROM schedules s
			WHERE ts.schedule_id = s.id
			  AND s.version IS NULL
			  AND ts.submission_id = $1
		`, submission.ID, submission.DurationMinutes, submission.Abstract)
		if err != nil {
			logger.Error("SubmissionRepository:UpdateContent:Slots", err)
			return err
		}
		rewritten, err = result.RowsAffected()
		return err
	})
	return rewritten, err
}
