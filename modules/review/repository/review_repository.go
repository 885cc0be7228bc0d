package repository

import (
	"context"

	"cfp-api/core/database"
	"cfp-api/core/logger"
	"cfp-api/modules/review/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ScoreFunc computes a review's aggregate from its picked value per
// category. It runs inside the transaction that stores the result.
type ScoreFunc func(values map[uuid.UUID]float64, categories []entity.ScoreCategory) *float64

type ReviewRepositoryInterface interface {
	// Upsert stores the reviewer's single review of a submission and its
	// category scores, then sets its aggregate from the categories as
	// they are at commit time.
	Upsert(ctx context.Context, review *entity.Review, score ScoreFunc) error
	List(ctx context.Context, eventID uuid.UUID, submissionID *uuid.UUID) ([]entity.Review, error)
	// RecalculateScores rewrites the aggregate of every review of the
	// event and returns how many rows changed. It holds the event lock,
	// so reviews saved meanwhile wait and see the new weights.
	RecalculateScores(ctx context.Context, eventID uuid.UUID, score ScoreFunc) (int, error)
}

type ReviewRepository struct {
	db database.Database
}

func NewReviewRepository(db database.Database) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// shareEvent blocks category saves and recalculations of the event
// while a review is written. Reviews do not block each other.
func shareEvent(ctx context.Context, tx *sqlx.Tx, eventID uuid.UUID) error {
	var id uuid.UUID
	return tx.GetContext(ctx, &id, `SELECT id FROM events WHERE id = $1 FOR SHARE`, eventID)
}

func (r *ReviewRepository) Upsert(ctx context.Context, review *entity.Review, score ScoreFunc) error {
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := shareEvent(ctx, tx, review.EventID); err != nil {
			return err
		}

		row := tx.QueryRowxContext(ctx, `
			INSERT INTO reviews (event_id, submission_id, reviewer_id, reviewer_name, text)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT ON CONSTRAINT reviews_submission_id_reviewer_id_key
			DO UPDATE SET reviewer_name = EXCLUDED.reviewer_name, text = EXCLUDED.text, updated_at = NOW()
			RETURNING id, created_at, updated_at
		`, review.EventID, review.SubmissionID, review.ReviewerID, review.ReviewerName, review.Text)
		if err := row.Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM review_category_scores WHERE review_id = $1`, review.ID); err != nil {
			return err
		}
		for i := range review.CategoryScores {
			cs := &review.CategoryScores[i]
			cs.ReviewID = review.ID
			_, err := tx.ExecContext(ctx,
				`INSERT INTO review_category_scores (review_id, category_id, score_id) VALUES ($1, $2, $3)`,
				review.ID, cs.CategoryID, cs.ScoreID)
			if err != nil {
				return err
			}
		}

		categories, err := listCategories(ctx, tx, review.EventID)
		if err != nil {
			return err
		}
		values, err := pickedValues(ctx, tx, review.EventID, &review.ID)
		if err != nil {
			return err
		}
		review.Score = score(values[review.ID], categories)
		_, err = tx.ExecContext(ctx, `UPDATE reviews SET score = $2 WHERE id = $1`, review.ID, review.Score)
		return err
	})
	if err != nil {
		logger.Error("ReviewRepository:Upsert", err)
	}
	return err
}

func (r *ReviewRepository) List(ctx context.Context, eventID uuid.UUID, submissionID *uuid.UUID) ([]entity.Review, error) {
	reviews := []entity.Review{}
	err := r.db.SelectContext(ctx, &reviews, `
		SELECT r.id, r.event_id, r.submission_id, s.code AS submission_code, s.title AS submission_title,
		       r.reviewer_id, r.reviewer_name, r.text, r.score, r.created_at, r.updated_at
		FROM reviews r
		JOIN submissions s ON s.id = r.submission_id
		WHERE r.event_id = $1 AND ($2::uuid IS NULL OR r.submission_id = $2)
		ORDER BY s.code, r.created_at
	`, eventID, submissionID)
	if err != nil {
		logger.Error("ReviewRepository:List", err)
		return nil, err
	}

	var picks []entity.CategoryScore
	err = r.db.SelectContext(ctx, &picks, `
		SELECT rcs.review_id, rcs.category_id, rcs.score_id, rs.value
		FROM review_category_scores rcs
		JOIN reviews r ON r.id = rcs.review_id
		JOIN review_scores rs ON rs.id = rcs.score_id
		WHERE r.event_id = $1 AND ($2::uuid IS NULL OR r.submission_id = $2)
	`, eventID, submissionID)
	if err != nil {
		logger.Error("ReviewRepository:List:Scores", err)
		return nil, err
	}

	byReview := map[uuid.UUID][]entity.CategoryScore{}
	for _, p := range picks {
		byReview[p.ReviewID] = append(byReview[p.ReviewID], p)
	}
	for i := range reviews {
		reviews[i].CategoryScores = byReview[reviews[i].ID]
	}
	return reviews, nil
}

// pickedValues maps every review of the event, or only reviewID when
// given, to its picked value per category. Reviews without picks map to
// an empty map. The review rows are locked until the transaction ends.
func pickedValues(ctx context.Context, tx *sqlx.Tx, eventID uuid.UUID, reviewID *uuid.UUID) (map[uuid.UUID]map[uuid.UUID]float64, error) {
	var reviewIDs []uuid.UUID
	err := tx.SelectContext(ctx, &reviewIDs, `
		SELECT id FROM reviews
		WHERE event_id = $1 AND ($2::uuid IS NULL OR id = $2)
		ORDER BY id
		FOR UPDATE
	`, eventID, reviewID)
	if err != nil {
		return nil, err
	}

	var picks []entity.CategoryScore
	err = tx.SelectContext(ctx, &picks, `
		SELECT rcs.review_id, rcs.category_id, rcs.score_id, rs.value
		FROM review_category_scores rcs
		JOIN reviews r ON r.id = rcs.review_id
		JOIN review_scores rs ON rs.id = rcs.score_id
		WHERE r.event_id = $1 AND ($2::uuid IS NULL OR r.id = $2)
	`, eventID, reviewID)
	if err != nil {
		return nil, err
	}

	values := make(map[uuid.UUID]map[uuid.UUID]float64, len(reviewIDs))
	for _, id := range reviewIDs {
		values[id] = map[uuid.UUID]float64{}
	}
	for _, p := range picks {
		if m, ok := values[p.ReviewID]; ok {
			m[p.CategoryID] = p.Value
		}
	}
	return values, nil
}

func (r *ReviewRepository) RecalculateScores(ctx context.Context, eventID uuid.UUID, score ScoreFunc) (int, error) {
	changed := 0
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockEvent(ctx, tx, eventID); err != nil {
			return err
		}
		categories, err := listCategories(ctx, tx, eventID)
		if err != nil {
			return err
		}
		values, err := pickedValues(ctx, tx, eventID, nil)
		if err != nil {
			return err
		}

		for id, picked := range values {
			aggregate := score(picked, categories)
			result, err := tx.ExecContext(ctx, `
				UPDATE reviews SET score = $2, updated_at = NOW()
				WHERE id = $1 AND score IS DISTINCT FROM $2::double precision
			`, id, aggregate)
			if err != nil {
				return err
			}
			n, err := result.RowsAffected()
			if err != nil {
				return err
			}
			changed += int(n)
		}
		return nil
	})
	if err != nil {
		logger.Error("ReviewRepository:RecalculateScores", err)
		return 0, err
	}
	return changed, nil
}
