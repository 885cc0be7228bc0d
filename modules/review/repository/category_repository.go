package repository

import (
	"context"
	stderrors "errors"

	"cfp-api/core/database"
	"cfp-api/core/logger"
	"cfp-api/modules/review/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ErrUnknownCategory is returned when a saved category ID does not belong to the event.
var ErrUnknownCategory = stderrors.New("score category does not belong to event")

const categoryColumns = `id, event_id, name, weight, required, is_independent, position, created_at, updated_at`

type CategoryRepositoryInterface interface {
	ListCategories(ctx context.Context, eventID uuid.UUID) ([]entity.ScoreCategory, error)
	// SaveCategories replaces the event's categories with the given list
	// and returns the categories as they were before and after the save.
	SaveCategories(ctx context.Context, eventID uuid.UUID, categories []entity.ScoreCategory) (before, after []entity.ScoreCategory, err error)
}

type CategoryRepository struct {
	db database.Database
}

func NewCategoryRepository(db database.Database) *CategoryRepository {
	return &CategoryRepository{db: db}
}

type queryer interface {
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

func listCategories(ctx context.Context, q queryer, eventID uuid.UUID) ([]entity.ScoreCategory, error) {
	categories := []entity.ScoreCategory{}
	query := `SELECT ` + categoryColumns + ` FROM review_score_categories WHERE event_id = $1 ORDER BY position, created_at`
	if err := q.SelectContext(ctx, &categories, query, eventID); err != nil {
		return nil, err
	}

	var scores []entity.Score
	err := q.SelectContext(ctx, &scores, `
		SELECT s.id, s.category_id, s.value, s.label
		FROM review_scores s
		JOIN review_score_categories c ON c.id = s.category_id
		WHERE c.event_id = $1
		ORDER BY s.value
	`, eventID)
	if err != nil {
		return nil, err
	}

	byCategory := map[uuid.UUID][]entity.Score{}
	for _, s := range scores {
		byCategory[s.CategoryID] = append(byCategory[s.CategoryID], s)
	}
	for i := range categories {
		categories[i].Scores = byCategory[categories[i].ID]
		if categories[i].Scores == nil {
			categories[i].Scores = []entity.Score{}
		}
	}
	return categories, nil
}

func (r *CategoryRepository) ListCategories(ctx context.Context, eventID uuid.UUID) ([]entity.ScoreCategory, error) {
	categories, err := listCategories(ctx, r.db.SQLx(), eventID)
	if err != nil {
		logger.Error("CategoryRepository:ListCategories", err)
		return nil, err
	}
	return categories, nil
}

func (r *CategoryRepository) SaveCategories(ctx context.Context, eventID uuid.UUID, categories []entity.ScoreCategory) ([]entity.ScoreCategory, []entity.ScoreCategory, error) {
	var before, after []entity.ScoreCategory
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockEvent(ctx, tx, eventID); err != nil {
			return err
		}

		var err error
		before, err = listCategories(ctx, tx, eventID)
		if err != nil {
			return err
		}
		known := make(map[uuid.UUID]bool, len(before))
		for _, c := range before {
			known[c.ID] = true
		}

		keep := map[uuid.UUID]bool{}
		for _, c := range categories {
			if c.ID == uuid.Nil {
				continue
			}
			if !known[c.ID] {
				return ErrUnknownCategory
			}
			keep[c.ID] = true
		}

		// Scale values of removed categories go before the category rows.
		for _, c := range before {
			if keep[c.ID] {
				continue
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM review_scores WHERE category_id = $1`, c.ID); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM review_score_categories WHERE id = $1`, c.ID); err != nil {
				return err
			}
		}

		for i := range categories {
			c := &categories[i]
			if c.ID == uuid.Nil {
				err := tx.GetContext(ctx, &c.ID, `
					INSERT INTO review_score_categories (event_id, name, weight, required, is_independent, position)
					VALUES ($1, $2, $3, $4, $5, $6)
					RETURNING id
				`, eventID, c.Name, c.Weight, c.Required, c.IsIndependent, c.Position)
				if err != nil {
					return err
				}
			} else {
				_, err := tx.ExecContext(ctx, `
					UPDATE review_score_categories
					SET name = $2, weight = $3, required = $4, is_independent = $5, position = $6, updated_at = NOW()
					WHERE id = $1
				`, c.ID, c.Name, c.Weight, c.Required, c.IsIndependent, c.Position)
				if err != nil {
					return err
				}
			}
			if err := saveScale(ctx, tx, c); err != nil {
				return err
			}
		}

		after, err = listCategories(ctx, tx, eventID)
		return err
	})
	if err != nil {
		if !stderrors.Is(err, ErrUnknownCategory) {
			logger.Error("CategoryRepository:SaveCategories", err)
		}
		return nil, nil, err
	}
	return before, after, nil
}

// saveScale keeps scale rows whose value survives, so the selections
// reviewers made for them stay intact.
func saveScale(ctx context.Context, tx *sqlx.Tx, c *entity.ScoreCategory) error {
	values := make([]float64, 0, len(c.Scores))
	for _, s := range c.Scores {
		values = append(values, s.Value)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM review_scores WHERE category_id = $1 AND NOT (value = ANY($2))`,
		c.ID, pq.Array(values)); err != nil {
		return err
	}
	for i := range c.Scores {
		s := &c.Scores[i]
		s.CategoryID = c.ID
		err := tx.GetContext(ctx, &s.ID, `
			INSERT INTO review_scores (category_id, value, label)
			VALUES ($1, $2, $3)
			ON CONFLICT ON CONSTRAINT review_scores_category_id_value_key
			DO UPDATE SET label = EXCLUDED.label
			RETURNING id
		`, c.ID, s.Value, s.Label)
		if err != nil {
			return err
		}
	}
	return nil
}
