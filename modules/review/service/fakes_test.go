package service

import (
	"context"
	"database/sql"

	"cfp-api/core/errors"
	"cfp-api/modules/review/entity"
	"cfp-api/modules/review/repository"
	submissionEntity "cfp-api/modules/submission/entity"

	"github.com/google/uuid"
)

type fakePhaseRepo struct {
	phases      []entity.ReviewPhase
	activeReads int
}

func (f *fakePhaseRepo) ListPhases(_ context.Context, _ uuid.UUID) ([]entity.ReviewPhase, error) {
	return append([]entity.ReviewPhase{}, f.phases...), nil
}

func (f *fakePhaseRepo) SavePhases(_ context.Context, _ uuid.UUID, phases []entity.ReviewPhase, reorder repository.ReorderFunc) ([]entity.ReviewPhase, error) {
	next := make([]entity.ReviewPhase, len(phases))
	copy(next, phases)
	for i := range next {
		if next[i].ID == uuid.Nil {
			next[i].ID = uuid.New()
		}
	}
	ordered, err := reorder(next)
	if err != nil {
		return nil, err
	}
	f.phases = ordered
	return ordered, nil
}

func (f *fakePhaseRepo) ActivatePhase(_ context.Context, _, phaseID uuid.UUID) (*entity.ReviewPhase, error) {
	var target *entity.ReviewPhase
	for i := range f.phases {
		if f.phases[i].ID == phaseID {
			target = &f.phases[i]
		}
	}
	if target == nil {
		return nil, sql.ErrNoRows
	}
	for i := range f.phases {
		f.phases[i].IsActive = f.phases[i].ID == phaseID
	}
	copied := *target
	return &copied, nil
}

func (f *fakePhaseRepo) ActivePhase(_ context.Context, _ uuid.UUID) (*entity.ReviewPhase, error) {
	f.activeReads++
	for _, p := range f.phases {
		if p.IsActive {
			copied := p
			return &copied, nil
		}
	}
	return nil, nil
}

type fakeCategoryRepo struct {
	categories []entity.ScoreCategory
}

func (f *fakeCategoryRepo) ListCategories(_ context.Context, _ uuid.UUID) ([]entity.ScoreCategory, error) {
	return append([]entity.ScoreCategory{}, f.categories...), nil
}

func (f *fakeCategoryRepo) SaveCategories(_ context.Context, _ uuid.UUID, categories []entity.ScoreCategory) ([]entity.ScoreCategory, []entity.ScoreCategory, error) {
	before := f.categories
	after := make([]entity.ScoreCategory, len(categories))
	copy(after, categories)
	for i := range after {
		if after[i].ID == uuid.Nil {
			after[i].ID = uuid.New()
		}
		for j := range after[i].Scores {
			if after[i].Scores[j].ID == uuid.Nil {
				after[i].Scores[j].ID = uuid.New()
			}
			after[i].Scores[j].CategoryID = after[i].ID
		}
	}
	f.categories = after
	return before, after, nil
}

// fakeReviewRepo scores reviews from the category fake at write time,
// the way the repository does inside its transaction.
type fakeReviewRepo struct {
	reviews    map[uuid.UUID]*entity.Review
	categories *fakeCategoryRepo
	// beforeWrite runs at the start of every write, standing in for a
	// concurrent change that commits first.
	beforeWrite func()
}

func newFakeReviewRepo(categories *fakeCategoryRepo) *fakeReviewRepo {
	return &fakeReviewRepo{reviews: map[uuid.UUID]*entity.Review{}, categories: categories}
}

func pickedValues(r *entity.Review) map[uuid.UUID]float64 {
	values := map[uuid.UUID]float64{}
	for _, cs := range r.CategoryScores {
		values[cs.CategoryID] = cs.Value
	}
	return values
}

func (f *fakeReviewRepo) Upsert(_ context.Context, review *entity.Review, score repository.ScoreFunc) error {
	if f.beforeWrite != nil {
		f.beforeWrite()
	}
	for _, existing := range f.reviews {
		if existing.SubmissionID == review.SubmissionID && existing.ReviewerID == review.ReviewerID {
			review.ID = existing.ID
		}
	}
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	review.Score = score(pickedValues(review), f.categories.categories)
	stored := *review
	f.reviews[review.ID] = &stored
	return nil
}

func (f *fakeReviewRepo) List(_ context.Context, _ uuid.UUID, submissionID *uuid.UUID) ([]entity.Review, error) {
	out := []entity.Review{}
	for _, r := range f.reviews {
		if submissionID == nil || r.SubmissionID == *submissionID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReviewRepo) RecalculateScores(_ context.Context, _ uuid.UUID, score repository.ScoreFunc) (int, error) {
	if f.beforeWrite != nil {
		f.beforeWrite()
	}
	changed := 0
	for _, r := range f.reviews {
		aggregate := score(pickedValues(r), f.categories.categories)
		if !sameScore(r.Score, aggregate) {
			r.Score = aggregate
			changed++
		}
	}
	return changed, nil
}

func sameScore(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

type fakeSubmissions struct {
	byCode map[string]*submissionEntity.Submission
}

func (f *fakeSubmissions) add(eventID uuid.UUID, code string, speakers ...string) *submissionEntity.Submission {
	s := &submissionEntity.Submission{EventID: eventID, Code: code, Title: "Talk " + code}
	s.ID = uuid.New()
	for _, name := range speakers {
		s.Speakers = append(s.Speakers, submissionEntity.Speaker{SubmissionID: s.ID, UserID: uuid.New(), Name: name})
	}
	f.byCode[code] = s
	return s
}

func (f *fakeSubmissions) FindByCode(_ context.Context, _ uuid.UUID, code string) (*submissionEntity.Submission, *errors.AppError) {
	s, ok := f.byCode[code]
	if !ok {
		return nil, errors.NewAppError(errors.ErrNotFound, "Submission not found", sql.ErrNoRows)
	}
	return s, nil
}

func (f *fakeSubmissions) SpeakersBySubmission(_ context.Context, ids []uuid.UUID) (map[uuid.UUID][]submissionEntity.Speaker, *errors.AppError) {
	out := map[uuid.UUID][]submissionEntity.Speaker{}
	for _, s := range f.byCode {
		for _, id := range ids {
			if s.ID == id {
				out[id] = s.Speakers
			}
		}
	}
	return out, nil
}
