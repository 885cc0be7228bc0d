package service

import (
	"cfp-api/modules/review/dto"
	"cfp-api/modules/review/entity"

	"github.com/google/uuid"
)

// Visibility is the name policy applied when reviews are read. Names are
// always stored; only the response is redacted.
type Visibility struct {
	CanSeeSpeakerNames  bool
	CanSeeReviewerNames bool
}

// VisibilityFor returns the policy of the active phase. Without an active
// phase both speaker and reviewer names stay hidden.
func VisibilityFor(active *entity.ReviewPhase) Visibility {
	if active == nil {
		return Visibility{}
	}
	return Visibility{
		CanSeeSpeakerNames:  active.CanSeeSpeakerNames,
		CanSeeReviewerNames: active.CanSeeReviewerNames,
	}
}

// Present builds the response for viewer. A viewer always sees their own
// review in full.
func (v Visibility) Present(review *entity.Review, speakers []string, viewerID uuid.UUID) dto.ReviewResponse {
	res := dto.ReviewResponse{
		ID:              review.ID,
		SubmissionCode:  review.SubmissionCode,
		SubmissionTitle: review.SubmissionTitle,
		Speakers:        []string{},
		IsOwn:           review.ReviewerID == viewerID,
		Text:            review.Text,
		Score:           review.Score,
		CategoryScores:  review.CategoryScores,
		CreatedAt:       review.CreatedAt,
		UpdatedAt:       review.UpdatedAt,
	}
	if res.CategoryScores == nil {
		res.CategoryScores = []entity.CategoryScore{}
	}

	if v.CanSeeSpeakerNames {
		res.Speakers = append(res.Speakers, speakers...)
	} else {
		res.SpeakerNamesHidden = true
	}

	if v.CanSeeReviewerNames || res.IsOwn {
		reviewerID := review.ReviewerID
		res.ReviewerID = &reviewerID
		res.ReviewerName = review.ReviewerName
	} else {
		res.ReviewerHidden = true
	}
	return res
}
