package service

import (
	"context"

	"github.com/example/omnipass-platform/internal/platform/events"
	"github.com/example/omnipass-platform/services/reviews/internal/store"
)

func (s *Service) CreateReview(ctx context.Context, userID string, ref store.EntityRef, rating int, comment string) (ReviewSummary, error) {
	if err := validateEntityRef(ref); err != nil {
		return ReviewSummary{}, err
	}
	if err := validateRating(rating); err != nil {
		return ReviewSummary{}, err
	}
	if err := validateComment("comment", comment, MaxReviewCommentLen); err != nil {
		return ReviewSummary{}, err
	}

	rv, err := s.reviews.Create(ctx, store.Review{
		UserID:     userID,
		EntityKind: ref.Kind,
		EntityID:   ref.ID,
		Rating:     rating,
		Comment:    comment,
	})
	if err != nil {
		return ReviewSummary{}, err
	}

	s.invalidateStats(ref)
	s.events.Publish(events.SubjectReviewCreated, userID, rv.ID, string(ref.Kind), ref.ID)
	return s.summarize(ctx, rv, userID)
}

func (s *Service) UpdateReview(ctx context.Context, reviewID, userID string, rating *int, comment *string) (ReviewSummary, error) {
	if rating == nil && comment == nil {
		return ReviewSummary{}, invalid("body", "at least one of rating, comment is required")
	}
	if rating != nil {
		if err := validateRating(*rating); err != nil {
			return ReviewSummary{}, err
		}
	}
	if comment != nil {
		if err := validateComment("comment", *comment, MaxReviewCommentLen); err != nil {
			return ReviewSummary{}, err
		}
	}

	rv, err := s.reviews.Update(ctx, reviewID, userID, store.ReviewPatch{Rating: rating, Comment: comment})
	if err != nil {
		return ReviewSummary{}, err
	}

	s.invalidateStats(rv.Entity())
	s.events.Publish(events.SubjectReviewUpdated, userID, rv.ID, string(rv.EntityKind), rv.EntityID)
	return s.summarize(ctx, rv, userID)
}

// DeleteReview cascades to every reply and helpful vote of the review; the
// store guarantees the cascade is all-or-nothing.
func (s *Service) DeleteReview(ctx context.Context, reviewID, userID string) error {
	rv, err := s.reviews.Get(ctx, reviewID)
	if err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, reviewID, userID); err != nil {
		return err
	}

	s.invalidateStats(rv.Entity())
	s.events.Publish(events.SubjectReviewDeleted, userID, rv.ID, string(rv.EntityKind), rv.EntityID)
	return nil
}

// ListReviews returns one sorted page of summarized reviews together with the
// entity-level rating stats. callerID may be empty for anonymous reads.
func (s *Service) ListReviews(ctx context.Context, ref store.EntityRef, sortKey string, page, pageSize int, callerID string) (ReviewPage, error) {
	if err := validateEntityRef(ref); err != nil {
		return ReviewPage{}, err
	}
	if err := validateSort(sortKey); err != nil {
		return ReviewPage{}, err
	}
	if err := validatePage(page, pageSize); err != nil {
		return ReviewPage{}, err
	}

	reviews, total, err := s.reviews.ListByEntity(ctx, ref, sortKey, page, pageSize)
	if err != nil {
		return ReviewPage{}, err
	}
	stats, err := s.RatingStats(ctx, ref)
	if err != nil {
		return ReviewPage{}, err
	}

	summaries := make([]ReviewSummary, 0, len(reviews))
	for _, rv := range reviews {
		sum, err := s.summarize(ctx, rv, callerID)
		if err != nil {
			return ReviewPage{}, err
		}
		summaries = append(summaries, sum)
	}

	return ReviewPage{
		Reviews:            summaries,
		Total:              total,
		Page:               page,
		PageSize:           pageSize,
		AverageRating:      stats.Average,
		RatingDistribution: stats.Distribution,
	}, nil
}

// GetReviewWithTree returns the summarized review plus its fully materialized
// reply forest.
func (s *Service) GetReviewWithTree(ctx context.Context, reviewID, callerID string) (ReviewWithTree, error) {
	rv, err := s.reviews.Get(ctx, reviewID)
	if err != nil {
		return ReviewWithTree{}, err
	}
	sum, err := s.summarize(ctx, rv, callerID)
	if err != nil {
		return ReviewWithTree{}, err
	}
	tree, err := s.replies.ListTree(ctx, reviewID)
	if err != nil {
		return ReviewWithTree{}, err
	}
	return ReviewWithTree{ReviewSummary: sum, Replies: tree}, nil
}

func (s *Service) summarize(ctx context.Context, rv store.Review, callerID string) (ReviewSummary, error) {
	helpful, err := s.votes.Count(ctx, rv.ID)
	if err != nil {
		return ReviewSummary{}, err
	}
	voted := false
	if callerID != "" {
		voted, err = s.votes.HasVoted(ctx, rv.ID, callerID)
		if err != nil {
			return ReviewSummary{}, err
		}
	}
	replyCount, err := s.replies.CountByReview(ctx, rv.ID)
	if err != nil {
		return ReviewSummary{}, err
	}
	return ReviewSummary{
		Review:         rv,
		HelpfulCount:   helpful,
		CallerHasVoted: voted,
		ReplyCount:     replyCount,
	}, nil
}
