package store

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

func (s *Memory) Create(_ context.Context, r Review) (Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Uniqueness check and insert happen under the same lock.
	for _, existing := range s.reviews {
		if existing.UserID == r.UserID && existing.EntityKind == r.EntityKind && existing.EntityID == r.EntityID {
			return Review{}, ErrDuplicateReview
		}
	}

	r.ID = uuid.NewString()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	r.UpdatedAt = nil
	s.reviews[r.ID] = r
	return r, nil
}

func (s *Memory) Get(_ context.Context, id string) (Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reviews[id]
	if !ok {
		return Review{}, ErrReviewNotFound
	}
	return r, nil
}

func (s *Memory) Update(_ context.Context, id, userID string, patch ReviewPatch) (Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reviews[id]
	if !ok {
		return Review{}, ErrReviewNotFound
	}
	if r.UserID != userID {
		return Review{}, ErrNotAuthor
	}

	if patch.Rating != nil {
		r.Rating = *patch.Rating
	}
	if patch.Comment != nil {
		r.Comment = *patch.Comment
	}
	now := time.Now().UTC()
	r.UpdatedAt = &now
	s.reviews[id] = r
	return r, nil
}

func (s *Memory) Delete(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reviews[id]
	if !ok {
		return ErrReviewNotFound
	}
	if r.UserID != userID {
		return ErrNotAuthor
	}

	// Cascade: votes, replies, then the review itself.
	delete(s.votes, id)
	for replyID, reply := range s.replies {
		if reply.ReviewID == id {
			delete(s.replies, replyID)
		}
	}
	delete(s.reviews, id)
	return nil
}

func (s *Memory) ListByEntity(_ context.Context, ref EntityRef, sortKey string, page, pageSize int) ([]Review, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Review
	for _, r := range s.reviews {
		if r.EntityKind == ref.Kind && r.EntityID == ref.ID {
			matched = append(matched, r)
		}
	}
	total := len(matched)

	newerFirst := func(a, b Review) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	}

	switch sortKey {
	case SortHelpful:
		sort.Slice(matched, func(i, j int) bool {
			hi, hj := len(s.votes[matched[i].ID]), len(s.votes[matched[j].ID])
			if hi != hj {
				return hi > hj
			}
			return newerFirst(matched[i], matched[j])
		})
	case SortRatingHigh:
		sort.Slice(matched, func(i, j int) bool {
			if matched[i].Rating != matched[j].Rating {
				return matched[i].Rating > matched[j].Rating
			}
			return newerFirst(matched[i], matched[j])
		})
	case SortRatingLow:
		sort.Slice(matched, func(i, j int) bool {
			if matched[i].Rating != matched[j].Rating {
				return matched[i].Rating < matched[j].Rating
			}
			return newerFirst(matched[i], matched[j])
		})
	default: // SortRecent
		sort.Slice(matched, func(i, j int) bool {
			return newerFirst(matched[i], matched[j])
		})
	}

	offset := (page - 1) * pageSize
	if offset >= len(matched) {
		return []Review{}, total, nil
	}
	end := offset + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (s *Memory) RatingStats(_ context.Context, ref EntityRef) (RatingStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := RatingStats{Distribution: emptyDistribution()}
	sum, count := 0, 0
	for _, r := range s.reviews {
		if r.EntityKind == ref.Kind && r.EntityID == ref.ID {
			stats.Distribution[r.Rating]++
			sum += r.Rating
			count++
		}
	}
	if count > 0 {
		stats.Average = float64(sum) / float64(count)
	}
	return stats, nil
}
