package store

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

func (s *Memory) CreateReply(_ context.Context, r Reply) (Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reviews[r.ReviewID]; !ok {
		return Reply{}, ErrReviewNotFound
	}
	if r.ParentReplyID != nil {
		parent, ok := s.replies[*r.ParentReplyID]
		if !ok || parent.ReviewID != r.ReviewID {
			return Reply{}, ErrReplyNotFound
		}
	}

	r.ID = uuid.NewString()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	r.UpdatedAt = nil
	s.replies[r.ID] = r
	return r, nil
}

func (s *Memory) GetReply(_ context.Context, id string) (Reply, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.replies[id]
	if !ok {
		return Reply{}, ErrReplyNotFound
	}
	return r, nil
}

func (s *Memory) UpdateReply(_ context.Context, id, userID, comment string) (Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.replies[id]
	if !ok {
		return Reply{}, ErrReplyNotFound
	}
	if r.UserID != userID {
		return Reply{}, ErrNotAuthor
	}

	r.Comment = comment
	now := time.Now().UTC()
	r.UpdatedAt = &now
	s.replies[id] = r
	return r, nil
}

func (s *Memory) DeleteReply(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.replies[id]
	if !ok {
		return ErrReplyNotFound
	}
	if r.UserID != userID {
		return ErrNotAuthor
	}

	// Collect the subtree iteratively, then drop it in one step.
	doomed := []string{id}
	for i := 0; i < len(doomed); i++ {
		for candidateID, candidate := range s.replies {
			if candidate.ParentReplyID != nil && *candidate.ParentReplyID == doomed[i] {
				doomed = append(doomed, candidateID)
			}
		}
	}
	for _, d := range doomed {
		delete(s.replies, d)
	}
	return nil
}

func (s *Memory) ListByReview(_ context.Context, reviewID string) ([]Reply, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Reply{}
	for _, r := range s.replies {
		if r.ReviewID == reviewID {
			out = append(out, r)
		}
	}
	sortRepliesOldestFirst(out)
	return out, nil
}

func (s *Memory) ListTopLevel(_ context.Context, reviewID string) ([]Reply, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Reply{}
	for _, r := range s.replies {
		if r.ReviewID == reviewID && r.ParentReplyID == nil {
			out = append(out, r)
		}
	}
	sortRepliesOldestFirst(out)
	return out, nil
}

func (s *Memory) ListChildren(_ context.Context, parentReplyID string) ([]Reply, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Reply{}
	for _, r := range s.replies {
		if r.ParentReplyID != nil && *r.ParentReplyID == parentReplyID {
			out = append(out, r)
		}
	}
	sortRepliesOldestFirst(out)
	return out, nil
}

func (s *Memory) ListTree(ctx context.Context, reviewID string) ([]*ReplyNode, error) {
	replies, err := s.ListByReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	return BuildTree(replies), nil
}

func (s *Memory) CountByReview(_ context.Context, reviewID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, r := range s.replies {
		if r.ReviewID == reviewID {
			n++
		}
	}
	return n, nil
}

func sortRepliesOldestFirst(rs []Reply) {
	sort.Slice(rs, func(i, j int) bool {
		if !rs[i].CreatedAt.Equal(rs[j].CreatedAt) {
			return rs[i].CreatedAt.Before(rs[j].CreatedAt)
		}
		return rs[i].ID < rs[j].ID
	})
}
