package store

import (
	"context"
)

func (s *Memory) Add(_ context.Context, reviewID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reviews[reviewID]; !ok {
		return ErrReviewNotFound
	}
	voters := s.votes[reviewID]
	if voters == nil {
		voters = make(map[string]struct{})
		s.votes[reviewID] = voters
	}
	if _, voted := voters[userID]; voted {
		return ErrDuplicateVote
	}
	voters[userID] = struct{}{}
	return nil
}

func (s *Memory) Remove(_ context.Context, reviewID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	voters := s.votes[reviewID]
	if _, voted := voters[userID]; !voted {
		return ErrVoteNotFound
	}
	delete(voters, userID)
	return nil
}

func (s *Memory) Count(_ context.Context, reviewID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.votes[reviewID]), nil
}

func (s *Memory) HasVoted(_ context.Context, reviewID, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, voted := s.votes[reviewID][userID]
	return voted, nil
}
