package service

import (
	"context"

	"github.com/example/omnipass-platform/internal/platform/events"
)

func (s *Service) MarkHelpful(ctx context.Context, reviewID, userID string) error {
	if err := s.votes.Add(ctx, reviewID, userID); err != nil {
		return err
	}
	s.events.Publish(events.SubjectVoteAdded, userID, reviewID, "", "")
	return nil
}

func (s *Service) UnmarkHelpful(ctx context.Context, reviewID, userID string) error {
	if err := s.votes.Remove(ctx, reviewID, userID); err != nil {
		return err
	}
	s.events.Publish(events.SubjectVoteRemoved, userID, reviewID, "", "")
	return nil
}
