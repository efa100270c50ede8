package service

import (
	"context"

	"github.com/example/omnipass-platform/internal/platform/events"
	"github.com/example/omnipass-platform/services/reviews/internal/store"
)

func (s *Service) CreateReply(ctx context.Context, reviewID, userID, comment string, parentReplyID *string) (store.Reply, error) {
	if err := validateComment("comment", comment, MaxReplyCommentLen); err != nil {
		return store.Reply{}, err
	}

	reply, err := s.replies.CreateReply(ctx, store.Reply{
		ReviewID:      reviewID,
		UserID:        userID,
		ParentReplyID: parentReplyID,
		Comment:       comment,
	})
	if err != nil {
		return store.Reply{}, err
	}

	s.events.Publish(events.SubjectReplyCreated, userID, reviewID, "", "")
	return reply, nil
}

func (s *Service) UpdateReply(ctx context.Context, replyID, userID, comment string) (store.Reply, error) {
	if err := validateComment("comment", comment, MaxReplyCommentLen); err != nil {
		return store.Reply{}, err
	}

	reply, err := s.replies.UpdateReply(ctx, replyID, userID, comment)
	if err != nil {
		return store.Reply{}, err
	}

	s.events.Publish(events.SubjectReplyUpdated, userID, reply.ReviewID, "", "")
	return reply, nil
}

// DeleteReply removes the reply and its whole subtree.
func (s *Service) DeleteReply(ctx context.Context, replyID, userID string) error {
	reply, err := s.replies.GetReply(ctx, replyID)
	if err != nil {
		return err
	}
	if err := s.replies.DeleteReply(ctx, replyID, userID); err != nil {
		return err
	}

	s.events.Publish(events.SubjectReplyDeleted, userID, reply.ReviewID, "", "")
	return nil
}

// ListReplies returns the top-level replies of the review, each carrying its
// recursively materialized children.
func (s *Service) ListReplies(ctx context.Context, reviewID string) ([]*store.ReplyNode, error) {
	if _, err := s.reviews.Get(ctx, reviewID); err != nil {
		return nil, err
	}
	return s.replies.ListTree(ctx, reviewID)
}
