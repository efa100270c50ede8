package store

import (
	"context"
	"time"
)

// Reply is a single reply row. Replies form a forest rooted at the review:
// ParentReplyID nil means top-level, otherwise it references another reply of
// the same review.
type Reply struct {
	ID            string     `json:"id"`
	ReviewID      string     `json:"review_id"`
	UserID        string     `json:"user_id"`
	ParentReplyID *string    `json:"parent_reply_id,omitempty"`
	Comment       string     `json:"comment"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// ReplyStore defines the contract for reply persistence. Method names carry
// the Reply suffix so one backend struct can satisfy ReviewStore too.
type ReplyStore interface {
	// CreateReply inserts a reply. The review must exist; a parent reply,
	// when given, must belong to the same review.
	CreateReply(ctx context.Context, r Reply) (Reply, error)
	GetReply(ctx context.Context, id string) (Reply, error)
	// UpdateReply replaces the comment. Author-only.
	UpdateReply(ctx context.Context, id, userID, comment string) (Reply, error)
	// DeleteReply removes the reply and every transitive descendant
	// atomically. Author-only for the deleted reply; descendants go
	// regardless of author.
	DeleteReply(ctx context.Context, id, userID string) error
	// ListByReview returns every reply of the review, created_at ascending.
	ListByReview(ctx context.Context, reviewID string) ([]Reply, error)
	// ListTopLevel returns the direct replies of the review, created_at ascending.
	ListTopLevel(ctx context.Context, reviewID string) ([]Reply, error)
	// ListChildren returns the direct children of a reply, created_at ascending.
	ListChildren(ctx context.Context, parentReplyID string) ([]Reply, error)
	// ListTree returns the fully materialized reply forest for the review.
	ListTree(ctx context.Context, reviewID string) ([]*ReplyNode, error)
	CountByReview(ctx context.Context, reviewID string) (int, error)
}
