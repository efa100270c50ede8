package store

import "context"

// HelpfulVoteStore defines the contract for helpful-vote persistence.
// At most one vote per (user, review); removal is a hard delete.
type HelpfulVoteStore interface {
	// Add records a vote. The uniqueness check is atomic with the insert;
	// a second vote reports ErrDuplicateVote, a missing review ErrReviewNotFound.
	Add(ctx context.Context, reviewID, userID string) error
	Remove(ctx context.Context, reviewID, userID string) error
	Count(ctx context.Context, reviewID string) (int, error)
	HasVoted(ctx context.Context, reviewID, userID string) (bool, error)
}

// Store is the combined persistence surface of the review engine. Both
// backends implement it with a single struct so cascading deletes stay atomic.
type Store interface {
	ReviewStore
	ReplyStore
	HelpfulVoteStore
}
