package store

import "errors"

// Sentinel errors for the four domain categories. Storage connectivity
// failures propagate as-is and are never wrapped into these.
var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrReplyNotFound   = errors.New("reply not found")
	ErrVoteNotFound    = errors.New("helpful vote not found")
	ErrNotAuthor       = errors.New("caller is not the author")
	ErrDuplicateReview = errors.New("user already reviewed this entity")
	ErrDuplicateVote   = errors.New("user already marked this review helpful")
)
