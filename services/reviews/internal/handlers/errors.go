package handlers

import (
	"errors"
	"net/http"

	"github.com/example/omnipass-platform/internal/platform/api"
	"github.com/example/omnipass-platform/services/reviews/internal/service"
	"github.com/example/omnipass-platform/services/reviews/internal/store"
)

// writeError maps service and store errors onto the shared API error shape.
func writeError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		api.BadRequest(w, "VALIDATION_ERROR", verr.Error(), "", map[string]any{"field": verr.Field})
	case errors.Is(err, store.ErrReviewNotFound):
		api.NotFound(w, "REVIEW_NOT_FOUND", "review not found", "")
	case errors.Is(err, store.ErrReplyNotFound):
		api.NotFound(w, "REPLY_NOT_FOUND", "reply not found", "")
	case errors.Is(err, store.ErrVoteNotFound):
		api.NotFound(w, "VOTE_NOT_FOUND", "helpful vote not found", "")
	case errors.Is(err, store.ErrNotAuthor):
		api.Forbidden(w, "FORBIDDEN", "only the author can modify this resource", "")
	case errors.Is(err, store.ErrDuplicateReview):
		api.Conflict(w, "DUPLICATE_REVIEW", "you have already reviewed this entity", "", nil)
	case errors.Is(err, store.ErrDuplicateVote):
		api.Conflict(w, "DUPLICATE_VOTE", "you have already marked this review helpful", "", nil)
	default:
		api.Internal(w, "")
	}
}
