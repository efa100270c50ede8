package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/omnipass-platform/internal/platform/api"
	"github.com/example/omnipass-platform/internal/platform/auth"
	"github.com/example/omnipass-platform/services/reviews/internal/service"
	"github.com/example/omnipass-platform/services/reviews/internal/store"
)

type createReplyRequest struct {
	Comment       string  `json:"comment"`
	ParentReplyID *string `json:"parent_reply_id,omitempty"`
}

type updateReplyRequest struct {
	Comment string `json:"comment"`
}

type repliesResponse struct {
	Replies []*store.ReplyNode `json:"replies"`
}

// CreateReply handles POST /v1/reviews/{review_id}/replies
func CreateReply(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok || userID == "" {
			api.Unauthorized(w, "UNAUTHORIZED", "authentication required", "")
			return
		}

		reviewID := strings.TrimSpace(chi.URLParam(r, "review_id"))
		if reviewID == "" {
			api.BadRequest(w, "MISSING_ID", "review_id is required", "", nil)
			return
		}

		var req createReplyRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "invalid JSON", "", nil)
			return
		}

		created, err := svc.CreateReply(r.Context(), reviewID, userID, req.Comment, req.ParentReplyID)
		if err != nil {
			writeError(w, err)
			return
		}
		api.WriteJSON(w, http.StatusCreated, created)
	}
}

// ListReplies handles GET /v1/reviews/{review_id}/replies
func ListReplies(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reviewID := strings.TrimSpace(chi.URLParam(r, "review_id"))
		if reviewID == "" {
			api.BadRequest(w, "MISSING_ID", "review_id is required", "", nil)
			return
		}

		nodes, err := svc.ListReplies(r.Context(), reviewID)
		if err != nil {
			writeError(w, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, repliesResponse{Replies: nodes})
	}
}

// UpdateReply handles PUT /v1/reviews/replies/{reply_id}
func UpdateReply(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok || userID == "" {
			api.Unauthorized(w, "UNAUTHORIZED", "authentication required", "")
			return
		}

		replyID := strings.TrimSpace(chi.URLParam(r, "reply_id"))
		if replyID == "" {
			api.BadRequest(w, "MISSING_ID", "reply_id is required", "", nil)
			return
		}

		var req updateReplyRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "invalid JSON", "", nil)
			return
		}

		updated, err := svc.UpdateReply(r.Context(), replyID, userID, req.Comment)
		if err != nil {
			writeError(w, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, updated)
	}
}

// DeleteReply handles DELETE /v1/reviews/replies/{reply_id}
func DeleteReply(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok || userID == "" {
			api.Unauthorized(w, "UNAUTHORIZED", "authentication required", "")
			return
		}

		replyID := strings.TrimSpace(chi.URLParam(r, "reply_id"))
		if replyID == "" {
			api.BadRequest(w, "MISSING_ID", "reply_id is required", "", nil)
			return
		}

		if err := svc.DeleteReply(r.Context(), replyID, userID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
