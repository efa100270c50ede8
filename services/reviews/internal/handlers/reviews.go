package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/omnipass-platform/internal/platform/api"
	"github.com/example/omnipass-platform/internal/platform/auth"
	"github.com/example/omnipass-platform/services/reviews/internal/service"
	"github.com/example/omnipass-platform/services/reviews/internal/store"
)

type createReviewRequest struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
}

type updateReviewRequest struct {
	Rating  *int    `json:"rating,omitempty"`
	Comment *string `json:"comment,omitempty"`
}

// CreateReview handles POST /v1/reviews
func CreateReview(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok || userID == "" {
			api.Unauthorized(w, "UNAUTHORIZED", "authentication required", "")
			return
		}

		var req createReviewRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "invalid JSON", "", nil)
			return
		}

		ref := store.EntityRef{Kind: store.EntityKind(req.EntityType), ID: strings.TrimSpace(req.EntityID)}
		created, err := svc.CreateReview(r.Context(), userID, ref, req.Rating, req.Comment)
		if err != nil {
			writeError(w, err)
			return
		}
		api.WriteJSON(w, http.StatusCreated, created)
	}
}

// ListReviews handles GET /v1/reviews
func ListReviews(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		ref := store.EntityRef{
			Kind: store.EntityKind(strings.TrimSpace(q.Get("entity_type"))),
			ID:   strings.TrimSpace(q.Get("entity_id")),
		}

		sortKey := strings.ToLower(strings.TrimSpace(q.Get("sort_by")))
		if sortKey == "" {
			sortKey = store.SortRecent
		}

		page, err := intQuery(q.Get("page"), 1)
		if err != nil {
			api.BadRequest(w, "INVALID_PAGE", "page must be an integer", "", nil)
			return
		}
		pageSize, err := intQuery(q.Get("page_size"), 10)
		if err != nil {
			api.BadRequest(w, "INVALID_PAGE_SIZE", "page_size must be an integer", "", nil)
			return
		}

		callerID, _ := auth.UserIDFromContext(r.Context())

		pageResp, err := svc.ListReviews(r.Context(), ref, sortKey, page, pageSize, callerID)
		if err != nil {
			writeError(w, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, pageResp)
	}
}

// GetReview handles GET /v1/reviews/{review_id}
func GetReview(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reviewID := strings.TrimSpace(chi.URLParam(r, "review_id"))
		if reviewID == "" {
			api.BadRequest(w, "MISSING_ID", "review_id is required", "", nil)
			return
		}

		callerID, _ := auth.UserIDFromContext(r.Context())

		resp, err := svc.GetReviewWithTree(r.Context(), reviewID, callerID)
		if err != nil {
			writeError(w, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, resp)
	}
}

// UpdateReview handles PUT /v1/reviews/{review_id}
func UpdateReview(svc *service.Service) http.HandlerFunc {
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

		var req updateReviewRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "invalid JSON", "", nil)
			return
		}

		updated, err := svc.UpdateReview(r.Context(), reviewID, userID, req.Rating, req.Comment)
		if err != nil {
			writeError(w, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, updated)
	}
}

// DeleteReview handles DELETE /v1/reviews/{review_id}
func DeleteReview(svc *service.Service) http.HandlerFunc {
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

		if err := svc.DeleteReview(r.Context(), reviewID, userID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// MarkHelpful handles POST /v1/reviews/{review_id}/helpful
func MarkHelpful(svc *service.Service) http.HandlerFunc {
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

		if err := svc.MarkHelpful(r.Context(), reviewID, userID); err != nil {
			writeError(w, err)
			return
		}
		api.WriteJSON(w, http.StatusCreated, map[string]string{"message": "review marked as helpful"})
	}
}

// UnmarkHelpful handles DELETE /v1/reviews/{review_id}/helpful
func UnmarkHelpful(svc *service.Service) http.HandlerFunc {
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

		if err := svc.UnmarkHelpful(r.Context(), reviewID, userID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func intQuery(raw string, def int) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
