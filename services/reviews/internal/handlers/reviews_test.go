package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/example/omnipass-platform/internal/platform/auth"
	"github.com/example/omnipass-platform/services/reviews/internal/service"
	"github.com/example/omnipass-platform/services/reviews/internal/store"
)

// setupReq builds a request with chi URL params and optional user_id in context.
func setupReq(method, url string, body string, params map[string]string, userID string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, url, bytes.NewBufferString(body))
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if userID != "" {
		ctx = auth.WithUserID(ctx, userID)
	}
	return req.WithContext(ctx)
}

func newTestService() *service.Service {
	mem := store.NewMemory()
	return service.New(mem, mem, mem, nil, nil, 0)
}

func TestCreateReview(t *testing.T) {
	svc := newTestService()
	handler := CreateReview(svc)

	req := setupReq(http.MethodPost, "/v1/reviews",
		`{"entity_type":"store","entity_id":"store-1","rating":4,"comment":"great"}`, nil, "user-a")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var created service.ReviewSummary
	if err := json.NewDecoder(rr.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.UserID != "user-a" {
		t.Fatalf("expected user_id 'user-a', got %q", created.UserID)
	}
	if created.Rating != 4 {
		t.Fatalf("expected rating 4, got %d", created.Rating)
	}
}

func TestCreateReview_Unauthorized(t *testing.T) {
	handler := CreateReview(newTestService())

	req := setupReq(http.MethodPost, "/v1/reviews",
		`{"entity_type":"store","entity_id":"store-1","rating":4,"comment":"great"}`, nil, "")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestCreateReview_Validation(t *testing.T) {
	handler := CreateReview(newTestService())

	req := setupReq(http.MethodPost, "/v1/reviews",
		`{"entity_type":"store","entity_id":"store-1","rating":9,"comment":"great"}`, nil, "user-a")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestCreateReview_Duplicate(t *testing.T) {
	svc := newTestService()
	handler := CreateReview(svc)

	body := `{"entity_type":"store","entity_id":"store-1","rating":4,"comment":"great"}`
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, setupReq(http.MethodPost, "/v1/reviews", body, nil, "user-a"))
	if rr.Code != http.StatusCreated {
		t.Fatalf("first create: expected 201, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, setupReq(http.MethodPost, "/v1/reviews", body, nil, "user-a"))
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestListReviews(t *testing.T) {
	svc := newTestService()
	_, err := svc.CreateReview(context.Background(), "user-a",
		store.EntityRef{Kind: store.KindStore, ID: "store-1"}, 5, "excellent")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	handler := ListReviews(svc)
	req := setupReq(http.MethodGet, "/v1/reviews?entity_type=store&entity_id=store-1", "", nil, "")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var page service.ReviewPage
	if err := json.NewDecoder(rr.Body).Decode(&page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Total != 1 || len(page.Reviews) != 1 {
		t.Fatalf("expected one review, got total=%d len=%d", page.Total, len(page.Reviews))
	}
	if page.AverageRating != 5.0 {
		t.Fatalf("expected average 5.0, got %v", page.AverageRating)
	}
	if page.Page != 1 || page.PageSize != 10 {
		t.Fatalf("expected default page 1 size 10, got %d/%d", page.Page, page.PageSize)
	}
}

func TestListReviews_BadPageParam(t *testing.T) {
	handler := ListReviews(newTestService())

	req := setupReq(http.MethodGet, "/v1/reviews?entity_type=store&entity_id=store-1&page=abc", "", nil, "")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-integer page, got %d", rr.Code)
	}

	req = setupReq(http.MethodGet, "/v1/reviews?entity_type=store&entity_id=store-1&page=0", "", nil, "")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for page 0, got %d", rr.Code)
	}
}

func TestGetReview_NotFound(t *testing.T) {
	handler := GetReview(newTestService())

	req := setupReq(http.MethodGet, "/v1/reviews/missing", "", map[string]string{"review_id": "missing"}, "")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestUpdateReview_Forbidden(t *testing.T) {
	svc := newTestService()
	created, err := svc.CreateReview(context.Background(), "user-a",
		store.EntityRef{Kind: store.KindStore, ID: "store-1"}, 4, "mine")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	handler := UpdateReview(svc)
	req := setupReq(http.MethodPut, "/v1/reviews/"+created.ID, `{"rating":1}`,
		map[string]string{"review_id": created.ID}, "user-b")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestDeleteReview(t *testing.T) {
	svc := newTestService()
	created, err := svc.CreateReview(context.Background(), "user-a",
		store.EntityRef{Kind: store.KindStore, ID: "store-1"}, 4, "mine")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	handler := DeleteReview(svc)
	req := setupReq(http.MethodDelete, "/v1/reviews/"+created.ID, "",
		map[string]string{"review_id": created.ID}, "user-a")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestMarkHelpful_Lifecycle(t *testing.T) {
	svc := newTestService()
	created, err := svc.CreateReview(context.Background(), "user-a",
		store.EntityRef{Kind: store.KindStore, ID: "store-1"}, 4, "mine")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	params := map[string]string{"review_id": created.ID}

	mark := MarkHelpful(svc)
	rr := httptest.NewRecorder()
	mark.ServeHTTP(rr, setupReq(http.MethodPost, "/v1/reviews/"+created.ID+"/helpful", "", params, "user-b"))
	if rr.Code != http.StatusCreated {
		t.Fatalf("mark: expected 201, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	mark.ServeHTTP(rr, setupReq(http.MethodPost, "/v1/reviews/"+created.ID+"/helpful", "", params, "user-b"))
	if rr.Code != http.StatusConflict {
		t.Fatalf("second mark: expected 409, got %d", rr.Code)
	}

	unmark := UnmarkHelpful(svc)
	rr = httptest.NewRecorder()
	unmark.ServeHTTP(rr, setupReq(http.MethodDelete, "/v1/reviews/"+created.ID+"/helpful", "", params, "user-b"))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("unmark: expected 204, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	unmark.ServeHTTP(rr, setupReq(http.MethodDelete, "/v1/reviews/"+created.ID+"/helpful", "", params, "user-b"))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("second unmark: expected 404, got %d", rr.Code)
	}
}
