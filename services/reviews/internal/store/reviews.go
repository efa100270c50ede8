package store

import (
	"context"
	"time"
)

// EntityKind is the closed set of reviewable subject kinds.
type EntityKind string

const (
	KindMedicalFacility EntityKind = "medical_facility"
	KindSDMPackage      EntityKind = "sdm_package"
	KindStore           EntityKind = "store"
)

func (k EntityKind) Valid() bool {
	switch k {
	case KindMedicalFacility, KindSDMPackage, KindStore:
		return true
	}
	return false
}

// EntityRef identifies the subject being reviewed. The referenced entity is
// owned by another service; no existence check happens here.
type EntityRef struct {
	Kind EntityKind `json:"entity_type"`
	ID   string     `json:"entity_id"`
}

// Review is a single review row. One per (user, entity).
type Review struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	EntityKind EntityKind `json:"entity_type"`
	EntityID   string     `json:"entity_id"`
	Rating     int        `json:"rating"`
	Comment    string     `json:"comment"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

func (r Review) Entity() EntityRef {
	return EntityRef{Kind: r.EntityKind, ID: r.EntityID}
}

// ReviewPatch carries the mutable review fields; nil means leave unchanged.
type ReviewPatch struct {
	Rating  *int
	Comment *string
}

// RatingStats is the per-entity aggregate computed from source rows on read.
// Average is the raw arithmetic mean; presentation rounding happens upstream.
type RatingStats struct {
	Average      float64     `json:"average_rating"`
	Distribution map[int]int `json:"rating_distribution"`
}

// Sort keys accepted by ListByEntity. All orders tie-break on
// created_at DESC, id DESC.
const (
	SortRecent     = "recent"
	SortHelpful    = "helpful"
	SortRatingHigh = "rating_high"
	SortRatingLow  = "rating_low"
)

func ValidSort(s string) bool {
	switch s {
	case SortRecent, SortHelpful, SortRatingHigh, SortRatingLow:
		return true
	}
	return false
}

// ReviewStore defines the contract for review persistence.
type ReviewStore interface {
	// Create inserts a review. The (user, entity) uniqueness check is atomic
	// with the insert; a constraint violation reports ErrDuplicateReview.
	Create(ctx context.Context, r Review) (Review, error)
	Get(ctx context.Context, id string) (Review, error)
	// Update applies the non-nil patch fields. Author-only.
	Update(ctx context.Context, id, userID string, patch ReviewPatch) (Review, error)
	// Delete removes the review together with all its replies and helpful
	// votes in one atomic step. Author-only.
	Delete(ctx context.Context, id, userID string) error
	// ListByEntity returns one page of reviews plus the total count.
	ListByEntity(ctx context.Context, ref EntityRef, sort string, page, pageSize int) ([]Review, int, error)
	RatingStats(ctx context.Context, ref EntityRef) (RatingStats, error)
}
