package service

import (
	"fmt"
	"unicode/utf8"

	"github.com/example/omnipass-platform/services/reviews/internal/store"
)

// ValidationError reports a client-correctable input problem. It is never
// retried server-side.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func validateEntityRef(ref store.EntityRef) error {
	if !ref.Kind.Valid() {
		return invalid("entity_type", "must be one of medical_facility, sdm_package, store")
	}
	if n := utf8.RuneCountInString(ref.ID); n < 1 || n > maxEntityIDLen {
		return invalid("entity_id", fmt.Sprintf("length must be between 1 and %d", maxEntityIDLen))
	}
	return nil
}

func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return invalid("rating", "must be between 1 and 5")
	}
	return nil
}

// validateComment counts code points, not bytes.
func validateComment(field, comment string, max int) error {
	n := utf8.RuneCountInString(comment)
	if n < 1 {
		return invalid(field, "must not be empty")
	}
	if n > max {
		return invalid(field, fmt.Sprintf("length must be at most %d characters", max))
	}
	return nil
}

func validateSort(sortKey string) error {
	if !store.ValidSort(sortKey) {
		return invalid("sort_by", "must be one of recent, helpful, rating_high, rating_low")
	}
	return nil
}

func validatePage(page, pageSize int) error {
	if page < 1 {
		return invalid("page", "must be at least 1")
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return invalid("page_size", fmt.Sprintf("must be between 1 and %d", MaxPageSize))
	}
	return nil
}
