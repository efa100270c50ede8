package store

import (
	"sync"
)

// Memory is a development-only in-memory backend. One mutex guards all three
// tables, which keeps cascading deletes atomic without a transaction API.
type Memory struct {
	mu      sync.RWMutex
	reviews map[string]Review
	replies map[string]Reply
	votes   map[string]map[string]struct{} // review_id -> voter set
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		reviews: make(map[string]Review),
		replies: make(map[string]Reply),
		votes:   make(map[string]map[string]struct{}),
	}
}
