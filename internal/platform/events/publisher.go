// Package events provides a fire-and-forget NATS publisher for review
// lifecycle events. Other instances consume these to invalidate derived
// read-side state.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Subject constants for every review event type.
const (
	SubjectReviewCreated = "reviews.review.created"
	SubjectReviewUpdated = "reviews.review.updated"
	SubjectReviewDeleted = "reviews.review.deleted"
	SubjectReplyCreated  = "reviews.reply.created"
	SubjectReplyUpdated  = "reviews.reply.updated"
	SubjectReplyDeleted  = "reviews.reply.deleted"
	SubjectVoteAdded     = "reviews.vote.added"
	SubjectVoteRemoved   = "reviews.vote.removed"
)

// Event is the canonical envelope sent to all reviews.* subjects.
type Event struct {
	EventID    string    `json:"event_id"`
	UserID     string    `json:"user_id,omitempty"`
	ReviewID   string    `json:"review_id,omitempty"`
	EntityKind string    `json:"entity_kind,omitempty"`
	EntityID   string    `json:"entity_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher publishes review events to NATS JetStream.
// The zero value and a nil pointer are both safe no-op stubs.
type Publisher struct {
	js  nats.JetStreamContext
	log *zap.Logger
}

// New creates a Publisher using an existing JetStream context.
// Pass js=nil to get a no-op stub (useful in tests and services without NATS).
func New(js nats.JetStreamContext, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{js: js, log: log}
}

// Publish sends a review event asynchronously (fire-and-forget).
// Failures are logged as warnings and never surface to the caller.
// The publisher is safe to call with a nil receiver.
func (p *Publisher) Publish(subject, userID, reviewID, entityKind, entityID string) {
	if p == nil || p.js == nil {
		return
	}
	ev := Event{
		EventID:    uuid.NewString(),
		UserID:     userID,
		ReviewID:   reviewID,
		EntityKind: entityKind,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
	}
	data, err := json.Marshal(ev)
	if err != nil {
		p.log.Warn("events: marshal failed", zap.String("subject", subject), zap.Error(err))
		return
	}
	if _, err := p.js.PublishAsync(subject, data); err != nil {
		p.log.Warn("events: publish failed", zap.String("subject", subject), zap.Error(err))
	}
}
