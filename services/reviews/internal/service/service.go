// Package service composes the review, reply and helpful-vote stores into
// the externally observable review-engine operations. Derived numbers
// (averages, counts) are always computed from source rows, never persisted.
package service

import (
	"time"

	cache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/example/omnipass-platform/internal/platform/events"
	"github.com/example/omnipass-platform/services/reviews/internal/store"
)

// ReviewSummary is a review with its read-side aggregates attached.
type ReviewSummary struct {
	store.Review
	HelpfulCount   int  `json:"helpful_count"`
	CallerHasVoted bool `json:"user_has_marked_helpful"`
	ReplyCount     int  `json:"reply_count"`
}

// ReviewPage bundles one page of summarized reviews with the entity stats.
type ReviewPage struct {
	Reviews            []ReviewSummary `json:"reviews"`
	Total              int             `json:"total"`
	Page               int             `json:"page"`
	PageSize           int             `json:"page_size"`
	AverageRating      float64         `json:"average_rating"`
	RatingDistribution map[int]int     `json:"rating_distribution"`
}

// ReviewWithTree is a summarized review carrying its full reply forest.
type ReviewWithTree struct {
	ReviewSummary
	Replies []*store.ReplyNode `json:"replies"`
}

const (
	MaxReviewCommentLen = 5000
	MaxReplyCommentLen  = 2000
	MaxPageSize         = 100

	maxEntityIDLen = 255

	// DefaultStatsTTL bounds rating-stats staleness when the eager
	// invalidation path (local write or events consumer) is unavailable.
	DefaultStatsTTL = 30 * time.Second
)

type Service struct {
	reviews store.ReviewStore
	replies store.ReplyStore
	votes   store.HelpfulVoteStore
	events  *events.Publisher
	stats   *cache.Cache
	log     *zap.Logger
}

func New(reviews store.ReviewStore, replies store.ReplyStore, votes store.HelpfulVoteStore,
	pub *events.Publisher, log *zap.Logger, statsTTL time.Duration) *Service {
	if statsTTL <= 0 {
		statsTTL = DefaultStatsTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		reviews: reviews,
		replies: replies,
		votes:   votes,
		events:  pub,
		stats:   cache.New(statsTTL, 2*statsTTL),
		log:     log,
	}
}
