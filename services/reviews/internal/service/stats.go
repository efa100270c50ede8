package service

import (
	"context"
	"math"

	cache "github.com/patrickmn/go-cache"

	"github.com/example/omnipass-platform/services/reviews/internal/store"
)

// RatingStats returns the per-entity aggregate with the average rounded to
// one decimal place. Results are cached per entity; staleness is bounded by
// the configured TTL, and any write touching the entity drops the cache entry
// (locally right away, across instances through the events consumer).
func (s *Service) RatingStats(ctx context.Context, ref store.EntityRef) (store.RatingStats, error) {
	key := statsKey(string(ref.Kind), ref.ID)
	if v, ok := s.stats.Get(key); ok {
		return v.(store.RatingStats), nil
	}

	raw, err := s.reviews.RatingStats(ctx, ref)
	if err != nil {
		return store.RatingStats{}, err
	}
	raw.Average = math.Round(raw.Average*10) / 10

	s.stats.Set(key, raw, cache.DefaultExpiration)
	return raw, nil
}

// InvalidateStats drops the cached aggregate for one entity. The events
// consumer calls this when another instance reports a write.
func (s *Service) InvalidateStats(kind, id string) {
	s.stats.Delete(statsKey(kind, id))
}

func (s *Service) invalidateStats(ref store.EntityRef) {
	s.InvalidateStats(string(ref.Kind), ref.ID)
}

func statsKey(kind, id string) string {
	return kind + "|" + id
}
