// Package worker hosts the background consumers of the reviews service.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/omnipass-platform/internal/platform/events"
	"github.com/example/omnipass-platform/services/reviews/internal/service"
)

// StartStatsInvalidator consumes reviews.> events and drops the local
// rating-stats cache entry for the touched entity. Writes on this instance
// invalidate eagerly; the consumer covers writes made by other instances.
// It runs until ctx is cancelled.
func StartStatsInvalidator(ctx context.Context, nc *nats.Conn, svc *service.Service, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}

	js, err := nc.JetStream()
	if err != nil {
		log.Error("stats_invalidator: jetstream", zap.Error(err))
		return
	}

	sub, err := js.PullSubscribe("reviews.>", "reviews_stats_invalidator")
	if err != nil {
		log.Error("stats_invalidator: subscribe", zap.Error(err))
		return
	}

	go func() {
		batchSize := envInt("WORKER_BATCH_SIZE", 100)
		maxWait := time.Duration(envInt("WORKER_BATCH_INTERVAL_MS", 2000)) * time.Millisecond

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			msgs, err := sub.Fetch(batchSize, nats.MaxWait(maxWait))
			if err != nil {
				if errors.Is(err, nats.ErrTimeout) {
					continue
				}
				log.Warn("stats_invalidator: fetch", zap.Error(err))
				time.Sleep(time.Second)
				continue
			}

			for _, m := range msgs {
				var ev events.Event
				if err := json.Unmarshal(m.Data, &ev); err != nil {
					log.Warn("stats_invalidator: invalid event", zap.String("subject", m.Subject), zap.Error(err))
					if err := m.Ack(); err != nil {
						log.Warn("stats_invalidator: ack", zap.Error(err))
					}
					continue
				}
				if ev.EntityKind != "" && ev.EntityID != "" {
					svc.InvalidateStats(ev.EntityKind, ev.EntityID)
				}
				if err := m.Ack(); err != nil {
					log.Warn("stats_invalidator: ack", zap.Error(err))
				}
			}
		}
	}()
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
