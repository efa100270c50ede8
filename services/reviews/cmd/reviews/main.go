package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/omnipass-platform/internal/platform/auth"
	"github.com/example/omnipass-platform/internal/platform/config"
	"github.com/example/omnipass-platform/internal/platform/db"
	"github.com/example/omnipass-platform/internal/platform/events"
	"github.com/example/omnipass-platform/internal/platform/httpserver"
	"github.com/example/omnipass-platform/internal/platform/logging"
	"github.com/example/omnipass-platform/internal/platform/natsconn"
	"github.com/example/omnipass-platform/internal/platform/run"
	"github.com/example/omnipass-platform/services/reviews/internal/handlers"
	"github.com/example/omnipass-platform/services/reviews/internal/service"
	"github.com/example/omnipass-platform/services/reviews/internal/store"
	"github.com/example/omnipass-platform/services/reviews/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	st, closeStore := initStore(cfg, log)
	if closeStore != nil {
		defer closeStore()
	}

	// NATS is optional; without it the service still runs, relying on the
	// stats TTL instead of cross-instance invalidation.
	var nc *nats.Conn
	var js nats.JetStreamContext
	if conn, err := natsconn.Connect(natsconn.Options{}); err != nil {
		log.Warn("nats unavailable, events disabled", zap.Error(err))
	} else {
		nc = conn
		defer nc.Close()
		if jsc, err := nc.JetStream(); err != nil {
			log.Warn("jetstream unavailable, events disabled", zap.Error(err))
		} else {
			js = jsc
		}
	}

	svc := service.New(st, st, st, events.New(js, log), log, statsTTL())

	jwtSecret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	verifier := auth.JWTVerifier{Secret: []byte(jwtSecret)}

	r := chi.NewRouter()
	httpserver.SetupRouter(r)

	// Public reads; a valid token personalizes the response.
	r.Group(func(r chi.Router) {
		r.Use(auth.OptionalUser(verifier))
		r.Get("/v1/reviews", handlers.ListReviews(svc))
		r.Get("/v1/reviews/{review_id}", handlers.GetReview(svc))
		r.Get("/v1/reviews/{review_id}/replies", handlers.ListReplies(svc))
	})

	// Writes require authentication.
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser(verifier))
		r.Post("/v1/reviews", handlers.CreateReview(svc))
		r.Put("/v1/reviews/{review_id}", handlers.UpdateReview(svc))
		r.Delete("/v1/reviews/{review_id}", handlers.DeleteReview(svc))
		r.Post("/v1/reviews/{review_id}/helpful", handlers.MarkHelpful(svc))
		r.Delete("/v1/reviews/{review_id}/helpful", handlers.UnmarkHelpful(svc))
		r.Post("/v1/reviews/{review_id}/replies", handlers.CreateReply(svc))
		r.Put("/v1/reviews/replies/{reply_id}", handlers.UpdateReply(svc))
		r.Delete("/v1/reviews/replies/{reply_id}", handlers.DeleteReply(svc))
	})

	srv := httpserver.New(httpserver.Options{Addr: cfg.HTTP.Addr, ServiceName: cfg.ServiceName, Logger: log, Router: r})

	runner := run.New(log)
	code := runner.WithSignals(func(ctx context.Context) error {
		if nc != nil {
			worker.StartStatsInvalidator(ctx, nc, svc, log)
		}

		go func() {
			<-ctx.Done()
			c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(c)
		}()
		return srv.Start(log)
	})

	log.Info("exit", zap.Int("code", code))
	run.Exit(code)
}

// initStore selects the storage backend. Production requires Postgres and
// terminates the process without it; development falls back to memory.
func initStore(cfg config.AppConfig, log *zap.Logger) (store.Store, func()) {
	dsn := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dsn == "" {
		if cfg.IsProduction() {
			log.Error("DATABASE_URL is required in production")
			_ = log.Sync()
			os.Exit(1)
		}
		log.Warn("DATABASE_URL not set, using in-memory store (development only)")
		return store.NewMemory(), nil
	}

	pool, err := db.Open(context.Background())
	if err != nil {
		if cfg.IsProduction() {
			log.Error("postgres is required in production but unavailable", zap.Error(err))
			_ = log.Sync()
			os.Exit(1)
		}
		log.Warn("postgres unavailable, falling back to in-memory store", zap.Error(err))
		return store.NewMemory(), nil
	}

	log.Info("store: postgres")
	return store.NewPostgres(pool), pool.Close
}

func statsTTL() time.Duration {
	v := strings.TrimSpace(os.Getenv("STATS_CACHE_TTL"))
	if v == "" {
		return service.DefaultStatsTTL
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return service.DefaultStatsTTL
	}
	return d
}
