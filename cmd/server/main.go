package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"onestack/internal/catalog"
	"onestack/internal/events"
	"onestack/internal/events/kafka"
	"onestack/internal/events/worker"
	"onestack/internal/jwttoken"
	"onestack/internal/platform/config"
	"onestack/internal/platform/httpserver"
	"onestack/internal/platform/logger"
	"onestack/internal/platform/metrics"
	"onestack/internal/platform/postgres"
	"onestack/internal/platform/redis"
	progresshandler "onestack/internal/progress/handler"
	"onestack/internal/progress/service"
	"onestack/internal/progress/store"
	id "onestack/pkg/domain"
	"onestack/pkg/platform/sentinel"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in internal packages.
func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		log.Error("failed to load domain catalog", "error", err, "path", cfg.CatalogFile)
		return err
	}

	m := metrics.New()

	var profiles store.ProfileStore
	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to connect to postgres", "error", err)
			return err
		}
		defer db.Close()

		pg := store.NewPostgres(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Error("failed to ensure schema", "error", err)
			return err
		}
		profiles = pg
		log.Info("using postgres profile store")
	} else {
		profiles = store.NewMemory()
		log.Warn("no database configured, using in-memory profile store")
	}

	if cfg.SeedUser != "" {
		if err := seedUser(ctx, profiles, cfg.SeedUser); err != nil {
			log.Error("failed to seed user", "error", err, "user", cfg.SeedUser)
			return err
		}
		log.Info("seeded user profile", "user", cfg.SeedUser)
	}

	var cache *store.ProfileCache
	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		cache = store.NewProfileCache(redisClient.Client, config.ProfileCacheTTL, log)
		log.Info("profile read cache enabled")
	}

	g, ctx := errgroup.WithContext(ctx)

	var publisher events.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := kafka.New(ctx, cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			log.Error("failed to connect to kafka", "error", err, "brokers", cfg.KafkaBrokers)
			return err
		}
		defer kp.Close()
		publisher = kp
		log.Info("publishing progress events to kafka", "topic", cfg.KafkaTopic)
	} else {
		cp := events.NewChannelPublisher(256, log)
		eventStore := events.NewInMemoryStore(1024)
		w := worker.New(eventStore, cp.Inbox(), log)
		g.Go(func() error { return w.Run(ctx) })
		publisher = cp
	}

	jwtSvc := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)

	svc := service.New(profiles, cat,
		service.WithCache(cache),
		service.WithPublisher(publisher),
		service.WithMetrics(m),
		service.WithLogger(log),
	)

	router := chi.NewRouter()
	router.Get("/healthz", healthHandler(db, redisClient))
	router.Handle("/metrics", promhttp.Handler())

	h := progresshandler.New(svc, log, m, jwtSvc)
	h.Register(router)

	srv := httpserver.New(cfg.Addr, router)

	g.Go(func() error {
		log.Info("starting progress server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server error", "error", err)
		return err
	}
	return nil
}

// healthHandler reports liveness plus the state of each configured backing
// service. Unconfigured dependencies are omitted rather than reported down.
func healthHandler(db *sql.DB, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				body["postgres"] = "down"
				body["status"] = "degraded"
				status = http.StatusServiceUnavailable
			} else {
				body["postgres"] = "ok"
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(ctx); err != nil {
				body["redis"] = "down"
				body["status"] = "degraded"
				status = http.StatusServiceUnavailable
			} else {
				body["redis"] = "ok"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

// seedUser creates an empty profile for a known user ID. Registration is
// owned by the account service; this hook exists for local development.
// Re-seeding an existing user is a no-op.
func seedUser(ctx context.Context, profiles store.ProfileStore, raw string) error {
	userID, err := id.ParseUserID(raw)
	if err != nil {
		return err
	}
	if err := profiles.Create(ctx, userID); err != nil && !errors.Is(err, sentinel.ErrConflict) {
		return err
	}
	return nil
}
