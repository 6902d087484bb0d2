// Package service orchestrates the progress write and read paths: input
// validation, reconciliation against the catalog, aggregate recomputation,
// and version-guarded persistence.
package service

import (
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"onestack/internal/catalog"
	"onestack/internal/events"
	"onestack/internal/platform/metrics"
	"onestack/internal/progress"
	"onestack/internal/progress/store"
)

// maxSaveAttempts bounds the read-modify-write retries when a concurrent
// update bumps the profile version between our read and our save.
const maxSaveAttempts = 3

// maxRecentActivity caps the recent-activity feed.
const maxRecentActivity = 35

// Service is the authoritative owner of progress mutations. Profiles are
// mutated only through UpdateProgress.
type Service struct {
	store     store.ProfileStore
	catalog   *catalog.Catalog
	cache     *store.ProfileCache
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
}

type serviceConfig struct {
	cache     *store.ProfileCache
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// Option configures optional collaborators.
type Option func(*serviceConfig)

func WithCache(c *store.ProfileCache) Option {
	return func(cfg *serviceConfig) { cfg.cache = c }
}

func WithPublisher(p events.Publisher) Option {
	return func(cfg *serviceConfig) { cfg.publisher = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(cfg *serviceConfig) { cfg.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(cfg *serviceConfig) { cfg.logger = l }
}

func New(profiles store.ProfileStore, cat *catalog.Catalog, opts ...Option) *Service {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.publisher == nil {
		cfg.publisher = events.NopPublisher{}
	}
	if cfg.metrics == nil {
		cfg.metrics = metrics.NewForTesting()
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		store:     profiles,
		catalog:   cat,
		cache:     cfg.cache,
		publisher: cfg.publisher,
		metrics:   cfg.metrics,
		logger:    cfg.logger,
		tracer:    otel.Tracer("onestack/progress"),
	}
}

// UpdateRequest is the validated-at-the-edge shape of a progress update.
type UpdateRequest struct {
	DomainID   string                `json:"domainId"`
	DomainName string                `json:"domainName"`
	Topics     []progress.TopicInput `json:"topics"`
}

// UpdateResult carries the authoritative state back to the caller.
type UpdateResult struct {
	DomainProgress       progress.DomainProgress
	TotalTopicsCompleted int
}

// sortActivity orders entries most recent first; entries without a stamp sort
// last. Stable so same-timestamp entries keep domain order.
func sortActivity(entries []progress.ActivityEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time.After(entries[j].Time)
	})
}

func spanAttrs(userID, domainID string) trace.SpanStartOption {
	return trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("domain.id", domainID),
	)
}
