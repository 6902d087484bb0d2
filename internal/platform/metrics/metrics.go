package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	ProgressUpdates      prometheus.Counter
	ProgressUpdateErrors prometheus.Counter
	TopicsCompleted      prometheus.Counter
	DomainsCompleted     prometheus.Counter
	SaveConflicts        prometheus.Counter
	RequestDuration      *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		ProgressUpdates: promauto.NewCounter(prometheus.CounterOpts{
			Name: "onestack_progress_updates_total",
			Help: "Total number of successful domain progress updates",
		}),
		ProgressUpdateErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "onestack_progress_update_errors_total",
			Help: "Total number of failed domain progress updates",
		}),
		TopicsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "onestack_topics_completed_total",
			Help: "Total number of topic incomplete-to-complete transitions",
		}),
		DomainsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "onestack_domains_completed_total",
			Help: "Total number of domains reaching 100% completion",
		}),
		SaveConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "onestack_profile_save_conflicts_total",
			Help: "Total number of optimistic-concurrency conflicts on profile saves",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "onestack_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// NewForTesting creates metrics on a private registry so parallel tests do
// not collide on the default registerer.
func NewForTesting() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		ProgressUpdates: factory.NewCounter(prometheus.CounterOpts{
			Name: "onestack_progress_updates_total",
			Help: "Total number of successful domain progress updates",
		}),
		ProgressUpdateErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "onestack_progress_update_errors_total",
			Help: "Total number of failed domain progress updates",
		}),
		TopicsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "onestack_topics_completed_total",
			Help: "Total number of topic incomplete-to-complete transitions",
		}),
		DomainsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "onestack_domains_completed_total",
			Help: "Total number of domains reaching 100% completion",
		}),
		SaveConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "onestack_profile_save_conflicts_total",
			Help: "Total number of optimistic-concurrency conflicts on profile saves",
		}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "onestack_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}
