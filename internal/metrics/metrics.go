// Package metrics defines the Prometheus metrics exported on /metrics.
// Everything registers with the default registry on package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "training"

// UsersSignedUpTotal counts sign-ups, by team.
var UsersSignedUpTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_signed_up_total",
		Help:      "Total number of users created through sign-up.",
	},
	[]string{"team"},
)

// LoginsTotal counts login attempts.
// Labels:
//   - kind: "member" or "admin"
//   - result: "ok", "not_found", "wrong_password", "disabled"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by kind and result.",
	},
	[]string{"kind", "result"},
)

// TrainingsCreatedTotal counts recorded trainings, by training type.
var TrainingsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "trainings_created_total",
		Help:      "Total number of trainings recorded.",
	},
	[]string{"type"},
)

// TrainingsUpdatedTotal counts admin edits of trainings.
var TrainingsUpdatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "trainings_updated_total",
		Help:      "Total number of trainings edited by an admin.",
	},
)

// TrainingsDeletedTotal counts training deletions.
// Label:
//   - by: "owner" or "admin"
var TrainingsDeletedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "trainings_deleted_total",
		Help:      "Total number of trainings deleted, by actor.",
	},
	[]string{"by"},
)

// CascadeDeletesTotal counts admin user deletions.
var CascadeDeletesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_cascade_deletes_total",
		Help:      "Total number of users deleted together with their trainings.",
	},
)

// ReconcilerPurgedTotal counts what the reconciler removed for good.
// Label:
//   - kind: "training", "user" or "blob"
var ReconcilerPurgedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconciler_purged_total",
		Help:      "Total number of documents and blobs permanently removed by the reconciler.",
	},
	[]string{"kind"},
)

// ReconcilerErrorsTotal counts failed reconciler steps.
var ReconcilerErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconciler_errors_total",
		Help:      "Total number of reconciler steps that failed and will be retried next run.",
	},
	[]string{"kind"},
)

// ReconcilerRunDuration measures a full reconciler pass.
var ReconcilerRunDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "reconciler_run_duration_seconds",
		Help:      "Duration of one reconciler pass.",
		Buckets:   prometheus.DefBuckets,
	},
)

// StatsCacheTotal counts stats cache lookups.
// Label:
//   - result: "hit" or "miss"
var StatsCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stats_cache_total",
		Help:      "Total number of stats cache lookups, by result.",
	},
	[]string{"result"},
)

// HTTPRequestsTotal counts served requests.
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests, by route and status code.",
	},
	[]string{"method", "route", "status"},
)

// HTTPRequestDuration measures request latency per route.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency, by route.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)
