package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CartMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Total number of cart mutations by operation",
	}, []string{"operation"})

	CartRehydrationsDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_rehydrations_discarded_total",
		Help: "Total number of corrupt cart snapshots discarded on load",
	})

	CheckoutsStartedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkouts_started_total",
		Help: "Total number of checkout flows started",
	}, []string{"flow_type"})

	CheckoutsCompletedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkouts_completed_total",
		Help: "Total number of checkout flows completed",
	}, []string{"flow_type"})

	CheckoutValidationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_validation_failures_total",
		Help: "Total number of checkout submissions rejected by validation",
	}, []string{"step"})

	SettlementAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settlement_attempts_total",
		Help: "Total number of settlement attempts",
	})

	SettlementDeclinedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settlement_declined_total",
		Help: "Total number of declined settlements",
	})

	SettlementLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "settlement_latency_seconds",
		Help:    "Latency of payment settlement",
		Buckets: prometheus.DefBuckets,
	})

	CatalogQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_query_latency_seconds",
		Help:    "Latency of catalog queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	PurchasesRecordedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "purchases_recorded_total",
		Help: "Total number of purchases recorded by the worker",
	}, []string{"flow_type"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
