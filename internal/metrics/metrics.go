package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Quote metrics
	QuoteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapengine_quote_requests_total",
			Help: "Total number of quote requests",
		},
		[]string{"venue", "status"},
	)

	QuoteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "swapengine_quote_duration_seconds",
			Help:    "Quote request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"venue"},
	)

	// Submission metrics
	Submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapengine_submissions_total",
			Help: "Total number of transaction submissions",
		},
		[]string{"venue", "status"},
	)

	Simulations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapengine_simulations_total",
			Help: "Total number of dry-run transaction simulations",
		},
		[]string{"venue", "status"},
	)

	ConfirmationTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swapengine_confirmation_timeouts_total",
		Help: "Total number of confirmation polls that exhausted their bound",
	})

	ConfirmationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "swapengine_confirmation_duration_seconds",
		Help:    "Time from submission to confirmed receipt in seconds",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
	})

	// Raydium pool catalog metrics
	CatalogLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapengine_catalog_loads_total",
			Help: "Total number of pool catalog fetch attempts",
		},
		[]string{"status"},
	)

	CatalogPoolCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "swapengine_catalog_pool_count",
		Help: "Number of pools in the cached Raydium catalog",
	})
)
