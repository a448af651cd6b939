// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SagaOutcomes counts finished order sagas by terminal state.
	SagaOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stockflow",
		Subsystem: "order",
		Name:      "saga_outcomes_total",
		Help:      "Finished order-placement sagas by terminal state.",
	}, []string{"state"})

	SagaDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "stockflow",
		Subsystem: "order",
		Name:      "saga_duration_seconds",
		Help:      "Wall time of an order-placement saga.",
		Buckets:   prometheus.DefBuckets,
	})

	// ReservationAttempts counts remote inventory calls, retries included.
	ReservationAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stockflow",
		Subsystem: "order",
		Name:      "reservation_attempts_total",
		Help:      "Remote inventory calls by operation and result.",
	}, []string{"operation", "result"})

	CompensationReleases = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stockflow",
		Subsystem: "order",
		Name:      "compensation_releases_total",
		Help:      "Stock releases issued while compensating a failed order.",
	}, []string{"result"})

	LedgerMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stockflow",
		Subsystem: "inventory",
		Name:      "ledger_mutations_total",
		Help:      "Stock ledger quantity changes by direction and result.",
	}, []string{"direction", "result"})

	PublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stockflow",
		Subsystem: "inventory",
		Name:      "publish_failures_total",
		Help:      "Domain events that could not be published after commit.",
	}, []string{"topic"})

	ReplicaEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stockflow",
		Subsystem: "store",
		Name:      "replica_events_total",
		Help:      "Inventory and category events applied to the read replica.",
	}, []string{"topic", "result"})

	DeadLetters = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stockflow",
		Subsystem: "mq",
		Name:      "dead_letters_total",
		Help:      "Messages forwarded to the dead-letter topic.",
	}, []string{"topic"})

	StockFeedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "stockflow",
		Subsystem: "store",
		Name:      "stock_feed_clients",
		Help:      "Connected websocket stock-feed clients.",
	})
)
