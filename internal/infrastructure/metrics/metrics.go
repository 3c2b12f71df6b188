package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Chat-gateway metrics
var (
	// Relay requests by terminal status code
	RelayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docchat",
			Subsystem: "chat_gateway",
			Name:      "relay_requests_total",
			Help:      "Total number of chat relay requests",
		},
		[]string{"status"},
	)

	// Frames written to relay streams
	RelayFramesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "docchat",
			Subsystem: "chat_gateway",
			Name:      "relay_frames_total",
			Help:      "Total text frames emitted on relay streams",
		},
	)

	// Backend query failures by propagated status
	BackendErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docchat",
			Subsystem: "chat_gateway",
			Name:      "backend_errors_total",
			Help:      "Total RAG backend call failures",
		},
		[]string{"status"},
	)

	// Conversations
	ConversationsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "docchat",
			Subsystem: "chat_gateway",
			Name:      "conversations_created_total",
			Help:      "Total conversations created",
		},
	)

	// Auto-save attempts by result (saved, skipped, failed)
	AutosaveTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docchat",
			Subsystem: "chat_gateway",
			Name:      "autosave_total",
			Help:      "Total auto-save attempts",
		},
		[]string{"result"},
	)

	// Optimistic cache rollbacks after failed durable writes
	CacheRollbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "docchat",
			Subsystem: "chat_gateway",
			Name:      "conversation_cache_rollbacks_total",
			Help:      "Total optimistic mutations rolled back",
		},
	)

	// Usage snapshot refreshes
	UsageRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docchat",
			Subsystem: "chat_gateway",
			Name:      "usage_refresh_total",
			Help:      "Total usage snapshot refreshes",
		},
		[]string{"result"},
	)

	// Relay latency
	RelayDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "docchat",
			Subsystem: "chat_gateway",
			Name:      "relay_duration_seconds",
			Help:      "End to end relay duration including stream emission",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

// ObserveRelay records a finished relay request.
func ObserveRelay(status int, seconds float64) {
	RelayRequestsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
	RelayDuration.Observe(seconds)
}
