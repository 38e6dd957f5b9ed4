package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records store latency by repository operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "musefeed_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "musefeed_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// LikeToggles counts like toggles by resulting state ("liked" or "unliked").
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "musefeed_like_toggles_total",
		Help: "Total number of like toggles by resulting state",
	}, []string{"state"})

	// SearchResults observes how many posts each search returned, by match source.
	SearchResults = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "musefeed_search_results",
		Help:    "Posts returned per search by match source",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
	}, []string{"source"})

	// RealtimeEvents counts published realtime events by type and outcome.
	RealtimeEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "musefeed_realtime_events_total",
		Help: "Realtime events published by type and outcome",
	}, []string{"event_type", "outcome"})

	// WebSocketConnections is the gauge of open realtime WebSocket connections.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "musefeed_websocket_connections",
		Help: "Number of open realtime WebSocket connections",
	})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
