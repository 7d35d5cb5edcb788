// Package metrics tracks delivery outcomes and exposes them as Prometheus
// collectors and a JSON snapshot.
package metrics

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Internal counters (source of truth for snapshots and the Influx push).
var (
	sent           int64
	failedAttempts int64
	suppressed     int64
	exhausted      int64
	lastSent       int64
)

// Prometheus collectors.
var (
	promSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sendnotification_sent_total",
			Help: "Notifications delivered, by service",
		},
		[]string{"service"},
	)
	promFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sendnotification_failed_attempts_total",
			Help: "Failed delivery attempts, by service",
		},
		[]string{"service"},
	)
	promSuppressed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sendnotification_suppressed_total",
			Help: "Notifications suppressed by the interval guard, by service",
		},
		[]string{"service"},
	)
	promExhausted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sendnotification_exhausted_total",
			Help: "Sends where every configured service failed",
		},
	)
)

func init() {
	prometheus.MustRegister(promSent, promFailed, promSuppressed, promExhausted)
}

// IncSent records a successful delivery through service.
func IncSent(service string) {
	atomic.AddInt64(&sent, 1)
	atomic.StoreInt64(&lastSent, time.Now().Unix())
	promSent.WithLabelValues(service).Inc()
}

// IncFailedAttempt records one failed delivery attempt for service.
func IncFailedAttempt(service string) {
	atomic.AddInt64(&failedAttempts, 1)
	promFailed.WithLabelValues(service).Inc()
}

// IncSuppressed records an interval-guard suppression for service.
func IncSuppressed(service string) {
	atomic.AddInt64(&suppressed, 1)
	promSuppressed.WithLabelValues(service).Inc()
}

// IncExhausted records a send where no service delivered.
func IncExhausted() {
	atomic.AddInt64(&exhausted, 1)
	promExhausted.Inc()
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Sent           int64 `json:"sent"`
	FailedAttempts int64 `json:"failed_attempts"`
	Suppressed     int64 `json:"suppressed"`
	Exhausted      int64 `json:"exhausted"`
	LastSent       int64 `json:"last_sent"`
}

// GetSnapshot returns the current counter values.
func GetSnapshot() Snapshot {
	return Snapshot{
		Sent:           atomic.LoadInt64(&sent),
		FailedAttempts: atomic.LoadInt64(&failedAttempts),
		Suppressed:     atomic.LoadInt64(&suppressed),
		Exhausted:      atomic.LoadInt64(&exhausted),
		LastSent:       atomic.LoadInt64(&lastSent),
	}
}

// PromHandler serves the Prometheus exposition format.
func PromHandler() http.Handler {
	return promhttp.Handler()
}

// SnapshotHandler serves the counters as JSON.
func SnapshotHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(GetSnapshot())
	}
}
