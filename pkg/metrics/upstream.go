package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// UpstreamMetrics records calls made to the men4u API.
type UpstreamMetrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
}

// NewUpstreamMetrics registers the upstream metrics on the provided registerer.
func NewUpstreamMetrics(reg prometheus.Registerer) *UpstreamMetrics {
	if reg == nil {
		return &UpstreamMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "men4u_upstream_request_duration_seconds",
		Help:    "Duration of men4u API calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "men4u_upstream_requests_total",
		Help: "men4u API calls by endpoint and response status.",
	}, []string{"endpoint", "status"})
	reg.MustRegister(duration, requests)
	return &UpstreamMetrics{
		duration: duration,
		requests: requests,
	}
}

// ObserveRequest records one upstream call. A zero status means the request never got a response.
func (u *UpstreamMetrics) ObserveRequest(endpoint string, status int, elapsed time.Duration) {
	if u == nil || u.duration == nil {
		return
	}
	label := normalizeLabel(endpoint)
	u.duration.WithLabelValues(label).Observe(elapsed.Seconds())
	u.requests.WithLabelValues(label, statusLabel(status)).Inc()
}

// ListViewMetrics tracks how list screens were served.
type ListViewMetrics struct {
	served *prometheus.CounterVec
}

// Outcomes reported through ObserveServed.
const (
	ListOutcomeFresh      = "fresh"
	ListOutcomeStale      = "stale"
	ListOutcomeSuperseded = "superseded"
	ListOutcomeFailed     = "failed"
)

// NewListViewMetrics registers the list view counter on the provided registerer.
func NewListViewMetrics(reg prometheus.Registerer) *ListViewMetrics {
	if reg == nil {
		return &ListViewMetrics{}
	}
	served := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_list_views_total",
		Help: "List view responses by screen and outcome.",
	}, []string{"screen", "outcome"})
	reg.MustRegister(served)
	return &ListViewMetrics{served: served}
}

// ObserveServed counts one list response for screen.
func (l *ListViewMetrics) ObserveServed(screen, outcome string) {
	if l == nil || l.served == nil {
		return
	}
	l.served.WithLabelValues(normalizeLabel(screen), normalizeLabel(outcome)).Inc()
}

func statusLabel(status int) string {
	if status <= 0 {
		return "error"
	}
	return strconv.Itoa(status)
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
