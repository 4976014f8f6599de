// Package metrics exports map session and collaborator metrics to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "marketmap"

// Metrics records map session activity. A nil *Metrics is a no-op.
type Metrics struct {
	sessions      prometheus.Gauge
	evictions     *prometheus.CounterVec
	loads         *prometheus.CounterVec
	loadDuration  prometheus.Histogram
	pushEvents    *prometheus.CounterVec
	checkouts     prometheus.Counter
	clusterPoints prometheus.Histogram
}

// New registers the metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}

	m := &Metrics{
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "map_sessions",
			Help:      "Open map sessions.",
		}),
		evictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "map_session_evictions_total",
			Help:      "Map sessions closed by the registry.",
		}, []string{"reason"}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "business_list_loads_total",
			Help:      "Business list fetches by vertical and outcome.",
		}, []string{"type", "outcome"}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "business_list_load_duration_seconds",
			Help:      "Duration of business list fetches.",
			Buckets:   prometheus.DefBuckets,
		}),
		pushEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "business_update_events_total",
			Help:      "Live business update events by event name.",
		}, []string{"event"}),
		checkouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "whatsapp_checkouts_total",
			Help:      "WhatsApp checkout links built.",
		}),
		clusterPoints: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cluster_index_points",
			Help:      "Points per rebuilt cluster index.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}

	reg.MustRegister(m.sessions, m.evictions, m.loads, m.loadDuration, m.pushEvents, m.checkouts, m.clusterPoints)

	return m
}

// SessionOpened counts a new map session.
func (m *Metrics) SessionOpened() {
	if m == nil || m.sessions == nil {
		return
	}
	m.sessions.Inc()
}

// SessionClosed counts a closed session. reason is "deleted", "expired" or "evicted".
func (m *Metrics) SessionClosed(reason string) {
	if m == nil || m.sessions == nil {
		return
	}
	m.sessions.Dec()
	m.evictions.WithLabelValues(normalizeLabel(reason)).Inc()
}

// BusinessListLoaded records one business list fetch and the size of the resulting index.
func (m *Metrics) BusinessListLoaded(businessType string, duration time.Duration, points int, err error) {
	if m == nil || m.loads == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.loads.WithLabelValues(normalizeLabel(businessType), outcome).Inc()
	m.loadDuration.Observe(duration.Seconds())
	if err == nil {
		m.clusterPoints.Observe(float64(points))
	}
}

// PushEvent counts a live business update.
func (m *Metrics) PushEvent(event string) {
	if m == nil || m.pushEvents == nil {
		return
	}
	m.pushEvents.WithLabelValues(normalizeLabel(event)).Inc()
}

// Checkout counts a built checkout link.
func (m *Metrics) Checkout() {
	if m == nil || m.checkouts == nil {
		return
	}
	m.checkouts.Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
