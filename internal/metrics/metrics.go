// Package metrics exposes Prometheus counters for the link rewriting pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the pipeline counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	MessagesSeen      prometheus.Counter
	MessagesRewritten prometheus.Counter
	URLsRewritten     prometheus.Counter
	Batches           *prometheus.CounterVec
	ConfigRepairs     prometheus.Counter
	Failures          *prometheus.CounterVec
}

// New registers the counters on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		MessagesSeen:      f.NewCounter(prometheus.CounterOpts{Name: "vxlinks_messages_seen_total", Help: "Guild messages inspected for links"}),
		MessagesRewritten: f.NewCounter(prometheus.CounterOpts{Name: "vxlinks_messages_rewritten_total", Help: "Messages that produced at least one rewritten link"}),
		URLsRewritten:     f.NewCounter(prometheus.CounterOpts{Name: "vxlinks_urls_rewritten_total", Help: "Rewritten links posted"}),
		Batches:           f.NewCounterVec(prometheus.CounterOpts{Name: "vxlinks_batches_total", Help: "Delivered batches by terminal state"}, []string{"state"}),
		ConfigRepairs:     f.NewCounter(prometheus.CounterOpts{Name: "vxlinks_config_repairs_total", Help: "Guild config entries repaired to the default"}),
		Failures:          f.NewCounterVec(prometheus.CounterOpts{Name: "vxlinks_failures_total", Help: "Message processing failures by stage"}, []string{"stage"}),
	}
}

// MessageSeen counts an inspected message.
func (m *Metrics) MessageSeen() {
	if m != nil {
		m.MessagesSeen.Inc()
	}
}

// Rewritten counts a message that produced n links.
func (m *Metrics) Rewritten(n int) {
	if m != nil {
		m.MessagesRewritten.Inc()
		m.URLsRewritten.Add(float64(n))
	}
}

// BatchDone counts a batch reaching its terminal state.
func (m *Metrics) BatchDone(state string) {
	if m != nil {
		m.Batches.WithLabelValues(state).Inc()
	}
}

// Repaired counts a repaired config entry.
func (m *Metrics) Repaired() {
	if m != nil {
		m.ConfigRepairs.Inc()
	}
}

// Failed counts a processing failure at stage.
func (m *Metrics) Failed(stage string) {
	if m != nil {
		m.Failures.WithLabelValues(stage).Inc()
	}
}
