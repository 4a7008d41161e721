package metrics

import "github.com/prometheus/client_golang/prometheus"

// TriageMetrics exposes counters for operator triage actions.
type TriageMetrics struct {
	actionsTotal     *prometheus.CounterVec
	outreachEnqueued prometheus.Counter
}

func NewTriageMetrics(reg prometheus.Registerer) *TriageMetrics {
	m := &TriageMetrics{
		actionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "growthengine",
			Subsystem: "triage",
			Name:      "actions_total",
			Help:      "Total triage actions by action and outcome",
		}, []string{"action", "outcome"}),
		outreachEnqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "growthengine",
			Subsystem: "triage",
			Name:      "outreach_enqueued_total",
			Help:      "Total outreach tasks enqueued by approvals",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.actionsTotal, m.outreachEnqueued)
	return m
}

func (m *TriageMetrics) ObserveAction(action, outcome string) {
	if m == nil {
		return
	}
	m.actionsTotal.WithLabelValues(action, outcome).Inc()
}

func (m *TriageMetrics) ObserveOutreachEnqueued() {
	if m == nil {
		return
	}
	m.outreachEnqueued.Inc()
}

// FeedMetrics exposes counters for the live prospect feed.
type FeedMetrics struct {
	eventsTotal *prometheus.CounterVec
	reconnects  prometheus.Counter
}

func NewFeedMetrics(reg prometheus.Registerer) *FeedMetrics {
	m := &FeedMetrics{
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "growthengine",
			Subsystem: "feed",
			Name:      "events_total",
			Help:      "Total change-feed events by disposition",
		}, []string{"disposition"}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "growthengine",
			Subsystem: "feed",
			Name:      "reconnects_total",
			Help:      "Total change-feed reconnect attempts",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.eventsTotal, m.reconnects)
	return m
}

func (m *FeedMetrics) ObserveEvent(disposition string) {
	if m == nil {
		return
	}
	m.eventsTotal.WithLabelValues(disposition).Inc()
}

func (m *FeedMetrics) ObserveReconnect() {
	if m == nil {
		return
	}
	m.reconnects.Inc()
}
