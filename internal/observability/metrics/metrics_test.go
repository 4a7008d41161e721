package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestTriageMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewTriageMetrics(reg)
	m.ObserveAction("approve", "ok")
	m.ObserveAction("reject", "error")
	m.ObserveOutreachEnqueued()
}

func TestFeedMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewFeedMetrics(reg)
	m.ObserveEvent("applied")
	m.ObserveEvent("duplicate")
	m.ObserveReconnect()
}

func TestMetricsNilSafe(t *testing.T) {
	var tm *TriageMetrics
	tm.ObserveAction("approve", "ok")
	tm.ObserveOutreachEnqueued()

	var fm *FeedMetrics
	fm.ObserveEvent("applied")
	fm.ObserveReconnect()
}
