// Package metrics exposes the Prometheus collectors used by the concierge.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	chatRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "concierge_chat_requests_total",
		Help: "Chat requests by classified intent and outcome",
	}, []string{"intent", "outcome"})

	pmsCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "concierge_pms_calls_total",
		Help: "PMS gateway calls by operation and normalized status",
	}, []string{"operation", "status"})

	llmRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "concierge_llm_request_duration_seconds",
		Help:    "Completion service latency by purpose",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"purpose", "result"})
)

// RecordChat counts a finished chat request. intent is empty when the
// request failed before classification.
func RecordChat(intent, outcome string) {
	if intent == "" {
		intent = "none"
	}
	chatRequestsTotal.WithLabelValues(intent, outcome).Inc()
}

// RecordPMSCall counts one gateway call with its normalized status.
func RecordPMSCall(operation, status string) {
	pmsCallsTotal.WithLabelValues(operation, status).Inc()
}

// ObserveLLM records the latency of a completion call.
func ObserveLLM(purpose string, seconds float64, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	llmRequestDuration.WithLabelValues(purpose, result).Observe(seconds)
}
