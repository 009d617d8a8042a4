package utils

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Counter: total HTTP requests
	ReqCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// Histogram: request duration
	ReqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "app_request_duration_seconds",
			Help: "Request duration seconds",
		},
		[]string{"method", "path"},
	)

	// Counter: application errors by handler and type
	ErrorCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_errors_total",
			Help: "Total app errors",
		},
		[]string{"handler", "type"},
	)

	// Counter: chat requests by classified intent
	ChatRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_chat_requests_total",
			Help: "Chat requests by classified intent",
		},
		[]string{"intent"},
	)

	// Counter: LLM call failures by stage (classify, extract, stream)
	LLMFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_llm_failures_total",
			Help: "LLM call failures by pipeline stage",
		},
		[]string{"stage"},
	)

	// Counter: dispatched workout actions by canonical action name
	ActionsDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_actions_dispatched_total",
			Help: "Workout actions dispatched by action",
		},
		[]string{"action", "outcome"},
	)
)

func InitMetrics() {
	prometheus.MustRegister(ReqCount, ReqDuration, ErrorCount, ChatRequests, LLMFailures, ActionsDispatched)
}
