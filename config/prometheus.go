package config

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters for the operational dashboard. Registered on the default registry,
// served by promhttp on /metrics.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "synapse_http_requests_total",
		Help: "HTTP requests by method, path template and status.",
	}, []string{"method", "path", "status"})

	VersionTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "synapse_version_transitions_total",
		Help: "Version lifecycle transitions by phase family and target status.",
	}, []string{"family", "status"})

	WorkflowSignalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "synapse_workflow_signals_total",
		Help: "Workflow signals dispatched by signal name.",
	}, []string{"signal"})

	SLAViolationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "synapse_sla_violations_total",
		Help: "SLA violations flagged by the escalation checker.",
	})
)
