package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

var (
	// EntriesTotal counts entry attempts by vehicle class and outcome.
	EntriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parkledger_entries_total",
			Help: "Total number of vehicle entry attempts.",
		},
		[]string{"vehicle_class", "outcome"}, // outcome: success/rejected/failed
	)

	ExitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parkledger_exits_total",
			Help: "Total number of vehicle exit attempts.",
		},
		[]string{"vehicle_class", "outcome"},
	)

	// RevenueTotal is the sum of exit costs charged by this process.
	RevenueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parkledger_revenue_units_total",
			Help: "Currency units charged at exit.",
		},
		[]string{"vehicle_class"},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "parkledger_active_sessions",
			Help: "Active sessions. Moved by each entry and exit and reset from storage by every active listing.",
		},
	)

	GateMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parkledger_gate_messages_total",
			Help: "Gate messages consumed from SQS.",
		},
		[]string{"direction", "outcome"},
	)

	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "parkledger_http_request_duration_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

func init() {
	prometheus.MustRegister(EntriesTotal)
	prometheus.MustRegister(ExitsTotal)
	prometheus.MustRegister(RevenueTotal)
	prometheus.MustRegister(ActiveSessions)
	prometheus.MustRegister(GateMessagesTotal)
	prometheus.MustRegister(RequestLatency)
}
