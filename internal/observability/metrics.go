// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Feed metrics
	LaunchEventsSeen    prometheus.Counter
	LaunchEventsDropped prometheus.Counter
	WSReconnects        prometheus.Counter

	// Analyzer metrics
	TokensEvaluated prometheus.Counter
	SafetyStatus    *prometheus.CounterVec

	// Admission metrics
	BuysAdmitted  prometheus.Counter
	BuysRejected  *prometheus.CounterVec
	SellsRejected *prometheus.CounterVec

	// Trading metrics
	TradesExecuted *prometheus.CounterVec
	OpenPositions  prometheus.Gauge
	ExitTriggers   *prometheus.CounterVec

	// Solana metrics
	RPCCallLatency *prometheus.HistogramVec

	// Health metrics
	UptimeSeconds prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "pump_sniper"
	}

	return &Metrics{
		LaunchEventsSeen: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "launch_events_seen_total",
			Help:      "Total number of token launch events observed",
		}),
		LaunchEventsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "launch_events_dropped_total",
			Help:      "Total number of launch events dropped under backpressure",
		}),
		WSReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "ws_reconnects_total",
			Help:      "Total number of WebSocket reconnections",
		}),

		TokensEvaluated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analyzer",
			Name:      "tokens_evaluated_total",
			Help:      "Total number of tokens scored",
		}),
		SafetyStatus: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analyzer",
			Name:      "safety_status_total",
			Help:      "Total number of safety verdicts by status",
		}, []string{"status"}),

		BuysAdmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "admission",
			Name:      "buys_admitted_total",
			Help:      "Total number of buys passing admission",
		}),
		BuysRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "admission",
			Name:      "buys_rejected_total",
			Help:      "Total number of buys rejected by reason",
		}, []string{"reason"}),
		SellsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "admission",
			Name:      "sells_rejected_total",
			Help:      "Total number of sells rejected by reason",
		}, []string{"reason"}),

		TradesExecuted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "trades_executed_total",
			Help:      "Total number of trades by side and outcome",
		}, []string{"side", "outcome"}),
		OpenPositions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "open_positions",
			Help:      "Current number of live positions",
		}),
		ExitTriggers: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "exit_triggers_total",
			Help:      "Total number of exit triggers by kind",
		}, []string{"kind"}),

		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

		UptimeSeconds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "uptime_seconds_total",
			Help:      "Total uptime in seconds",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordLaunchSeen increments the launch events seen counter.
func RecordLaunchSeen() {
	DefaultMetrics.LaunchEventsSeen.Inc()
}

// RecordLaunchDropped increments the dropped launch events counter.
func RecordLaunchDropped() {
	DefaultMetrics.LaunchEventsDropped.Inc()
}

// RecordWSReconnect increments the WebSocket reconnect counter.
func RecordWSReconnect() {
	DefaultMetrics.WSReconnects.Inc()
}

// RecordTokenEvaluated records an analyzer verdict.
func RecordTokenEvaluated(status string) {
	DefaultMetrics.TokensEvaluated.Inc()
	DefaultMetrics.SafetyStatus.WithLabelValues(status).Inc()
}

// RecordBuyAdmitted increments the admitted buys counter.
func RecordBuyAdmitted() {
	DefaultMetrics.BuysAdmitted.Inc()
}

// RecordBuyRejected records a buy rejection by reason.
func RecordBuyRejected(reason string) {
	DefaultMetrics.BuysRejected.WithLabelValues(reason).Inc()
}

// RecordSellRejected records a sell rejection by reason.
func RecordSellRejected(reason string) {
	DefaultMetrics.SellsRejected.WithLabelValues(reason).Inc()
}

// RecordTrade records an executed trade by side and outcome.
func RecordTrade(side string, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	DefaultMetrics.TradesExecuted.WithLabelValues(side, outcome).Inc()
}

// RecordExitTrigger records an exit trigger by kind.
func RecordExitTrigger(kind string) {
	DefaultMetrics.ExitTriggers.WithLabelValues(kind).Inc()
}

// SetOpenPositions updates the open positions gauge.
func SetOpenPositions(n int) {
	DefaultMetrics.OpenPositions.Set(float64(n))
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}
