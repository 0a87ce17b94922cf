package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		updatesTotal,
		updateLatencyMs,
		sendFailuresTotal,
		sendRetriesTotal,
	)
}

var (
	updatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paybot_updates_total",
			Help: "Telegram updates handled, by kind and outcome (ok/error).",
		},
		[]string{"kind", "outcome"},
	)

	updateLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "paybot_update_latency_ms",
			Help:    "Update handling latency in milliseconds.",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"kind"},
	)

	sendFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paybot_telegram_send_failures_total",
			Help: "Outbound Telegram calls that failed after retries, by action and error kind.",
		},
		[]string{"action", "kind"},
	)

	sendRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paybot_telegram_send_retries_total",
			Help: "Retried outbound Telegram calls, by action.",
		},
		[]string{"action"},
	)
)

// ObserveUpdate records a handled update.
func ObserveUpdate(kind string, ok bool, latencyMs int64) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	updatesTotal.WithLabelValues(norm(kind), outcome).Inc()
	updateLatencyMs.WithLabelValues(norm(kind)).Observe(float64(latencyMs))
}

// IncSendFailure counts an outbound call given up on.
func IncSendFailure(action, kind string) {
	sendFailuresTotal.WithLabelValues(norm(action), norm(kind)).Inc()
}

// IncSendRetry counts one retry of an outbound call.
func IncSendRetry(action string) {
	sendRetriesTotal.WithLabelValues(norm(action)).Inc()
}
