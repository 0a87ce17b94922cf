package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		paymentsSubmittedTotal,
		paymentsSubmittedAmount,
		adminNotificationsTotal,
	)
}

var (
	paymentsSubmittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paybot_payments_submitted_total",
			Help: "Payment proofs by outcome (recorded/failed).",
		},
		[]string{"outcome"},
	)

	paymentsSubmittedAmount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paybot_payments_submitted_amount_total",
			Help: "Sum of plan prices of recorded pending payments, by plan.",
		},
		[]string{"plan"},
	)

	adminNotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paybot_admin_notifications_total",
			Help: "Admin notifications by result (delivered/failed).",
		},
		[]string{"result"},
	)
)

func IncPaymentSubmitted(outcome string) {
	paymentsSubmittedTotal.WithLabelValues(norm(outcome)).Inc()
}

func AddSubmittedAmount(planID string, amount int64) {
	paymentsSubmittedAmount.WithLabelValues(norm(planID)).Add(float64(amount))
}

func IncAdminNotification(result string) {
	adminNotificationsTotal.WithLabelValues(norm(result)).Inc()
}
