package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		transitionsTotal,
		planSelectionsTotal,
		promptDeleteFailures,
	)
}

var (
	transitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paybot_transitions_total",
			Help: "Conversation transitions by source state, event and target state.",
		},
		[]string{"from", "event", "to"},
	)

	planSelectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paybot_plan_selections_total",
			Help: "Plan selections by plan id.",
		},
		[]string{"plan"},
	)

	promptDeleteFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "paybot_prompt_delete_failures_total",
			Help: "Previous prompts that could not be deleted.",
		},
	)
)

// ObserveTransition counts a state machine step. Skipped events keep from == to.
func ObserveTransition(from, event, to string) {
	transitionsTotal.WithLabelValues(norm(from), norm(event), norm(to)).Inc()
}

func IncPlanSelection(planID string) {
	planSelectionsTotal.WithLabelValues(norm(planID)).Inc()
}

func IncPromptDeleteFailure() {
	promptDeleteFailures.Inc()
}
