package logger

import "strings"

// Closed vocabularies for the status and outcome fields. Unknown statuses are
// kept lowercased; unknown outcomes are dropped.
var (
	knownStatus  = set("ok", "fail", "skip", "retry", "rate_limited", "cancelled", "error")
	knownOutcome = set("ok", "fail", "cancelled", "rate_limited")
)

func set(values ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}

func normalizeLevel(level string) string {
	switch l := strings.ToUpper(strings.TrimSpace(level)); l {
	case "":
		return "INFO"
	case "WARNING":
		return "WARN"
	default:
		return l
	}
}

func normalizeStatus(status string) (string, bool) {
	status = strings.ToLower(strings.TrimSpace(status))
	_, ok := knownStatus[status]
	return status, ok
}

func normalizeOutcome(outcome string) (string, bool) {
	outcome = strings.ToLower(strings.TrimSpace(outcome))
	_, ok := knownOutcome[outcome]
	return outcome, ok
}

// defaultKeyOrder fixes the leading keys of every line; the rest follow alphabetically.
var defaultKeyOrder = []string{
	"ts", "level", "component", "event", "status",
	"rid", "rid_full", "ts_unix_nano",
	"update_id", "user_id", "chat_id", "chat_type", "handler", "cb_key", "outcome",
	"from_state", "to_state", "trigger",
	"plan_id", "payment_id", "amount", "notify",
	"duration_ms", "messages", "kb", "count",
	"username", "backend", "mode", "listen", "public_url", "http_code",
	"db", "host", "port",
	"err", "err_code", "cause", "attempts",
}
