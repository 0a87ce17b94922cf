package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(body)
}

func TestCountersExported(t *testing.T) {
	MustRegister()
	IncAdminNotification(" Failed ")
	ObserveTransition("select_plan", "plan_chosen", "payment_confirmation")
	AddSubmittedAmount("3_months", 249)
	IncPlanSelection("")

	out := scrape(t)
	for _, want := range []string{
		`paybot_admin_notifications_total{result="failed"}`,
		`paybot_transitions_total{event="plan_chosen",from="select_plan",to="payment_confirmation"}`,
		`paybot_payments_submitted_amount_total{plan="3_months"} 249`,
		`paybot_plan_selections_total{plan="unknown"}`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("metrics output missing %s", want)
		}
	}
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}
