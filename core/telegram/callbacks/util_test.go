package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	cases := []struct {
		name         string
		cb           *tele.Callback
		key, payload string
	}{
		{"nil", nil, "", ""},
		{"encoded with payload", &tele.Callback{Data: "\fplan|3_months"}, "plan", "3_months"},
		{"encoded without payload", &tele.Callback{Data: "\fpayment_done"}, "payment_done", ""},
		{"resolved by telebot", &tele.Callback{Unique: "plan", Data: "1_month"}, "plan", "1_month"},
		{"payload keeps separators", &tele.Callback{Data: "\fx|a|b"}, "x", "a|b"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key, payload := ParseCallbackData(tc.cb)
			if key != tc.key || payload != tc.payload {
				t.Fatalf("got (%q, %q), want (%q, %q)", key, payload, tc.key, tc.payload)
			}
		})
	}
}
