package format

import "testing"

func TestEscapeV1(t *testing.T) {
	cases := map[string]string{
		"john_doe":       `john\_doe`,
		"*bold* [x]":     `\*bold\* \[x]`,
		"`code`":         "\\`code\\`",
		"a.b-c!":         "a.b-c!",
		"Priya (Mumbai)": "Priya (Mumbai)",
	}
	for in, want := range cases {
		if got := EscapeV1(in); got != want {
			t.Fatalf("EscapeV1(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDerefString(t *testing.T) {
	v := "UTR123"
	if DerefString(&v, "-") != "UTR123" || DerefString(nil, "-") != "-" {
		t.Fatal("unexpected deref result")
	}
}
