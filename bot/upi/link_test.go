package upi

import (
	"errors"
	"net/url"
	"testing"
)

func TestLinkFormat(t *testing.T) {
	got, err := Link(Request{
		PayeeAddress: "shop@okaxis",
		Amount:       249,
		Note:         "3 Months Premium Subscription",
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "upi://pay?pa=shop@okaxis&pn=Premium%20Membership&am=249&cu=INR&tn=3%20Months%20Premium%20Subscription"
	if got != want {
		t.Fatalf("link =\n%s\nwant\n%s", got, want)
	}
}

func TestLinkParsesBack(t *testing.T) {
	link, err := Link(Request{PayeeAddress: "a&b@upi", PayeeName: "Tom & Co", Amount: 99, Note: "x=y"})
	if err != nil {
		t.Fatal(err)
	}
	u, err := url.Parse(link)
	if err != nil {
		t.Fatal(err)
	}
	q := u.Query()
	if u.Scheme != "upi" || u.Host != "pay" {
		t.Fatalf("scheme/host = %s/%s", u.Scheme, u.Host)
	}
	checks := map[string]string{"pa": "a&b@upi", "pn": "Tom & Co", "am": "99", "cu": "INR", "tn": "x=y"}
	for k, v := range checks {
		if q.Get(k) != v {
			t.Fatalf("%s = %q, want %q", k, q.Get(k), v)
		}
	}
}

func TestLinkRejectsInvalid(t *testing.T) {
	for _, r := range []Request{{Amount: 10}, {PayeeAddress: "x@y"}, {PayeeAddress: "x@y", Amount: -1}} {
		if _, err := Link(r); !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("Link(%+v) err = %v", r, err)
		}
	}
}
