// Package upi builds UPI payment deep links.
package upi

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

const (
	// Scheme is the URI scheme UPI apps register for.
	Scheme = "upi"
	// CurrencyINR is the only currency UPI transfers support.
	CurrencyINR = "INR"
	// DefaultPayeeName is shown by payment apps when no payee name is configured.
	DefaultPayeeName = "Premium Membership"
)

// ErrInvalidRequest reports a request missing the payee address or a positive amount.
var ErrInvalidRequest = errors.New("upi: payee address and positive amount are required")

// Request holds the fields encoded into a pay link.
type Request struct {
	PayeeAddress string // pa, the VPA such as "shop@okaxis"
	PayeeName    string // pn
	Amount       int64  // am, whole rupees
	Note         string // tn
}

// Link renders upi://pay?pa=..&pn=..&am=..&cu=INR&tn=.. with parameters in that order.
func Link(r Request) (string, error) {
	pa := strings.TrimSpace(r.PayeeAddress)
	if pa == "" || r.Amount <= 0 {
		return "", ErrInvalidRequest
	}
	pn := strings.TrimSpace(r.PayeeName)
	if pn == "" {
		pn = DefaultPayeeName
	}

	var b strings.Builder
	b.WriteString(Scheme)
	b.WriteString("://pay?pa=")
	b.WriteString(escape(pa))
	b.WriteString("&pn=")
	b.WriteString(escape(pn))
	b.WriteString("&am=")
	b.WriteString(strconv.FormatInt(r.Amount, 10))
	b.WriteString("&cu=")
	b.WriteString(CurrencyINR)
	if note := strings.TrimSpace(r.Note); note != "" {
		b.WriteString("&tn=")
		b.WriteString(escape(note))
	}
	return b.String(), nil
}

// escape percent-encodes a query value, keeping '@' literal and spaces as %20
// because several UPI apps reject '+' and '%40'.
func escape(s string) string {
	e := url.QueryEscape(s)
	e = strings.ReplaceAll(e, "+", "%20")
	return strings.ReplaceAll(e, "%40", "@")
}
