// Package netutil classifies errors returned by Telegram API calls.
package netutil

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"
)

// Error kinds reported by Classify.
const (
	KindTimeout  = "timeout"
	KindDNS      = "dns"
	KindDial     = "dial"
	KindTLS      = "tls"
	KindFlood    = "flood"
	KindHTTP4xx  = "http_4xx"
	KindHTTP5xx  = "http_5xx"
	KindCanceled = "canceled"
	KindUnknown  = "unknown"
)

var tokenRe = regexp.MustCompile(`bot[0-9]+:[A-Za-z0-9_-]+`)

// Retryable reports whether err is a transient transport failure or a flood wait.
func Retryable(err error) bool {
	switch Classify(err) {
	case KindTimeout, KindDial, KindFlood, KindHTTP5xx:
		return true
	}
	return false
}

// RetryAfter returns the wait Telegram asked for on a flood error, 0 otherwise.
func RetryAfter(err error) time.Duration {
	var flood tele.FloodError
	if errors.As(err, &flood) && flood.RetryAfter > 0 {
		return time.Duration(flood.RetryAfter) * time.Second
	}
	return 0
}

// Classify maps err to one of the Kind constants, "" for nil.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindCanceled
	}

	var flood tele.FloodError
	if errors.As(err, &flood) {
		return KindFlood
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return KindTimeout
		}
		return KindDNS
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return KindTimeout
		}
		if opErr.Op == "dial" {
			return KindDial
		}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	var alert tls.AlertError
	if errors.As(err, &alert) {
		return KindTLS
	}

	switch code := HTTPStatus(err); {
	case code == http.StatusTooManyRequests:
		return KindFlood
	case code >= 500:
		return KindHTTP5xx
	case code >= 400:
		return KindHTTP4xx
	}
	return KindUnknown
}

// HTTPStatus extracts the Bot API status code from err, 0 when unknown.
func HTTPStatus(err error) int {
	if err == nil {
		return 0
	}
	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var flood tele.FloodError
	if errors.As(err, &flood) {
		return http.StatusTooManyRequests
	}
	var groupErr tele.GroupError
	if errors.As(err, &groupErr) {
		return http.StatusBadRequest
	}
	// telebot renders unknown API errors as "telegram: <description> (<code>)"
	msg := err.Error()
	open, end := strings.LastIndex(msg, "("), strings.LastIndex(msg, ")")
	if open >= 0 && end > open+1 {
		if code, convErr := strconv.Atoi(strings.TrimSpace(msg[open+1 : end])); convErr == nil {
			return code
		}
	}
	return 0
}

// Redact removes bot tokens from err's message.
func Redact(err error) string {
	if err == nil {
		return ""
	}
	return tokenRe.ReplaceAllString(err.Error(), "bot<redacted>")
}
