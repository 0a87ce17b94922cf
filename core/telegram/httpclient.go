package telegram

import (
	"net"
	"net/http"
	"time"

	"github.com/m3rciful/paybot/core/telegram/netutil"
)

// clientTuning holds the timeouts used for Bot API traffic.
type clientTuning struct {
	dial, keepAlive, tlsHandshake time.Duration
	idleConn, responseHeader      time.Duration
	overall                       time.Duration
	retries                       int
	backoff                       time.Duration
}

var defaultTuning = clientTuning{
	dial:           5 * time.Second,
	keepAlive:      30 * time.Second,
	tlsHandshake:   5 * time.Second,
	idleConn:       30 * time.Second,
	responseHeader: 5 * time.Second,
	overall:        30 * time.Second,
	retries:        3,
	backoff:        2 * time.Second,
}

// BuildHTTPClient returns the client handed to telebot. Transport failures
// (dial errors, timeouts) are retried with linear backoff.
func BuildHTTPClient() *http.Client {
	return newHTTPClient(defaultTuning)
}

func newHTTPClient(t clientTuning) *http.Client {
	dialer := &net.Dialer{Timeout: t.dial, KeepAlive: t.keepAlive}
	base := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       t.idleConn,
		TLSHandshakeTimeout:   t.tlsHandshake,
		ResponseHeaderTimeout: t.responseHeader,
		ExpectContinueTimeout: time.Second,
	}
	return &http.Client{
		Timeout:   t.overall,
		Transport: &retryTransport{next: base, retries: t.retries, backoff: t.backoff},
	}
}

type retryTransport struct {
	next    http.RoundTripper
	retries int
	backoff time.Duration
}

func (rt *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	next := rt.next
	if next == nil {
		next = http.DefaultTransport
	}
	resp, err := next.RoundTrip(req)
	for attempt := 1; err != nil && attempt <= rt.retries && netutil.Retryable(err); attempt++ {
		retry, rerr := rewind(req)
		if rerr != nil || retry == nil {
			return nil, err
		}
		if wait := rt.backoff * time.Duration(attempt); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-req.Context().Done():
				timer.Stop()
				return nil, req.Context().Err()
			case <-timer.C:
			}
		}
		resp, err = next.RoundTrip(retry)
	}
	return resp, err
}

// rewind clones req with a fresh body, or returns nil when the body cannot be replayed.
func rewind(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return clone, nil
	}
	if req.GetBody == nil {
		return nil, nil
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	clone.Body = body
	return clone, nil
}
