// Package sender runs outbound Telegram calls on a bounded worker pool.
package sender

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/paybot/core/logger"
	"github.com/m3rciful/paybot/core/metrics"
	"github.com/m3rciful/paybot/core/telegram/netutil"
)

var (
	// ErrQueueClosed is returned by Enqueue after Close.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull is returned when the job buffer is saturated.
	ErrQueueFull = errors.New("telegram sender: queue full")
)

const component = "tg.sender"

// Options tunes the dispatcher. Zero values pick defaults.
type Options struct {
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds all attempts of a single job.
	MaxDuration time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 12 * time.Second
	}
	return o
}

type job struct {
	ctx      context.Context
	action   string
	endpoint string
	run      func() error
}

// Dispatcher executes queued calls with linear backoff, honouring flood waits.
type Dispatcher struct {
	opts Options
	jobs chan job

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	failed atomic.Uint64
}

// NewDispatcher starts opts.Workers goroutines draining the queue.
func NewDispatcher(opts Options) *Dispatcher {
	opts = opts.withDefaults()
	d := &Dispatcher{
		opts: opts,
		jobs: make(chan job, opts.QueueSize),
	}
	d.wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go func() {
			defer d.wg.Done()
			for j := range d.jobs {
				d.process(j)
			}
		}()
	}
	return d
}

// Enqueue schedules run without blocking. run may be invoked more than once.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	if run == nil {
		return errors.New("telegram sender: nil run function")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	select {
	case d.jobs <- job{ctx: ctx, action: action, endpoint: endpoint, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

// ErrorCount reports how many jobs were given up on.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.failed.Load()
}

// Close rejects new jobs, drains the queue and waits for the workers.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) process(j job) {
	ctx, cancel := context.WithTimeout(j.ctx, d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	attrs := jobAttrs(j)
	logger.Debug(j.ctx, component, "send.start", attrs...)

	maxAttempts := d.opts.MaxRetries + 1
	var err error
	attempt := 0
	for attempt < maxAttempts {
		attempt++
		if err = ctx.Err(); err != nil {
			break
		}
		if err = j.run(); err == nil {
			logger.Debug(j.ctx, component, "send.success", append(attrs,
				slog.Int("attempt", attempt),
				slog.Int64("elapsed_ms", logger.RoundMS(time.Since(start)).Milliseconds()),
			)...)
			return
		}
		if !netutil.Retryable(err) || attempt == maxAttempts {
			break
		}

		wait := d.opts.RetryBackoff * time.Duration(attempt)
		if ra := netutil.RetryAfter(err); ra > wait {
			wait = ra
		}
		metrics.IncSendRetry(j.action)
		logger.Debug(j.ctx, component, "send.retry", append(attrs,
			slog.Int("attempt", attempt),
			slog.String("error_kind", netutil.Classify(err)),
			slog.Duration("wait", wait),
		)...)
		if serr := sleepCtx(ctx, wait); serr != nil {
			err = serr
			break
		}
	}

	d.failed.Add(1)
	kind := netutil.Classify(err)
	metrics.IncSendFailure(j.action, kind)
	logger.Error(j.ctx, component, "send.fail", append(attrs,
		slog.String("error", netutil.Redact(err)),
		slog.String("error_kind", kind),
		slog.Int("attempts", attempt),
		slog.Int64("elapsed_ms", logger.RoundMS(time.Since(start)).Milliseconds()),
	)...)
}

func jobAttrs(j job) []slog.Attr {
	if j.endpoint == "" {
		return []slog.Attr{slog.String("action", j.action)}
	}
	return []slog.Attr{slog.String("action", j.action), slog.String("endpoint", j.endpoint)}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
