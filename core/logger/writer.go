package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

var errWriterClosed = errors.New("logger: writer closed")

// asyncWriter fans encoded lines out to every sink from a single goroutine,
// so handlers never block on slow outputs unless the queue is full.
type asyncWriter struct {
	ops  chan writerOp
	done chan struct{}

	sendMu sync.RWMutex
	closed bool

	errMu sync.Mutex
	err   error

	sinks []*bufio.Writer
}

// writerOp is either a line to write or, when flushed is set, a flush request.
type writerOp struct {
	line    []byte
	flushed chan error
}

func newAsyncWriter(writers []io.Writer, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	w := &asyncWriter{
		ops:  make(chan writerOp, 256),
		done: make(chan struct{}),
	}
	for _, out := range writers {
		if out != nil {
			w.sinks = append(w.sinks, bufio.NewWriterSize(out, bufSize))
		}
	}
	go w.run()
	return w
}

func (w *asyncWriter) run() {
	defer close(w.done)
	for op := range w.ops {
		if op.flushed != nil {
			op.flushed <- w.flush()
			continue
		}
		w.fail(w.write(op.line))
	}
	w.fail(w.flush())
}

// Write queues a copy of p. It reports the first sink error seen so far.
func (w *asyncWriter) Write(p []byte) error {
	if err := w.firstErr(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	line := append([]byte(nil), p...)

	w.sendMu.RLock()
	defer w.sendMu.RUnlock()
	if w.closed {
		return errWriterClosed
	}
	w.ops <- writerOp{line: line}
	return nil
}

// Flush blocks until every queued line reached the sinks.
func (w *asyncWriter) Flush() error {
	ack := make(chan error, 1)
	w.sendMu.RLock()
	if w.closed {
		w.sendMu.RUnlock()
		return w.firstErr()
	}
	w.ops <- writerOp{flushed: ack}
	w.sendMu.RUnlock()
	return <-ack
}

// Close drains the queue, flushes sinks and reports the first write error.
func (w *asyncWriter) Close() error {
	w.sendMu.Lock()
	if !w.closed {
		w.closed = true
		close(w.ops)
	}
	w.sendMu.Unlock()
	<-w.done
	return w.firstErr()
}

func (w *asyncWriter) write(p []byte) error {
	for _, s := range w.sinks {
		if _, err := s.Write(p); err != nil {
			return err
		}
		if err := s.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func (w *asyncWriter) flush() error {
	var errs []error
	for _, s := range w.sinks {
		if err := s.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (w *asyncWriter) fail(err error) {
	if err == nil {
		return
	}
	w.errMu.Lock()
	defer w.errMu.Unlock()
	if w.err == nil {
		w.err = err
	}
}

func (w *asyncWriter) firstErr() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return w.err
}
