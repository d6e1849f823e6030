package history

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"i4.energy/across/loraterm/modem"
)

var (
	// ErrBacklogFull is returned by Writer.Record when its buffer is full.
	// The message is dropped.
	ErrBacklogFull = errors.New("history backlog full")

	// ErrWriterClosed is returned by Writer.Record after Close.
	ErrWriterClosed = errors.New("history writer closed")
)

// Writer hands messages to a Recorder on its own goroutine, so Record never
// waits for the database. It implements modem.Recorder.
type Writer struct {
	dst    modem.Recorder
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
	queue  chan modem.Message
	done   chan struct{}
}

// NewWriter starts a Writer buffering up to size messages for dst.
func NewWriter(dst modem.Recorder, logger *slog.Logger, size int) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	if size < 1 {
		size = 1
	}
	w := &Writer{
		dst:    dst,
		logger: logger,
		queue:  make(chan modem.Message, size),
		done:   make(chan struct{}),
	}
	go w.run()
	return w
}

// Record queues m. The arrival time is stamped here when m has none.
func (w *Writer) Record(_ context.Context, m modem.Message) error {
	if m.At.IsZero() {
		m.At = time.Now()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWriterClosed
	}
	select {
	case w.queue <- m:
		return nil
	default:
		return ErrBacklogFull
	}
}

// Close stops accepting messages and waits until the queued ones are
// written.
func (w *Writer) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWriterClosed
	}
	w.closed = true
	close(w.queue)
	w.mu.Unlock()

	<-w.done
	return nil
}

func (w *Writer) run() {
	defer close(w.done)
	for m := range w.queue {
		if err := w.dst.Record(context.Background(), m); err != nil {
			w.logger.Warn("Failed to record message", "error", err, "direction", m.Direction, "peer", m.Peer)
		}
	}
}
