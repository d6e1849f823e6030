package modem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"i4.energy/across/loraterm/at"
)

// Engine drives one LoRa module over a Transport.
//
// A single goroutine running Loop owns the parser, the command queue, the
// transmit buffer and the status snapshot. Other goroutines reach it
// through Submit and read the published snapshot through Status.
type Engine struct {
	// transport provides the physical connection to the module
	transport Transport
	config    Config
	logger    *slog.Logger
	renderer  Renderer
	metrics   *Metrics

	// Loop state
	parser    *at.Parser
	queue     *CommandQueue
	editor    TransmitBuffer
	snapshot  Snapshot
	activity  Activity
	lastStats at.Stats

	// status is the snapshot copy published for other goroutines
	status atomic.Pointer[Snapshot]
	// events carries operator input to the Loop
	events chan Event

	// One reader per Engine, started by the first Loop. It outlives a
	// cancelled Loop so a later Loop continues from the next byte.
	readOnce sync.Once
	chunks   chan []byte
	readErr  error
	pending  []byte

	closed      atomic.Bool
	loopRunning atomic.Bool

	// loopCtx is cancelled by Close
	loopCtx    context.Context
	loopCancel context.CancelFunc
}

// New creates an Engine with the given configuration. It dials the
// transport, releases the module from reset and queues the startup
// settings. Nothing is written until Loop runs.
func New(ctx context.Context, config Config) (*Engine, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	config.setDefaults()

	dialCtx, cancel := context.WithTimeout(ctx, config.DialTimeout)
	defer cancel()
	transport, err := config.Dialer.Dial(dialCtx)
	if err != nil {
		return nil, fmt.Errorf("dial radio: %w", err)
	}
	if transport == nil {
		return nil, ErrNotInitialized
	}

	if err := config.ResetLine.AssertHigh(); err != nil {
		transport.Close()
		return nil, fmt.Errorf("assert reset line: %w", err)
	}

	e := &Engine{
		transport: transport,
		config:    config,
		logger:    config.Logger.With("component", "engine"),
		renderer:  config.Renderer,
		metrics:   config.Metrics,
		parser:    at.NewParser(config.Logger.With("component", "parser")),
		events:    make(chan Event, 64),
		chunks:    make(chan []byte, 16),
	}
	e.queue = NewCommandQueue(
		WithSendHook(e.onSend),
		WithDispatchHook(e.onDispatch),
		WithCommandTimeout(config.CommandTimeout),
		WithResetSettle(config.ResetSettle),
	)
	e.loopCtx, e.loopCancel = context.WithCancel(context.WithoutCancel(ctx))

	if config.Settings != nil {
		for _, i := range config.Settings.Intents() {
			e.queue.Enqueue(i)
		}
	}
	e.publish()

	return e, nil
}

// Loop is the engine's only goroutine touching protocol state. It runs
// until ctx is cancelled, Close is called or the transport ends.
//
// Every iteration takes at most one byte from the transport and feeds it
// to the parser. Only when no byte is waiting does it dispatch the next
// command and handle one operator event, so receive traffic always
// preempts sending.
//
// Loop may be called again after it returns on a cancelled context; the
// next call resumes with the first byte the previous one did not consume.
// Loop returns io.EOF when the transport ends, a wrapped read or write
// error, or the context error.
func (e *Engine) Loop(ctx context.Context) error {
	if !e.loopRunning.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer e.loopRunning.Store(false)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(e.loopCtx, cancel)
	defer stop()

	e.readOnce.Do(func() { go e.read() })

	wake := time.NewTimer(time.Hour)
	wake.Stop()
	defer wake.Stop()

	for {
		if len(e.pending) == 0 {
			select {
			case chunk, ok := <-e.chunks:
				if !ok {
					return e.readEnd()
				}
				e.pending = e.received(chunk)
			default:
			}
		}
		if len(e.pending) > 0 {
			e.feed(e.pending[0])
			e.pending = e.pending[1:]
			continue
		}

		if err := e.dispatch(); err != nil {
			return err
		}

		var wakeC <-chan time.Time
		if t, ok := e.queue.NextWake(); ok {
			wake.Reset(time.Until(t))
			wakeC = wake.C
		}

		select {
		case <-ctx.Done():
			return ctx.Err()

		case chunk, ok := <-e.chunks:
			if !ok {
				return e.readEnd()
			}
			e.pending = e.received(chunk)

		case ev := <-e.events:
			e.handleEvent(ev)

		case <-wakeC:
		}
	}
}

// read pushes transport chunks to the Loop until the transport ends or
// the engine is closed.
func (e *Engine) read() {
	defer close(e.chunks)
	buf := make([]byte, 256)
	for {
		n, err := e.transport.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case e.chunks <- chunk:
			case <-e.loopCtx.Done():
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				e.readErr = err
			}
			return
		}
	}
}

// readEnd reports why the reader stopped. It is called after the chunk
// channel is closed, so readErr is settled.
func (e *Engine) readEnd() error {
	if e.readErr != nil {
		return fmt.Errorf("read error: %w", e.readErr)
	}
	return io.EOF
}

func (e *Engine) received(chunk []byte) []byte {
	e.metrics.received(len(chunk))
	return chunk
}

// Submit hands an operator event to the Loop.
func (e *Engine) Submit(ctx context.Context, ev Event) error {
	if e.closed.Load() {
		return ErrAlreadyClosed
	}
	select {
	case e.events <- ev:
		return nil
	case <-e.loopCtx.Done():
		return ErrAlreadyClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns the last published snapshot.
func (e *Engine) Status() Snapshot {
	return *e.status.Load()
}

// Close shuts down the engine and releases all resources. It stops the
// Loop, closes the transport and releases the reset line. After Close the
// engine cannot be reused.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return ErrAlreadyClosed
	}

	if e.loopCancel != nil {
		e.loopCancel()
	}

	var errs []error
	if e.transport != nil {
		if err := e.transport.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close transport: %w", err))
		}
	}
	if err := e.config.ResetLine.Release(); err != nil {
		errs = append(errs, fmt.Errorf("release reset line: %w", err))
	}
	return errors.Join(errs...)
}

func (e *Engine) feed(b byte) {
	wasReceiving := e.parser.Receiving()
	r, ok := e.parser.Feed(b)
	switch {
	case !wasReceiving && e.parser.Receiving():
		e.setActivity(ActivityReceiving)
	case wasReceiving && !e.parser.Receiving() && e.activity == ActivityReceiving:
		e.setActivity(ActivityIdle)
	}

	stats := e.parser.Stats()
	e.metrics.parser(at.Stats{
		Noise:     stats.Noise - e.lastStats.Noise,
		Overflows: stats.Overflows - e.lastStats.Overflows,
	})
	e.lastStats = stats

	if ok {
		e.handleResponse(r)
	}
}

func (e *Engine) handleResponse(r at.Response) {
	e.metrics.response(r)
	if e.snapshot.Apply(r) {
		e.publish()
	}

	switch v := r.(type) {
	case at.Received:
		e.onReceived(v.Message)
		e.renderer.Response(r)
		return

	case at.Malformed:
		e.logger.Warn("response did not decode", "tag", v.Source.String(), "raw", v.Raw, "error", v.Err)
		e.renderer.Notice(fmt.Sprintf("Bad %s response: %v", v.Source, v.Err))
		e.queue.OnResponse(r)
		return

	case at.Error:
		text := fmt.Sprintf("ERR=%d: %s", v.Code, at.Translate(v.Code))
		e.logger.Warn("module error", "code", v.Code, "text", at.Translate(v.Code))
		e.renderer.Notice(text)
		if done, ok := e.queue.OnResponse(r); ok {
			if _, isSend := done.(Send); isSend {
				e.setActivity(ActivityIdle)
			}
		}
		return
	}

	done, ok := e.queue.OnResponse(r)
	if ok {
		if _, isSend := done.(Send); isSend {
			// the echo was shown at dispatch
			e.setActivity(ActivityIdle)
			return
		}
	}
	e.renderer.Response(r)
}

func (e *Engine) onReceived(msg at.ReceivedMessage) {
	e.logger.Debug("received", "from", msg.Sender, "len", msg.Length, "rssi", msg.RSSI, "snr", msg.SNR)
	e.record(Message{
		Direction: Inbound,
		Peer:      msg.Sender,
		Payload:   string(msg.Payload),
		RSSI:      msg.RSSI,
		SNR:       msg.SNR,
		At:        time.Now(),
	})
	if e.config.Echo && len(msg.Payload) > 0 {
		e.queue.Enqueue(Send{Addr: e.config.Destination, Payload: string(msg.Payload)})
	}
}

func (e *Engine) onSend(s Send) {
	e.renderer.Transmitted(s)
	e.setActivity(ActivityTransmitting)
	e.record(Message{
		Direction: Outbound,
		Peer:      s.Addr,
		Payload:   s.Payload,
		At:        time.Now(),
	})
}

func (e *Engine) onDispatch(i Intent) {
	e.logger.Debug("dispatch", "command", i.String())
	e.metrics.dispatched(i)
}

func (e *Engine) record(m Message) {
	if e.config.Recorder == nil {
		return
	}
	if err := e.config.Recorder.Record(e.loopCtx, m); err != nil {
		e.logger.Warn("record message", "error", err)
	}
}

func (e *Engine) dispatch() error {
	if done, ok := e.queue.Expire(time.Now()); ok {
		e.metrics.timeout()
		e.logger.Warn("command timed out", "command", done.String(), "timeout", e.config.CommandTimeout)
		e.renderer.Notice(fmt.Sprintf("%s: %v", done, ErrCommandTimeout))
		if _, isSend := done.(Send); isSend {
			e.setActivity(ActivityIdle)
		}
	}

	if _, err := e.queue.TryDispatch(e.transport); err != nil {
		return err
	}
	e.metrics.queueDepth(e.queue.Len())
	return nil
}

func (e *Engine) handleEvent(ev Event) {
	switch v := ev.(type) {
	case IntentEvent:
		e.queue.Enqueue(v.Intent)
		return
	case KeyEvent:
		e.handleKey(v)
		e.renderer.Editor(e.editor.Text(), e.editor.Cursor())
	}
}

func (e *Engine) handleKey(k KeyEvent) {
	switch k.Key {
	case KeyRune:
		e.editor.Insert(k.Char)
	case KeyBackspace:
		e.editor.Backspace()
	case KeyDelete:
		e.editor.DeleteForward()
	case KeyLeft:
		e.editor.MoveCursor(-1)
	case KeyRight:
		e.editor.MoveCursor(1)
	case KeyEscape:
		e.editor.Clear()
	case KeyEnter:
		e.submitLine()
	}
}

// submitLine queues the transmit line. A line starting with "/" is a
// module command.
func (e *Engine) submitLine() {
	text := e.editor.Text()
	if strings.HasPrefix(text, CommandPrefix) {
		intent, err := ParseCommand(text)
		if err != nil {
			e.renderer.Notice(err.Error())
			return
		}
		e.queue.Enqueue(intent)
		e.editor.Clear()
		return
	}

	send, err := e.editor.ToSend(e.config.Destination)
	if err != nil {
		return
	}
	e.queue.Enqueue(send)
	e.editor.Clear()
}

func (e *Engine) setActivity(a Activity) {
	if e.activity == a {
		return
	}
	e.activity = a
	e.renderer.Activity(a)
}

func (e *Engine) publish() {
	snap := e.snapshot
	e.status.Store(&snap)
	e.renderer.Status(snap)
}
