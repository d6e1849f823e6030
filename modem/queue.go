package modem

import (
	"fmt"
	"io"
	"time"

	"i4.energy/across/loraterm/at"
)

// DefaultResetSettle is how long dequeuing stays suspended after a Reset.
const DefaultResetSettle = time.Second

// CommandQueue serializes intents against the module's replies.
//
// At most one intent other than Delay is in flight. Any reply except a
// receive event completes it; the module does not echo a sequence token, so
// the queue's own bookkeeping is the only link between a reply and the
// command that caused it.
//
// A CommandQueue is owned by one goroutine and is not safe for concurrent
// use.
type CommandQueue struct {
	pending  []Intent
	inFlight Intent
	sentAt   time.Time
	resumeAt time.Time

	timeout     time.Duration
	resetSettle time.Duration
	onSend      func(Send)
	onDispatch  func(Intent)
	now         func() time.Time
}

// QueueOption configures a CommandQueue.
type QueueOption func(*CommandQueue)

// WithSendHook installs fn, called in the same TryDispatch call that writes
// a SEND line.
func WithSendHook(fn func(Send)) QueueOption {
	return func(q *CommandQueue) {
		q.onSend = fn
	}
}

// WithDispatchHook installs fn, called for every intent whose line was
// written.
func WithDispatchHook(fn func(Intent)) QueueOption {
	return func(q *CommandQueue) {
		q.onDispatch = fn
	}
}

// WithCommandTimeout makes Expire give up on a command after d. Zero waits
// forever.
func WithCommandTimeout(d time.Duration) QueueOption {
	return func(q *CommandQueue) {
		q.timeout = d
	}
}

// WithResetSettle sets how long dequeuing pauses after a Reset.
func WithResetSettle(d time.Duration) QueueOption {
	return func(q *CommandQueue) {
		q.resetSettle = d
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) QueueOption {
	return func(q *CommandQueue) {
		q.now = now
	}
}

func NewCommandQueue(opts ...QueueOption) *CommandQueue {
	q := &CommandQueue{
		resetSettle: DefaultResetSettle,
		onSend:      func(Send) {},
		onDispatch:  func(Intent) {},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue appends i to the back of the queue.
func (q *CommandQueue) Enqueue(i Intent) {
	q.pending = append(q.pending, i)
}

// Awaiting reports whether a command is waiting for its reply.
func (q *CommandQueue) Awaiting() bool {
	return q.inFlight != nil
}

// InFlight returns the command waiting for its reply, if any.
func (q *CommandQueue) InFlight() (Intent, bool) {
	return q.inFlight, q.inFlight != nil
}

// Len is the number of intents not yet dispatched.
func (q *CommandQueue) Len() int {
	return len(q.pending)
}

// TryDispatch writes the head intent to w unless a reply is outstanding or
// the queue is suspended. It reports whether a line was written.
//
// A Delay at the head is consumed and suspends the queue; nothing is
// written. A Reset is written without awaiting a reply because the module's
// restart banner is not a tagged response; the queue is suspended for the
// settle period instead. A write error drops the intent.
func (q *CommandQueue) TryDispatch(w io.Writer) (bool, error) {
	if q.inFlight != nil || len(q.pending) == 0 {
		return false, nil
	}
	now := q.now()
	if now.Before(q.resumeAt) {
		return false, nil
	}

	head := q.pending[0]
	q.pending[0] = nil
	q.pending = q.pending[1:]

	line, ok := head.Line()
	if !ok {
		if d, isDelay := head.(Delay); isDelay {
			q.resumeAt = now.Add(d.Duration)
		}
		return false, nil
	}

	if _, err := io.WriteString(w, line); err != nil {
		return false, fmt.Errorf("write command %q: %w", head.String(), err)
	}

	q.onDispatch(head)
	switch v := head.(type) {
	case Reset:
		q.resumeAt = now.Add(q.resetSettle)
		return true, nil
	case Send:
		q.onSend(v)
	}
	q.inFlight = head
	q.sentAt = now
	return true, nil
}

// OnResponse applies a reply. Receive events are ignored. Any other
// response completes the command in flight, which is returned.
func (q *CommandQueue) OnResponse(r at.Response) (Intent, bool) {
	if at.Classify(r) == at.TypeURC || q.inFlight == nil {
		return nil, false
	}
	done := q.inFlight
	q.inFlight = nil
	return done, true
}

// Expire abandons the command in flight once the command timeout has
// elapsed since it was written.
func (q *CommandQueue) Expire(now time.Time) (Intent, bool) {
	if q.timeout <= 0 || q.inFlight == nil || now.Sub(q.sentAt) < q.timeout {
		return nil, false
	}
	done := q.inFlight
	q.inFlight = nil
	return done, true
}

// NextWake returns the earliest time the queue can change state without a
// reply: the end of a suspension or a command timeout.
func (q *CommandQueue) NextWake() (time.Time, bool) {
	var wake time.Time
	var ok bool
	if q.inFlight != nil && q.timeout > 0 {
		wake, ok = q.sentAt.Add(q.timeout), true
	}
	if q.inFlight == nil && len(q.pending) > 0 && q.now().Before(q.resumeAt) {
		if !ok || q.resumeAt.Before(wake) {
			wake, ok = q.resumeAt, true
		}
	}
	return wake, ok
}
