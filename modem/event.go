package modem

// Event is operator input delivered to the engine loop.
type Event interface {
	event()
}

// Key identifies an editing key.
type Key int

const (
	KeyRune Key = iota
	KeyEnter
	KeyEscape
	KeyBackspace
	KeyDelete
	KeyLeft
	KeyRight
)

// KeyEvent edits the transmit line. Char is used with KeyRune only.
type KeyEvent struct {
	Key  Key
	Char byte
}

// IntentEvent queues an intent directly.
type IntentEvent struct {
	Intent Intent
}

func (KeyEvent) event()    {}
func (IntentEvent) event() {}
