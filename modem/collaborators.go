package modem

//go:generate go tool mockgen -source=collaborators.go -destination=mock_collaborators.go -package=modem

import (
	"context"
	"time"
)

// ResetLine is the module's hardware reset input.
type ResetLine interface {
	// AssertHigh releases the module from reset. Called once at startup.
	AssertHigh() error
	// Release gives the line back to the system on shutdown.
	Release() error
}

// Direction tells whether a logged message was sent or received.
type Direction string

const (
	Inbound  Direction = "rx"
	Outbound Direction = "tx"
)

// Message is one radio payload as kept by a Recorder.
type Message struct {
	Direction Direction
	Peer      uint16
	Payload   string
	RSSI      int16
	SNR       int16
	At        time.Time
}

// Recorder keeps a log of radio traffic.
type Recorder interface {
	Record(ctx context.Context, m Message) error
}

type nopResetLine struct{}

func (nopResetLine) AssertHigh() error { return nil }
func (nopResetLine) Release() error    { return nil }

