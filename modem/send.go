package modem

import (
	"context"
	"fmt"
	"strings"

	"i4.energy/across/loraterm/at"
)

// Send queues a message to the radio at addr.
//
// The message is queued behind any command in flight. Send returns once the
// Loop has accepted it; it does not wait for the module's +OK.
func (e *Engine) Send(ctx context.Context, addr uint16, message string) error {
	if message == "" {
		return ErrEmptyBuffer
	}
	if len(message) > at.MaxPayloadLength {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrPayloadTooLong, len(message), at.MaxPayloadLength)
	}
	if i := strings.IndexAny(message, "\r\n"); i >= 0 {
		return fmt.Errorf("%w at %d", ErrLineBreak, i)
	}
	return e.Submit(ctx, IntentEvent{Intent: Send{Addr: addr, Payload: message}})
}

// Command parses an operator command such as "/BAND?" and queues it.
func (e *Engine) Command(ctx context.Context, line string) error {
	intent, err := ParseCommand(line)
	if err != nil {
		return err
	}
	return e.Submit(ctx, IntentEvent{Intent: intent})
}
