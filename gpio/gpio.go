// Package gpio drives the module's hardware reset line on a Raspberry Pi.
package gpio

import (
	"fmt"
	"sync"

	"github.com/stianeikeland/go-rpio/v4"
)

// Pin holds the module's RESET input high through a BCM numbered pin. It
// implements modem.ResetLine.
type Pin struct {
	Number int

	mu   sync.Mutex
	open bool
	pin  rpio.Pin
}

// NewPin returns a reset line on BCM pin n. Memory is mapped on AssertHigh.
func NewPin(n int) *Pin {
	return &Pin{Number: n}
}

// AssertHigh configures the pin as an output and drives it high, taking
// the module out of reset.
func (p *Pin) AssertHigh() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.open {
		if err := rpio.Open(); err != nil {
			return fmt.Errorf("gpio: open: %w", err)
		}
		p.open = true
		p.pin = rpio.Pin(p.Number)
	}
	p.pin.Output()
	p.pin.High()
	return nil
}

// Release unmaps GPIO memory. The pin keeps its last level.
func (p *Pin) Release() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.open {
		return nil
	}
	p.open = false
	if err := rpio.Close(); err != nil {
		return fmt.Errorf("gpio: close: %w", err)
	}
	return nil
}

// Nop is a reset line for hosts without GPIO, or when the line is wired
// high permanently.
type Nop struct{}

func (Nop) AssertHigh() error { return nil }
func (Nop) Release() error    { return nil }
