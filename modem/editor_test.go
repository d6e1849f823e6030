package modem_test

import (
	"errors"
	"strings"
	"testing"

	"i4.energy/across/loraterm/modem"
)

func typeText(b *modem.TransmitBuffer, s string) {
	for i := 0; i < len(s); i++ {
		b.Insert(s[i])
	}
}

func TestTransmitBuffer(t *testing.T) {
	t.Run("Insert stops at the cap", func(t *testing.T) {
		var b modem.TransmitBuffer
		typeText(&b, strings.Repeat("x", modem.MaxTransmitLength))

		before := b.Text()
		if b.Insert('y') {
			t.Error("expected Insert to refuse at the cap")
		}
		if b.Text() != before || b.Len() != modem.MaxTransmitLength {
			t.Errorf("buffer changed at the cap: %q", b.Text())
		}

		b.MoveCursor(-10)
		if b.Insert('y') {
			t.Error("expected Insert to refuse mid-line at the cap")
		}
	})

	t.Run("Length never exceeds the cap", func(t *testing.T) {
		var b modem.TransmitBuffer
		for i := 0; i < 500; i++ {
			b.Insert(byte('a' + i%26))
			if i%7 == 0 {
				b.MoveCursor(-3)
			}
			if b.Len() > modem.MaxTransmitLength {
				t.Fatalf("length %d after %d inserts", b.Len(), i)
			}
			if c := b.Cursor(); c < 0 || c > b.Len() {
				t.Fatalf("cursor %d outside 0..%d", c, b.Len())
			}
		}
	})

	t.Run("Mid-line edits", func(t *testing.T) {
		var b modem.TransmitBuffer
		typeText(&b, "hllo")
		b.MoveCursor(-3)
		b.Insert('e')
		if b.Text() != "hello" || b.Cursor() != 2 {
			t.Fatalf("got %q cursor %d", b.Text(), b.Cursor())
		}

		b.DeleteForward()
		if b.Text() != "helo" || b.Cursor() != 2 {
			t.Fatalf("got %q cursor %d", b.Text(), b.Cursor())
		}

		b.Backspace()
		if b.Text() != "hlo" || b.Cursor() != 1 {
			t.Fatalf("got %q cursor %d", b.Text(), b.Cursor())
		}
	})

	t.Run("Edits at the edges are no-ops", func(t *testing.T) {
		var b modem.TransmitBuffer
		if b.Backspace() || b.DeleteForward() {
			t.Error("expected no-op on empty buffer")
		}

		typeText(&b, "ab")
		if b.DeleteForward() {
			t.Error("expected no delete at end of line")
		}
		b.MoveCursor(-100)
		if b.Cursor() != 0 {
			t.Errorf("expected cursor clamped to 0, got %d", b.Cursor())
		}
		if b.Backspace() {
			t.Error("expected no backspace at start of line")
		}
		b.MoveCursor(100)
		if b.Cursor() != 2 {
			t.Errorf("expected cursor clamped to 2, got %d", b.Cursor())
		}
	})

	t.Run("Only printable ASCII is accepted", func(t *testing.T) {
		var b modem.TransmitBuffer
		for _, c := range []byte{'\r', '\n', 0x00, 0x1b, 0x7f, 0xc3} {
			if b.Insert(c) {
				t.Errorf("accepted %#x", c)
			}
		}
		if !b.Insert(' ') || !b.Insert('~') {
			t.Error("expected printable bounds accepted")
		}
	})

	t.Run("ToSend", func(t *testing.T) {
		var b modem.TransmitBuffer
		if _, err := b.ToSend(0); !errors.Is(err, modem.ErrEmptyBuffer) {
			t.Fatalf("expected ErrEmptyBuffer, got %v", err)
		}

		typeText(&b, "hi,there")
		s, err := b.ToSend(7)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s != (modem.Send{Addr: 7, Payload: "hi,there"}) {
			t.Errorf("unexpected send %+v", s)
		}
		line, _ := s.Line()
		if line != "AT+SEND=7,8,hi,there\r\n" {
			t.Errorf("unexpected line %q", line)
		}

		b.Clear()
		if b.Len() != 0 || b.Cursor() != 0 {
			t.Error("expected empty buffer after Clear")
		}
	})
}
