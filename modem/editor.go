package modem

// MaxTransmitLength caps the operator's message line. It is smaller than
// at.MaxPayloadLength on purpose: it is the width of the transmit line.
const MaxTransmitLength = 40

// TransmitBuffer is the operator's message line with an insertion cursor.
// Only printable ASCII is accepted.
type TransmitBuffer struct {
	text   []byte
	cursor int
}

// Insert puts c at the cursor and advances it. It reports false, leaving
// the buffer unchanged, when the buffer is full or c is not printable.
func (b *TransmitBuffer) Insert(c byte) bool {
	if c < ' ' || c > '~' || len(b.text) >= MaxTransmitLength {
		return false
	}
	b.text = append(b.text, 0)
	copy(b.text[b.cursor+1:], b.text[b.cursor:])
	b.text[b.cursor] = c
	b.cursor++
	return true
}

// DeleteForward removes the character under the cursor.
func (b *TransmitBuffer) DeleteForward() bool {
	if b.cursor >= len(b.text) {
		return false
	}
	b.text = append(b.text[:b.cursor], b.text[b.cursor+1:]...)
	return true
}

// Backspace removes the character before the cursor.
func (b *TransmitBuffer) Backspace() bool {
	if b.cursor == 0 {
		return false
	}
	b.text = append(b.text[:b.cursor-1], b.text[b.cursor:]...)
	b.cursor--
	return true
}

// MoveCursor shifts the cursor by delta, clamped to the text.
func (b *TransmitBuffer) MoveCursor(delta int) {
	b.cursor = min(max(b.cursor+delta, 0), len(b.text))
}

func (b *TransmitBuffer) Clear() {
	b.text = b.text[:0]
	b.cursor = 0
}

func (b *TransmitBuffer) Text() string {
	return string(b.text)
}

func (b *TransmitBuffer) Cursor() int {
	return b.cursor
}

func (b *TransmitBuffer) Len() int {
	return len(b.text)
}

// ToSend builds the Send intent for addr. The buffer is left as is.
func (b *TransmitBuffer) ToSend(addr uint16) (Send, error) {
	if len(b.text) == 0 {
		return Send{}, ErrEmptyBuffer
	}
	return Send{Addr: addr, Payload: string(b.text)}, nil
}
