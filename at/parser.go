package at

import (
	"log/slog"
)

// Stats counts what the parser has seen since it was created.
type Stats struct {
	// Lines is the number of completed responses, Malformed included.
	Lines uint64
	// Noise is the number of bytes dropped while matching a tag prefix.
	Noise uint64
	// Overflows is the number of lines discarded for exceeding their limit.
	Overflows uint64
}

// Parser is a byte-driven state machine that turns the module's output
// stream into Responses.
//
// While matching, the byte after '+' selects the only tag that can still
// match and the rest of its prefix is compared byte for byte. Once the
// prefix is complete the parser accumulates the value until CRLF. Feeding
// bytes one at a time or in chunks of any size yields the same responses.
//
// A Parser is not safe for concurrent use.
type Parser struct {
	logger *slog.Logger

	// matching state
	tag Tag
	pos int

	// accumulating state
	accumulating bool
	buf          []byte
	pendingCR    bool

	stats Stats
}

// NewParser returns a parser waiting for the first '+'. A nil logger
// discards overflow reports.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p := &Parser{
		logger: logger,
		buf:    make([]byte, 0, MaxReceiveValueLength),
	}
	p.reset()
	return p
}

// Feed processes exactly one byte and returns a response when b completes
// a line.
func (p *Parser) Feed(b byte) (Response, bool) {
	if p.accumulating {
		return p.accumulate(b)
	}
	p.match(b)
	return nil, false
}

// Write feeds every byte of chunk in order and returns the completed
// responses.
func (p *Parser) Write(chunk []byte) []Response {
	var out []Response
	for _, b := range chunk {
		if r, ok := p.Feed(b); ok {
			out = append(out, r)
		}
	}
	return out
}

// Receiving reports whether the line in progress is a receive event.
func (p *Parser) Receiving() bool {
	return p.tag == TagReceive && (p.accumulating || p.pos >= 2)
}

// Stats returns the parser's counters.
func (p *Parser) Stats() Stats {
	return p.stats
}

func (p *Parser) match(b byte) {
	switch p.pos {
	case 0:
		if b == '+' {
			p.pos = 1
			return
		}
		p.stats.Noise++
	case 1:
		t, ok := LookupTag(b)
		if !ok {
			p.mismatch(b)
			return
		}
		p.tag = t
		p.pos = 2
	default:
		prefix := p.tag.Prefix()
		if b != prefix[p.pos] {
			p.mismatch(b)
			return
		}
		p.pos++
		if p.pos == len(prefix) {
			p.accumulating = true
			p.buf = p.buf[:0]
			p.pendingCR = false
		}
	}
}

// mismatch drops the partial prefix. A '+' may begin the next response so
// matching restarts right after it.
func (p *Parser) mismatch(b byte) {
	p.stats.Noise += uint64(p.pos)
	p.tag = TagReceive
	if b == '+' {
		p.pos = 1
		return
	}
	p.stats.Noise++
	p.pos = 0
}

func (p *Parser) accumulate(b byte) (Response, bool) {
	switch b {
	case '\n':
		r := Decode(p.tag, string(p.buf))
		p.stats.Lines++
		p.reset()
		return r, true
	case '\r':
		if p.pendingCR && !p.append('\r') {
			return nil, false
		}
		p.pendingCR = true
		return nil, false
	}
	if p.pendingCR {
		p.pendingCR = false
		if !p.append('\r') {
			return nil, false
		}
	}
	p.append(b)
	return nil, false
}

// append adds one value byte. Going past the tag's limit is a protocol
// violation: the line is dropped and the parser starts matching again.
func (p *Parser) append(b byte) bool {
	if limit := valueLimit(p.tag); len(p.buf) >= limit {
		p.stats.Overflows++
		p.logger.Warn("response value exceeds limit, line discarded",
			"tag", p.tag.String(),
			"limit", limit,
		)
		p.reset()
		return false
	}
	p.buf = append(p.buf, b)
	return true
}

// valueLimit caps a value. A receive line carries a payload of up to
// MaxPayloadLength bytes behind its header fields.
func valueLimit(t Tag) int {
	if t == TagReceive {
		return MaxReceiveValueLength
	}
	return MaxValueLength
}

// reset returns to matching at position 0, biased to the receive tag.
func (p *Parser) reset() {
	p.tag = TagReceive
	p.pos = 0
	p.accumulating = false
	p.pendingCR = false
	p.buf = p.buf[:0]
}
