package at

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTruncated is returned when a receive event ends before its
	// declared payload length or trailing fields.
	ErrTruncated = errors.New("truncated receive event")

	// ErrBadField is returned when a numeric field does not parse.
	ErrBadField = errors.New("bad field")
)

// ReceivedMessage is the decoded value of a +RCV= line.
type ReceivedMessage struct {
	Sender  uint16
	Length  uint16
	Payload []byte
	RSSI    int16
	SNR     int16
}

// DecodeReceived splits "<addr>,<len>,<data>,<rssi>,<snr>".
//
// The payload is sliced by the declared length, never by searching for a
// delimiter, so it may contain commas. RSSI and SNR are only recoverable
// because the length is known up front.
func DecodeReceived(raw string) (ReceivedMessage, error) {
	var msg ReceivedMessage

	fields := strings.SplitN(raw, ",", 3)
	if len(fields) < 3 {
		return msg, fmt.Errorf("need address, length and data: %w", ErrTruncated)
	}

	addr, err := parseUint(fields[0], 16)
	if err != nil {
		return msg, fmt.Errorf("address: %w", err)
	}
	n, err := parseUint(fields[1], 16)
	if err != nil {
		return msg, fmt.Errorf("length: %w", err)
	}

	rest := fields[2]
	if uint64(len(rest)) < n {
		return msg, fmt.Errorf("payload has %d of %d bytes: %w", len(rest), n, ErrTruncated)
	}
	payload := rest[:n]
	rest = rest[n:]

	if rest == "" {
		return msg, fmt.Errorf("missing rssi and snr: %w", ErrTruncated)
	}
	if rest[0] != ',' {
		return msg, fmt.Errorf("expected ',' after payload, got %q: %w", rest[0], ErrBadField)
	}

	tail := strings.SplitN(rest[1:], ",", 2)
	if len(tail) < 2 {
		return msg, fmt.Errorf("missing snr: %w", ErrTruncated)
	}
	rssi, err := parseInt(tail[0], 16)
	if err != nil {
		return msg, fmt.Errorf("rssi: %w", err)
	}
	snr, err := parseInt(tail[1], 16)
	if err != nil {
		return msg, fmt.Errorf("snr: %w", err)
	}

	msg.Sender = uint16(addr)
	msg.Length = uint16(n)
	msg.Payload = []byte(payload)
	msg.RSSI = int16(rssi)
	msg.SNR = int16(snr)
	return msg, nil
}
