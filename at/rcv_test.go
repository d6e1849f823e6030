package at_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"i4.energy/across/loraterm/at"
)

func TestDecodeReceived(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected at.ReceivedMessage
		err      error
	}{
		{
			name:     "Plain payload",
			input:    "7,5,hello,-110,9",
			expected: at.ReceivedMessage{Sender: 7, Length: 5, Payload: []byte("hello"), RSSI: -110, SNR: 9},
		},
		{
			name:     "Comma inside payload",
			input:    "3,5,a,bcd,-90,7",
			expected: at.ReceivedMessage{Sender: 3, Length: 5, Payload: []byte("a,bcd"), RSSI: -90, SNR: 7},
		},
		{
			name:     "Payload of only commas",
			input:    "1,3,,,,,-20,-3",
			expected: at.ReceivedMessage{Sender: 1, Length: 3, Payload: []byte(",,,"), RSSI: -20, SNR: -3},
		},
		{
			name:     "Empty payload",
			input:    "65535,0,,-1,0",
			expected: at.ReceivedMessage{Sender: 65535, Length: 0, Payload: []byte{}, RSSI: -1, SNR: 0},
		},
		{name: "Missing fields", input: "3,5", err: at.ErrTruncated},
		{name: "Short payload", input: "3,9,abc,-90,7", err: at.ErrTruncated},
		{name: "Missing rssi and snr", input: "3,3,abc", err: at.ErrTruncated},
		{name: "Missing snr", input: "3,3,abc,-90", err: at.ErrTruncated},
		{name: "Bad address", input: "x,3,abc,-90,7", err: at.ErrBadField},
		{name: "Address out of range", input: "70000,3,abc,-90,7", err: at.ErrBadField},
		{name: "Bad length", input: "3,-1,abc,-90,7", err: at.ErrBadField},
		{name: "No separator after payload", input: "3,2,abc,-90,7", err: at.ErrBadField},
		{name: "Bad rssi", input: "3,3,abc,loud,7", err: at.ErrBadField},
		{name: "Bad snr", input: "3,3,abc,-90,7,8", err: at.ErrBadField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := at.DecodeReceived(tt.input)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("expected %v, got %v", tt.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Sender != tt.expected.Sender || got.Length != tt.expected.Length ||
				got.RSSI != tt.expected.RSSI || got.SNR != tt.expected.SNR {
				t.Errorf("expected %+v, got %+v", tt.expected, got)
			}
			if string(got.Payload) != string(tt.expected.Payload) {
				t.Errorf("expected payload %q, got %q", tt.expected.Payload, got.Payload)
			}
		})
	}
}

func TestDecodeReceivedLengthIsExact(t *testing.T) {
	fill := []string{"X", ",", "a,", ",,b"}
	for _, f := range fill {
		for n := 0; n <= at.MaxPayloadLength; n += 17 {
			payload := strings.Repeat(f, n)[:n]
			raw := fmt.Sprintf("%d,%d,%s%s", 12, n, payload, ",-42,6")
			got, err := at.DecodeReceived(raw)
			if err != nil {
				t.Fatalf("fill %q n=%d: unexpected error: %v", f, n, err)
			}
			if len(got.Payload) != n || string(got.Payload) != payload {
				t.Fatalf("fill %q n=%d: got payload %q", f, n, got.Payload)
			}
			if got.RSSI != -42 || got.SNR != 6 {
				t.Fatalf("fill %q n=%d: got rssi=%d snr=%d", f, n, got.RSSI, got.SNR)
			}
		}
	}
}
