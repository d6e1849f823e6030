package at_test

import (
	"bufio"
	"strings"
	"testing"

	"i4.energy/across/loraterm/at"
)

func TestSplitter(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "Single query",
			input:    "AT+ADDRESS?\r\n",
			expected: []string{"AT+ADDRESS?"},
		},
		{
			name:     "Startup burst",
			input:    "AT+IPR=115200\r\nAT+ADDRESS=0\r\nAT+NETWORKID=18\r\n",
			expected: []string{"AT+IPR=115200", "AT+ADDRESS=0", "AT+NETWORKID=18"},
		},
		{
			name:     "Send with commas in payload",
			input:    "AT+SEND=3,5,a,bcd\r\n",
			expected: []string{"AT+SEND=3,5,a,bcd"},
		},
		{
			name:     "Bare LF terminator",
			input:    "AT\nAT+VER?\n",
			expected: []string{"AT", "AT+VER?"},
		},
		{
			name:     "Empty lines handling",
			input:    "\r\n\r\nAT\r\n",
			expected: []string{"", "", "AT"},
		},
		// EOF scenarios - testing atEOF functionality
		{
			name:     "Command without CRLF at EOF",
			input:    "AT+UID?",
			expected: []string{"AT+UID?"},
		},
		{
			name:     "Incomplete line after complete one",
			input:    "AT+BAND?\r\nAT+CRF",
			expected: []string{"AT+BAND?", "AT+CRF"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tokens []string
			scanner := bufio.NewScanner(strings.NewReader(tt.input))
			scanner.Split(at.Splitter)

			for scanner.Scan() {
				tokens = append(tokens, scanner.Text())
			}

			if err := scanner.Err(); err != nil {
				t.Fatalf("Scanner error: %v", err)
			}

			if len(tokens) != len(tt.expected) {
				t.Fatalf("Expected %d tokens, got %d.\nExpected: %v\nGot: %v",
					len(tt.expected), len(tokens), tt.expected, tokens)
			}

			for i, expected := range tt.expected {
				if tokens[i] != expected {
					t.Errorf("Token %d: expected %q, got %q", i, expected, tokens[i])
				}
			}
		})
	}
}

func TestParseCommandLine(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected at.CommandLine
		ok       bool
	}{
		{name: "Bare AT", input: "AT", expected: at.CommandLine{}, ok: true},
		{name: "Query", input: "AT+BAND?", expected: at.CommandLine{Name: "BAND", Query: true}, ok: true},
		{name: "Set", input: "AT+CRFOP=14", expected: at.CommandLine{Name: "CRFOP", Value: "14"}, ok: true},
		{name: "Set with commas", input: "AT+PARAMETER=9,7,1,12", expected: at.CommandLine{Name: "PARAMETER", Value: "9,7,1,12"}, ok: true},
		{name: "No value", input: "AT+FACTORY", expected: at.CommandLine{Name: "FACTORY"}, ok: true},
		{name: "Missing AT", input: "+ADDRESS?", ok: false},
		{name: "Missing plus", input: "ATZ", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := at.ParseCommandLine(tt.input)
			if ok != tt.ok {
				t.Fatalf("Expected ok=%v, got %v for %q", tt.ok, ok, tt.input)
			}
			if got != tt.expected {
				t.Errorf("Expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestFormatCommand(t *testing.T) {
	tests := []struct {
		name     string
		cmd      string
		value    string
		expected string
	}{
		{name: "Bare AT", expected: "AT\r\n"},
		{name: "Query", cmd: "ADDRESS?", expected: "AT+ADDRESS?\r\n"},
		{name: "Set", cmd: at.CmdNetworkID, value: "18", expected: "AT+NETWORKID=18\r\n"},
		{name: "No value", cmd: at.CmdFactory, expected: "AT+FACTORY\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := at.FormatCommand(tt.cmd, tt.value); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		input    at.Response
		expected at.ResponseType
	}{
		{name: "OK response", input: at.OK{}, expected: at.TypeFinal},
		{name: "ERR response", input: at.Error{Code: 4}, expected: at.TypeFinal},
		{name: "Address reply", input: at.Address{Value: 42}, expected: at.TypeFinal},
		{name: "Malformed reply", input: at.Malformed{Source: at.TagParameter}, expected: at.TypeFinal},
		{name: "Receive event", input: at.Received{}, expected: at.TypeURC},
		{name: "Malformed receive event", input: at.Malformed{Source: at.TagReceive}, expected: at.TypeURC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := at.Classify(tt.input)
			if result != tt.expected {
				t.Errorf("Expected %v, got %v for input %#v", tt.expected, result, tt.input)
			}
		})
	}
}
