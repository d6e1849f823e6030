package at

import (
	"bufio"
	"bytes"
	"strings"
)

// Splitter tokenizes the command lines a host writes to the module. It uses
// the signature of bufio.SplitFunc so it can be directly used with
// bufio.Scanner.
//
// It splits the input by CRLF line endings. A bare LF also ends a line
// since some terminals send it alone.
//
// The atEOF parameter indicates whether any more data will be available.
// When true, any remaining data is returned as the final token.
func Splitter(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, bytes.TrimSuffix(data[0:i], []byte("\r")), nil
	}

	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

var _ bufio.SplitFunc = Splitter

// CommandLine is an outbound line split into its parts.
type CommandLine struct {
	Name  string
	Value string
	Query bool
}

// ParseCommandLine undoes FormatCommand for a single line without its
// terminator. It reports false if the line does not start with "AT".
func ParseCommandLine(line string) (CommandLine, bool) {
	rest, ok := strings.CutPrefix(line, Prefix)
	if !ok {
		return CommandLine{}, false
	}
	if rest == "" {
		return CommandLine{}, true
	}
	rest, ok = strings.CutPrefix(rest, "+")
	if !ok {
		return CommandLine{}, false
	}
	if name, ok := strings.CutSuffix(rest, "?"); ok {
		return CommandLine{Name: name, Query: true}, true
	}
	name, value, _ := strings.Cut(rest, "=")
	return CommandLine{Name: name, Value: value}, true
}
