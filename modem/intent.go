package modem

import (
	"fmt"
	"strconv"
	"time"

	"i4.energy/across/loraterm/at"
)

// Intent is one unit of outbound work for the CommandQueue.
type Intent interface {
	// Line returns the AT line to write. Delay has no line.
	Line() (string, bool)
	String() string
}

// Query asks the module for the current value of a setting.
type Query struct {
	Name string
}

// Set writes a setting. An empty Name produces the bare "AT" attention command.
type Set struct {
	Name  string
	Value string
}

// Send transmits Payload to the radio at Addr.
type Send struct {
	Addr    uint16
	Payload string
}

// Delay holds back the queue for Duration without writing anything.
type Delay struct {
	Duration time.Duration
}

// Reset restarts the module.
type Reset struct{}

// FactoryDefault restores the module's factory settings.
type FactoryDefault struct{}

func (q Query) Line() (string, bool) { return at.FormatCommand(q.Name+"?", ""), true }
func (s Set) Line() (string, bool)   { return at.FormatCommand(s.Name, s.Value), true }
func (Delay) Line() (string, bool)   { return "", false }
func (Reset) Line() (string, bool)   { return at.FormatCommand(at.CmdReset, ""), true }

func (FactoryDefault) Line() (string, bool) {
	return at.FormatCommand(at.CmdFactory, ""), true
}

// Line renders SEND=<addr>,<len>,<payload>.
func (s Send) Line() (string, bool) {
	value := strconv.Itoa(int(s.Addr)) + "," + strconv.Itoa(len(s.Payload)) + "," + s.Payload
	return at.FormatCommand(at.CmdSend, value), true
}

func (q Query) String() string { return q.Name + "?" }

func (s Set) String() string {
	if s.Value == "" {
		return s.Name
	}
	return s.Name + "=" + s.Value
}

func (s Send) String() string {
	return fmt.Sprintf("%s=%d,%d,%s", at.CmdSend, s.Addr, len(s.Payload), s.Payload)
}

func (d Delay) String() string        { return "DELAY " + d.Duration.String() }
func (Reset) String() string          { return at.CmdReset }
func (FactoryDefault) String() string { return at.CmdFactory }

// commandName is the metric label for an intent.
func commandName(i Intent) string {
	switch v := i.(type) {
	case Query:
		return v.Name
	case Set:
		if v.Name == "" {
			return "AT"
		}
		return v.Name
	case Send:
		return at.CmdSend
	case Delay:
		return "DELAY"
	case Reset:
		return at.CmdReset
	case FactoryDefault:
		return at.CmdFactory
	}
	return "UNKNOWN"
}
