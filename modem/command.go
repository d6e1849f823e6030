package modem

import (
	"fmt"
	"strconv"
	"strings"

	"i4.energy/across/loraterm/at"
)

// CommandPrefix marks an entered line as a module command instead of a
// message.
const CommandPrefix = "/"

var settable = map[string]bool{
	at.CmdAddress:   true,
	at.CmdNetworkID: true,
	at.CmdBand:      true,
	at.CmdParameter: true,
	at.CmdMode:      true,
	at.CmdPower:     true,
	at.CmdBaudRate:  true,
}

var queryOnly = map[string]bool{
	at.CmdUID:     true,
	at.CmdVersion: true,
}

// ParseCommand turns an operator line such as "/BAND?", "/crfop=14",
// "/SEND=5,hi", "/RESET" or a lone "/" into an intent.
func ParseCommand(line string) (Intent, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), CommandPrefix)
	if !ok {
		return nil, fmt.Errorf("%w: %q does not start with %q", ErrUnknownCommand, line, CommandPrefix)
	}
	if rest == "" {
		return Set{}, nil
	}

	name, value, hasValue := strings.Cut(rest, "=")
	name = strings.ToUpper(strings.TrimSpace(name))

	if q, isQuery := strings.CutSuffix(name, "?"); isQuery && !hasValue {
		if !settable[q] && !queryOnly[q] {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, q)
		}
		return Query{Name: q}, nil
	}

	switch name {
	case at.CmdReset:
		return Reset{}, nil
	case at.CmdFactory:
		return FactoryDefault{}, nil
	case at.CmdSend:
		return parseSend(value)
	}

	if !settable[name] {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	if !hasValue || value == "" {
		return nil, fmt.Errorf("%w: %s needs a value", ErrUnknownCommand, name)
	}
	return Set{Name: name, Value: value}, nil
}

// parseSend reads "<addr>,<text>". The length field is computed, not typed.
func parseSend(value string) (Intent, error) {
	addr, text, ok := strings.Cut(value, ",")
	if !ok || text == "" {
		return nil, fmt.Errorf("%w: SEND needs addr,text", ErrUnknownCommand)
	}
	n, err := strconv.ParseUint(strings.TrimSpace(addr), 10, 16)
	if err != nil {
		return nil, fmt.Errorf("%w: SEND address %q", ErrUnknownCommand, addr)
	}
	if len(text) > at.MaxPayloadLength {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLong, len(text))
	}
	return Send{Addr: uint16(n), Payload: text}, nil
}
