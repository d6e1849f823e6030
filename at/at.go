package at

const (
	// Terminal Control
	CRLF = "\r\n"

	// Prefix starts every outbound command line.
	Prefix = "AT"

	// MaxValueLength is the module's hardware ceiling for the value portion
	// of a response line.
	MaxValueLength = 240

	// MaxPayloadLength is the largest payload the module accepts in SEND.
	MaxPayloadLength = 240

	// MaxReceiveValueLength bounds a +RCV= value: a full payload plus the
	// widest sender, length, RSSI and SNR fields ("65535,240," and ",-164,-20").
	MaxReceiveValueLength = MaxPayloadLength + 19
)

// Command names understood by the module.
const (
	CmdAddress   = "ADDRESS"
	CmdNetworkID = "NETWORKID"
	CmdBand      = "BAND"
	CmdParameter = "PARAMETER"
	CmdMode      = "MODE"
	CmdPower     = "CRFOP"
	CmdBaudRate  = "IPR"
	CmdUID       = "UID"
	CmdVersion   = "VER"
	CmdSend      = "SEND"
	CmdFactory   = "FACTORY"
	CmdReset     = "RESET"
)

type ResponseType int

const (
	TypeFinal ResponseType = iota // reply to the command in flight
	TypeURC                       // unsolicited receive event
)

// Classify identifies whether a response answers a command or arrived on
// its own. Only receive events are unsolicited, including ones whose value
// failed to decode.
func Classify(r Response) ResponseType {
	if r.Tag() == TagReceive {
		return TypeURC
	}
	return TypeFinal
}

// FormatCommand renders a command line: AT, then +name when name is
// non-empty, then =value when value is non-empty, then CRLF.
func FormatCommand(name, value string) string {
	line := Prefix
	if name != "" {
		line += "+" + name
	}
	if value != "" {
		line += "=" + value
	}
	return line + CRLF
}
