package at

import (
	"fmt"
	"strconv"
	"strings"
)

// Response is one completed line from the module. Exactly one Response is
// produced per line; values that fail to decode become Malformed.
type Response interface {
	Tag() Tag
	response()
}

// Address is the reply to ADDRESS? or ADDRESS=.
type Address struct{ Value uint16 }

// Band is the RF frequency in Hz.
type Band struct{ Hz uint32 }

// Power is the RF output power in dBm.
type Power struct{ DBm uint8 }

// Error is a module-reported failure code, see Translate.
type Error struct{ Code uint16 }

// FactoryReset confirms AT+FACTORY.
type FactoryReset struct{}

// BaudRate is the UART speed reported by IPR.
type BaudRate struct{ Baud uint32 }

// Mode is the work mode, kept raw: "0", "1" or "2,<rx ms>,<sleep ms>".
type Mode struct{ Raw string }

// OK acknowledges any command without a value.
type OK struct{}

// NetworkID is the network the module listens on.
type NetworkID struct{ ID uint8 }

// Parameter is the LoRa modulation tuple.
type Parameter struct {
	SpreadingFactor uint8 `json:"spreading_factor" yaml:"spreading_factor"`
	Bandwidth       uint8 `json:"bandwidth" yaml:"bandwidth"`
	CodingRate      uint8 `json:"coding_rate" yaml:"coding_rate"`
	Preamble        uint8 `json:"preamble" yaml:"preamble"`
}

// Received is an inbound radio packet.
type Received struct{ Message ReceivedMessage }

// UID is the module's unique id.
type UID struct{ Value string }

// Version is the firmware version string.
type Version struct{ Value string }

// Malformed is a line whose tag matched but whose value did not decode.
type Malformed struct {
	Source Tag
	Raw    string
	Err    error
}

func (Address) Tag() Tag      { return TagAddress }
func (Band) Tag() Tag         { return TagBand }
func (Power) Tag() Tag        { return TagPower }
func (Error) Tag() Tag        { return TagError }
func (FactoryReset) Tag() Tag { return TagFactory }
func (BaudRate) Tag() Tag     { return TagBaudRate }
func (Mode) Tag() Tag         { return TagMode }
func (OK) Tag() Tag           { return TagOK }
func (NetworkID) Tag() Tag    { return TagNetworkID }
func (Parameter) Tag() Tag    { return TagParameter }
func (Received) Tag() Tag     { return TagReceive }
func (UID) Tag() Tag          { return TagUID }
func (Version) Tag() Tag      { return TagVersion }
func (m Malformed) Tag() Tag  { return m.Source }

func (Address) response()      {}
func (Band) response()         {}
func (Power) response()        {}
func (Error) response()        {}
func (FactoryReset) response() {}
func (BaudRate) response()     {}
func (Mode) response()         {}
func (OK) response()           {}
func (NetworkID) response()    {}
func (Parameter) response()    {}
func (Received) response()     {}
func (UID) response()          {}
func (Version) response()      {}
func (Malformed) response()    {}

// String renders the parameter the way the module expects it in PARAMETER=.
func (p Parameter) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", p.SpreadingFactor, p.Bandwidth, p.CodingRate, p.Preamble)
}

func (m Malformed) Error() string {
	return fmt.Sprintf("malformed %s value %q: %v", m.Source, m.Raw, m.Err)
}

func (m Malformed) Unwrap() error {
	return m.Err
}

// Decode turns the value portion of a line into the Response for tag.
func Decode(tag Tag, raw string) Response {
	r, err := decode(tag, raw)
	if err != nil {
		return Malformed{Source: tag, Raw: raw, Err: err}
	}
	return r
}

func decode(tag Tag, raw string) (Response, error) {
	switch tag {
	case TagAddress:
		v, err := parseUint(raw, 16)
		return Address{Value: uint16(v)}, err
	case TagBand:
		v, err := parseUint(raw, 32)
		return Band{Hz: uint32(v)}, err
	case TagPower:
		v, err := parseUint(raw, 8)
		return Power{DBm: uint8(v)}, err
	case TagError:
		v, err := parseUint(raw, 16)
		return Error{Code: uint16(v)}, err
	case TagFactory:
		return FactoryReset{}, nil
	case TagBaudRate:
		v, err := parseUint(raw, 32)
		return BaudRate{Baud: uint32(v)}, err
	case TagMode:
		if raw == "" {
			return nil, ErrBadField
		}
		return Mode{Raw: raw}, nil
	case TagOK:
		return OK{}, nil
	case TagNetworkID:
		v, err := parseUint(raw, 8)
		return NetworkID{ID: uint8(v)}, err
	case TagParameter:
		return ParseParameter(raw)
	case TagReceive:
		msg, err := DecodeReceived(raw)
		if err != nil {
			return nil, err
		}
		return Received{Message: msg}, nil
	case TagUID:
		return UID{Value: raw}, nil
	case TagVersion:
		return Version{Value: raw}, nil
	}
	return nil, fmt.Errorf("unknown tag %d", tag)
}

// ParseParameter parses "sf,bw,cr,preamble".
func ParseParameter(raw string) (Parameter, error) {
	fields := strings.Split(raw, ",")
	if len(fields) != 4 {
		return Parameter{}, fmt.Errorf("parameter needs 4 fields, got %d: %w", len(fields), ErrBadField)
	}
	var vals [4]uint8
	for i, f := range fields {
		v, err := parseUint(f, 8)
		if err != nil {
			return Parameter{}, err
		}
		vals[i] = uint8(v)
	}
	return Parameter{
		SpreadingFactor: vals[0],
		Bandwidth:       vals[1],
		CodingRate:      vals[2],
		Preamble:        vals[3],
	}, nil
}

func parseUint(s string, bits int) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, bits)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, ErrBadField)
	}
	return v, nil
}

func parseInt(s string, bits int) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, bits)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, ErrBadField)
	}
	return v, nil
}
