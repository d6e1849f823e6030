package modem

import (
	"log/slog"
	"strconv"

	"i4.energy/across/loraterm/at"
)

// Activity is the state of the radio activity indicator.
type Activity int

const (
	ActivityIdle Activity = iota
	ActivityReceiving
	ActivityTransmitting
)

func (a Activity) String() string {
	switch a {
	case ActivityReceiving:
		return "receiving"
	case ActivityTransmitting:
		return "transmitting"
	}
	return "idle"
}

// Renderer displays what the engine produces. Calls are made from the
// engine loop and must not block for long. A Renderer never changes
// protocol state.
type Renderer interface {
	// Response shows a completed line.
	Response(r at.Response)
	// Notice shows operator-facing text such as a translated module error.
	Notice(text string)
	// Status shows a changed snapshot.
	Status(s Snapshot)
	// Transmitted echoes a message at the moment its SEND line is written.
	Transmitted(s Send)
	// Activity sets the activity indicator.
	Activity(a Activity)
	// Editor shows the transmit line and its cursor.
	Editor(text string, cursor int)
}

type nopRenderer struct{}

func (nopRenderer) Response(at.Response) {}
func (nopRenderer) Notice(string)        {}
func (nopRenderer) Status(Snapshot)      {}
func (nopRenderer) Transmitted(Send)     {}
func (nopRenderer) Activity(Activity)    {}
func (nopRenderer) Editor(string, int)   {}

// LogRenderer writes engine output to a structured logger. It is used when
// no terminal is attached.
type LogRenderer struct {
	Logger *slog.Logger
}

func (r LogRenderer) Response(resp at.Response) {
	switch v := resp.(type) {
	case at.Received:
		r.Logger.Info("received",
			"from", v.Message.Sender,
			"payload", string(v.Message.Payload),
			"rssi", v.Message.RSSI,
			"snr", v.Message.SNR,
		)
	default:
		r.Logger.Info("response", "tag", resp.Tag().String(), "value", Describe(resp))
	}
}

func (r LogRenderer) Notice(text string) {
	r.Logger.Warn(text)
}

func (r LogRenderer) Status(s Snapshot) {
	r.Logger.Debug("status", "address", s.Address, "network_id", s.NetworkID, "band", s.Band)
}

func (r LogRenderer) Transmitted(s Send) {
	r.Logger.Info("transmitted", "to", s.Addr, "payload", s.Payload)
}

func (r LogRenderer) Activity(a Activity) {
	r.Logger.Debug("activity", "state", a.String())
}

func (LogRenderer) Editor(string, int) {}

// Describe renders a response as the module would print its value.
func Describe(r at.Response) string {
	switch v := r.(type) {
	case at.Address:
		return strconv.Itoa(int(v.Value))
	case at.Band:
		return strconv.Itoa(int(v.Hz))
	case at.Power:
		return strconv.Itoa(int(v.DBm))
	case at.Error:
		return strconv.Itoa(int(v.Code))
	case at.BaudRate:
		return strconv.Itoa(int(v.Baud))
	case at.Mode:
		return v.Raw
	case at.NetworkID:
		return strconv.Itoa(int(v.ID))
	case at.Parameter:
		return v.String()
	case at.Received:
		return string(v.Message.Payload)
	case at.UID:
		return v.Value
	case at.Version:
		return v.Value
	case at.Malformed:
		return v.Raw
	}
	return ""
}
