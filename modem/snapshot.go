package modem

import (
	"i4.energy/across/loraterm/at"
)

// Field names one value of a Snapshot.
type Field uint16

const (
	FieldAddress Field = 1 << iota
	FieldNetworkID
	FieldBand
	FieldPower
	FieldMode
	FieldParameter
	FieldUID
	FieldVersion
	FieldBaudRate
	FieldLastReceive
)

// Snapshot is the last known state of the radio. Each field changes only
// when its own response arrives.
type Snapshot struct {
	Address   uint16       `json:"address"`
	NetworkID uint8        `json:"network_id"`
	Band      uint32       `json:"band_hz"`
	Power     uint8        `json:"power_dbm"`
	Mode      string       `json:"mode"`
	Parameter at.Parameter `json:"parameter"`
	UID       string       `json:"uid"`
	Version   string       `json:"version"`
	BaudRate  uint32       `json:"baud_rate"`

	LastSender uint16 `json:"last_sender"`
	LastRSSI   int16  `json:"last_rssi"`
	LastSNR    int16  `json:"last_snr"`
	Received   uint64 `json:"received"`

	Known Field `json:"-"`
}

// Apply updates the field that r reports and tells whether anything
// changed.
func (s *Snapshot) Apply(r at.Response) bool {
	before := *s
	switch v := r.(type) {
	case at.Address:
		s.Address = v.Value
		s.Known |= FieldAddress
	case at.NetworkID:
		s.NetworkID = v.ID
		s.Known |= FieldNetworkID
	case at.Band:
		s.Band = v.Hz
		s.Known |= FieldBand
	case at.Power:
		s.Power = v.DBm
		s.Known |= FieldPower
	case at.Mode:
		s.Mode = v.Raw
		s.Known |= FieldMode
	case at.Parameter:
		s.Parameter = v
		s.Known |= FieldParameter
	case at.UID:
		s.UID = v.Value
		s.Known |= FieldUID
	case at.Version:
		s.Version = v.Value
		s.Known |= FieldVersion
	case at.BaudRate:
		s.BaudRate = v.Baud
		s.Known |= FieldBaudRate
	case at.Received:
		s.LastSender = v.Message.Sender
		s.LastRSSI = v.Message.RSSI
		s.LastSNR = v.Message.SNR
		s.Received++
		s.Known |= FieldLastReceive
	default:
		return false
	}
	return *s != before
}

// Has reports whether f has been reported by the module.
func (s Snapshot) Has(f Field) bool {
	return s.Known&f != 0
}
