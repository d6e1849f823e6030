package modem

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"i4.energy/across/loraterm/at"
)

// Radio limits accepted by the module.
const (
	MinBand      = 902250000
	MaxBand      = 927750000
	MaxPower     = 22
	MinModeDelay = 30
	MaxModeDelay = 60000

	// PublicNetworkID is the only network that allows a preamble other
	// than DefaultPreamble.
	PublicNetworkID = 18
	DefaultPreamble = 12
)

// FactorySettle is the pause after FACTORY before the next command.
const FactorySettle = 250 * time.Millisecond

// RadioSettings is the configuration written to the module at startup.
type RadioSettings struct {
	Address   uint16       `yaml:"address"`
	NetworkID uint8        `yaml:"network_id"`
	Band      uint32       `yaml:"band"`
	Power     *uint8       `yaml:"power,omitempty"`
	Mode      string       `yaml:"mode"`
	Parameter at.Parameter `yaml:"parameter"`
	BaudRate  int          `yaml:"baud_rate"`
	// Factory restores factory defaults before anything else is written.
	Factory bool `yaml:"factory"`
}

// DefaultRadioSettings matches a module fresh from the factory on the
// public network.
func DefaultRadioSettings() RadioSettings {
	power := uint8(MaxPower)
	return RadioSettings{
		Address:   0,
		NetworkID: PublicNetworkID,
		Band:      915000000,
		Power:     &power,
		Mode:      "0",
		Parameter: at.Parameter{SpreadingFactor: 9, Bandwidth: 7, CodingRate: 1, Preamble: DefaultPreamble},
		BaudRate:  DefaultBaudRate,
	}
}

// Validate checks every setting against the module's limits.
func (s RadioSettings) Validate() error {
	if s.NetworkID != PublicNetworkID && (s.NetworkID < 3 || s.NetworkID > 15) {
		return fmt.Errorf("%w: network id %d must be 3..15 or %d", ErrInvalidSetting, s.NetworkID, PublicNetworkID)
	}
	if s.Band < MinBand || s.Band > MaxBand {
		return fmt.Errorf("%w: band %d must be %d..%d Hz", ErrInvalidSetting, s.Band, MinBand, MaxBand)
	}
	if s.Power != nil && *s.Power > MaxPower {
		return fmt.Errorf("%w: power %d must be 0..%d dBm", ErrInvalidSetting, *s.Power, MaxPower)
	}
	if err := ValidateMode(s.Mode); err != nil {
		return err
	}
	if err := ValidateParameter(s.Parameter, s.NetworkID); err != nil {
		return err
	}
	if !slices.Contains(BaudRates, s.BaudRate) {
		return fmt.Errorf("%w: baud rate %d not in %v", ErrInvalidSetting, s.BaudRate, BaudRates)
	}
	return nil
}

// ValidateMode accepts "0", "1" or "2,<rx ms>,<sleep ms>".
func ValidateMode(mode string) error {
	switch mode {
	case "0", "1":
		return nil
	}
	fields := strings.Split(mode, ",")
	if len(fields) != 3 || fields[0] != "2" {
		return fmt.Errorf("%w: mode %q must be 0, 1 or 2,rx,sleep", ErrInvalidSetting, mode)
	}
	for _, f := range fields[1:] {
		ms, err := strconv.Atoi(f)
		if err != nil || ms < MinModeDelay || ms > MaxModeDelay {
			return fmt.Errorf("%w: mode 2 time %q must be %d..%d ms", ErrInvalidSetting, f, MinModeDelay, MaxModeDelay)
		}
	}
	return nil
}

// ValidateParameter checks the LoRa tuple. The spreading factor is bounded
// by the bandwidth, and off the public network the preamble must be 12.
func ValidateParameter(p at.Parameter, networkID uint8) error {
	maxSF := map[uint8]uint8{7: 9, 8: 10, 9: 11}
	limit, ok := maxSF[p.Bandwidth]
	if !ok {
		return fmt.Errorf("%w: bandwidth %d must be 7, 8 or 9", ErrInvalidSetting, p.Bandwidth)
	}
	if p.SpreadingFactor < 5 || p.SpreadingFactor > limit {
		return fmt.Errorf("%w: spreading factor %d must be 5..%d at bandwidth %d",
			ErrInvalidSetting, p.SpreadingFactor, limit, p.Bandwidth)
	}
	if p.CodingRate < 1 || p.CodingRate > 4 {
		return fmt.Errorf("%w: coding rate %d must be 1..4", ErrInvalidSetting, p.CodingRate)
	}
	if p.Preamble < 4 || p.Preamble > 24 {
		return fmt.Errorf("%w: preamble %d must be 4..24", ErrInvalidSetting, p.Preamble)
	}
	if networkID != PublicNetworkID && p.Preamble != DefaultPreamble {
		return fmt.Errorf("%w: preamble must be %d unless network id is %d",
			ErrInvalidSetting, DefaultPreamble, PublicNetworkID)
	}
	return nil
}

// Intents is the startup sequence: optional factory reset, the settings,
// then queries that fill the status snapshot.
func (s RadioSettings) Intents() []Intent {
	var out []Intent
	if s.Factory {
		out = append(out, FactoryDefault{}, Delay{Duration: FactorySettle})
	}
	out = append(out,
		Set{Name: at.CmdBaudRate, Value: strconv.Itoa(s.BaudRate)},
		Set{Name: at.CmdAddress, Value: strconv.Itoa(int(s.Address))},
		Set{Name: at.CmdNetworkID, Value: strconv.Itoa(int(s.NetworkID))},
		Set{Name: at.CmdBand, Value: strconv.FormatUint(uint64(s.Band), 10)},
	)
	if s.Power != nil {
		out = append(out, Set{Name: at.CmdPower, Value: strconv.Itoa(int(*s.Power))})
	}
	out = append(out,
		Set{Name: at.CmdParameter, Value: s.Parameter.String()},
		Query{Name: at.CmdAddress},
		Query{Name: at.CmdBand},
		Query{Name: at.CmdPower},
		Set{Name: at.CmdMode, Value: s.Mode},
		Query{Name: at.CmdParameter},
		Query{Name: at.CmdUID},
		Query{Name: at.CmdVersion},
		Query{Name: at.CmdNetworkID},
		Query{Name: at.CmdBaudRate},
		Query{Name: at.CmdMode},
	)
	return out
}
