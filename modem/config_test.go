package modem_test

import (
	"errors"
	"testing"
	"time"

	"i4.energy/across/loraterm/modem"
)

func TestConfig(t *testing.T) {
	t.Run("ErrNoDialer when no dialer provided", func(t *testing.T) {
		_, err := modem.NewConfigBuilder().Build()

		if err != modem.ErrNoDialer {
			t.Errorf("expected ErrNoDialer, got: %v", err)
		}
	})

	t.Run("Invalid settings are rejected", func(t *testing.T) {
		s := modem.DefaultRadioSettings()
		s.NetworkID = 16

		_, err := modem.NewConfigBuilder().
			WithDialer(modem.NewSimulator()).
			WithSettings(s).
			Build()

		if !errors.Is(err, modem.ErrInvalidSetting) {
			t.Errorf("expected ErrInvalidSetting, got: %v", err)
		}
	})

	t.Run("Defaults are filled in", func(t *testing.T) {
		config, err := modem.NewConfigBuilder().
			WithDialer(modem.NewSimulator()).
			WithDestination(9).
			WithEcho(true).
			WithCommandTimeout(3 * time.Second).
			Build()
		if err != nil {
			t.Fatalf("unexpected error from Build(): %v", err)
		}

		if config.Logger == nil || config.Renderer == nil || config.ResetLine == nil {
			t.Error("expected logger, renderer and reset line defaults")
		}
		if config.ResetSettle != modem.DefaultResetSettle {
			t.Errorf("expected reset settle %v, got %v", modem.DefaultResetSettle, config.ResetSettle)
		}
		if config.Destination != 9 || !config.Echo || config.CommandTimeout != 3*time.Second {
			t.Errorf("builder values lost: %+v", config)
		}
		if config.Settings != nil {
			t.Error("expected no startup settings unless given")
		}
	})
}
