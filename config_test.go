package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"i4.energy/across/loraterm/at"
	"i4.energy/across/loraterm/modem"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "loraterm.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func testFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	cmd := newRootCmd()
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	return cmd.Flags()
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig(WithDefaults())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.SerialPort != "/dev/ttyS0" || config.LogLevel != "info" || config.ResetPin != 4 {
		t.Errorf("unexpected defaults %+v", config)
	}
	if config.Radio.NetworkID != modem.PublicNetworkID || config.Radio.BaudRate != modem.DefaultBaudRate {
		t.Errorf("unexpected radio defaults %+v", config.Radio)
	}
	if config.CommandTimeout != 0 {
		t.Errorf("expected no command timeout by default, got %v", config.CommandTimeout)
	}
}

func TestLoadConfigLayering(t *testing.T) {
	path := writeConfigFile(t, `
serial_port: /dev/ttyUSB1
log_level: warn
destination: 12
command_timeout: 2s
radio:
  address: 100
  band: 915125000
  parameter:
    spreading_factor: 10
    bandwidth: 8
    coding_rate: 2
    preamble: 12
`)

	t.Setenv("SERIAL_PORT", "/dev/ttyUSB2")
	t.Setenv("LORA_ADDRESS", "200")
	t.Setenv("HISTORY_PATH", "/tmp/h.db")

	flags := testFlags(t, "--addr=300", "--echo", "--timeout=5s")

	config, err := LoadConfig(WithDefaults(), WithFile(path), WithEnv(), WithFlags(flags))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{name: "env beats file", got: config.SerialPort, expected: "/dev/ttyUSB2"},
		{name: "file beats defaults", got: config.LogLevel, expected: "warn"},
		{name: "flag beats env", got: config.Radio.Address, expected: uint16(300)},
		{name: "file band", got: config.Radio.Band, expected: uint32(915125000)},
		{name: "file parameter", got: config.Radio.Parameter, expected: at.Parameter{SpreadingFactor: 10, Bandwidth: 8, CodingRate: 2, Preamble: 12}},
		{name: "default kept under file", got: config.Radio.NetworkID, expected: uint8(modem.PublicNetworkID)},
		{name: "env only", got: config.HistoryPath, expected: "/tmp/h.db"},
		{name: "flag timeout", got: config.CommandTimeout, expected: 5 * time.Second},
		{name: "flag echo", got: config.Echo, expected: true},
		{name: "file destination", got: config.Destination, expected: uint16(12)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, tt.got)
			}
		})
	}
}

func TestLoadConfigUnsetFlagsIgnored(t *testing.T) {
	t.Setenv("LORA_NETWORK_ID", "5")

	config, err := LoadConfig(WithDefaults(), WithEnv(), WithFlags(testFlags(t)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Radio.NetworkID != 5 {
		t.Errorf("flag default overrode env, network id %d", config.Radio.NetworkID)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	t.Run("Missing file", func(t *testing.T) {
		_, err := LoadConfig(WithDefaults(), WithFile(filepath.Join(t.TempDir(), "missing.yaml")))
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected not-exist error, got: %v", err)
		}
	})

	t.Run("Bad YAML", func(t *testing.T) {
		_, err := LoadConfig(WithDefaults(), WithFile(writeConfigFile(t, "radio: [")))
		if err == nil {
			t.Error("expected a parse error")
		}
	})

	t.Run("Bad parameter in env", func(t *testing.T) {
		t.Setenv("LORA_PARAMETER", "9,7,1")
		_, err := LoadConfig(WithDefaults(), WithEnv())
		if !errors.Is(err, at.ErrBadField) {
			t.Errorf("expected ErrBadField, got: %v", err)
		}
	})

	t.Run("Out of range band in file", func(t *testing.T) {
		path := writeConfigFile(t, "radio:\n  band: 868500000\n")
		_, err := LoadConfig(WithDefaults(), WithFile(path))
		if !errors.Is(err, modem.ErrInvalidSetting) {
			t.Errorf("expected ErrInvalidSetting, got: %v", err)
		}
	})

	t.Run("Out of range setting", func(t *testing.T) {
		_, err := LoadConfig(WithDefaults(), WithFlags(testFlags(t, "--netid=16")))
		if !errors.Is(err, modem.ErrInvalidSetting) {
			t.Errorf("expected ErrInvalidSetting, got: %v", err)
		}
	})

	t.Run("Bad power flag", func(t *testing.T) {
		_, err := LoadConfig(WithDefaults(), WithFlags(testFlags(t, "--pwr=23")))
		if !errors.Is(err, modem.ErrInvalidSetting) {
			t.Errorf("expected ErrInvalidSetting, got: %v", err)
		}
	})
}
