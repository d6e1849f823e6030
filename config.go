package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"i4.energy/across/loraterm/at"
	"i4.energy/across/loraterm/modem"
)

// Config holds the application configuration
type Config struct {
	// SerialPort is the path to the module's serial port (e.g. "/dev/ttyS0")
	SerialPort string `yaml:"serial_port"`
	// LogLevel sets the logging level (e.g. "debug", "info", "warn", "error")
	LogLevel string `yaml:"log_level"`
	// LogFile receives the JSON log, the terminal belongs to the TUI
	LogFile string `yaml:"log_file"`
	// HTTPAddress enables the HTTP API when set (e.g. "127.0.0.1:8080")
	HTTPAddress string `yaml:"http_address"`
	// HistoryPath enables the SQLite message log when set
	HistoryPath string `yaml:"history_path"`
	// ResetPin is the BCM GPIO pin wired to the module's RST input
	ResetPin int `yaml:"reset_pin"`
	// NoGPIO leaves the reset line alone
	NoGPIO bool `yaml:"no_gpio"`
	// Simulate runs against an in-memory module instead of a serial port
	Simulate bool `yaml:"simulate"`
	// Destination is the address typed messages are sent to
	Destination uint16 `yaml:"destination"`
	// Echo retransmits every received message to Destination
	Echo bool `yaml:"echo"`
	// CommandTimeout abandons an unanswered command, zero waits forever
	CommandTimeout time.Duration `yaml:"command_timeout"`

	Radio modem.RadioSettings `yaml:"radio"`
}

// ConfigOption is a function that modifies a Config
type ConfigOption func(*Config) error

// LoadConfig creates a new config by applying the given options in order
func LoadConfig(opts ...ConfigOption) (*Config, error) {
	config := &Config{}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}

	if err := config.Radio.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// WithDefaults applies default configuration values
func WithDefaults() ConfigOption {
	return func(c *Config) error {
		c.SerialPort = "/dev/ttyS0"
		c.LogLevel = "info"
		c.LogFile = "loraterm.log"
		c.ResetPin = 4
		c.Radio = modem.DefaultRadioSettings()
		return nil
	}
}

// WithFile overlays the YAML file at path. An empty path is skipped.
func WithFile(path string) ConfigOption {
	return func(c *Config) error {
		if path == "" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse config file %s: %w", path, err)
		}
		return nil
	}
}

// WithEnv loads configuration from environment variables
func WithEnv() ConfigOption {
	return func(c *Config) error {
		if serial := os.Getenv("SERIAL_PORT"); serial != "" {
			c.SerialPort = serial
		}

		if baud := os.Getenv("BAUD_RATE"); baud != "" {
			if b, err := strconv.Atoi(baud); err == nil {
				c.Radio.BaudRate = b
			}
		}

		if level := os.Getenv("LOG_LEVEL"); level != "" {
			c.LogLevel = level
		}

		if file := os.Getenv("LOG_FILE"); file != "" {
			c.LogFile = file
		}

		if addr := os.Getenv("HTTP_ADDRESS"); addr != "" {
			c.HTTPAddress = addr
		}

		if path := os.Getenv("HISTORY_PATH"); path != "" {
			c.HistoryPath = path
		}

		if pin := os.Getenv("RESET_PIN"); pin != "" {
			if p, err := strconv.Atoi(pin); err == nil {
				c.ResetPin = p
			}
		}

		for name, apply := range radioFields {
			if v := os.Getenv(name); v != "" {
				if err := apply(&c.Radio, v); err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
			}
		}

		return nil
	}
}

// WithFlags loads configuration from the flags the user actually set
func WithFlags(fSet *pflag.FlagSet) ConfigOption {
	return func(c *Config) error {
		var err error
		fSet.Visit(func(f *pflag.Flag) {
			if err != nil {
				return
			}
			v := f.Value.String()
			switch f.Name {
			case "port":
				c.SerialPort = v
			case "baud":
				err = radioFields["BAUD_RATE"](&c.Radio, v)
			case "log-level":
				c.LogLevel = v
			case "debug":
				if v == "true" {
					c.LogLevel = "debug"
				}
			case "log-file":
				c.LogFile = v
			case "http-address":
				c.HTTPAddress = v
			case "history":
				c.HistoryPath = v
			case "reset-pin":
				c.ResetPin, err = strconv.Atoi(v)
			case "no-gpio":
				c.NoGPIO = v == "true"
			case "simulate":
				c.Simulate = v == "true"
			case "echo":
				c.Echo = v == "true"
			case "factory":
				c.Radio.Factory = v == "true"
			case "timeout":
				c.CommandTimeout, err = time.ParseDuration(v)
			case "dest":
				var d uint64
				d, err = strconv.ParseUint(v, 10, 16)
				c.Destination = uint16(d)
			case "addr":
				err = radioFields["LORA_ADDRESS"](&c.Radio, v)
			case "netid":
				err = radioFields["LORA_NETWORK_ID"](&c.Radio, v)
			case "band":
				err = radioFields["LORA_BAND"](&c.Radio, v)
			case "pwr":
				err = radioFields["LORA_POWER"](&c.Radio, v)
			case "mode":
				err = radioFields["LORA_MODE"](&c.Radio, v)
			case "parameter":
				err = radioFields["LORA_PARAMETER"](&c.Radio, v)
			}
			if err != nil {
				err = fmt.Errorf("--%s: %w", f.Name, err)
			}
		})
		return err
	}
}

// radioFields parses one radio setting from its text form, keyed by the
// environment variable that carries it.
var radioFields = map[string]func(*modem.RadioSettings, string) error{
	"BAUD_RATE": func(s *modem.RadioSettings, v string) error {
		b, err := strconv.Atoi(v)
		s.BaudRate = b
		return err
	},
	"LORA_ADDRESS": func(s *modem.RadioSettings, v string) error {
		a, err := strconv.ParseUint(v, 10, 16)
		s.Address = uint16(a)
		return err
	},
	"LORA_NETWORK_ID": func(s *modem.RadioSettings, v string) error {
		n, err := strconv.ParseUint(v, 10, 8)
		s.NetworkID = uint8(n)
		return err
	},
	"LORA_BAND": func(s *modem.RadioSettings, v string) error {
		b, err := strconv.ParseUint(v, 10, 32)
		s.Band = uint32(b)
		return err
	},
	"LORA_POWER": func(s *modem.RadioSettings, v string) error {
		p, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return err
		}
		power := uint8(p)
		s.Power = &power
		return nil
	},
	"LORA_MODE": func(s *modem.RadioSettings, v string) error {
		s.Mode = v
		return nil
	},
	"LORA_PARAMETER": func(s *modem.RadioSettings, v string) error {
		p, err := at.ParseParameter(v)
		s.Parameter = p
		return err
	},
}
