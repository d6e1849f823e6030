package modem

import (
	"log/slog"
	"time"
)

func (c *Config) validate() error {
	if c.Dialer == nil {
		return ErrNoDialer
	}
	if c.Settings != nil {
		if err := c.Settings.Validate(); err != nil {
			return err
		}
	}
	return nil
}

type Config struct {
	Dialer    Dialer
	Logger    *slog.Logger
	Renderer  Renderer
	ResetLine ResetLine
	Recorder  Recorder
	Metrics   *Metrics

	// Settings are written to the module when the engine starts. Nil skips
	// the startup sequence.
	Settings *RadioSettings
	// Destination is the address operator messages are sent to.
	Destination uint16
	// Echo sends every received payload back to Destination.
	Echo bool

	// CommandTimeout abandons a command without a reply. Zero waits forever.
	CommandTimeout time.Duration
	ResetSettle    time.Duration
	DialTimeout    time.Duration
}

func (c *Config) setDefaults() {
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	if c.Renderer == nil {
		c.Renderer = nopRenderer{}
	}
	if c.ResetLine == nil {
		c.ResetLine = nopResetLine{}
	}
	if c.ResetSettle == 0 {
		c.ResetSettle = DefaultResetSettle
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 10 * time.Second
	}
}

// ConfigBuilder assembles a Config step by step.
type ConfigBuilder struct {
	config Config
}

func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

func (b *ConfigBuilder) WithDialer(d Dialer) *ConfigBuilder {
	b.config.Dialer = d
	return b
}

func (b *ConfigBuilder) WithLogger(l *slog.Logger) *ConfigBuilder {
	b.config.Logger = l
	return b
}

func (b *ConfigBuilder) WithRenderer(r Renderer) *ConfigBuilder {
	b.config.Renderer = r
	return b
}

func (b *ConfigBuilder) WithResetLine(r ResetLine) *ConfigBuilder {
	b.config.ResetLine = r
	return b
}

func (b *ConfigBuilder) WithRecorder(r Recorder) *ConfigBuilder {
	b.config.Recorder = r
	return b
}

func (b *ConfigBuilder) WithMetrics(m *Metrics) *ConfigBuilder {
	b.config.Metrics = m
	return b
}

func (b *ConfigBuilder) WithSettings(s RadioSettings) *ConfigBuilder {
	b.config.Settings = &s
	return b
}

func (b *ConfigBuilder) WithDestination(addr uint16) *ConfigBuilder {
	b.config.Destination = addr
	return b
}

func (b *ConfigBuilder) WithEcho(on bool) *ConfigBuilder {
	b.config.Echo = on
	return b
}

func (b *ConfigBuilder) WithCommandTimeout(d time.Duration) *ConfigBuilder {
	b.config.CommandTimeout = d
	return b
}

func (b *ConfigBuilder) WithResetSettle(d time.Duration) *ConfigBuilder {
	b.config.ResetSettle = d
	return b
}

func (b *ConfigBuilder) WithDialTimeout(d time.Duration) *ConfigBuilder {
	b.config.DialTimeout = d
	return b
}

// Build validates the configuration and fills in defaults.
func (b *ConfigBuilder) Build() (Config, error) {
	c := b.config
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	c.setDefaults()
	return c, nil
}
