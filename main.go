package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"i4.energy/across/loraterm/gpio"
	"i4.energy/across/loraterm/history"
	"i4.energy/across/loraterm/modem"
	"i4.energy/across/loraterm/tui"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "loraterm",
		Short:        "Terminal for a REYAX RYLR998 LoRa module",
		Long:         "Configures a RYLR998 over its serial port, shows received messages and sends what you type.",
		SilenceUsage: true,
		RunE:         runTerminal,
	}

	f := root.PersistentFlags()
	f.String("config", "", "YAML configuration file")
	f.String("port", "/dev/ttyS0", "Serial port device name")
	f.Int("baud", modem.DefaultBaudRate, "Serial port baud rate")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.Bool("debug", false, "Shorthand for --log-level=debug")
	f.String("log-file", "loraterm.log", "File receiving the JSON log")
	f.String("history", "", "SQLite message log path, empty disables it")

	rf := root.Flags()
	rf.String("http-address", "", "Serve the HTTP API on this address")
	rf.Int("reset-pin", 4, "BCM GPIO pin wired to the module's RST")
	rf.Bool("no-gpio", false, "Do not drive the reset pin")
	rf.Bool("simulate", false, "Run against a simulated module")
	rf.Bool("headless", false, "Log to stderr instead of running the terminal UI")
	rf.Bool("echo", false, "Retransmit every received message")
	rf.Bool("factory", false, "Restore factory defaults before configuring")
	rf.Duration("timeout", 0, "Abandon a command with no reply after this long, 0 waits forever")
	rf.Uint16("dest", 0, "Address typed messages are sent to")
	rf.Uint16("addr", 0, "Module address (0..65535)")
	rf.Uint8("netid", modem.PublicNetworkID, "Network ID (3..15 or 18)")
	rf.Uint32("band", 915000000, "Frequency in Hz")
	rf.Uint8("pwr", modem.MaxPower, "RF output power in dBm (0..22)")
	rf.String("mode", "0", "0: transceiver, 1: sleep, 2,rx,sleep: cycle in ms")
	rf.String("parameter", "9,7,1,12", "Spreading factor, bandwidth, coding rate, preamble")

	root.AddCommand(newVersionCmd(), newPortsCmd(), newHistoryCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "loraterm", version)
		},
	}
}

func newPortsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List serial ports",
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := modem.ListPorts()
			if err != nil {
				return err
			}
			for _, p := range ports {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
}

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show logged messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if config.HistoryPath == "" {
				return errors.New("no history database, set --history or HISTORY_PATH")
			}
			store, err := history.Open(config.HistoryPath)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printHistory(cmd.OutOrStdout(), entries)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of messages to show")
	return cmd
}

func printHistory(out io.Writer, entries []history.Entry) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tDIR\tPEER\tRSSI\tSNR\tMESSAGE")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
			e.At.Format(time.DateTime), e.Direction, e.Peer, e.RSSI, e.SNR, e.Payload)
	}
	return w.Flush()
}

func loadConfig(cmd *cobra.Command) (*Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return LoadConfig(WithDefaults(), WithFile(path), WithEnv(), WithFlags(cmd.Flags()))
}

func newLogger(config *Config, out io.Writer) *slog.Logger {
	logLevel := slog.LevelInfo
	switch config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: logLevel}))
}

func runTerminal(cmd *cobra.Command, args []string) error {
	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	headless, _ := cmd.Flags().GetBool("headless")

	logOut := io.Writer(os.Stderr)
	if !headless {
		f, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := newLogger(config, logOut)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	builder := modem.NewConfigBuilder().
		WithLogger(logger).
		WithMetrics(modem.NewMetrics(registry)).
		WithSettings(config.Radio).
		WithDestination(config.Destination).
		WithEcho(config.Echo).
		WithCommandTimeout(config.CommandTimeout)

	title := "loraterm " + config.SerialPort
	switch {
	case config.Simulate:
		title = "loraterm (simulated)"
		builder.WithDialer(modem.NewSimulator()).WithResetLine(gpio.Nop{})
	case config.NoGPIO:
		builder.WithDialer(serialDialer(config)).WithResetLine(gpio.Nop{})
	default:
		builder.WithDialer(serialDialer(config)).WithResetLine(gpio.NewPin(config.ResetPin))
	}

	if config.HistoryPath != "" {
		store, err := history.Open(config.HistoryPath)
		if err != nil {
			return err
		}
		defer store.Close()
		writer := history.NewWriter(store, logger.With("component", "history"), 256)
		defer writer.Close()
		builder.WithRecorder(writer)
	}

	var renderer *tui.Renderer
	if headless {
		builder.WithRenderer(modem.LogRenderer{Logger: logger.With("component", "radio")})
	} else {
		renderer = tui.NewRenderer()
		defer renderer.Stop()
		builder.WithRenderer(renderer)
	}

	engineConfig, err := builder.Build()
	if err != nil {
		logger.Error("Failed to create engine config", "error", err)
		return err
	}

	engine, err := modem.New(ctx, engineConfig)
	if err != nil {
		logger.Error("Failed to open radio", "error", err, "port", config.SerialPort)
		return err
	}
	defer func() {
		logger.Info("Closing radio")
		if err := engine.Close(); err != nil {
			logger.Error("Failed to close radio", "error", err)
		}
	}()

	logger.Info("Starting LoRa terminal", "port", config.SerialPort, "simulate", config.Simulate, "version", version)

	loopErr := make(chan error, 1)
	go func() {
		loopErr <- engine.Loop(ctx)
	}()

	if config.HTTPAddress != "" {
		httpServer := &http.Server{
			Addr: config.HTTPAddress,
			Handler: &Server{
				Logger:   logger.With("component", "server"),
				Radio:    engine,
				Gatherer: registry,
			},
		}
		go func() {
			logger.Info("Starting HTTP server", "address", httpServer.Addr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			logger.Info("Closing HTTP server")
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("Failed to gracefully shutdown server", "error", err)
			}
		}()
	}

	if headless {
		return waitLoop(ctx, logger, loopErr)
	}

	program := tea.NewProgram(tui.NewModel(engine, title), tea.WithAltScreen(), tea.WithContext(ctx))
	renderer.Attach(program)
	go func() {
		if err := <-loopErr; err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Radio loop stopped", "error", err)
			loopErr <- err
		}
		program.Quit()
	}()

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	stop()
	select {
	case err := <-loopErr:
		return err
	default:
		return nil
	}
}

func waitLoop(ctx context.Context, logger *slog.Logger, loopErr <-chan error) error {
	err := <-loopErr
	if ctx.Err() != nil {
		logger.Info("Received shutdown signal")
		return nil
	}
	logger.Error("Radio loop stopped", "error", err)
	return err
}

func serialDialer(config *Config) modem.SerialDialer {
	return modem.SerialDialer{
		PortName: config.SerialPort,
		Mode:     modem.SerialMode(config.Radio.BaudRate),
	}
}
