package modem_test

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"i4.energy/across/loraterm/at"
	"i4.energy/across/loraterm/modem"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := modem.NewMetrics(reg)

	tr := modem.NewTestTransport()
	e := startEngine(t, modem.NewConfigBuilder().
		WithDialer(transportDialer{tr}).
		WithMetrics(metrics))

	e.Submit(context.Background(), modem.IntentEvent{Intent: modem.Query{Name: at.CmdBand}})
	expectWrite(t, tr, "AT+BAND?\r\n")

	tr.SendData("zz+RCV=1,2,hi,-70,9\r\n+ERR=4\r\n")
	waitFor(t, "module error counted", func() bool {
		return testutil.ToFloat64(metrics.ModuleErrors.WithLabelValues("4")) == 1
	})

	if got := testutil.ToFloat64(metrics.Dispatched.WithLabelValues(at.CmdBand)); got != 1 {
		t.Errorf("expected 1 BAND dispatch, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.Responses.WithLabelValues("RCV")); got != 1 {
		t.Errorf("expected 1 RCV response, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.NoiseBytes); got != 2 {
		t.Errorf("expected 2 noise bytes, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.LastRSSI); got != -70 {
		t.Errorf("expected last RSSI -70, got %v", got)
	}

	expected := `
# HELP lora_packets_received_total Radio packets delivered by the module.
# TYPE lora_packets_received_total counter
lora_packets_received_total 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "lora_packets_received_total"); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
}

func TestMetricsNil(t *testing.T) {
	sim := modem.NewSimulator()
	e := startEngine(t, modem.NewConfigBuilder().WithDialer(sim))

	if err := e.Send(context.Background(), 3, "no metrics"); err != nil {
		t.Fatalf("unexpected error from Send(): %v", err)
	}
	waitFor(t, "send written", func() bool { return len(sim.Lines()) == 1 })
}
