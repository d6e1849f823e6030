package modem

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"i4.energy/across/loraterm/at"
)

// Metrics counts protocol traffic. A nil *Metrics records nothing.
type Metrics struct {
	Responses      *prometheus.CounterVec
	Dispatched     *prometheus.CounterVec
	ModuleErrors   *prometheus.CounterVec
	NoiseBytes     prometheus.Counter
	Overflows      prometheus.Counter
	DecodeErrors   prometheus.Counter
	Timeouts       prometheus.Counter
	BytesReceived  prometheus.Counter
	QueueDepth     prometheus.Gauge
	LastRSSI       prometheus.Gauge
	LastSNR        prometheus.Gauge
	ReceivedFrames prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lora_responses_total",
			Help: "Completed response lines by tag.",
		}, []string{"tag"}),
		Dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lora_commands_dispatched_total",
			Help: "AT commands written to the module by command name.",
		}, []string{"command"}),
		ModuleErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lora_module_errors_total",
			Help: "+ERR replies by code.",
		}, []string{"code"}),
		NoiseBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lora_noise_bytes_total",
			Help: "Bytes dropped while matching a response tag.",
		}),
		Overflows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lora_value_overflows_total",
			Help: "Response lines discarded for exceeding 240 value bytes.",
		}),
		DecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lora_decode_errors_total",
			Help: "Response lines whose value did not decode.",
		}),
		Timeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lora_command_timeouts_total",
			Help: "Commands abandoned after the command timeout.",
		}),
		BytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lora_serial_bytes_received_total",
			Help: "Bytes read from the serial link.",
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lora_command_queue_depth",
			Help: "Intents waiting to be dispatched.",
		}),
		LastRSSI: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lora_last_rssi_dbm",
			Help: "RSSI of the last received packet.",
		}),
		LastSNR: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lora_last_snr_db",
			Help: "SNR of the last received packet.",
		}),
		ReceivedFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lora_packets_received_total",
			Help: "Radio packets delivered by the module.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.Responses,
			m.Dispatched,
			m.ModuleErrors,
			m.NoiseBytes,
			m.Overflows,
			m.DecodeErrors,
			m.Timeouts,
			m.BytesReceived,
			m.QueueDepth,
			m.LastRSSI,
			m.LastSNR,
			m.ReceivedFrames,
		)
	}
	return m
}

func (m *Metrics) response(r at.Response) {
	if m == nil {
		return
	}
	m.Responses.WithLabelValues(r.Tag().String()).Inc()
	switch v := r.(type) {
	case at.Malformed:
		m.DecodeErrors.Inc()
	case at.Error:
		m.ModuleErrors.WithLabelValues(strconv.Itoa(int(v.Code))).Inc()
	case at.Received:
		m.ReceivedFrames.Inc()
		m.LastRSSI.Set(float64(v.Message.RSSI))
		m.LastSNR.Set(float64(v.Message.SNR))
	}
}

func (m *Metrics) parser(delta at.Stats) {
	if m == nil {
		return
	}
	if delta.Noise > 0 {
		m.NoiseBytes.Add(float64(delta.Noise))
	}
	if delta.Overflows > 0 {
		m.Overflows.Add(float64(delta.Overflows))
	}
}

func (m *Metrics) dispatched(i Intent) {
	if m == nil {
		return
	}
	m.Dispatched.WithLabelValues(commandName(i)).Inc()
}

func (m *Metrics) timeout() {
	if m == nil {
		return
	}
	m.Timeouts.Inc()
}

func (m *Metrics) received(n int) {
	if m == nil {
		return
	}
	m.BytesReceived.Add(float64(n))
}

func (m *Metrics) queueDepth(n int) {
	if m == nil {
		return
	}
	m.QueueDepth.Set(float64(n))
}
