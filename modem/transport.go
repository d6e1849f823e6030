package modem

//go:generate go tool mockgen -source=transport.go -destination=mock_transport.go -package=modem

import (
	"context"
	"fmt"
	"io"
	"sort"

	"go.bug.st/serial"
)

// Transport represents an established, bidirectional byte stream to a LoRa
// module.
//
// A Transport is assumed to be already connected and ready for use. Typical
// implementations are serial ports, the in-memory Simulator, or fakes used
// for testing.
type Transport interface {
	io.ReadWriteCloser
}

// Dialer opens a Transport to a LoRa module.
//
// Dialer abstracts how the connection is created and is used during engine
// construction only. Once a Transport is obtained, the Dialer is no longer
// needed.
type Dialer interface {
	// Dial creates and returns a connected Transport. It may block and should
	// respect cancellation provided by the context.
	Dial(ctx context.Context) (Transport, error)
}

// BaudRates lists the UART speeds the module supports.
var BaudRates = []int{300, 1200, 4800, 9600, 19200, 28800, 38400, 57600, 115200}

// DefaultBaudRate is the module's factory UART speed.
const DefaultBaudRate = 115200

// SerialDialer opens a LoRa module over a serial port using go.bug.st/serial.
type SerialDialer struct {
	// PortName is the device path, e.g. /dev/ttyS0 or COM3.
	PortName string
	// Mode overrides the port settings. Nil means DefaultBaudRate 8N1.
	Mode *serial.Mode
}

func (d SerialDialer) Dial(ctx context.Context) (Transport, error) {
	if d.PortName == "" {
		return nil, ErrNoPortName
	}
	if ctx == nil {
		return nil, ErrNilContext
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mode := d.Mode
	if mode == nil {
		mode = SerialMode(DefaultBaudRate)
	}

	port, err := serial.Open(d.PortName, mode)
	if err != nil {
		return nil, fmt.Errorf("lora: open %s: %w", d.PortName, err)
	}
	return port, nil
}

// SerialMode is the module's framing: 8 data bits, no parity, 1 stop bit.
func SerialMode(baud int) *serial.Mode {
	return &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// ListPorts returns the serial ports present on the host, sorted.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("lora: list serial ports: %w", err)
	}
	sort.Strings(ports)
	return ports, nil
}
