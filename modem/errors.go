package modem

import "errors"

var (
	// ErrNoDialer is returned when an Engine is constructed without a Dialer.
	//
	// This indicates a configuration error. A Dialer is required in order to
	// establish a connection to the module.
	ErrNoDialer = errors.New("no dialer configured")

	// ErrNotInitialized is returned when an operation is attempted on an
	// Engine that has no transport.
	ErrNotInitialized = errors.New("radio not initialized")

	// ErrAlreadyClosed is returned when Close is called on an Engine that has
	// already been closed, or when work is submitted after Close.
	ErrAlreadyClosed = errors.New("radio already closed")

	// ErrLoopRunning is returned when Loop is called while another Loop is
	// still running.
	ErrLoopRunning = errors.New("loop already running")

	// ErrEmptyBuffer is returned when a Send is requested from an empty
	// transmit buffer.
	ErrEmptyBuffer = errors.New("transmit buffer is empty")

	// ErrPayloadTooLong is returned when a payload exceeds what the module
	// accepts in a single SEND.
	ErrPayloadTooLong = errors.New("payload too long")

	// ErrNoPortName is returned by SerialDialer without a device path.
	ErrNoPortName = errors.New("lora: serial port name is required")

	// ErrNilContext is returned by SerialDialer when dialed with a nil context.
	ErrNilContext = errors.New("lora: context is nil")

	// ErrLineBreak is returned for a payload holding CR or LF, which would
	// end the SEND command early.
	ErrLineBreak = errors.New("payload contains a line break")

	// ErrCommandTimeout is reported when a command gets no reply within the
	// configured command timeout.
	ErrCommandTimeout = errors.New("command timed out")

	// ErrInvalidSetting is returned when a radio setting is out of range.
	ErrInvalidSetting = errors.New("invalid radio setting")

	// ErrUnknownCommand is returned for an operator command that does not
	// map to an intent.
	ErrUnknownCommand = errors.New("unknown command")
)
