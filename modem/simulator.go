package modem

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"i4.energy/across/loraterm/at"
)

// Simulator is an in-memory Transport that answers like a module. It is
// also a Dialer that hands out itself.
type Simulator struct {
	mu       sync.Mutex
	values   map[string]string
	inbuf    []byte
	lines    []string
	muted    map[string]bool
	loopback bool

	out       chan []byte
	done      chan struct{}
	closeOnce sync.Once

	readMu  sync.Mutex
	pending []byte
}

// NewSimulator returns a simulator with factory settings.
func NewSimulator() *Simulator {
	s := &Simulator{
		muted: make(map[string]bool),
		out:   make(chan []byte, 256),
		done:  make(chan struct{}),
	}
	s.factory()
	return s
}

func (s *Simulator) factory() {
	s.values = map[string]string{
		at.CmdAddress:   "0",
		at.CmdNetworkID: "18",
		at.CmdBand:      "915000000",
		at.CmdPower:     "22",
		at.CmdMode:      "0",
		at.CmdParameter: "9,7,1,12",
		at.CmdBaudRate:  "115200",
		at.CmdUID:       "000000000000000012345678",
		at.CmdVersion:   "RYLR998_SIM_V1.0.0",
	}
}

// Dial implements Dialer.
func (s *Simulator) Dial(ctx context.Context) (Transport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

// SetLoopback makes every SEND come back as a receive event from the
// simulator's own address.
func (s *Simulator) SetLoopback(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loopback = on
}

// Mute stops the simulator from answering the named command.
func (s *Simulator) Mute(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.muted[name] = true
}

// Lines returns every command line written so far, without terminators.
func (s *Simulator) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

// Inject delivers a receive event as if a packet had arrived over the air.
func (s *Simulator) Inject(from uint16, payload string, rssi, snr int) {
	s.Emit(fmt.Sprintf("+RCV=%d,%d,%s,%d,%d\r\n", from, len(payload), payload, rssi, snr))
}

// Emit queues raw bytes for Read.
func (s *Simulator) Emit(raw string) {
	select {
	case s.out <- []byte(raw):
	case <-s.done:
	}
}

func (s *Simulator) Write(p []byte) (int, error) {
	select {
	case <-s.done:
		return 0, io.ErrClosedPipe
	default:
	}

	s.mu.Lock()
	s.inbuf = append(s.inbuf, p...)
	var replies []string
	for {
		advance, token, _ := at.Splitter(s.inbuf, false)
		if advance == 0 {
			break
		}
		line := string(token)
		s.inbuf = s.inbuf[advance:]
		s.lines = append(s.lines, line)
		if reply := s.answer(line); reply != "" {
			replies = append(replies, reply)
		}
	}
	s.mu.Unlock()

	for _, r := range replies {
		s.Emit(r)
	}
	return len(p), nil
}

func (s *Simulator) Read(p []byte) (int, error) {
	s.readMu.Lock()
	defer s.readMu.Unlock()
	if len(s.pending) == 0 {
		select {
		case chunk := <-s.out:
			s.pending = chunk
		case <-s.done:
			return 0, io.EOF
		}
	}
	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

func (s *Simulator) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	return nil
}

// answer builds the module's reply to one command line. Callers hold mu.
func (s *Simulator) answer(line string) string {
	cmd, ok := at.ParseCommandLine(line)
	if !ok {
		return "+ERR=2\r\n"
	}
	if s.muted[cmd.Name] {
		return ""
	}
	if cmd.Name == "" {
		return "+OK\r\n"
	}

	if cmd.Query {
		v, known := s.values[cmd.Name]
		if !known {
			return "+ERR=4\r\n"
		}
		return "+" + cmd.Name + "=" + v + "\r\n"
	}

	switch cmd.Name {
	case at.CmdFactory:
		s.factory()
		return "+FACTORY\r\n"
	case at.CmdReset:
		return "+RESET\r\n+READY\r\n"
	case at.CmdSend:
		return s.send(cmd.Value)
	case at.CmdUID, at.CmdVersion:
		return "+ERR=4\r\n"
	}

	if _, known := s.values[cmd.Name]; !known {
		return "+ERR=4\r\n"
	}
	if cmd.Value == "" {
		return "+ERR=4\r\n"
	}
	s.values[cmd.Name] = cmd.Value
	return "+OK\r\n"
}

func (s *Simulator) send(value string) string {
	parts := strings.SplitN(value, ",", 3)
	if len(parts) != 3 {
		return "+ERR=4\r\n"
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil || n != len(parts[2]) {
		return "+ERR=5\r\n"
	}
	if n > at.MaxPayloadLength {
		return "+ERR=13\r\n"
	}
	reply := "+OK\r\n"
	if s.loopback {
		reply += fmt.Sprintf("+RCV=%s,%d,%s,-40,11\r\n", s.values[at.CmdAddress], n, parts[2])
	}
	return reply
}
