package modem_test

import (
	"io"

	gomock "go.uber.org/mock/gomock"
	"i4.energy/across/loraterm/modem"
)

// MockSequenceBuilder scripts a module on a MockTransport: every expected
// command line, when written, releases its reply to the next Read.
type MockSequenceBuilder struct {
	transport *modem.MockTransport
	replies   chan string
	calls     []any
}

func NewMockSequence(transport *modem.MockTransport) *MockSequenceBuilder {
	return &MockSequenceBuilder{
		transport: transport,
		replies:   make(chan string, 64),
		calls:     []any{},
	}
}

// Expect adds a command line and the module's reply to it.
func (b *MockSequenceBuilder) Expect(line, reply string) *MockSequenceBuilder {
	b.calls = append(b.calls,
		b.transport.EXPECT().Write([]byte(line)).DoAndReturn(func(p []byte) (int, error) {
			if reply != "" {
				b.replies <- reply
			}
			return len(p), nil
		}),
	)
	return b
}

// ExpectLast is Expect for the final command. After its reply the
// transport reports EOF so Loop returns.
func (b *MockSequenceBuilder) ExpectLast(line, reply string) *MockSequenceBuilder {
	b.calls = append(b.calls,
		b.transport.EXPECT().Write([]byte(line)).DoAndReturn(func(p []byte) (int, error) {
			b.replies <- reply
			close(b.replies)
			return len(p), nil
		}),
	)
	return b
}

func (b *MockSequenceBuilder) Startup() *MockSequenceBuilder {
	return b.
		Expect("AT+IPR=115200\r\n", "+OK\r\n").
		Expect("AT+ADDRESS=0\r\n", "+OK\r\n").
		Expect("AT+NETWORKID=18\r\n", "+OK\r\n").
		Expect("AT+BAND=915000000\r\n", "+OK\r\n").
		Expect("AT+CRFOP=22\r\n", "+OK\r\n").
		Expect("AT+PARAMETER=9,7,1,12\r\n", "+OK\r\n").
		Expect("AT+ADDRESS?\r\n", "+ADDRESS=0\r\n").
		Expect("AT+BAND?\r\n", "+BAND=915000000\r\n").
		Expect("AT+CRFOP?\r\n", "+CRFOP=22\r\n").
		Expect("AT+MODE=0\r\n", "+OK\r\n").
		Expect("AT+PARAMETER?\r\n", "+PARAMETER=9,7,1,12\r\n").
		Expect("AT+UID?\r\n", "+UID=104A1A2B\r\n").
		Expect("AT+VER?\r\n", "+VER=RYLR998_REYAX_V1.2.2\r\n").
		Expect("AT+NETWORKID?\r\n", "+NETWORKID=18\r\n").
		Expect("AT+IPR?\r\n", "+IPR=115200\r\n")
}

// Build returns the ordered Write expectations. Reads are served from the
// replies released by those writes.
func (b *MockSequenceBuilder) Build() []any {
	b.transport.EXPECT().Read(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
		reply, ok := <-b.replies
		if !ok {
			return 0, io.EOF
		}
		return copy(p, reply), nil
	}).AnyTimes()
	return b.calls
}
