package testutils

import (
	"bytes"
	"net"
	"sync"
	"time"

	"github.com/pior/cps/internal"
)

// ConnectionMock is a mock implementation of net.Conn for testing.
// Reads are served from pre-framed response bodies; writes are captured.
type ConnectionMock struct {
	mu       sync.Mutex
	readBuf  *bytes.Buffer
	writeBuf *bytes.Buffer
	closed   bool

	// WriteErr, when set, is returned by every Write call.
	WriteErr error
}

// NewConnectionMock creates a mock connection that answers with the given
// response bodies, each wrapped in a wire frame.
func NewConnectionMock(responseBodies ...string) *ConnectionMock {
	var framed []byte
	for _, body := range responseBodies {
		framed = internal.AppendFrame(framed, []byte(body))
	}
	return NewRawConnectionMock(framed)
}

// NewRawConnectionMock creates a mock connection that answers with data as-is.
func NewRawConnectionMock(data []byte) *ConnectionMock {
	return &ConnectionMock{
		readBuf:  bytes.NewBuffer(data),
		writeBuf: &bytes.Buffer{},
	}
}

func (m *ConnectionMock) Read(b []byte) (n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, net.ErrClosed
	}
	return m.readBuf.Read(b)
}

func (m *ConnectionMock) Write(b []byte) (n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, net.ErrClosed
	}
	if m.WriteErr != nil {
		return 0, m.WriteErr
	}
	return m.writeBuf.Write(b)
}

func (m *ConnectionMock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *ConnectionMock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *ConnectionMock) LocalAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0}
}

func (m *ConnectionMock) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 5550}
}

func (m *ConnectionMock) SetDeadline(t time.Time) error      { return nil }
func (m *ConnectionMock) SetReadDeadline(t time.Time) error  { return nil }
func (m *ConnectionMock) SetWriteDeadline(t time.Time) error { return nil }

// WrittenBodies splits the captured writes into frames and returns the
// bodies. Incomplete trailing data is ignored.
func (m *ConnectionMock) WrittenBodies() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var bodies []string
	data := m.writeBuf.Bytes()
	for len(data) >= internal.FrameHeaderSize {
		_, size := internal.ParseFrameHeader(data)
		end := internal.FrameHeaderSize + int(size)
		if end > len(data) {
			break
		}
		bodies = append(bodies, string(data[internal.FrameHeaderSize:end]))
		data = data[end:]
	}
	return bodies
}

// GetWrittenRequest returns the raw bytes written to the mock connection.
func (m *ConnectionMock) GetWrittenRequest() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return bytes.Clone(m.writeBuf.Bytes())
}
