package cps

import (
	"bufio"
	"context"
	"net"
	"sync"
	"time"

	"github.com/pior/cps/internal"
	"github.com/pior/cps/request"
)

var framePool = internal.NewBufferPool(1024)

// Connection is a single connection to one server. Exchanges are strictly
// request/response, so Execute serializes callers.
type Connection struct {
	addr            string
	conn            net.Conn
	reader          *bufio.Reader
	maxResponseSize int

	mu       sync.Mutex
	lastUsed time.Time
	closed   bool
}

// NewConnection wraps an established net.Conn.
// maxResponseSize <= 0 disables the response size limit.
func NewConnection(conn net.Conn, maxResponseSize int) *Connection {
	return newConnection(conn.RemoteAddr().String(), conn, maxResponseSize)
}

// newConnection names the connection after the configured server address
// rather than the resolved remote address.
func newConnection(addr string, conn net.Conn, maxResponseSize int) *Connection {
	return &Connection{
		addr:            addr,
		conn:            conn,
		reader:          bufio.NewReader(conn),
		maxResponseSize: maxResponseSize,
		lastUsed:        time.Now(),
	}
}

// Execute sends req and waits for the response.
//
// The context deadline, if any, bounds the whole exchange. On I/O or framing
// errors the connection closes itself; check IsClosed before reusing it.
func (c *Connection) Execute(ctx context.Context, req *request.Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrConnectionClosed
	}

	buf := framePool.Get()
	defer framePool.Put(buf)

	// Reserve the header, serialize the body after it, then patch the length.
	var hdr [HeaderSize]byte
	buf.Write(hdr[:])
	if err := request.WriteRequest(buf, req); err != nil {
		return nil, &EncodeError{Err: err}
	}
	frame := buf.Bytes()
	internal.PutFrameHeader(frame, len(frame)-HeaderSize)

	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetDeadline(deadline)
	} else {
		c.conn.SetDeadline(time.Time{})
	}

	start := time.Now()

	if _, err := c.conn.Write(frame); err != nil {
		c.markClosed()
		return nil, &ConnectionError{Op: "write", Err: err}
	}

	body, err := readFrame(c.reader, c.maxResponseSize)
	if err != nil {
		c.markClosed()
		return nil, err
	}

	c.lastUsed = time.Now()

	return &Response{
		Command:  req.Command,
		Server:   c.addr,
		Body:     body,
		Sent:     len(frame),
		Duration: time.Since(start),
	}, nil
}

// LastUsed returns when the connection last completed an exchange.
func (c *Connection) LastUsed() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUsed
}

func (c *Connection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Connection) Addr() string {
	return c.addr
}

func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

// markClosed closes the underlying conn after a failed exchange (must be
// called with lock held).
func (c *Connection) markClosed() {
	if c.closed {
		return
	}
	c.closed = true
	_ = c.conn.Close()
}
