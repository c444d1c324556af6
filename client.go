package cps

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/pior/cps/request"
)

// Config holds configuration for the client.
type Config struct {
	// Storage names the database the client works with. It is the routing
	// key for server selection.
	Storage string

	// DialTimeout bounds connection establishment.
	// Zero means DefaultDialTimeout.
	DialTimeout time.Duration

	// Dialer is the net.Dialer used to create new connections.
	// If nil, a net.Dialer with DialTimeout is used.
	Dialer *net.Dialer

	// MaxResponseSize rejects larger responses with a FrameError.
	// Zero means DefaultMaxResponseSize; negative disables the limit.
	MaxResponseSize int

	// SelectServer picks which server to use for the storage.
	// If nil, uses DefaultSelectServer.
	SelectServer SelectServerFunc

	// NewCircuitBreaker creates a circuit breaker for a server.
	// Called once per server address when its connection slot is created.
	// If nil, no circuit breaker is used.
	NewCircuitBreaker func(serverAddr string) *gobreaker.CircuitBreaker[*Response]

	// Logger receives connection and request events.
	// If nil, logging is disabled.
	Logger *zap.Logger

	// Registerer, when set, gets a Collector for this client registered.
	Registerer prometheus.Registerer

	// for testing purposes only
	dial func(ctx context.Context, addr string) (net.Conn, error)
}

// server holds the single connection to one server address.
type server struct {
	addr           string
	circuitBreaker *gobreaker.CircuitBreaker[*Response] // nil if not configured

	mu   sync.Mutex
	conn *Connection
}

// Client sends requests to the search engine. It keeps at most one
// connection per server and re-dials after a connection fails. Requests are
// never retried.
//
// Client is safe for concurrent use; requests to the same server are
// serialized on its connection.
type Client struct {
	servers         Servers
	storage         string
	selectServer    SelectServerFunc
	dial            func(ctx context.Context, addr string) (net.Conn, error)
	maxResponseSize int
	newBreaker      func(serverAddr string) *gobreaker.CircuitBreaker[*Response]
	logger          *zap.Logger

	mu     sync.RWMutex
	byAddr map[string]*server
	closed atomic.Bool
	stats  *clientStatsCollector
}

// NewClient creates a client for the given servers.
// For a single server, use: NewClient(NewStaticServers("host:port"), config)
func NewClient(servers Servers, config Config) (*Client, error) {
	if len(servers.List()) == 0 {
		return nil, ErrNoServers
	}

	selectServer := config.SelectServer
	if selectServer == nil {
		selectServer = DefaultSelectServer
	}

	dialTimeout := config.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = DefaultDialTimeout
	}

	dial := config.dial
	if dial == nil {
		dialer := config.Dialer
		if dialer == nil {
			dialer = &net.Dialer{Timeout: dialTimeout}
		}
		dial = func(ctx context.Context, addr string) (net.Conn, error) {
			return dialer.DialContext(ctx, "tcp", addr)
		}
	}

	maxResponseSize := config.MaxResponseSize
	if maxResponseSize == 0 {
		maxResponseSize = DefaultMaxResponseSize
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	client := &Client{
		servers:         servers,
		storage:         config.Storage,
		selectServer:    selectServer,
		dial:            dial,
		maxResponseSize: maxResponseSize,
		newBreaker:      config.NewCircuitBreaker,
		logger:          logger.With(zap.String("storage", config.Storage)),
		byAddr:          make(map[string]*server),
		stats:           newClientStatsCollector(),
	}

	if config.Registerer != nil {
		if err := config.Registerer.Register(NewCollector(client)); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	return client, nil
}

// Do sends req to the server owning the client's storage and returns the raw
// response.
func (c *Client) Do(ctx context.Context, req *request.Request) (*Response, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}

	srv, err := c.serverForStorage()
	if err != nil {
		return nil, err
	}

	log := c.logger.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("command", req.Command.String()),
		zap.String("server", srv.addr),
	)

	resp, err := c.execute(ctx, srv, req)
	c.stats.recordRequest(resp, err)

	if err != nil {
		log.Warn("request failed", zap.Error(err))
		return nil, err
	}

	log.Debug("request completed",
		zap.Int("sent_bytes", resp.Sent),
		zap.Int("received_bytes", len(resp.Body)),
		zap.Duration("duration", resp.Duration),
	)
	return resp, nil
}

// Ping sends a status request and discards the response body.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Do(ctx, request.Status())
	return err
}

// Stats returns a snapshot of client statistics.
func (c *Client) Stats() ClientStats {
	return c.stats.snapshot()
}

// Close closes all connections. Subsequent calls to Do fail with
// ErrClientClosed.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for _, srv := range c.byAddr {
		if err := srv.close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Client) execute(ctx context.Context, srv *server, req *request.Request) (*Response, error) {
	if srv.circuitBreaker == nil {
		return c.executeOnServer(ctx, srv, req)
	}

	resp, err := srv.circuitBreaker.Execute(func() (*Response, error) {
		return c.executeOnServer(ctx, srv, req)
	})
	if isBreakerRejection(err) {
		c.stats.recordCircuitRejection()
		return nil, fmt.Errorf("%w: %s: %w", ErrCircuitOpen, srv.addr, err)
	}
	return resp, err
}

func (c *Client) executeOnServer(ctx context.Context, srv *server, req *request.Request) (*Response, error) {
	conn, err := c.connection(ctx, srv)
	if err != nil {
		return nil, err
	}

	resp, err := conn.Execute(ctx, req)
	if err != nil && conn.IsClosed() {
		srv.discard(conn)
		c.logger.Debug("connection discarded", zap.String("server", srv.addr), zap.Error(err))
	}
	return resp, err
}

// connection returns the live connection to srv, dialing when there is none.
func (c *Client) connection(ctx context.Context, srv *server) (*Connection, error) {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	// Close sets closed before taking each srv.mu, so a connection created
	// past this check is always seen and closed by it.
	if c.closed.Load() {
		return nil, ErrClientClosed
	}

	if srv.conn != nil && !srv.conn.IsClosed() {
		return srv.conn, nil
	}

	netConn, err := c.dial(ctx, srv.addr)
	c.stats.recordDial(err)
	if err != nil {
		return nil, &ConnectionError{Op: "dial", Err: err}
	}

	srv.conn = newConnection(srv.addr, netConn, c.maxResponseSize)
	c.logger.Debug("connection established", zap.String("server", srv.addr))
	return srv.conn, nil
}

// serverForStorage picks the server address for the client's storage.
// Uses the configured SelectServer function with the current server list.
func (c *Client) serverForStorage() (*server, error) {
	addr, err := c.selectServer(c.storage, c.servers.List())
	if err != nil {
		return nil, err
	}
	return c.getOrCreateServer(addr), nil
}

// getOrCreateServer gets or creates the connection slot for addr.
func (c *Client) getOrCreateServer(addr string) *server {
	// Fast path: read lock
	c.mu.RLock()
	srv, exists := c.byAddr[addr]
	c.mu.RUnlock()
	if exists {
		return srv
	}

	// Slow path: write lock and create
	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if srv, exists := c.byAddr[addr]; exists {
		return srv
	}

	srv = &server{addr: addr}
	if c.newBreaker != nil {
		srv.circuitBreaker = c.newBreaker(addr)
	}
	c.byAddr[addr] = srv
	return srv
}

func (s *server) discard(conn *Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == conn {
		s.conn = nil
	}
}

func (s *server) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
