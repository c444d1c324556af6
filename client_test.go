package cps

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pior/cps/internal/testutils"
	"github.com/pior/cps/request"
)

// mockDialer hands out queued mock connections and records dialed addresses.
type mockDialer struct {
	mu    sync.Mutex
	conns []*testutils.ConnectionMock
	err   error
	addrs []string
}

func (d *mockDialer) dial(ctx context.Context, addr string) (net.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.addrs = append(d.addrs, addr)
	if d.err != nil {
		return nil, d.err
	}
	if len(d.conns) == 0 {
		return nil, errors.New("no more mock connections")
	}
	conn := d.conns[0]
	d.conns = d.conns[1:]
	return conn, nil
}

func (d *mockDialer) dialed() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.addrs...)
}

func newTestClient(t *testing.T, dialer *mockDialer, config Config, addrs ...string) *Client {
	t.Helper()
	if len(addrs) == 0 {
		addrs = []string{"search-1:5550"}
	}
	config.dial = dialer.dial
	client, err := NewClient(NewStaticServers(addrs...), config)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestNewClientNoServers(t *testing.T) {
	_, err := NewClient(NewStaticServers(), Config{})
	assert.ErrorIs(t, err, ErrNoServers)
}

func TestClientDo(t *testing.T) {
	mock := testutils.NewConnectionMock("<hits>1</hits>")
	dialer := &mockDialer{conns: []*testutils.ConnectionMock{mock}}
	client := newTestClient(t, dialer, Config{Storage: "books"})

	resp, err := client.Do(context.Background(), request.Search("tolkien"))
	require.NoError(t, err)

	assert.Equal(t, "<hits>1</hits>", string(resp.Body))
	assert.Equal(t, "search-1:5550", resp.Server)
	assert.Equal(t, request.CmdSearch, resp.Command)
	assert.Equal(t, []string{xmlHeader + "<search><query>tolkien</query></search>"}, mock.WrittenBodies())

	stats := client.Stats()
	assert.Equal(t, uint64(1), stats.Requests)
	assert.Equal(t, uint64(0), stats.Errors)
	assert.Equal(t, uint64(1), stats.Dials)
	assert.Equal(t, uint64(resp.Sent), stats.BytesSent)
	assert.Equal(t, uint64(HeaderSize+len(resp.Body)), stats.BytesReceived)
}

func TestClientReusesConnection(t *testing.T) {
	mock := testutils.NewConnectionMock("<ok/>", "<ok/>", "<ok/>")
	dialer := &mockDialer{conns: []*testutils.ConnectionMock{mock}}
	client := newTestClient(t, dialer, Config{})
	ctx := context.Background()

	require.NoError(t, client.Ping(ctx))
	_, err := client.Do(ctx, request.BeginTransaction())
	require.NoError(t, err)
	_, err = client.Do(ctx, request.CommitTransaction())
	require.NoError(t, err)

	assert.Len(t, dialer.dialed(), 1)
	assert.Len(t, mock.WrittenBodies(), 3)
}

func TestClientRedialsAfterConnectionFailure(t *testing.T) {
	broken := testutils.NewConnectionMock()
	broken.WriteErr = errors.New("connection reset by peer")
	healthy := testutils.NewConnectionMock("<ok/>")
	dialer := &mockDialer{conns: []*testutils.ConnectionMock{broken, healthy}}
	client := newTestClient(t, dialer, Config{})
	ctx := context.Background()

	_, err := client.Do(ctx, request.Status())
	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.True(t, broken.IsClosed())

	// The failed request is not retried; the next one dials again.
	assert.Len(t, dialer.dialed(), 1)

	resp, err := client.Do(ctx, request.Status())
	require.NoError(t, err)
	assert.Equal(t, "<ok/>", string(resp.Body))
	assert.Len(t, dialer.dialed(), 2)

	stats := client.Stats()
	assert.Equal(t, uint64(2), stats.Requests)
	assert.Equal(t, uint64(1), stats.Errors)
	assert.Equal(t, uint64(2), stats.Dials)
}

func TestClientKeepsConnectionAfterEncodeError(t *testing.T) {
	mock := testutils.NewConnectionMock("<ok/>")
	dialer := &mockDialer{conns: []*testutils.ConnectionMock{mock}}
	client := newTestClient(t, dialer, Config{})
	ctx := context.Background()

	bad := request.New(request.CmdSearch)
	bad.Params.Set("has space", "x")
	_, err := client.Do(ctx, bad)

	var nameErr *request.InvalidNameError
	require.ErrorAs(t, err, &nameErr)

	_, err = client.Do(ctx, request.Status())
	require.NoError(t, err)
	assert.Len(t, dialer.dialed(), 1)
}

func TestClientDialError(t *testing.T) {
	dialer := &mockDialer{err: errors.New("connection refused")}
	client := newTestClient(t, dialer, Config{})

	_, err := client.Do(context.Background(), request.Status())

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "dial", connErr.Op)

	stats := client.Stats()
	assert.Equal(t, uint64(1), stats.DialErrors)
	assert.Equal(t, uint64(0), stats.Dials)
	assert.Equal(t, uint64(1), stats.Errors)
}

func TestClientRoutesByStorage(t *testing.T) {
	servers := []string{"search-1:5550", "search-2:5550", "search-3:5550"}
	want, err := DefaultSelectServer("library", servers)
	require.NoError(t, err)

	dialer := &mockDialer{conns: []*testutils.ConnectionMock{
		testutils.NewConnectionMock("<ok/>", "<ok/>"),
	}}
	client := newTestClient(t, dialer, Config{Storage: "library"}, servers...)
	ctx := context.Background()

	resp, err := client.Do(ctx, request.BeginTransaction())
	require.NoError(t, err)
	assert.Equal(t, want, resp.Server)

	resp, err = client.Do(ctx, request.RollbackTransaction())
	require.NoError(t, err)
	assert.Equal(t, want, resp.Server)

	assert.Equal(t, []string{want}, dialer.dialed())
}

func TestClientCustomSelectServer(t *testing.T) {
	dialer := &mockDialer{conns: []*testutils.ConnectionMock{testutils.NewConnectionMock("<ok/>")}}
	client := newTestClient(t, dialer, Config{
		SelectServer: func(key string, servers []string) (string, error) {
			return servers[len(servers)-1], nil
		},
	}, "a:1", "b:2")

	resp, err := client.Do(context.Background(), request.Status())
	require.NoError(t, err)
	assert.Equal(t, "b:2", resp.Server)
}

func TestClientClose(t *testing.T) {
	mock := testutils.NewConnectionMock("<ok/>")
	dialer := &mockDialer{conns: []*testutils.ConnectionMock{mock}}
	client := newTestClient(t, dialer, Config{})

	require.NoError(t, client.Ping(context.Background()))
	require.NoError(t, client.Close())
	assert.True(t, mock.IsClosed())

	_, err := client.Do(context.Background(), request.Status())
	assert.ErrorIs(t, err, ErrClientClosed)

	// Closing twice is a no-op
	require.NoError(t, client.Close())
}

func TestClientCloseDuringDo(t *testing.T) {
	mock := testutils.NewConnectionMock("<ok/>")
	dialer := &mockDialer{conns: []*testutils.ConnectionMock{mock}}

	// Close lands after Do passed its closed check but before it dials.
	var client *Client
	client = newTestClient(t, dialer, Config{
		SelectServer: func(key string, servers []string) (string, error) {
			require.NoError(t, client.Close())
			return servers[0], nil
		},
	})

	_, err := client.Do(context.Background(), request.Status())
	assert.ErrorIs(t, err, ErrClientClosed)
	assert.Empty(t, dialer.dialed(), "no connection may outlive Close")
}

func TestClientCircuitBreakerOpens(t *testing.T) {
	dialer := &mockDialer{err: errors.New("connection refused")}
	client := newTestClient(t, dialer, Config{
		NewCircuitBreaker: NewCircuitBreakerConfig(1, time.Minute, time.Minute),
	})
	ctx := context.Background()

	for range 3 {
		_, err := client.Do(ctx, request.Status())
		var connErr *ConnectionError
		require.ErrorAs(t, err, &connErr)
	}

	_, err := client.Do(ctx, request.Status())
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Len(t, dialer.dialed(), 3, "rejected requests must not dial")

	stats := client.Stats()
	assert.Equal(t, uint64(4), stats.Requests)
	assert.Equal(t, uint64(4), stats.Errors)
	assert.Equal(t, uint64(1), stats.CircuitRejections)
}

func TestClientRegistersCollector(t *testing.T) {
	registry := prometheus.NewRegistry()
	dialer := &mockDialer{conns: []*testutils.ConnectionMock{testutils.NewConnectionMock("<ok/>")}}
	client := newTestClient(t, dialer, Config{Registerer: registry})

	require.NoError(t, client.Ping(context.Background()))

	families, err := registry.Gather()
	require.NoError(t, err)

	values := make(map[string]float64)
	for _, mf := range families {
		values[mf.GetName()] = mf.GetMetric()[0].GetCounter().GetValue()
	}
	assert.Equal(t, float64(1), values["cps_client_requests_total"])
	assert.Equal(t, float64(0), values["cps_client_errors_total"])
	assert.Equal(t, float64(1), values["cps_client_dials_total"])
	assert.Contains(t, values, "cps_client_circuit_rejections_total")

	// A second client on the same registry collides
	_, err = NewClient(NewStaticServers("search-1:5550"), Config{Registerer: registry})
	assert.Error(t, err)
}
