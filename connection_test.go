package cps

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pior/cps/internal"
	"github.com/pior/cps/internal/testutils"
	"github.com/pior/cps/request"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

func TestNewConnection(t *testing.T) {
	mock := testutils.NewConnectionMock()
	conn := NewConnection(mock, 0)

	assert.Equal(t, "127.0.0.1:5550", conn.Addr())
	assert.False(t, conn.IsClosed())
	assert.False(t, conn.LastUsed().IsZero())
}

func TestConnectionExecute(t *testing.T) {
	mock := testutils.NewConnectionMock("<status>ok</status>")
	conn := newConnection("search-1:5550", mock, 0)

	resp, err := conn.Execute(context.Background(), request.Status())
	require.NoError(t, err)

	assert.Equal(t, request.CmdStatus, resp.Command)
	assert.Equal(t, "search-1:5550", resp.Server)
	assert.Equal(t, "<status>ok</status>", string(resp.Body))

	body := xmlHeader + "<status></status>"
	assert.Equal(t, []string{body}, mock.WrittenBodies())
	assert.Equal(t, HeaderSize+len(body), resp.Sent)
	assert.False(t, conn.IsClosed())
}

func TestConnectionExecuteFrameHeader(t *testing.T) {
	mock := testutils.NewConnectionMock("")
	conn := NewConnection(mock, 0)

	_, err := conn.Execute(context.Background(), request.Retrieve("doc-1"))
	require.NoError(t, err)

	written := mock.GetWrittenRequest()
	require.GreaterOrEqual(t, len(written), HeaderSize)

	magic, size := internal.ParseFrameHeader(written)
	assert.Equal(t, HeaderMagic, magic)
	assert.Equal(t, len(written)-HeaderSize, int(size))
}

func TestConnectionExecuteSequential(t *testing.T) {
	mock := testutils.NewConnectionMock("<a/>", "<b/>")
	conn := NewConnection(mock, 0)
	ctx := context.Background()

	first, err := conn.Execute(ctx, request.BeginTransaction())
	require.NoError(t, err)
	second, err := conn.Execute(ctx, request.CommitTransaction())
	require.NoError(t, err)

	assert.Equal(t, "<a/>", string(first.Body))
	assert.Equal(t, "<b/>", string(second.Body))
	assert.Len(t, mock.WrittenBodies(), 2)
}

func TestConnectionExecuteEncodeErrorKeepsConnection(t *testing.T) {
	mock := testutils.NewConnectionMock("<status/>")
	conn := NewConnection(mock, 0)

	req := request.New(request.CmdSearch)
	req.Params.Set("1bad", "x")

	_, err := conn.Execute(context.Background(), req)

	var encErr *EncodeError
	require.ErrorAs(t, err, &encErr)
	assert.False(t, ShouldCloseConnection(err))
	assert.False(t, conn.IsClosed())
	assert.Empty(t, mock.GetWrittenRequest(), "nothing is sent for a rejected request")

	_, err = conn.Execute(context.Background(), request.Status())
	require.NoError(t, err)
}

func TestConnectionExecuteWriteError(t *testing.T) {
	mock := testutils.NewConnectionMock()
	mock.WriteErr = errors.New("broken pipe")
	conn := NewConnection(mock, 0)

	_, err := conn.Execute(context.Background(), request.Status())

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "write", connErr.Op)
	assert.True(t, conn.IsClosed())
	assert.True(t, mock.IsClosed())

	_, err = conn.Execute(context.Background(), request.Status())
	assert.ErrorIs(t, err, ErrConnectionClosed)
}

func TestConnectionExecuteFrameErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		maxSize int
		wantErr any
	}{
		{
			name:    "no response",
			data:    nil,
			wantErr: &ConnectionError{},
		},
		{
			name:    "bad magic",
			data:    []byte{0xff, 0xff, 0xff, 0xff, 0, 0, 0, 0},
			wantErr: &FrameError{},
		},
		{
			name:    "oversized",
			data:    internal.AppendFrame(nil, []byte("0123456789")),
			maxSize: 4,
			wantErr: &FrameError{},
		},
		{
			name:    "truncated body",
			data:    internal.AppendFrame(nil, []byte("0123456789"))[:HeaderSize+3],
			wantErr: &FrameError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutils.NewRawConnectionMock(tt.data)
			conn := NewConnection(mock, tt.maxSize)

			_, err := conn.Execute(context.Background(), request.Status())
			require.Error(t, err)

			switch tt.wantErr.(type) {
			case *ConnectionError:
				var target *ConnectionError
				assert.ErrorAs(t, err, &target)
			case *FrameError:
				var target *FrameError
				assert.ErrorAs(t, err, &target)
			}
			assert.True(t, ShouldCloseConnection(err))
			assert.True(t, conn.IsClosed())
		})
	}
}

func TestConnectionExecuteCancelledContext(t *testing.T) {
	mock := testutils.NewConnectionMock("<status/>")
	conn := NewConnection(mock, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := conn.Execute(ctx, request.Status())
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, conn.IsClosed())
	assert.Empty(t, mock.GetWrittenRequest())
}

func TestConnectionClose(t *testing.T) {
	mock := testutils.NewConnectionMock()
	conn := NewConnection(mock, 0)

	require.NoError(t, conn.Close())
	assert.True(t, conn.IsClosed())
	assert.True(t, mock.IsClosed())

	// Closing again is a no-op
	require.NoError(t, conn.Close())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := conn.Execute(ctx, request.Status())
	assert.ErrorIs(t, err, ErrConnectionClosed)
}
