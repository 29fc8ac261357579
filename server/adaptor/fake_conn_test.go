package adaptor

import (
	"bytes"
	"io"
	"log/slog"
	"net"
	"time"
)

// fakeConn records writes and can be made to fail them. Only the methods
// Connection uses outside the reader goroutine are implemented.
type fakeConn struct {
	net.Conn
	written  bytes.Buffer
	writeErr error
	closed   bool
	port     int
}

func (f *fakeConn) Write(b []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	return f.written.Write(b)
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

func (f *fakeConn) SetWriteDeadline(time.Time) error {
	return nil
}

func (f *fakeConn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: f.port}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
