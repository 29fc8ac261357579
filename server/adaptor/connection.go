package adaptor

import (
	"errors"
	"io"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/ponyo877/pushy/server/domain"
)

// Connection is one accepted stream and its Session. Only the event loop
// mutates it; the reader goroutine touches nothing but conn.Read and done.
type Connection struct {
	conn    net.Conn
	session *domain.Session
	done    chan struct{}
	closed  bool
}

func newConnection(conn net.Conn, connectedAt time.Time) *Connection {
	remote := "unknown"
	if addr := conn.RemoteAddr(); addr != nil {
		remote = addr.String()
	}
	return &Connection{
		conn:    conn,
		session: domain.NewSession(ulid.Make().String(), remote, connectedAt),
		done:    make(chan struct{}),
	}
}

func (c *Connection) ID() string {
	return c.session.ID
}

func (c *Connection) Session() *domain.Session {
	return c.session
}

// Send writes one newline-terminated line. A non-zero timeout bounds the
// write; expiry is reported like any other write fault.
func (c *Connection) Send(line string, timeout time.Duration) error {
	if c.closed {
		return net.ErrClosed
	}
	if timeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
			return err
		}
	}
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	_, err := io.WriteString(c.conn, line)
	return err
}

// Close is idempotent. It releases the reader goroutine through done.
func (c *Connection) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.done)
	return c.conn.Close()
}

// isExpectedCloseError reports whether err is a normal peer hang-up: EOF,
// closed connection, broken pipe, or connection reset.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.EPIPE || errno == syscall.ECONNRESET
	}
	return false
}
