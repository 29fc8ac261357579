package adaptor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/ponyo877/pushy/server/domain"
)

// ErrServerClosed is returned by inspection calls once Serve has returned.
var ErrServerClosed = errors.New("adaptor: server closed")

const maxAcceptBackoff = time.Second

type readResult struct {
	conn *Connection
	data []byte
	err  error
}

// Adaptor is the broker's event loop. Serve runs one goroutine that owns
// the Registry and every Session; accept and read goroutines only hand it
// ready work, so each step (accept, read, command, fan-out) runs alone.
type Adaptor struct {
	uc       Usecase
	cfg      domain.Config
	logger   *slog.Logger
	registry *Registry
	router   *Router
	now      func() time.Time

	accepts chan net.Conn
	reads   chan readResult
	calls   chan func()
	stopped chan struct{}
	started atomic.Bool
}

func NewAdaptor(uc Usecase, cfg domain.Config, logger *slog.Logger) *Adaptor {
	registry := NewRegistry()
	return &Adaptor{
		uc:       uc,
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		router:   NewRouter(registry, cfg.WriteTimeout, logger),
		now:      time.Now,
		accepts:  make(chan net.Conn),
		reads:    make(chan readResult),
		calls:    make(chan func()),
		stopped:  make(chan struct{}),
	}
}

// Serve runs the event loop on ln until ctx is cancelled. Cancellation stops
// accepting, closes ln and every open connection without notice, and
// returns nil. Serve may be called once.
func (a *Adaptor) Serve(ctx context.Context, ln net.Listener) error {
	if !a.started.CompareAndSwap(false, true) {
		return errors.New("adaptor: Serve called twice")
	}
	defer close(a.stopped)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.closeAll()
	defer ln.Close()

	acceptErrs := make(chan error, 1)
	go a.acceptLoop(ctx, ln, acceptErrs)

	a.logger.Info("pushy listening", "address", ln.Addr().String())
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("shutting down", "connections", a.registry.Len())
			return nil
		case err := <-acceptErrs:
			return fmt.Errorf("accept on %s: %w", ln.Addr(), err)
		case conn := <-a.accepts:
			a.accept(ctx, conn)
		case r := <-a.reads:
			a.handleRead(ctx, r)
		case fn := <-a.calls:
			fn()
		}
	}
}

// acceptLoop hands accepted connections to the loop one at a time.
func (a *Adaptor) acceptLoop(ctx context.Context, ln net.Listener, errs chan<- error) {
	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, net.ErrClosed) {
				errs <- err
				return
			}
			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else {
				backoff = min(2*backoff, maxAcceptBackoff)
			}
			a.logger.Warn("accept failed, retrying", "error", err, "backoff", backoff)
			select {
			case <-time.After(backoff):
				continue
			case <-ctx.Done():
				return
			}
		}
		backoff = 0

		select {
		case a.accepts <- conn:
		case <-ctx.Done():
			conn.Close()
			return
		}
	}
}

func (a *Adaptor) accept(ctx context.Context, conn net.Conn) {
	c := newConnection(conn, a.now())
	a.registry.Add(c)
	a.logger.Info("client connected",
		"connection", c.ID(),
		"remote", c.Session().Remote,
		"connections", a.registry.Len())
	go a.readLoop(ctx, c)
}

// readLoop performs one bounded read at a time and waits for the loop to
// take the result before reading again.
func (a *Adaptor) readLoop(ctx context.Context, c *Connection) {
	buf := make([]byte, a.cfg.ReadBufferSize)
	for {
		n, err := c.conn.Read(buf)
		result := readResult{conn: c, data: append([]byte(nil), buf[:n]...), err: err}
		select {
		case a.reads <- result:
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
		if err != nil || n == 0 {
			return
		}
	}
}

func (a *Adaptor) handleRead(ctx context.Context, r readResult) {
	// results can race with a drop made earlier in the same turn
	if !a.registry.Contains(r.conn) {
		return
	}
	if len(r.data) > 0 {
		a.interpret(ctx, r.conn, r.data)
	}
	if r.err != nil || len(r.data) == 0 {
		a.drop(r.conn, r.err)
	}
}

func (a *Adaptor) drop(c *Connection, err error) {
	if !a.registry.Drop(c) {
		return
	}
	attrs := []any{
		"connection", c.ID(),
		"remote", c.Session().Remote,
		"connections", a.registry.Len(),
	}
	if err == nil || isExpectedCloseError(err) {
		a.logger.Debug("client disconnected", attrs...)
		return
	}
	a.logger.Warn("client dropped", append(attrs, "error", err)...)
}

func (a *Adaptor) closeAll() {
	if n := a.registry.CloseAll(); n > 0 {
		a.logger.Info("closed open connections", "count", n)
	}
}

// inspect runs fn on the loop goroutine and waits for it to finish. ctx
// only bounds the hand-off; once the loop has fn, inspect waits for it.
func (a *Adaptor) inspect(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	call := func() {
		fn()
		close(done)
	}
	select {
	case a.calls <- call:
	case <-a.stopped:
		return ErrServerClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	// the loop runs fn as soon as it takes the call, so done always closes
	<-done
	return nil
}

// ConnectionCount reports how many connections are registered.
func (a *Adaptor) ConnectionCount(ctx context.Context) (int, error) {
	var n int
	err := a.inspect(ctx, func() { n = a.registry.Len() })
	return n, err
}

// IdentifiedChannels reports the channel of every identified connection.
func (a *Adaptor) IdentifiedChannels(ctx context.Context) ([]domain.ChannelID, error) {
	var ids []domain.ChannelID
	err := a.inspect(ctx, func() { ids = a.registry.IdentifiedChannels() })
	return ids, err
}
