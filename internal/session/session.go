// Package session owns the link to one LED controller: the socket, its
// Disconnected → Connecting → Connected lifecycle, the inbound listener
// goroutine and the last color the controller reported.
//
// A Session never reconnects on its own.  When the link drops it goes
// back to Disconnected and stays there until the caller connects again.
package session

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"piled/config"
	perr "piled/internal/errors"
	"piled/internal/metrics"
	"piled/internal/protocol"
	"piled/internal/transport"
	"piled/util"
)

// State is the connection lifecycle state.
type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// MarshalText renders the state by name in JSON output.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Options configures a Session.  The zero value dials plain TCP with
// the default connect timeout.
type Options struct {
	// Dialer opens the byte stream; nil means a direct TCP dial.
	Dialer transport.Dialer

	// Timeout bounds Connect.  0 uses config.DefaultConnTimeout.
	Timeout time.Duration

	// ReadIdleTimeout drops the link when nothing arrives for this
	// long.  0 waits forever.
	ReadIdleTimeout time.Duration

	// VerifyInbound drops inbound frames whose tag does not verify
	// against the shared secret.
	VerifyInbound bool

	// OptimisticColor records the color of a successful SetColor
	// before the controller confirms it.
	OptimisticColor bool

	// OnColor is called from the dispatch goroutine for every
	// ColorChangedPush, after the session state is updated.  It may
	// call back into the Session, including Disconnect.
	OnColor func(protocol.Color)

	Logger  *util.Logger
	Metrics *metrics.Collector

	// Now stamps outbound frames; nil means time.Now.
	Now func() time.Time
}

// Snapshot is a consistent copy of the session's observable state.
type Snapshot struct {
	ID          uuid.UUID      `json:"id"`
	State       State          `json:"state"`
	Addr        string         `json:"addr,omitempty"`
	Color       protocol.Color `json:"-"`
	HaveColor   bool           `json:"have_color"`
	ConnectedAt time.Time      `json:"-"`
	LastPush    time.Time      `json:"-"`
}

// Session is a single controller link.  All methods are safe for
// concurrent use.
type Session struct {
	id      uuid.UUID
	store   config.Store
	opts    Options
	logger  *util.Logger
	metrics *metrics.Collector

	mu          sync.RWMutex
	state       State
	gen         uint64 // bumped on every connect and teardown
	addr        string
	conn        net.Conn
	stop        chan struct{}
	done        chan struct{}
	color       protocol.Color
	haveColor   bool
	connectedAt time.Time
	lastPush    time.Time

	// writeMu keeps each frame contiguous on the wire.
	writeMu sync.Mutex
}

// New returns a disconnected Session that reads its shared secret from
// store before every command.
func New(store config.Store, opts Options) *Session {
	if opts.Dialer == nil {
		opts.Dialer = &transport.TCPDialer{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = config.DefaultConnTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	id := uuid.New()
	return &Session{
		id:      id,
		store:   store,
		opts:    opts,
		logger:  opts.Logger.Named("session " + id.String()[:8]),
		metrics: opts.Metrics,
	}
}

// ID identifies the session in logs and status output.
func (s *Session) ID() uuid.UUID { return s.id }

// Connect opens the link to host:port, starts the listener and asks
// the controller for its current color.  An existing link is closed
// first.  On failure the session is Disconnected and the returned
// error is a *errors.ConnectError.
func (s *Session) Connect(ctx context.Context, host string, port int) error {
	addr := util.FormatAddr(host, port)
	s.Disconnect()

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.state = Connecting
	s.addr = addr
	s.mu.Unlock()

	s.logger.Verbose("connecting to %s", addr)
	dialCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	conn, err := s.opts.Dialer.Dial(dialCtx, "tcp", addr)
	cancel()
	if err != nil {
		s.mu.Lock()
		if s.gen == gen {
			s.state = Disconnected
		}
		s.mu.Unlock()
		cerr := perr.WrapConnect(addr, err)
		s.metrics.ConnectFailed(cerr.Error())
		return cerr
	}

	s.mu.Lock()
	if s.gen != gen || s.state != Connecting {
		s.mu.Unlock()
		conn.Close()
		return perr.WrapConnect(addr, perr.ErrConnectAborted)
	}
	stop, done := make(chan struct{}), make(chan struct{})
	events := make(chan protocol.Message, 8)
	s.conn, s.stop, s.done = conn, stop, done
	s.state = Connected
	s.connectedAt = s.opts.Now()
	s.mu.Unlock()

	s.metrics.Connected()
	s.logger.Info("connected to %s", addr)

	go s.listen(gen, conn, events, stop, done)
	go s.dispatch(gen, events)

	if err := s.RequestCurrentColor(ctx); err != nil {
		if perr.Is(err, perr.ErrNoCredential) {
			s.logger.Warn("skipping initial color request: %v", err)
			return nil
		}
		return err
	}
	return nil
}

// Disconnect closes the link and waits for the listener to exit.  It
// is a no-op on a disconnected session.
func (s *Session) Disconnect() {
	s.teardown(0, true)
}

// teardown resets the session to Disconnected.  A non-zero gen limits
// it to the link that generation opened, so a listener that outlived
// its connection cannot close a newer one.  The listener itself passes
// wait=false since it cannot wait for its own exit.
func (s *Session) teardown(gen uint64, wait bool) {
	s.mu.Lock()
	if s.state == Disconnected || (gen != 0 && gen != s.gen) {
		s.mu.Unlock()
		return
	}
	wasConnected := s.state == Connected
	conn, stop, done, addr := s.conn, s.stop, s.done, s.addr
	s.gen++
	s.state = Disconnected
	s.conn, s.stop, s.done = nil, nil, nil
	s.connectedAt = time.Time{}
	s.mu.Unlock()

	if stop != nil {
		close(stop)
	}
	if conn != nil {
		conn.Close()
	}
	if wait && done != nil {
		<-done
	}
	if wasConnected {
		s.metrics.Disconnected()
		s.logger.Info("disconnected from %s", addr)
	}
}

// Send writes one complete frame.  A failed write closes the link and
// returns a *errors.SendError, which matches errors.ErrConnectionLost.
// A ctx that is already done returns ctx.Err() and leaves the link up.
func (s *Session) Send(ctx context.Context, frame []byte) error {
	s.mu.RLock()
	conn, gen, state, addr := s.conn, s.gen, s.state, s.addr
	s.mu.RUnlock()

	if state != Connected || conn == nil {
		return perr.ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.writeMu.Lock()
	if dl, ok := ctx.Deadline(); ok {
		conn.SetWriteDeadline(dl) //nolint:errcheck
	}
	n, err := conn.Write(frame)
	conn.SetWriteDeadline(time.Time{}) //nolint:errcheck
	s.writeMu.Unlock()

	// Deadline passed before any byte went out: the stream is intact.
	if err != nil && n == 0 && ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		s.metrics.RecordError(err.Error())
		s.logger.Warn("write to %s failed: %v", addr, err)
		s.teardown(gen, true)
		return &perr.SendError{Addr: addr, Err: err}
	}
	s.metrics.FrameSent(len(frame))
	return nil
}

// Done returns a channel that is closed when the current link ends,
// whether by Disconnect or by a read or write failure.  On a session
// that is not connected the channel is already closed.
func (s *Session) Done() <-chan struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == Connected && s.done != nil {
		return s.done
	}
	return closedChan
}

var closedChan = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// IsConnected reports whether the session is Connected.
func (s *Session) IsConnected() bool { return s.State() == Connected }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// CurrentColor returns the last color reported by the controller, or
// black if none has arrived yet.
func (s *Session) CurrentColor() protocol.Color {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.color
}

// Snapshot returns all observable state under one lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		ID:          s.id,
		State:       s.state,
		Addr:        s.addr,
		Color:       s.color,
		HaveColor:   s.haveColor,
		ConnectedAt: s.connectedAt,
		LastPush:    s.lastPush,
	}
}

func (s *Session) setColor(gen uint64, c protocol.Color, pushed bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false
	}
	s.color = c
	s.haveColor = true
	if pushed {
		s.lastPush = s.opts.Now()
	}
	return true
}
