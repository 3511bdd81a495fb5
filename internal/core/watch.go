package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"piled/config"
	perr "piled/internal/errors"
	"piled/internal/metrics"
	"piled/internal/protocol"
	"piled/internal/retry"
	"piled/internal/session"
	"piled/internal/status"
	"piled/util"
)

// WatchMode stays connected and prints every color the controller
// pushes.  With Reconnect it re-establishes a dropped link using
// Backoff; otherwise a dropped link ends Run with ErrConnectionLost.
type WatchMode struct {
	Store     config.Store
	Options   session.Options
	Host      string
	Port      int
	Reconnect bool
	Backoff   *retry.Backoff

	// StatusAddr, if set, serves the status endpoint while watching.
	StatusAddr string
	Metrics    *metrics.Collector
	Logger     *util.Logger

	// Stdout defaults to os.Stdout when nil.
	Stdout io.Writer
}

func (m *WatchMode) stdout() io.Writer {
	if m.Stdout != nil {
		return m.Stdout
	}
	return os.Stdout
}

// Run blocks until ctx is cancelled or the link is lost for good.
func (m *WatchMode) Run(ctx context.Context) error {
	if m.Options.Dialer != nil {
		defer m.Options.Dialer.Close()
	}

	colors := make(chan protocol.Color, 16)
	opts := m.Options
	if m.Metrics == nil {
		m.Metrics = opts.Metrics
	}
	if m.Metrics == nil {
		m.Metrics = metrics.New()
	}
	opts.Metrics = m.Metrics
	opts.OnColor = func(c protocol.Color) {
		select {
		case colors <- c:
		default:
			m.Logger.Warn("output is falling behind, dropping %s", c.Hex())
		}
	}
	s := session.New(m.Store, opts)
	defer s.Disconnect()

	if m.StatusAddr != "" {
		srv, err := status.Start(m.StatusAddr, s, m.Metrics, m.Logger)
		if err != nil {
			return fmt.Errorf("status endpoint: %w", err)
		}
		defer func() {
			shutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(shutCtx) //nolint:errcheck
		}()
		m.Logger.Info("status endpoint on http://%s", srv.Addr())
	}

	for {
		if err := m.connect(ctx, s); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if config.SharedSecret(m.Store) == "" {
			m.Logger.Warn("no shared secret configured; only unsolicited pushes will be shown")
		}

		lost := m.watch(ctx, s, colors)
		if !lost {
			return nil
		}
		if !m.Reconnect {
			return perr.ErrConnectionLost
		}
		m.Logger.Warn("link to %s lost, reconnecting", util.FormatAddr(m.Host, m.Port))
	}
}

// connect makes one attempt, or retries with Backoff in reconnect
// mode.  A cancelled or aborted connect is not retried.
func (m *WatchMode) connect(ctx context.Context, s *session.Session) error {
	if !m.Reconnect {
		return s.Connect(ctx, m.Host, m.Port)
	}
	b := *m.backoff()
	b.Retryable = perr.IsRetryable
	b.Notify = func(attempt int, err error, wait time.Duration) {
		m.Logger.Warn("attempt %d failed: %v; retrying in %s", attempt, err, wait.Truncate(time.Millisecond))
	}
	return b.Do(ctx, func(int) error {
		err := s.Connect(ctx, m.Host, m.Port)
		if err != nil && (ctx.Err() != nil || errors.Is(err, perr.ErrConnectAborted)) {
			return retry.Permanent(err)
		}
		return err
	})
}

func (m *WatchMode) backoff() *retry.Backoff {
	if m.Backoff != nil {
		return m.Backoff
	}
	return retry.ForReconnect(config.DefaultMaxReconnectAttempts)
}

// watch prints pushes until the link ends (true) or ctx is done
// (false).
func (m *WatchMode) watch(ctx context.Context, s *session.Session, colors <-chan protocol.Color) bool {
	done := s.Done()
	for {
		select {
		case c := <-colors:
			fmt.Fprintf(m.stdout(), "%s %s\n", time.Now().Format(time.TimeOnly), c)
		case <-done:
			return true
		case <-ctx.Done():
			return false
		}
	}
}
