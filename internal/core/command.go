package core

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"piled/config"
	perr "piled/internal/errors"
	"piled/internal/protocol"
	"piled/internal/session"
	"piled/util"
)

// CommandMode connects, performs one action and disconnects.  For
// "get" it waits for the controller's answer and prints it.
type CommandMode struct {
	Store   config.Store
	Options session.Options
	Host    string
	Port    int
	Action  Action
	Wait    time.Duration
	Logger  *util.Logger

	// Stdout defaults to os.Stdout when nil.
	Stdout io.Writer
}

func (m *CommandMode) stdout() io.Writer {
	if m.Stdout != nil {
		return m.Stdout
	}
	return os.Stdout
}

// Run executes the action.  The dialer is closed when Run returns.
func (m *CommandMode) Run(ctx context.Context) error {
	if m.Options.Dialer != nil {
		defer m.Options.Dialer.Close()
	}

	colors := make(chan protocol.Color, 1)
	opts := m.Options
	opts.OnColor = func(c protocol.Color) {
		select {
		case colors <- c:
		default:
		}
	}
	s := session.New(m.Store, opts)
	if err := s.Connect(ctx, m.Host, m.Port); err != nil {
		return err
	}
	defer s.Disconnect()

	if m.Action.Kind != ActionGet {
		if err := m.Action.Apply(ctx, s); err != nil {
			return err
		}
		m.Logger.Verbose("sent %s", m.Action)
		return nil
	}

	// Connect has already asked for the color; without a secret it
	// could not, and no answer will come.
	if config.SharedSecret(m.Store) == "" {
		return perr.ErrNoCredential
	}
	wait := m.Wait
	if wait <= 0 {
		wait = config.DefaultWaitColor
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case c := <-colors:
		fmt.Fprintln(m.stdout(), c)
		return nil
	case <-s.Done():
		return perr.ErrConnectionLost
	case <-timer.C:
		return fmt.Errorf("controller did not report its color within %s", wait)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DryRunMode prints the sealed frame an action would send, as hex,
// without connecting.
type DryRunMode struct {
	Store  config.Store
	Action Action
	Now    func() time.Time

	// Stdout defaults to os.Stdout when nil.
	Stdout io.Writer
}

// Run encodes and signs the frame.
func (m *DryRunMode) Run(context.Context) error {
	cmd, err := m.Action.Command()
	if err != nil {
		return err
	}
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	frame, err := protocol.NewFrame(cmd, now())
	if err != nil {
		return err
	}
	raw, err := frame.Seal([]byte(config.SharedSecret(m.Store)))
	if err != nil {
		return err
	}
	out := m.Stdout
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintln(out, hex.EncodeToString(raw))
	return nil
}
