package session

import (
	"context"

	"piled/config"
	perr "piled/internal/errors"
	"piled/internal/protocol"
)

// SetColor sets a static color.
func (s *Session) SetColor(ctx context.Context, c protocol.Color) error {
	s.mu.RLock()
	gen := s.gen
	s.mu.RUnlock()

	if err := s.sendCommand(ctx, protocol.SetColor(c)); err != nil {
		return err
	}
	if s.opts.OptimisticColor {
		s.setColor(gen, c, false)
	}
	return nil
}

// Fade starts a fade animation towards c.
func (s *Session) Fade(ctx context.Context, c protocol.Color, duration, speed int) error {
	cmd, err := protocol.Fade(c, duration, speed)
	if err != nil {
		return err
	}
	return s.sendCommand(ctx, cmd)
}

// Pulse starts a pulse animation in c.
func (s *Session) Pulse(ctx context.Context, c protocol.Color, duration, speed int) error {
	cmd, err := protocol.Pulse(c, duration, speed)
	if err != nil {
		return err
	}
	return s.sendCommand(ctx, cmd)
}

// ToggleSuspend switches the strip between suspended and running.
func (s *Session) ToggleSuspend(ctx context.Context) error {
	return s.sendCommand(ctx, protocol.ToggleSuspend())
}

// RequestCurrentColor asks the controller to push its color.  The
// answer arrives asynchronously through the listener.
func (s *Session) RequestCurrentColor(ctx context.Context) error {
	return s.sendCommand(ctx, protocol.GetCurrentColor())
}

// sendCommand signs cmd with the stored secret and writes it.  Without
// a secret nothing is written.
func (s *Session) sendCommand(ctx context.Context, cmd protocol.Command) error {
	key := config.SharedSecret(s.store)
	if key == "" {
		s.metrics.CommandRefused()
		s.logger.Warn("refusing %s: %v", cmd.Op, perr.ErrNoCredential)
		return perr.ErrNoCredential
	}
	if !s.IsConnected() {
		return perr.ErrNotConnected
	}

	frame, err := protocol.NewFrame(cmd, s.opts.Now())
	if err != nil {
		return err
	}
	raw, err := frame.Seal([]byte(key))
	if err != nil {
		return err
	}
	s.logger.Debug("sending %s (%d bytes)", cmd.Op, len(raw))
	return s.Send(ctx, raw)
}
