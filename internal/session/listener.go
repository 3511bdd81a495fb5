package session

import (
	"io"
	"net"
	"time"

	"piled/config"
	"piled/internal/protocol"
	"piled/util"
)

// listen reads frames from conn until the read fails, handing decoded
// messages to dispatch over events.  It owns events and closes it on
// exit; done is closed last.
func (s *Session) listen(gen uint64, conn net.Conn, events chan<- protocol.Message, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer close(events)

	buf := make([]byte, protocol.MaxFrameSize)
	for {
		if s.opts.ReadIdleTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(s.opts.ReadIdleTimeout)) //nolint:errcheck
		}
		n, err := conn.Read(buf)
		if n > 0 {
			s.metrics.FrameReceived(n)
			if msg := s.decode(buf[:n]); msg != nil {
				select {
				case events <- msg:
				case <-stop:
					return
				}
			}
		}
		if err == nil && n == 0 {
			err = io.EOF
		}
		if err == nil {
			continue
		}

		select {
		case <-stop:
			// Disconnect closed the socket under us.
		default:
			switch {
			case util.IsTimeout(err):
				s.logger.Warn("no data for %s, dropping link", s.opts.ReadIdleTimeout)
			case util.IsClosedConn(err):
				s.logger.Verbose("controller closed the connection")
			default:
				s.logger.Warn("read failed: %v", err)
				s.metrics.RecordError(err.Error())
			}
			s.teardown(gen, false)
		}
		return
	}
}

// decode turns one read into a message for dispatch, or nil when the
// frame is dropped.  Nothing returned aliases raw.
func (s *Session) decode(raw []byte) protocol.Message {
	in, msg, err := protocol.Decode(raw)
	if err != nil {
		s.metrics.MalformedFrame()
		s.logger.Debug("skipping frame: %v", err)
		return nil
	}
	if s.opts.VerifyInbound {
		key := config.SharedSecret(s.store)
		if err := protocol.Verify([]byte(key), in); err != nil {
			s.metrics.RejectedFrame()
			s.logger.Warn("rejecting %s frame: %v", in.Header.Opcode, err)
			return nil
		}
	}
	switch m := msg.(type) {
	case protocol.ColorChanged:
		return m
	case protocol.Unhandled:
		s.metrics.UnhandledOpcode()
		s.logger.Debug("ignoring opcode %s (%d payload bytes)", m.Op, len(m.Payload))
	}
	return nil
}

// dispatch applies messages to session state and runs the push
// callback outside any lock.
func (s *Session) dispatch(gen uint64, events <-chan protocol.Message) {
	for msg := range events {
		cc, ok := msg.(protocol.ColorChanged)
		if !ok {
			continue
		}
		if !s.setColor(gen, cc.Color, true) {
			continue
		}
		s.metrics.ColorPush()
		s.logger.Verbose("controller color is now %s", cc.Color)
		if s.opts.OnColor != nil {
			s.opts.OnColor(cc.Color)
		}
	}
}
