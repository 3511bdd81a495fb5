package core

import (
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"piled/config"
	"piled/internal/protocol"
)

const testSecret = "shared_secret"

// fakeController speaks just enough of the protocol for mode tests: it
// records every frame and answers GetCurrentColor with a push.
type fakeController struct {
	ln     net.Listener
	color  protocol.Color
	frames chan []byte

	mu    sync.Mutex
	conns []net.Conn
}

func newFakeController(t *testing.T, color protocol.Color) *fakeController {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	fc := &fakeController{ln: ln, color: color, frames: make(chan []byte, 16)}
	go fc.serve()
	t.Cleanup(func() {
		ln.Close()
		fc.dropAll()
	})
	return fc
}

func (fc *fakeController) port() int { return fc.ln.Addr().(*net.TCPAddr).Port }

func (fc *fakeController) serve() {
	for {
		conn, err := fc.ln.Accept()
		if err != nil {
			return
		}
		fc.mu.Lock()
		fc.conns = append(fc.conns, conn)
		fc.mu.Unlock()
		go fc.handle(conn)
	}
}

func (fc *fakeController) handle(conn net.Conn) {
	defer conn.Close()
	for {
		head := make([]byte, protocol.HeaderSize+protocol.TagSize)
		if _, err := io.ReadFull(conn, head); err != nil {
			return
		}
		op := protocol.Opcode(head[17])
		frame := head
		if op != protocol.OpGetCurrentColor {
			payload := make([]byte, protocol.MaxPayloadSize)
			if _, err := io.ReadFull(conn, payload); err != nil {
				return
			}
			frame = append(frame, payload...)
		}
		select {
		case fc.frames <- frame:
		default:
		}
		if op == protocol.OpGetCurrentColor {
			conn.Write(pushFrame(fc.color)) //nolint:errcheck
		}
	}
}

// dropAll closes every accepted connection, simulating a controller
// reboot.
func (fc *fakeController) dropAll() {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	for _, c := range fc.conns {
		c.Close()
	}
	fc.conns = nil
}

func (fc *fakeController) nextFrame(t *testing.T) []byte {
	t.Helper()
	select {
	case f := <-fc.frames:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("controller received no frame")
		return nil
	}
}

func pushFrame(c protocol.Color) []byte {
	header := protocol.EncodeHeader(protocol.Header{
		Timestamp: time.Now().Unix(),
		Version:   protocol.Version,
		Opcode:    protocol.OpColorChangedPush,
	})
	payload := []byte{c.R, c.G, c.B, 0, 0}
	tag, _ := protocol.Sign([]byte(testSecret), header, payload)
	return protocol.Assemble(header, tag, payload)
}

func secretStore(secret string) *config.MemoryStore {
	s := config.NewMemoryStore()
	if secret != "" {
		s.Set(config.KeySharedSecret, secret) //nolint:errcheck
	}
	return s
}
