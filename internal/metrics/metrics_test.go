package metrics

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestCollector_Link(t *testing.T) {
	c := New()

	c.Connected()
	if c.ActiveLinks() != 1 {
		t.Errorf("active = %d, want 1", c.ActiveLinks())
	}
	c.Disconnected()
	c.ConnectFailed("refused")

	s := c.Snapshot()
	if s.ActiveLinks != 0 || s.Connects != 1 || s.Disconnects != 1 || s.ConnectFailures != 1 {
		t.Errorf("snapshot = %+v", s)
	}
	if s.LastErrorMessage != "refused" {
		t.Errorf("last error = %q", s.LastErrorMessage)
	}
}

func TestCollector_Frames(t *testing.T) {
	c := New()
	c.FrameSent(55)
	c.FrameSent(50)
	c.FrameReceived(55)
	c.MalformedFrame()
	c.RejectedFrame()
	c.CommandRefused()
	c.ColorPush()
	c.UnhandledOpcode()

	s := c.Snapshot()
	if s.FramesSent != 2 || s.BytesOut != 105 {
		t.Errorf("sent = %d/%d bytes", s.FramesSent, s.BytesOut)
	}
	if s.FramesReceived != 1 || s.BytesIn != 55 {
		t.Errorf("received = %d/%d bytes", s.FramesReceived, s.BytesIn)
	}
	if s.MalformedFrames != 1 || s.RejectedFrames != 1 || s.CommandsRefused != 1 ||
		s.ColorPushes != 1 || s.UnhandledOpcodes != 1 {
		t.Errorf("snapshot = %+v", s)
	}
	if s.LastPush == "" {
		t.Error("LastPush should be set")
	}
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector
	c.Connected()
	c.FrameSent(10)
	c.ColorPush()
	c.RecordError("x")
	if c.ActiveLinks() != 0 {
		t.Error("nil collector should report 0")
	}
	if (c.Snapshot() != Snapshot{}) {
		t.Error("nil collector should return empty snapshot")
	}
}

func TestCollector_Concurrent(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.FrameSent(55)
			c.FrameReceived(55)
		}()
	}
	wg.Wait()
	s := c.Snapshot()
	if s.FramesSent != 100 || s.FramesReceived != 100 {
		t.Errorf("sent=%d received=%d, want 100 each", s.FramesSent, s.FramesReceived)
	}
}

func TestCollector_JSON(t *testing.T) {
	c := New()
	c.FrameSent(55)

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(c.JSON()), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["frames_sent_total"].(float64) != 1 {
		t.Errorf("frames_sent_total = %v", decoded["frames_sent_total"])
	}
}

func TestCollector_Register(t *testing.T) {
	c := New()
	reg := prometheus.NewRegistry()
	if err := c.Register(reg, ""); err != nil {
		t.Fatalf("Register: %v", err)
	}

	c.Connected()
	c.FrameSent(55)
	c.FrameSent(55)

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	got := map[string]float64{}
	for _, mf := range families {
		m := mf.GetMetric()[0]
		if g := m.GetGauge(); g != nil {
			got[mf.GetName()] = g.GetValue()
		} else {
			got[mf.GetName()] = m.GetCounter().GetValue()
		}
	}
	if got["piled_frames_sent_total"] != 2 {
		t.Errorf("piled_frames_sent_total = %v", got["piled_frames_sent_total"])
	}
	if got["piled_connected"] != 1 {
		t.Errorf("piled_connected = %v", got["piled_connected"])
	}
	if got["piled_sent_bytes_total"] != 110 {
		t.Errorf("piled_sent_bytes_total = %v", got["piled_sent_bytes_total"])
	}

	// A second registration of the same names must fail.
	if err := c.Register(reg, ""); err == nil {
		t.Error("duplicate registration should fail")
	}
}
