// Package metrics provides lock-free counters for the LED protocol
// client: link lifecycle, frames in both directions and the reasons
// frames or commands were dropped.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Collector tracks runtime metrics for one or more sessions.
type Collector struct {
	connected        atomic.Int64 // gauge: 0 or 1 per session
	connects         atomic.Int64
	connectFailures  atomic.Int64
	disconnects      atomic.Int64
	framesSent       atomic.Int64
	framesReceived   atomic.Int64
	bytesIn          atomic.Int64
	bytesOut         atomic.Int64
	malformedFrames  atomic.Int64
	rejectedFrames   atomic.Int64 // failed inbound tag verification
	commandsRefused  atomic.Int64 // no credential
	colorPushes      atomic.Int64
	unhandledOpcodes atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	lastPush     time.Time
	lastError    time.Time
	lastErrorMsg string
}

// New creates a collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Link ─────────────────────────────────────────────────────────────

// Connected records a successful connect.
func (c *Collector) Connected() {
	if c == nil {
		return
	}
	c.connects.Add(1)
	c.connected.Add(1)
}

// ConnectFailed records a failed connect attempt.
func (c *Collector) ConnectFailed(msg string) {
	if c == nil {
		return
	}
	c.connectFailures.Add(1)
	c.RecordError(msg)
}

// Disconnected records the end of a link, explicit or not.
func (c *Collector) Disconnected() {
	if c == nil {
		return
	}
	c.disconnects.Add(1)
	c.connected.Add(-1)
}

// ActiveLinks returns the number of links currently up.
func (c *Collector) ActiveLinks() int64 {
	if c == nil {
		return 0
	}
	return c.connected.Load()
}

// ── Frames ───────────────────────────────────────────────────────────

// FrameSent records one outbound frame of n bytes.
func (c *Collector) FrameSent(n int) {
	if c == nil {
		return
	}
	c.framesSent.Add(1)
	c.bytesOut.Add(int64(n))
}

// FrameReceived records one inbound read of n bytes.
func (c *Collector) FrameReceived(n int) {
	if c == nil {
		return
	}
	c.framesReceived.Add(1)
	c.bytesIn.Add(int64(n))
}

// MalformedFrame records an inbound frame that could not be decoded.
func (c *Collector) MalformedFrame() {
	if c == nil {
		return
	}
	c.malformedFrames.Add(1)
}

// RejectedFrame records an inbound frame with a bad tag.
func (c *Collector) RejectedFrame() {
	if c == nil {
		return
	}
	c.rejectedFrames.Add(1)
}

// CommandRefused records a command dropped for lack of a credential.
func (c *Collector) CommandRefused() {
	if c == nil {
		return
	}
	c.commandsRefused.Add(1)
}

// ColorPush records a ColorChangedPush applied to the session.
func (c *Collector) ColorPush() {
	if c == nil {
		return
	}
	c.colorPushes.Add(1)
	c.mu.Lock()
	c.lastPush = time.Now()
	c.mu.Unlock()
}

// UnhandledOpcode records an inbound opcode with no client handling.
func (c *Collector) UnhandledOpcode() {
	if c == nil {
		return
	}
	c.unhandledOpcodes.Add(1)
}

// ── Errors ───────────────────────────────────────────────────────────

// RecordError stores the most recent error message.
func (c *Collector) RecordError(msg string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Uptime           string `json:"uptime"`
	ActiveLinks      int64  `json:"active_links"`
	Connects         int64  `json:"connects_total"`
	ConnectFailures  int64  `json:"connect_failures_total"`
	Disconnects      int64  `json:"disconnects_total"`
	FramesSent       int64  `json:"frames_sent_total"`
	FramesReceived   int64  `json:"frames_received_total"`
	BytesIn          int64  `json:"bytes_in"`
	BytesOut         int64  `json:"bytes_out"`
	MalformedFrames  int64  `json:"malformed_frames_total"`
	RejectedFrames   int64  `json:"rejected_frames_total"`
	CommandsRefused  int64  `json:"commands_refused_total"`
	ColorPushes      int64  `json:"color_pushes_total"`
	UnhandledOpcodes int64  `json:"unhandled_opcodes_total"`
	LastPush         string `json:"last_push,omitempty"`
	LastError        string `json:"last_error,omitempty"`
	LastErrorMessage string `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:           time.Since(c.startTime).Truncate(time.Second).String(),
		ActiveLinks:      c.connected.Load(),
		Connects:         c.connects.Load(),
		ConnectFailures:  c.connectFailures.Load(),
		Disconnects:      c.disconnects.Load(),
		FramesSent:       c.framesSent.Load(),
		FramesReceived:   c.framesReceived.Load(),
		BytesIn:          c.bytesIn.Load(),
		BytesOut:         c.bytesOut.Load(),
		MalformedFrames:  c.malformedFrames.Load(),
		RejectedFrames:   c.rejectedFrames.Load(),
		CommandsRefused:  c.commandsRefused.Load(),
		ColorPushes:      c.colorPushes.Load(),
		UnhandledOpcodes: c.unhandledOpcodes.Load(),
	}
	if !c.lastPush.IsZero() {
		s.LastPush = c.lastPush.Format(time.RFC3339)
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	data, _ := json.MarshalIndent(c.Snapshot(), "", "  ")
	return string(data)
}
