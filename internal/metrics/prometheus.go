package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultNamespace prefixes every exported metric name.
const DefaultNamespace = "piled"

// Register exports the collector's counters on reg.  The values are
// read from the atomics at scrape time, so nothing has to be pushed.
func (c *Collector) Register(reg prometheus.Registerer, namespace string) error {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	counter := func(name, help string, load func() int64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, func() float64 { return float64(load()) })
	}

	collectors := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected",
			Help:      "Links to the controller currently up",
		}, func() float64 { return float64(c.connected.Load()) }),
		counter("connects_total", "Successful connects", c.connects.Load),
		counter("connect_failures_total", "Failed connect attempts", c.connectFailures.Load),
		counter("disconnects_total", "Links torn down, explicitly or on error", c.disconnects.Load),
		counter("frames_sent_total", "Frames written to the controller", c.framesSent.Load),
		counter("frames_received_total", "Reads returned by the inbound listener", c.framesReceived.Load),
		counter("sent_bytes_total", "Bytes written to the controller", c.bytesOut.Load),
		counter("received_bytes_total", "Bytes read from the controller", c.bytesIn.Load),
		counter("malformed_frames_total", "Inbound frames discarded as malformed", c.malformedFrames.Load),
		counter("rejected_frames_total", "Inbound frames discarded for a bad tag", c.rejectedFrames.Load),
		counter("commands_refused_total", "Commands not sent for lack of a shared secret", c.commandsRefused.Load),
		counter("color_pushes_total", "ColorChangedPush frames applied", c.colorPushes.Load),
		counter("unhandled_opcodes_total", "Inbound frames with no client-side handling", c.unhandledOpcodes.Load),
	}
	for _, col := range collectors {
		if err := reg.Register(col); err != nil {
			return err
		}
	}
	return nil
}
