// Package core is the orchestration layer.  It turns a Config into a
// runnable mode that drives a session against the controller.
//
// Architecture layers (bottom → top):
//
//	transport  →  protocol  →  session  →  core  →  cmd (CLI)
//
// Build is the single dispatch point; each mode owns its session from
// connect to disconnect.
package core

import "context"

// Mode is one complete way of running piled: a one-shot command, a
// long-running watch, or a dry run that only prints frames.
type Mode interface {
	Run(ctx context.Context) error
}
