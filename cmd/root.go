// Package cmd wires up the CLI flags and dispatches to the core modes.
package cmd

import (
	"context"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"piled/config"
	"piled/internal/core"
	"piled/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X piled/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Execute parses args and runs the selected command.  Environment
// variables are applied first so flags override them.
func Execute(ctx context.Context, args []string) error {
	cfg := config.Defaults()
	config.LoadFromEnv(cfg)

	fs := flag.NewFlagSet("piled", flag.ContinueOnError)

	// ── controller ───────────────────────────────────────────────
	fs.StringVarP(&cfg.Host, "host", "H", cfg.Host, "Controller address")
	fs.IntVarP(&cfg.Port, "port", "p", cfg.Port, "Controller port")
	fs.StringVarP(&cfg.Secret, "secret", "s", cfg.Secret, "Shared secret (prefer PILED_SECRET)")
	fs.BoolVar(&cfg.PromptSecret, "prompt-secret", false, "Read the shared secret from the terminal")
	fs.DurationVarP(&cfg.Timeout, "timeout", "w", cfg.Timeout, "Connect timeout")
	fs.DurationVar(&cfg.IdleTimeout, "idle-timeout", cfg.IdleTimeout, "Drop the link after this long without data (0 = never)")
	fs.BoolVar(&cfg.VerifyInbound, "verify-inbound", cfg.VerifyInbound, "Drop controller frames whose tag does not verify")
	fs.BoolVar(&cfg.OptimisticColor, "optimistic", cfg.OptimisticColor, "Record a set color before the controller confirms it")
	fs.DurationVar(&cfg.Wait, "wait", cfg.Wait, "How long get waits for the controller's answer")

	// ── SSH jump host ────────────────────────────────────────────
	fs.StringVarP(&cfg.TunnelSpec, "tunnel", "T", cfg.TunnelSpec, "Reach the controller via SSH jump host [user@]host[:port]")
	fs.StringVar(&cfg.SSHKeyPath, "ssh-key", cfg.SSHKeyPath, "SSH private key file")
	fs.BoolVar(&cfg.SSHPassword, "ssh-password", false, "Prompt for SSH password")
	fs.BoolVar(&cfg.UseSSHAgent, "ssh-agent", cfg.UseSSHAgent, "Use SSH agent")
	fs.BoolVar(&cfg.StrictHostKey, "strict-hostkey", cfg.StrictHostKey, "Verify SSH host keys")
	fs.StringVar(&cfg.KnownHostsPath, "known-hosts", cfg.KnownHostsPath, "Custom known_hosts path")

	// ── watch ────────────────────────────────────────────────────
	fs.BoolVarP(&cfg.Reconnect, "reconnect", "r", cfg.Reconnect, "Reconnect with backoff when the link drops (watch)")
	fs.IntVar(&cfg.MaxReconnects, "max-reconnects", cfg.MaxReconnects, "Reconnect attempts before giving up (0 = forever)")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Serve /healthz, /state, /stats and /metrics on this address (watch)")

	// ── output ───────────────────────────────────────────────────
	fs.CountVarP(&cfg.Verbose, "verbose", "v", "Increase verbosity (repeatable)")
	fs.BoolVarP(&cfg.DryRun, "dry-run", "n", false, "Print the signed frame as hex instead of sending it")

	var showVersion, showHelp bool
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showHelp || len(args) == 0 {
		printUsage(fs)
		return nil
	}
	if showVersion {
		fmt.Printf("piled %s\n", version)
		return nil
	}

	if rest := fs.Args(); len(rest) > 0 {
		cfg.Command = rest[0]
		cfg.Args = rest[1:]
	}

	// ── tunnel spec ──────────────────────────────────────────────
	if cfg.TunnelSpec != "" {
		user, host, port, err := config.ParseTunnelSpec(cfg.TunnelSpec)
		if err != nil {
			return fmt.Errorf("tunnel: %w", err)
		}
		cfg.TunnelEnabled = true
		cfg.TunnelUser = user
		cfg.TunnelHost = host
		cfg.TunnelPort = port
	}

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.PromptSecret {
		secret, err := util.ReadSecret("Shared secret: ")
		if err != nil {
			return fmt.Errorf("secret: %w", err)
		}
		cfg.Secret = string(secret)
	}

	logger := util.NewLogger(cfg.Verbose)
	mode, err := core.Build(cfg, logger)
	if err != nil {
		return err
	}
	return mode.Run(ctx)
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, `piled – LED controller client v%s

Controls an addressable-LED controller over its authenticated TCP
protocol.  The shared secret is read from --secret, --prompt-secret or
PILED_SECRET; without it commands are refused.

Usage:
  piled [options] color <#rrggbb | r g b>
  piled [options] fade  <#rrggbb | r g b> <duration> <speed>
  piled [options] pulse <#rrggbb | r g b> <duration> <speed>
  piled [options] suspend
  piled [options] get
  piled [options] watch
  piled [options] trigger <piled://target>

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Examples:
  piled color '#ff8800'                       Set a static color
  piled -H 10.0.0.7 fade 0 0 1 40 3           Fade to blue
  piled get                                   Print the current color
  piled -r --metrics-addr :9109 watch         Follow color changes
  piled trigger piled://room_presence         Toggle suspend
  piled -T pi@gateway.home suspend            Through an SSH jump host
  piled -n color 1 0 0                        Show the frame, don't send
`)
}
