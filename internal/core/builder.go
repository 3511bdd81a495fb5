package core

import (
	"fmt"

	"piled/config"
	"piled/internal/metrics"
	"piled/internal/retry"
	"piled/internal/session"
	"piled/internal/transport"
	"piled/tunnel"
	"piled/util"
)

// Build constructs the Mode for cfg.  cfg is expected to have passed
// Validate, with any prompted secret already filled in.
func Build(cfg *config.Config, logger *util.Logger) (Mode, error) {
	store, err := config.StoreFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Command == "watch" {
		if cfg.DryRun {
			return nil, fmt.Errorf("--dry-run does not apply to watch")
		}
		return buildWatch(cfg, store, logger)
	}

	action, err := buildAction(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.DryRun {
		return &DryRunMode{Store: store, Action: action}, nil
	}

	host, port, err := config.Endpoint(store)
	if err != nil {
		return nil, err
	}
	return &CommandMode{
		Store:   store,
		Options: sessionOptions(cfg, logger, metrics.New()),
		Host:    host,
		Port:    port,
		Action:  action,
		Wait:    cfg.Wait,
		Logger:  logger,
	}, nil
}

// ── mode builders ────────────────────────────────────────────────────

func buildAction(cfg *config.Config) (Action, error) {
	if cfg.Command == "trigger" {
		if len(cfg.Args) != 1 {
			return Action{}, fmt.Errorf("trigger: expected one URI such as %s://room_presence", TriggerScheme)
		}
		return TriggerAction(cfg.Args[0])
	}
	return ParseAction(cfg.Command, cfg.Args)
}

func buildWatch(cfg *config.Config, store config.Store, logger *util.Logger) (Mode, error) {
	if len(cfg.Args) != 0 {
		return nil, fmt.Errorf("watch takes no arguments")
	}
	host, port, err := config.Endpoint(store)
	if err != nil {
		return nil, err
	}
	m := metrics.New()
	return &WatchMode{
		Store:      store,
		Options:    sessionOptions(cfg, logger, m),
		Host:       host,
		Port:       port,
		Reconnect:  cfg.Reconnect,
		Backoff:    retry.ForReconnect(cfg.MaxReconnects),
		StatusAddr: cfg.MetricsAddr,
		Metrics:    m,
		Logger:     logger,
	}, nil
}

// ── shared helpers ───────────────────────────────────────────────────

func sessionOptions(cfg *config.Config, logger *util.Logger, m *metrics.Collector) session.Options {
	return session.Options{
		Dialer:          buildDialer(cfg, logger),
		Timeout:         cfg.Timeout,
		ReadIdleTimeout: cfg.IdleTimeout,
		VerifyInbound:   cfg.VerifyInbound,
		OptimisticColor: cfg.OptimisticColor,
		Logger:          logger,
		Metrics:         m,
	}
}

// buildDialer creates the right transport.Dialer for the given config.
func buildDialer(cfg *config.Config, logger *util.Logger) transport.Dialer {
	if cfg.TunnelEnabled {
		return transport.NewSSHDialer(&tunnel.SSHConfig{
			User:          cfg.TunnelUser,
			Host:          cfg.TunnelHost,
			Port:          cfg.TunnelPort,
			KeyPath:       cfg.SSHKeyPath,
			PromptPass:    cfg.SSHPassword,
			UseAgent:      cfg.UseSSHAgent,
			StrictHostKey: cfg.StrictHostKey,
			KnownHosts:    cfg.KnownHostsPath,
			ConnTimeout:   cfg.Timeout,
			KeepAlive:     config.DefaultSSHKeepAlive,
		}, logger)
	}
	return &transport.TCPDialer{Timeout: cfg.Timeout}
}
