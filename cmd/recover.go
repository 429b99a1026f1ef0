package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/Rouzax/WireGuard-Monitor/internal/config"
	"github.com/Rouzax/WireGuard-Monitor/internal/logging"
	"github.com/Rouzax/WireGuard-Monitor/internal/probe"
	"github.com/Rouzax/WireGuard-Monitor/internal/recovery"
	"github.com/Rouzax/WireGuard-Monitor/internal/services"
	"github.com/Rouzax/WireGuard-Monitor/internal/state"
	"github.com/Rouzax/WireGuard-Monitor/internal/tunnel"
	"github.com/Rouzax/WireGuard-Monitor/internal/ui"
	"github.com/spf13/cobra"
)

var (
	logFileFlag  string
	stateDirFlag string
)

// runRecovery executes exactly one recovery cycle. Every handled
// outcome exits zero; only unexpected internal faults return an error
// and fail the process.
func runRecovery(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprint(os.Stderr, ui.FormatError("Failed to load config", err.Error(), "run 'wireguard-monitor init' to create a config file"))
		return err
	}
	applyFlagOverrides(cfg)

	log, err := logging.Open(cfg.LogFile)
	if err != nil {
		fmt.Fprint(os.Stderr, ui.FormatError("Failed to open log file", err.Error(), "check log_file in the config, or pass --log-file"))
		return err
	}
	defer func() { _ = log.Close() }()

	lock := state.NewRunLock(cfg.StateDir, log)
	if !lock.Acquire() {
		ui.Warn("another invocation is already running, exiting")
		return nil
	}
	defer lock.Release()

	checker := probe.NewChecker(
		probe.NewProber(log),
		cfg.Ping.Primary,
		cfg.Ping.Secondary,
		cfg.PingTimeout(),
		cfg.RetryDelay(),
		log,
	)
	tunnels := tunnel.New(cfg.Tunnels, cfg.WireGuardConfigDir, log)
	lifecycle := services.NewLifecycle(
		services.NewSystemdManager(log),
		state.NewStoppedStore(cfg.StateDir, log),
		cfg.ManagedServices,
		log,
	)
	gate := state.NewCooldownGate(cfg.StateDir, cfg.Cooldown(), log)

	orch := recovery.New(checker, tunnels, lifecycle, gate, log)
	outcome := orch.Run(context.Background())

	if outcome.Healthy() {
		ui.Success(fmt.Sprintf("Recovery cycle finished: %s", outcome))
	} else {
		ui.Warn(fmt.Sprintf("Recovery cycle finished: %s", outcome))
	}
	return nil
}

func applyFlagOverrides(cfg *config.Config) {
	if logFileFlag != "" {
		cfg.LogFile = logFileFlag
	}
	if stateDirFlag != "" {
		cfg.StateDir = stateDirFlag
	}
}
