package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Rouzax/WireGuard-Monitor/internal/config"
	"github.com/Rouzax/WireGuard-Monitor/internal/ui"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and environment",
	Long: `Check that the recovery cycle can actually run: required binaries are
on PATH, every allowed tunnel has a definition file, and the state and
log locations are writable.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprint(os.Stderr, ui.FormatError("Failed to load config", err.Error(), "run 'wireguard-monitor init' to create a config file"))
		return err
	}

	fmt.Println(ui.Bold("Validating configuration..."))

	passed := 0
	failed := 0
	check := func(ok bool, field, detail, message, suggestion string) {
		if ok {
			ui.ValidationOK(field, detail)
			passed++
		} else {
			ui.ValidationErr(field, message, suggestion)
			failed++
		}
	}

	for _, bin := range []string{"ping", "wg", "wg-quick", "systemctl"} {
		_, err := findExecutable(bin)
		check(err == nil, bin, "found in PATH",
			"not found in PATH", "install it or adjust PATH for the scheduler")
	}

	for _, name := range cfg.Tunnels {
		conf := cfg.TunnelDefinition(name)
		_, err := os.Stat(conf)
		check(err == nil, "tunnels."+name, conf,
			fmt.Sprintf("definition file missing: %s", conf),
			"create the WireGuard config or remove the tunnel from the allowed list")
	}

	check(writable(cfg.StateDir), "state_dir", cfg.StateDir,
		fmt.Sprintf("not writable: %s", cfg.StateDir),
		"create the directory or run with sufficient privileges")

	check(writable(filepath.Dir(cfg.LogFile)), "log_file", cfg.LogFile,
		fmt.Sprintf("directory not writable: %s", filepath.Dir(cfg.LogFile)),
		"create the directory or point log_file elsewhere")

	if len(cfg.ManagedServices) == 0 {
		fmt.Printf("  %s\n", ui.Dim("-- no managed services configured"))
	}

	fmt.Println()
	if failed == 0 {
		ui.Success(fmt.Sprintf("%d checks passed, 0 errors", passed))
		return nil
	}
	fmt.Printf("%d checks passed, %d errors\n", passed, failed)
	return fmt.Errorf("%d validation errors", failed)
}

// writable reports whether dir exists (or can be created) and accepts
// a new file.
func writable(dir string) bool {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false
	}
	probe := filepath.Join(dir, ".wgmon-probe")
	f, err := os.Create(probe)
	if err != nil {
		return false
	}
	_ = f.Close()
	_ = os.Remove(probe)
	return true
}
