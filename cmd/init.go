package cmd

import (
	"fmt"
	"os"

	"github.com/Rouzax/WireGuard-Monitor/internal/config"
	"github.com/Rouzax/WireGuard-Monitor/internal/ui"
	"github.com/Rouzax/WireGuard-Monitor/internal/wizard"
	"github.com/spf13/cobra"
)

var useWizard bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create or update the wireguard-monitor.yml config file",
	Long: `Regenerate the configuration file: values already set in an existing
file are preserved, and any newly-introduced keys are added with their
defaults. With --wizard, build a fresh config interactively instead.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&useWizard, "wizard", false, "build the config interactively")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := configPath()

	if !useWizard {
		if err := config.Regenerate(path); err != nil {
			fmt.Fprint(os.Stderr, ui.FormatError("Failed to write config", err.Error(), ""))
			return err
		}
		ui.Success(fmt.Sprintf("Updated %s", path))
		fmt.Printf("Next step: %s\n", ui.Bold("wireguard-monitor validate"))
		return nil
	}

	if _, err := os.Stat(path); err == nil {
		fmt.Printf("%s already exists.\n", path)
		fmt.Print("Overwrite? [y/N] ")
		var answer string
		_, _ = fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	fmt.Println(ui.Bold("Scanning environment..."))
	detection := wizard.Detect(nil)

	answers, err := wizard.Run(detection)
	if err != nil {
		return fmt.Errorf("wizard: %w", err)
	}

	content, err := wizard.GenerateConfig(*answers)
	if err != nil {
		return fmt.Errorf("generating config: %w", err)
	}

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	ui.Success(fmt.Sprintf("Created %s", path))
	fmt.Println()
	fmt.Printf("Next step: %s\n", ui.Bold("wireguard-monitor validate"))
	fmt.Printf("           %s\n", ui.Hint("then schedule 'wireguard-monitor' from cron or a systemd timer"))

	return nil
}
