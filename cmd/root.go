package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "wireguard-monitor",
	Short: "Verify and recover WireGuard tunnel connectivity",
	Long: `wireguard-monitor runs one unattended recovery cycle: it verifies that
the active WireGuard tunnel provides working internet connectivity and,
if not, cycles through the allowed tunnels while pausing the dependent
services until a healthy state is restored.

It is meant to be launched periodically by cron or a systemd timer.`,
	SilenceUsage: true,
	RunE:         runRecovery,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: wireguard-monitor.yml)")
	rootCmd.Flags().StringVar(&logFileFlag, "log-file", "", "log file path override")
	rootCmd.Flags().StringVar(&stateDirFlag, "state-dir", "", "state directory override")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("wireguard-monitor")
		viper.SetConfigType("yml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/wireguard-monitor")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
		}
	}
}

// configPath returns the file the init command should write.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return "wireguard-monitor.yml"
}
