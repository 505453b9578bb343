// Package cli implements the watchearn command line.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/watchearn-network/watchearn/internal/daemon"
	"github.com/watchearn-network/watchearn/internal/infra/logging"
)

var (
	flagHome   string
	flagConfig string
)

var rootCmd = &cobra.Command{
	Use:   "watchearn",
	Short: "Ad-watch reward ledger and withdrawal service",
	Long: `watchearn credits registered users for watching ads, at most once per ad
per UTC day, and runs the withdrawal workflow that admins approve or reject.

Configuration is read from ~/.watchearn/config.toml unless --config is given.
Set WATCHEARN_HOME to move the data directory.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagHome, "home", "", "Data directory (default $WATCHEARN_HOME or ~/.watchearn)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default <home>/config.toml)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func homeDir() string {
	if flagHome != "" {
		return flagHome
	}
	return daemon.HomeDir()
}

func loadConfig() (daemon.Config, error) {
	path := flagConfig
	if path == "" {
		path = daemon.ConfigPath(homeDir())
	}
	return daemon.LoadConfig(path)
}

func newLogger(cfg daemon.Config) *slog.Logger {
	return logging.New(os.Stderr, cfg.Log, "watchearn")
}

// openDaemon loads config and opens the store. The caller closes it.
func openDaemon() (*daemon.Daemon, daemon.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, daemon.Config{}, err
	}
	d, err := daemon.Open(cfg, homeDir(), newLogger(cfg))
	if err != nil {
		return nil, daemon.Config{}, err
	}
	return d, cfg, nil
}

func printf(cmd *cobra.Command, format string, args ...interface{}) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
