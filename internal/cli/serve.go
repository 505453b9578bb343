package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/watchearn-network/watchearn/internal/api"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the JSON API on [api].host:[api].port until interrupted.
The built-in catalog is seeded into an empty store when [ledger].seed_defaults is set.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	d, _, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return d.ListenAndRun(ctx)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		printf(cmd, "watchearn %s\n", api.Version)
	},
}
