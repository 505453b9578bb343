package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/watchearn-network/watchearn/internal/domain"
)

// timeNow is replaced in tests.
var timeNow = time.Now

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().Duration("ttl", 0, "Token lifetime (default [auth].token_ttl)")
}

var tokenCmd = &cobra.Command{
	Use:   "token IDENTITY",
	Short: "Mint a bearer token for an identity",
	Long: `Sign a bearer token whose subject is IDENTITY with the configured jwt secret.
Intended for development and operator scripts.`,
	Args: cobra.ExactArgs(1),
	RunE: runToken,
}

func runToken(cmd *cobra.Command, args []string) error {
	ttl, _ := cmd.Flags().GetDuration("ttl")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = cfg.TokenTTL()
	}
	tokens, err := cfg.TokenAuth()
	if err != nil {
		return err
	}
	tok, err := tokens.Issue(domain.Identity(args[0]), ttl)
	if err != nil {
		return err
	}
	printf(cmd, "%s\n", tok)
	return nil
}
