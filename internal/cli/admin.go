package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/watchearn-network/watchearn/internal/domain"
)

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(adminGrantCmd)
	adminCmd.AddCommand(adminRoleCmd)

	adminGrantCmd.Flags().Bool("force", false, "Grant even when an admin already exists")
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Operator role management",
}

// ─── admin grant ────────────────────────────────────────────────────────────

var adminGrantCmd = &cobra.Command{
	Use:   "grant IDENTITY",
	Short: "Grant the admin role to an identity",
	Long: `Grant admin to IDENTITY. Without --force this only succeeds while no admin
exists, which is how the first admin is created. With --force the operator
assigns the role directly; this needs write access to the data directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdminGrant,
}

func runAdminGrant(cmd *cobra.Command, args []string) error {
	id := domain.Identity(args[0])
	force, _ := cmd.Flags().GetBool("force")

	d, _, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := cmd.Context()
	if force {
		if err := d.DB().SetRole(ctx, id, domain.RoleAdmin, "operator", timeNow()); err != nil {
			return err
		}
	} else if err := d.Services.Authority.Bootstrap(ctx, id); err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return fmt.Errorf("an admin already exists; use --force to grant anyway")
		}
		return err
	}
	printf(cmd, "%s is now admin.\n", id)
	return nil
}

// ─── admin role ─────────────────────────────────────────────────────────────

var adminRoleCmd = &cobra.Command{
	Use:   "role IDENTITY",
	Short: "Show the effective role of an identity",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminRole,
}

func runAdminRole(cmd *cobra.Command, args []string) error {
	d, _, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	role, err := d.Services.Authority.RoleOf(cmd.Context(), domain.Identity(args[0]))
	if err != nil {
		return err
	}
	printf(cmd, "%s\n", role)
	return nil
}
