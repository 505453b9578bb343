package cli

import (
	"github.com/spf13/cobra"

	"github.com/watchearn-network/watchearn/internal/domain"
	adcatalog "github.com/watchearn-network/watchearn/internal/infra/catalog"
)

func init() {
	rootCmd.AddCommand(adsCmd)
	adsCmd.AddCommand(adsSeedCmd)
	adsCmd.AddCommand(adsListCmd)

	adsSeedCmd.Flags().StringP("file", "f", "", "TOML seed file with [[ad]] tables (default: built-in catalog)")
}

var adsCmd = &cobra.Command{
	Use:   "ads",
	Short: "Manage the ad catalog",
}

// ─── ads seed ───────────────────────────────────────────────────────────────

var adsSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Upsert ads into the catalog",
	Long: `Validate a seed file and upsert every ad it lists. Existing ads with the
same id are updated in place; ads not in the file are left alone.`,
	Args: cobra.NoArgs,
	RunE: runAdsSeed,
}

func runAdsSeed(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")

	var ads []domain.Ad
	if file != "" {
		loaded, err := adcatalog.Load(file)
		if err != nil {
			return err
		}
		ads = loaded
	}

	d, _, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	n, err := d.Services.Catalog.Seed(cmd.Context(), ads)
	if err != nil {
		return err
	}
	printf(cmd, "Seeded %d ads.\n", n)
	return nil
}

// ─── ads list ───────────────────────────────────────────────────────────────

var adsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the ad catalog",
	Args:  cobra.NoArgs,
	RunE:  runAdsList,
}

func runAdsList(cmd *cobra.Command, args []string) error {
	d, _, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	ads, err := d.Services.Catalog.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(ads) == 0 {
		printf(cmd, "No ads in the catalog.\nUse 'watchearn ads seed' to load the built-in set.\n")
		return nil
	}

	printf(cmd, "%-4s %-32s %8s %7s\n", "ID", "TITLE", "DURATION", "REWARD")
	for _, ad := range ads {
		printf(cmd, "%-4d %-32s %8s %7d\n", ad.ID, truncate(ad.Title, 32), ad.Duration(), ad.RewardAmount)
	}
	return nil
}
