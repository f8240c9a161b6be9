package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jknam3036-svg/smart-news-engine/internal/config"
	"github.com/jknam3036-svg/smart-news-engine/internal/retention"
)

var (
	purgeDays int
	purgeAll  bool
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete old records (tags and relations cascade)",
	RunE:  runPurge,
}

func init() {
	purgeCmd.Flags().IntVarP(&purgeDays, "days", "d", 0, "Override the configured retention window")
	purgeCmd.Flags().BoolVar(&purgeAll, "all", false, "Delete every record and reset the tag vocabulary")
}

func runPurge(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if purgeAll {
		if err := db.DeleteAll(); err != nil {
			return err
		}
		fmt.Println("store reset")
		return nil
	}

	days := purgeDays
	if days <= 0 {
		days = config.FromEnv().Intel.RetentionDays
	}

	removed, err := retention.New(db, days).Sweep()
	if err != nil {
		return err
	}
	fmt.Printf("removed %d records older than %d days\n", removed, days)
	return nil
}
