package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aweris/symstash"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync the local cache with the catalog",
	Long:  "Download new and changed databases from the catalog and delete local ones that are no longer published.",
	Args:  cobra.NoArgs,
	RunE:  runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	stash, err := openStash()
	if err != nil {
		return err
	}

	report, err := stash.Sync(cmd.Context(), symstash.SyncOptions{UserFacing: true, Out: os.Stdout})
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Done. %d updated, %d unchanged, %d ignored, %d deleted. Revision: %d\n",
		len(report.Updated), len(report.Unchanged), len(report.Ignored), len(report.Deleted), report.Revision)
	return nil
}
