package cmd

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aweris/symstash/internal/remote"
)

var publishCmd = &cobra.Command{
	Use:   "publish <file>...",
	Short: "Publish databases to the catalog",
	Long:  "Push local memdb files to the catalog repository, one image per database.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPublish,
}

func init() {
	publishCmd.Flags().Int("level", 2, "zstd compression level (1-3)")
	viper.BindPFlag("compression_level", publishCmd.Flags().Lookup("level"))
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	catalog, err := newCatalog(remote.WithCompressionLevel(viper.GetInt("compression_level")))
	if err != nil {
		return err
	}

	for _, path := range args {
		fmt.Fprintf(os.Stderr, "Publishing %s...\n", path)

		entry, err := catalog.Publish(cmd.Context(), path)
		if err != nil {
			return fmt.Errorf("publish failed: %w", err)
		}

		fmt.Fprintf(os.Stderr, "Done. %s (%s) %s\n", entry.Info, humanize.IBytes(entry.Size), entry.ETag)
	}
	return nil
}
