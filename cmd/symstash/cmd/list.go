package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached databases",
	Long:  "List all databases recorded in the local state.",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(_ *cobra.Command, _ []string) error {
	stash, err := openStash()
	if err != nil {
		return err
	}

	entries, err := stash.ListSDKs()
	if err != nil {
		return err
	}

	for _, entry := range entries {
		fmt.Printf("%s\t%s\t%s\n", entry.Info, humanize.IBytes(entry.Size), entry.ETag)
	}

	if len(entries) == 0 {
		fmt.Println("(no entries)")
	}

	return nil
}
