package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <id>",
	Short: "Show a cached database",
	Long:  "Open the cached database for an exact id and print its details.",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(_ *cobra.Command, args []string) error {
	stash, err := openStash()
	if err != nil {
		return err
	}

	db, err := stash.GetMemDBFromSDKID(args[0])
	if err != nil {
		return err
	}

	info := db.Info()
	fmt.Printf("id:      %s\n", info)
	fmt.Printf("name:    %s\n", info.Name)
	fmt.Printf("version: %s\n", info.Version())
	if info.Build != "" {
		fmt.Printf("build:   %s\n", info.Build)
	}
	if info.Flavour != "" {
		fmt.Printf("flavour: %s\n", info.Flavour)
	}
	fmt.Printf("size:    %s\n", humanize.IBytes(uint64(db.Len())))
	fmt.Printf("path:    %s\n", db.Path())
	return nil
}
