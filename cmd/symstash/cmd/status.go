package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show how far the local cache lags the catalog",
	Long:  "Compare the local cache with the catalog without changing anything. Exits non-zero when unhealthy.",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	stash, err := openStash()
	if err != nil {
		return err
	}

	status, err := stash.SyncStatus(cmd.Context())
	if err != nil {
		return err
	}

	if status.Offline {
		fmt.Println("catalog:   offline")
	} else {
		fmt.Printf("published: %d\n", status.RemoteTotal)
		fmt.Printf("missing:   %d\n", status.Missing)
		fmt.Printf("different: %d\n", status.Different)
	}
	fmt.Printf("revision:  %d\n", status.Revision)
	fmt.Printf("healthy:   %t\n", status.Healthy())

	if !status.Healthy() {
		return errors.New("stash is unhealthy")
	}
	return nil
}
