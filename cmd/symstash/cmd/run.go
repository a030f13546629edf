package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aweris/symstash"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Keep the local cache in sync",
	Long:  "Sync immediately and then periodically until interrupted.",
	Args:  cobra.NoArgs,
	RunE:  runRun,
}

func init() {
	runCmd.Flags().Duration("interval", symstash.DefaultSyncInterval, "time between syncs")
	viper.BindPFlag("sync_interval", runCmd.Flags().Lookup("interval"))
	rootCmd.AddCommand(runCmd)
}

func runRun(_ *cobra.Command, _ []string) error {
	stash, err := openStash()
	if err != nil {
		return err
	}

	ctx, cancel := setupSignalHandler()
	defer cancel()

	interval := viper.GetDuration("sync_interval")
	logger.Info("starting sync loop", "path", stash.Path(), "interval", interval)

	err = stash.RunSyncLoop(ctx, interval, symstash.SyncOptions{})
	logger.Info("sync loop stopped")
	return err
}

func setupSignalHandler() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

