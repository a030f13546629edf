package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aweris/symstash"
	"github.com/aweris/symstash/internal/logging"
	"github.com/aweris/symstash/internal/remote"
)

var rootCmd = &cobra.Command{
	Use:   "symstash",
	Short: "Symbol database cache",
	Long:  "CLI for keeping a local cache of memdb symbol databases in sync with an OCI registry.",
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setupLogger(cmd)
	},
	PersistentPostRunE: func(*cobra.Command, []string) error {
		if logCloser == nil {
			return nil
		}
		return logCloser.Close()
	},
	SilenceUsage: true,
}

var (
	logger    = slog.New(slog.DiscardHandler)
	logCloser io.Closer
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ~/.config/symstash/config.yaml)")
	flags.String("symbol-dir", "", "symbol directory (default: ~/.local/share/symstash)")
	flags.String("remote", "", "catalog repository, e.g. ghcr.io/acme/memdbs")
	flags.Bool("insecure", false, "allow plain HTTP registries")
	flags.StringSlice("ignore", nil, "glob patterns of sdk ids to skip")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")
	flags.String("log-file", "", "write logs to a rotated file instead of stderr")
	flags.Int("concurrency", remote.DefaultConcurrency, "parallel registry requests")
	flags.Int("retries", remote.DefaultRetries, "attempts when the registry is unreachable")

	viper.BindPFlag("symbol_dir", flags.Lookup("symbol-dir"))
	viper.BindPFlag("remote", flags.Lookup("remote"))
	viper.BindPFlag("insecure", flags.Lookup("insecure"))
	viper.BindPFlag("ignore", flags.Lookup("ignore"))
	viper.BindPFlag("log_level", flags.Lookup("log-level"))
	viper.BindPFlag("log_format", flags.Lookup("log-format"))
	viper.BindPFlag("log_file", flags.Lookup("log-file"))
	viper.BindPFlag("concurrency", flags.Lookup("concurrency"))
	viper.BindPFlag("retries", flags.Lookup("retries"))
}

func initConfig() {
	if cfg := rootCmd.PersistentFlags().Lookup("config").Value.String(); cfg != "" {
		viper.SetConfigFile(cfg)
	} else {
		viper.AddConfigPath(configDir())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SYMSTASH")
	viper.AutomaticEnv()
	viper.SetDefault("symbol_dir", symstash.DefaultSymbolDir())
	viper.SetDefault("sync_interval", symstash.DefaultSyncInterval)

	viper.ReadInConfig()
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "symstash")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "symstash")
	}
	return ".symstash"
}

func setupLogger(cmd *cobra.Command) error {
	l, closer, err := logging.New(logging.Options{
		Level:  viper.GetString("log_level"),
		Format: viper.GetString("log_format"),
		File:   viper.GetString("log_file"),
	})
	if err != nil {
		return err
	}
	logger, logCloser = l.With("command", cmd.Name()), closer
	return nil
}

func newCatalog(extra ...remote.Option) (*remote.OCICatalog, error) {
	repo := viper.GetString("remote")
	if repo == "" {
		return nil, fmt.Errorf("no remote configured (set --remote or SYMSTASH_REMOTE)")
	}

	opts := []remote.Option{
		remote.WithConcurrency(viper.GetInt("concurrency")),
		remote.WithRetries(viper.GetInt("retries")),
		remote.WithLogger(logger),
	}
	if user := viper.GetString("registry_username"); user != "" {
		opts = append(opts, remote.WithAuth(remote.StaticAuthenticator{
			Username: user,
			Password: viper.GetString("registry_password"),
		}))
	}
	return remote.NewOCICatalog(repo, viper.GetBool("insecure"), append(opts, extra...)...)
}

func openStash() (*symstash.Stash, error) {
	catalog, err := newCatalog()
	if err != nil {
		return nil, err
	}
	return symstash.Open(viper.GetString("symbol_dir"), catalog,
		symstash.WithLogger(logger),
		symstash.WithIgnorePatterns(viper.GetStringSlice("ignore")...),
	)
}
