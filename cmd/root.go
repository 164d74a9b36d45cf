// Package cmd implements the magcorpus command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/magazine-corpus/internal/config"
	pkgconfig "github.com/JakeFAU/magazine-corpus/pkg/config"
)

type configKey struct{}

// newRootCmd builds the command tree. Configuration is loaded once in the
// persistent pre-run and handed to the subcommands through the context.
func newRootCmd() *cobra.Command {
	var (
		cfgFile  string
		dataRoot string
		dev      bool
		addr     string
	)
	cmd := &cobra.Command{
		Use:   "magcorpus",
		Short: "Harvest the Spiegel and Stern web archives into per-year JSON corpora",
		Long: `magcorpus discovers, downloads and extracts the weekly print archive of
DER SPIEGEL and the category archive of stern into one JSON file per year.

Every stage is resumable: state lives below the data root and a stage only
does the work that is still missing.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			v, err := pkgconfig.New(cfgFile)
			if err != nil {
				return err
			}
			flags := cmd.Root().PersistentFlags()
			for key, name := range map[string]string{
				"data.root":       "data-root",
				"log.development": "dev",
				"server.addr":     "addr",
			} {
				if f := flags.Lookup(name); f != nil && f.Changed {
					if err := v.BindPFlag(key, f); err != nil {
						return fmt.Errorf("bind --%s: %w", name, err)
					}
				}
			}
			cfg, err := config.Load(v)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml or $HOME/.magcorpus/config.yaml)")
	cmd.PersistentFlags().StringVar(&dataRoot, "data-root", "", "directory holding all pipeline state")
	cmd.PersistentFlags().BoolVar(&dev, "dev", false, "human readable debug logging")
	cmd.PersistentFlags().StringVar(&addr, "addr", "", "serve /metrics, /healthz and /v1/status on this address")

	cmd.AddCommand(
		newDiscoverCmd(),
		newDownloadCmd(),
		newExtractCmd(),
		newFinalizeCmd(),
		newPublishCmd(),
		newRunCmd(),
	)
	return cmd
}

// Execute runs the CLI and exits non-zero on failure. SIGINT and SIGTERM
// cancel the running stage, which flushes its ledgers before returning.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "interrupted")
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func configFrom(ctx context.Context) (config.Config, error) {
	cfg, ok := ctx.Value(configKey{}).(config.Config)
	if !ok {
		return config.Config{}, errors.New("configuration not loaded")
	}
	return cfg, nil
}
