package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/magazine-corpus/internal/config"
)

var siteArgs = []string{config.SiteSpiegel, config.SiteStern}

// siteCommand builds a subcommand taking exactly one site argument.
func siteCommand(use, short string, run func(ctx context.Context, a *app) error) *cobra.Command {
	body := withApp(run)
	return &cobra.Command{
		Use:       use + " {spiegel|stern}",
		Short:     short,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: siteArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return body(cmd.Context(), args[0])
		},
	}
}

func newDiscoverCmd() *cobra.Command {
	return siteCommand("discover", "Collect unit and article URLs from the archive", runDiscover)
}

func newDownloadCmd() *cobra.Command {
	return siteCommand("download", "Mirror every discovered unit and article page to disk", runDownload)
}

func newExtractCmd() *cobra.Command {
	return siteCommand("extract", "Turn downloaded pages into one JSON file per year", runExtract)
}

func newFinalizeCmd() *cobra.Command {
	return siteCommand("finalize", "Sort year files and stamp their sizes", runFinalize)
}

func runDiscover(ctx context.Context, a *app) error {
	return a.stage(ctx, "discover", func(ctx context.Context, logger *zap.Logger) error {
		return a.site.Discover(ctx, a.fetcher(logger), logger)
	})
}

func runDownload(ctx context.Context, a *app) error {
	return a.stage(ctx, "download", func(ctx context.Context, logger *zap.Logger) error {
		return a.site.Download(ctx, a.fetcher(logger), logger)
	})
}

func runExtract(ctx context.Context, a *app) error {
	return a.stage(ctx, "extract", a.site.Extract)
}

func runFinalize(ctx context.Context, a *app) error {
	return a.stage(ctx, "finalize", func(_ context.Context, logger *zap.Logger) error {
		return a.site.Finalize(logger)
	})
}
