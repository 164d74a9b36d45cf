package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	return siteCommand("run", "Discover, download, extract and finalize in one go, then publish if configured",
		func(ctx context.Context, a *app) error {
			for _, stage := range []func(context.Context, *app) error{
				runDiscover, runDownload, runExtract, runFinalize,
			} {
				if err := stage(ctx, a); err != nil {
					return err
				}
			}
			if !a.cfg.Publish.Enabled() {
				a.logger.Info("publishing disabled, stopping after finalize")
				return nil
			}
			return runPublish(ctx, a, false)
		})
}
