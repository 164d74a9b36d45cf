package cmd

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/magazine-corpus/internal/publish"
	"github.com/JakeFAU/magazine-corpus/internal/storage/gcs"
	"github.com/JakeFAU/magazine-corpus/internal/storage/memory"
)

var errPublishDisabled = errors.New("publishing disabled: set publish.bucket")

func newPublishCmd() *cobra.Command {
	var dryRun bool
	cmd := siteCommand("publish", "Upload finished year files to the configured bucket",
		func(ctx context.Context, a *app) error {
			return runPublish(ctx, a, dryRun)
		})
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list the uploads without contacting the bucket")
	return cmd
}

func runPublish(ctx context.Context, a *app, dryRun bool) error {
	if !dryRun && !a.cfg.Publish.Enabled() {
		return errPublishDisabled
	}
	return a.stage(ctx, "publish", func(ctx context.Context, logger *zap.Logger) error {
		store, closeStore, err := a.blobStore(ctx, dryRun)
		if err != nil {
			return err
		}
		defer closeStore()
		uploads, err := publish.Run(ctx, a.site.CorpusDir(), a.site.YearFilePattern(), store, logger)
		for _, u := range uploads {
			logger.Debug("uploaded", zap.String("file", u.Name), zap.String("uri", u.URI), zap.Bool("dry_run", dryRun))
		}
		return err
	})
}

// blobStore returns the publish target. Dry runs write to memory.
func (a *app) blobStore(ctx context.Context, dryRun bool) (publish.BlobStore, func(), error) {
	if dryRun {
		return memory.NewBlobStore(), func() {}, nil
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("create storage client: %w", err)
	}
	store, err := gcs.New(client, gcs.Config{
		Bucket: a.cfg.Publish.Bucket,
		Prefix: a.cfg.Publish.Prefix,
		RunID:  a.runID,
	})
	if err != nil {
		_ = client.Close() //nolint:errcheck // construction already failed
		return nil, nil, err
	}
	return store, func() {
		if err := client.Close(); err != nil {
			a.logger.Warn("close storage client", zap.Error(err))
		}
	}, nil
}
