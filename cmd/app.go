package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JakeFAU/magazine-corpus/internal/clock"
	"github.com/JakeFAU/magazine-corpus/internal/clock/system"
	"github.com/JakeFAU/magazine-corpus/internal/config"
	"github.com/JakeFAU/magazine-corpus/internal/fetch"
	"github.com/JakeFAU/magazine-corpus/internal/logging"
	"github.com/JakeFAU/magazine-corpus/internal/metrics"
	"github.com/JakeFAU/magazine-corpus/internal/server"
)

// app holds what every stage of one CLI invocation shares.
type app struct {
	cfg      config.Config
	site     sitePipeline
	runID    string
	clock    clock.Clock
	logger   *zap.Logger
	closeLog func() error
	status   *server.Status

	stopServer context.CancelFunc
	serverDone chan error
}

func newApp(ctx context.Context, site string) (*app, error) {
	cfg, err := configFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := config.CheckSite(site); err != nil {
		return nil, err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate run id: %w", err)
	}

	a := &app{cfg: cfg, runID: id.String(), clock: system.New()}
	a.site = newSitePipeline(site, cfg, a.clock)

	logFile := cfg.Log.File
	if logFile == "" {
		logFile = a.site.LogFile()
	}
	logger, closeLog, err := logging.NewWithFile(cfg.Log.Development, logFile)
	if err != nil {
		return nil, err
	}
	a.logger = logger.With(zap.String("run_id", a.runID), zap.String("site", site))
	a.closeLog = closeLog
	a.status = server.NewStatus(a.runID, site)
	metrics.Init()

	if cfg.Server.Addr != "" {
		a.startServer(ctx)
	}
	return a, nil
}

func (a *app) startServer(ctx context.Context) {
	srvCtx, cancel := context.WithCancel(ctx)
	a.stopServer = cancel
	a.serverDone = make(chan error, 1)
	srv := server.New(a.status, a.logger.Named("server"))
	go func() {
		a.serverDone <- srv.ListenAndServe(srvCtx, a.cfg.Server.Addr)
	}()
}

// Close stops the ops endpoint and flushes the log file.
func (a *app) Close() {
	if a.stopServer != nil {
		a.stopServer()
		if err := <-a.serverDone; err != nil {
			a.logger.Warn("ops endpoint stopped with error", zap.Error(err))
		}
	}
	_ = a.closeLog() //nolint:errcheck // nowhere left to report it
}

// stage runs one named pipeline stage with its own logger and status entry.
func (a *app) stage(ctx context.Context, name string, fn func(context.Context, *zap.Logger) error) error {
	logger := a.logger.Named(name)
	start := a.clock.Now()
	a.status.Begin(name, start)
	logger.Info("stage started")

	err := fn(ctx, logger)
	a.status.End(err)
	switch {
	case errors.Is(err, context.Canceled):
		logger.Warn("stage interrupted", zap.Duration("elapsed", time.Since(start)))
	case err != nil:
		logger.Error("stage failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
	default:
		logger.Info("stage finished", zap.Duration("elapsed", time.Since(start)))
	}
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// fetcher builds the HTTP session shared by discovery and download.
func (a *app) fetcher(logger *zap.Logger) *fetch.Fetcher {
	fc := a.cfg.Fetch
	return fetch.New(fetch.Config{
		UserAgent:     fc.UserAgent,
		RespectRobots: fc.RespectRobots,
		Timeout:       fc.Timeout,
		DelayMin:      fc.DelayMin,
		DelayMax:      fc.DelayMax,
		Schedule:      fc.Schedule,
		MaxRetries:    fc.MaxRetries,
		RPS:           fc.MaxRPS,
	}, fetch.WithLogger(logger.Named("fetch")))
}

// withApp adapts a stage body into a cobra RunE taking the site argument.
func withApp(run func(ctx context.Context, a *app) error) func(cmdCtx context.Context, site string) error {
	return func(ctx context.Context, site string) error {
		a, err := newApp(ctx, site)
		if err != nil {
			return err
		}
		defer a.Close()
		return run(ctx, a)
	}
}
