package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reformtrack/align/export"
	"github.com/reformtrack/align/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Loads the dataset, probes for PNG export support and serves the
render and export endpoints until interrupted.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader := newLoader()
	// Refuse to start without data.
	ds, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	logger.Info("dataset ready", zap.Int("rows", ds.Len()), zap.Int("skipped", ds.Skipped))

	png := export.DetectRenderer(export.RendererOptions{
		BrowserBin: cfg.Export.BrowserBin,
		Disabled:   !cfg.Export.PNG,
		Width:      cfg.Export.Width,
		Height:     cfg.Export.Height,
		Logger:     logger,
	})
	defer func() {
		if err := png.Close(); err != nil {
			logger.Warn("close renderer", zap.Error(err))
		}
	}()

	return server.New(cfg, loader, png, logger).Run(ctx)
}

