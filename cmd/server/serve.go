package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/signalk/chart-tiles/internal/api"
	"github.com/signalk/chart-tiles/internal/config"
	"github.com/signalk/chart-tiles/internal/fetcher"
	"github.com/signalk/chart-tiles/internal/jobs"
	"github.com/signalk/chart-tiles/internal/mbtiles"
	"github.com/signalk/chart-tiles/internal/provider"
	"github.com/signalk/chart-tiles/internal/tilecache"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg := config.Load()
	log := newLogger(cfg.Log)

	if err := os.MkdirAll(cfg.Cache.Root, 0o755); err != nil {
		return fmt.Errorf("creating cache root: %w", err)
	}

	providers, err := provider.LoadFile(cfg.Server.ProvidersFile, mbtilesOpener(log), log)
	if err != nil {
		return fmt.Errorf("loading providers: %w", err)
	}

	f := fetcher.New(cfg.Cache.FetchTimeout, cfg.Cache.FetchRatePerSecond, cfg.Cache.FetchBurst, log)
	cache := tilecache.New(f, cfg.Cache.Root, int64(cfg.Cache.FreeSpaceCheckEvery), cfg.Cache.FreeSpaceThresholdBytes, prometheus.DefaultRegisterer, log)
	registry := jobs.NewRegistry(cfg.Cache.Root, log)
	prometheus.DefaultRegisterer.MustRegister(registry)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := api.New(ctx, api.Deps{
		Providers:            providers,
		Cache:                cache,
		Registry:             registry,
		CacheRoot:            cfg.Cache.Root,
		SeedConcurrency:      cfg.Job.Concurrency,
		SampleGridSize:       cfg.Job.SampleGridSize,
		SmallRegionThreshold: cfg.Job.SmallRegionThreshold,
		SmallRegionCountCap:  cfg.Job.SmallRegionCountCap,
		DiskCheckEvery:       int64(cfg.Cache.FreeSpaceCheckEvery),
		DiskMinFreeBytes:     cfg.Cache.FreeSpaceThresholdBytes,
		Log:                  log,
	})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Info().Msg("server: shutting down")
		cancel()
		server.Echo.Close()
	}()

	log.Info().Str("addr", cfg.Server.ListenAddr).Msg("server: listening")
	if err := server.Echo.Start(cfg.Server.ListenAddr); err != nil {
		log.Info().Err(err).Msg("server: stopped")
	}
	return nil
}

func mbtilesOpener(log zerolog.Logger) provider.OpenFunc {
	return func(path string, entry provider.FileEntry) (provider.MBTilesHandle, error) {
		return mbtiles.Open(path, mbtiles.Metadata{
			Name:    entry.Identifier,
			Type:    "baselayer",
			Version: "1",
			Format:  string(entry.Format),
			MinZoom: entry.MinZoom,
			MaxZoom: entry.MaxZoom,
		}, log)
	}
}

func newLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Pretty {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
