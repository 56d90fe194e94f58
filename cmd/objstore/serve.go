package main

import (
	"context"
	"fmt"
	"time"

	"github.com/flowmesh/objectstore/internal/config"
	"github.com/flowmesh/objectstore/internal/logger"
	"github.com/flowmesh/objectstore/internal/metrics"
	"github.com/flowmesh/objectstore/internal/sweeper"
	"github.com/flowmesh/objectstore/internal/tracing"
	"github.com/flowmesh/objectstore/internal/version"
	"github.com/flowmesh/objectstore/objectstore"
)

// serve keeps the store open, sweeping it periodically and exposing metrics,
// until ctx is cancelled
func serve(ctx context.Context, cfg *config.Config, opts []objectstore.Option) error {
	log := logger.WithComponent("serve")

	provider, err := tracing.NewProvider(ctx, cfg.TracingConfig(version.Get().Version))
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to shut down tracing")
		}
	}()

	collector := metrics.NewProcessCollector()
	storeMetrics := metrics.NewStoreMetrics(collector, cfg.Store.Location)
	opts = append(opts, objectstore.WithObserver(storeMetrics))

	store, err := objectstore.Open(ctx, cfg.Store.Location, opts...)
	if err != nil {
		return err
	}

	if n, err := store.Len(ctx); err == nil {
		storeMetrics.SetRecords(n)
	}

	var sw *sweeper.Sweeper
	if cfg.Sweeper.Enabled {
		sw = sweeper.New(store, cfg.Sweeper.Interval, sweeper.WithRecordGauge(storeMetrics))
		if err := sw.Start(ctx); err != nil {
			_ = store.Close()
			return err
		}
	}

	var srv *metrics.Server
	if cfg.Metrics.Enabled {
		srv = metrics.NewServer(cfg.Metrics.Addr, cfg.Metrics.Path, collector.GetRegistry(), func(ctx context.Context) error {
			_, err := store.Len(ctx)
			return err
		})
		if err := srv.Start(ctx); err != nil {
			if sw != nil {
				_ = sw.Stop(context.Background())
			}
			_ = store.Close()
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
	}

	log.Info().
		Str("location", cfg.Store.Location).
		Bool("sweeper", cfg.Sweeper.Enabled).
		Bool("metrics", cfg.Metrics.Enabled).
		Msg("Serving object store")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var lastErr error
	if srv != nil {
		if err := srv.Stop(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to stop metrics server")
			lastErr = err
		}
	}
	if sw != nil {
		if err := sw.Stop(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to stop sweeper")
			lastErr = err
		}
	}
	if err := store.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close store")
		lastErr = err
	}

	log.Info().Msg("Object store stopped")
	return lastErr
}
