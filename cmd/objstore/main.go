// Command objstore inspects and maintains an object store database.
//
//	objstore [flags] set KEY VALUE [EXPIRES]
//	objstore [flags] get KEY
//	objstore [flags] exists KEY
//	objstore [flags] del KEY
//	objstore [flags] expires KEY [EXPIRES]
//	objstore [flags] keys [PREFIX]
//	objstore [flags] sweep
//	objstore [flags] stats
//	objstore [flags] serve
//	objstore version
//
// Configuration comes from OBJSTORE_* environment variables, overridden by
// flags.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/flowmesh/objectstore/internal/config"
	"github.com/flowmesh/objectstore/internal/logger"
	"github.com/flowmesh/objectstore/internal/version"
	"github.com/flowmesh/objectstore/objectstore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "objstore: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	cfg, rest, err := config.Load(args)
	if err != nil {
		return err
	}
	if len(rest) == 0 {
		return fmt.Errorf("missing command (set, get, exists, del, expires, keys, sweep, stats, serve, version)")
	}

	if rest[0] == "version" {
		fmt.Fprintln(out, version.String())
		return nil
	}

	if err := logger.Init(cfg.LoggerConfig()); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	opts, err := storeOptions(cfg)
	if err != nil {
		return err
	}

	if rest[0] == "serve" {
		return serve(ctx, cfg, opts)
	}

	store, err := objectstore.Open(ctx, cfg.Store.Location, opts...)
	if err != nil {
		return err
	}
	defer store.Close()

	return runCommand(ctx, store, rest, out)
}

// storeOptions translates the store section of the configuration
func storeOptions(cfg *config.Config) ([]objectstore.Option, error) {
	codec, err := objectstore.CodecByName(strings.ToLower(cfg.Store.Codec))
	if err != nil {
		return nil, err
	}

	return []objectstore.Option{
		objectstore.WithSweepOnOpen(cfg.Store.SweepOnOpen),
		objectstore.WithDriver(objectstore.SQLiteDriver{BusyTimeout: cfg.Store.BusyTimeout}),
		objectstore.WithCodec(codec),
		objectstore.WithDefaultExpiry(objectstore.In(cfg.Store.DefaultExpiry)),
		objectstore.WithLogger(logger.Logger()),
	}, nil
}
