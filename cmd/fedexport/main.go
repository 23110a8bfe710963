// Command fedexport snapshots every federated collection to CSV and archives
// the files. Backends and the archive are configured through FEDSTORE_*
// environment variables; see internal/config.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"fedstore/internal/archive"
	"fedstore/internal/config"
	"fedstore/internal/export"
)

func main() {
	timeout := flag.Duration("timeout", time.Minute, "overall run deadline")
	verbose := flag.Bool("v", false, "log at debug level")
	flag.Parse()

	log, err := buildLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fedexport: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(*timeout, log); err != nil {
		log.Error("export failed", zap.Error(err))
		os.Exit(1)
	}
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

func run(timeout time.Duration, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	stores, closeAll, err := config.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeAll(context.Background())

	snapshots, err := archive.Open(ctx, cfg.ArchiveConfig())
	if err != nil {
		return err
	}

	exporter := export.New(stores.Registrations, stores.Contacts, stores.Signups, snapshots, log)
	results, err := exporter.Snapshot(ctx)
	if err != nil {
		return err
	}
	for _, res := range results {
		fmt.Printf("%s\t%d rows\n", res.Key, res.Rows)
	}
	return nil
}
