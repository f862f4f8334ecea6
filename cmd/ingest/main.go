// Command ingest pulls tournaments from OpenDota into the store. Positional
// arguments pick leagues by slug or id; with none, every known league is
// ingested.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/DoyleJ11/ti-helper/internal/config"
	"github.com/DoyleJ11/ti-helper/internal/ingest"
	"github.com/DoyleJ11/ti-helper/internal/logging"
	"github.com/DoyleJ11/ti-helper/internal/observability"
	"github.com/DoyleJ11/ti-helper/internal/opendota"
	"github.com/DoyleJ11/ti-helper/internal/store/backend"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "ingest:", err)
		os.Exit(1)
	}
}

func run() (err error) {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load("ingest", os.Args[1:])
	if err != nil {
		return err
	}
	leagues, err := ingest.LookupLeagues(cfg.Args)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, cfg.Development)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := backend.Open(ctx, cfg, log.Named("store"))
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, st.Close()) }()

	client := opendota.New(cfg.OpenDotaURL,
		opendota.WithAPIKey(cfg.OpenDotaAPIKey),
		opendota.WithLogger(log.Named("opendota")),
		opendota.WithCache(st),
		opendota.WithCacheSize(cfg.CacheSize),
		opendota.WithTimeout(cfg.HTTPTimeout),
	)

	in := ingest.New(client, st, ingest.Options{
		Delay:   cfg.IngestDelay,
		Logger:  log.Named("ingest"),
		Metrics: observability.NewMetrics(""),
	})
	rep, err := in.Run(ctx, leagues)
	log.Info("ingestion finished",
		zap.Int("leagues", rep.Leagues),
		zap.Int("teams", rep.Teams),
		zap.Int("players", rep.Players),
		zap.Int("matches", rep.Matches),
		zap.Int("rows", rep.Rows),
		zap.Int("skipped_players", rep.Skipped),
	)
	return err
}
