// Command search prints last-hit and kill averages for players whose name
// starts with a prefix.
//
//	search [flags] <prefix> [hero_id]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"go.uber.org/multierr"

	"github.com/DoyleJ11/ti-helper/internal/config"
	"github.com/DoyleJ11/ti-helper/internal/logging"
	"github.com/DoyleJ11/ti-helper/internal/stats"
	"github.com/DoyleJ11/ti-helper/internal/store/backend"
)

func main() {
	if err := run(os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "search:", err)
		os.Exit(1)
	}
}

func run(w io.Writer) (err error) {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load("search", os.Args[1:])
	if err != nil {
		return err
	}
	if len(cfg.Args) < 1 {
		return errors.New("usage: search [flags] <prefix> [hero_id]")
	}
	prefix := cfg.Args[0]
	var heroID int64
	if len(cfg.Args) > 1 {
		if heroID, err = strconv.ParseInt(cfg.Args[1], 10, 64); err != nil {
			return fmt.Errorf("hero id %q: %w", cfg.Args[1], err)
		}
	}

	log, err := logging.New(cfg.LogLevel, cfg.Development)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	st, err := backend.Open(ctx, cfg, log.Named("store"))
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, st.Close()) }()

	results, err := stats.SearchPlayers(ctx, st, prefix, heroID)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintf(w, "No data found for players with name starting with %q\n", prefix)
		return nil
	}
	return printResults(w, results)
}

func printResults(w io.Writer, results []stats.PlayerResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PLAYER\tGAMES\tLH@5 AVG\tLH@5 MEDIAN\tKILLS AVG\tKILLS MEDIAN")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%d\t%.1f\t%.1f\t%.1f\t%.1f\n",
			r.Name, r.Games,
			r.Mean[stats.MetricLastHits], r.Median[stats.MetricLastHits],
			r.Mean[stats.MetricKills], r.Median[stats.MetricKills],
		)
	}
	return tw.Flush()
}
