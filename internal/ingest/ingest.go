// Package ingest pulls tournament data from OpenDota into the store: heroes,
// teams and their players, league info and per-player match rows.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/DoyleJ11/ti-helper/internal/observability"
	"github.com/DoyleJ11/ti-helper/internal/opendota"
	"github.com/DoyleJ11/ti-helper/internal/store"
)

// API is the subset of the OpenDota client ingestion needs.
type API interface {
	HeroStats(ctx context.Context) ([]opendota.HeroStat, error)
	League(ctx context.Context, leagueID int64) (opendota.League, error)
	LeagueMatches(ctx context.Context, leagueID int64) ([]opendota.LeagueMatch, error)
	LeagueTeams(ctx context.Context, leagueID int64) ([]opendota.LeagueTeam, error)
	TeamPlayers(ctx context.Context, teamID int64) ([]opendota.TeamPlayer, error)
	Match(ctx context.Context, matchID int64) (opendota.Match, error)
}

type Store interface {
	store.Catalog
	store.Writer
}

type Options struct {
	// Delay is the pause after each match fetch.
	Delay   time.Duration
	Logger  *zap.Logger
	Metrics *observability.Metrics
}

// Report summarizes one run.
type Report struct {
	Leagues int
	Teams   int
	Players int
	Matches int
	Rows    int
	Skipped int
}

type Ingester struct {
	api     API
	store   Store
	delay   time.Duration
	log     *zap.Logger
	metrics *observability.Metrics

	seen   *bloom.BloomFilter
	report Report
}

func New(api API, st Store, opts Options) *Ingester {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Ingester{
		api:     api,
		store:   st,
		delay:   opts.Delay,
		log:     log,
		metrics: opts.Metrics,
		seen:    bloom.NewWithEstimates(200_000, 0.001),
	}
}

// Run ingests the given leagues. Matches at or below the newest stored match
// id are assumed present. A failing league does not stop the others; the
// errors are returned together.
func (in *Ingester) Run(ctx context.Context, leagues []KnownLeague) (Report, error) {
	in.report = Report{}

	latest, err := in.store.LatestMatchID(ctx)
	if err != nil {
		return in.report, fmt.Errorf("latest match id: %w", err)
	}
	in.log.Info("starting ingestion", zap.Int64("latest_match_id", latest), zap.Int("leagues", len(leagues)))

	if latest == 0 {
		if err := in.Heroes(ctx); err != nil {
			return in.report, err
		}
	}

	var errs error
	for _, l := range leagues {
		if err := in.League(ctx, l, latest); err != nil {
			if ctx.Err() != nil {
				return in.report, multierr.Append(errs, ctx.Err())
			}
			in.log.Error("league ingestion failed", zap.String("league", l.Slug), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("league %s: %w", l.Slug, err))
		}
	}
	return in.report, errs
}

func (in *Ingester) Heroes(ctx context.Context) error {
	heroes, err := in.api.HeroStats(ctx)
	if err != nil {
		return fmt.Errorf("hero stats: %w", err)
	}
	for _, h := range heroes {
		err := in.store.UpsertHero(ctx, store.Hero{
			ID:               h.ID,
			Name:             h.LocalizedName,
			AttackType:       h.AttackType,
			PrimaryAttribute: h.PrimaryAttr,
			BaseAttackMin:    h.BaseAttackMin,
			BaseAttackMax:    h.BaseAttackMax,
		})
		if err != nil {
			return fmt.Errorf("upsert hero %d: %w", h.ID, err)
		}
	}
	in.log.Info("stored heroes", zap.Int("count", len(heroes)))
	return nil
}

// League ingests one league's teams, info and new matches.
func (in *Ingester) League(ctx context.Context, l KnownLeague, after int64) error {
	log := in.log.With(zap.String("league", l.Slug), zap.Int64("league_id", l.ID))

	if err := in.Teams(ctx, l.ID); err != nil {
		return err
	}

	matches, err := in.api.LeagueMatches(ctx, l.ID)
	if err != nil {
		return fmt.Errorf("league matches: %w", err)
	}
	if len(matches) == 0 {
		log.Info("league has no matches yet")
		return nil
	}

	if err := in.leagueInfo(ctx, l.ID, matches[0].MatchID); err != nil {
		return err
	}
	in.report.Leagues++

	for _, lm := range matches {
		if lm.MatchID <= after {
			continue
		}
		if in.seen.TestAndAdd(matchKey(lm.MatchID)) {
			continue
		}
		if err := in.match(ctx, l.ID, lm.MatchID); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("match ingestion failed", zap.Int64("match_id", lm.MatchID), zap.Error(err))
		}
		if err := sleep(ctx, in.delay); err != nil {
			return err
		}
	}
	log.Info("league ingested", zap.Int("matches", len(matches)))
	return nil
}

// Teams stores the league's teams and their named players.
func (in *Ingester) Teams(ctx context.Context, leagueID int64) error {
	teams, err := in.api.LeagueTeams(ctx, leagueID)
	if err != nil {
		return fmt.Errorf("league teams: %w", err)
	}
	for _, t := range teams {
		team := store.Team{ID: t.TeamID, Name: t.Name, Rating: int(math.Round(t.Rating))}
		if err := in.store.UpsertTeam(ctx, team); err != nil {
			return fmt.Errorf("upsert team %d: %w", t.TeamID, err)
		}
		if err := in.store.AddLeagueTeam(ctx, leagueID, t.TeamID); err != nil {
			return fmt.Errorf("link team %d: %w", t.TeamID, err)
		}
		in.report.Teams++

		players, err := in.api.TeamPlayers(ctx, t.TeamID)
		if err != nil {
			return fmt.Errorf("team %d players: %w", t.TeamID, err)
		}
		for _, p := range players {
			name := p.DisplayName()
			if name == "" || p.AccountID == 0 {
				continue
			}
			err := in.store.UpsertPlayer(ctx, store.Player{
				AccountID: p.AccountID,
				Name:      name,
				TeamID:    t.TeamID,
				Active:    p.IsCurrentTeamMember,
			})
			if err != nil {
				return fmt.Errorf("upsert player %d: %w", p.AccountID, err)
			}
			in.report.Players++
		}
	}
	return nil
}

// leagueInfo stores the league once, taking its patch from the first match.
func (in *Ingester) leagueInfo(ctx context.Context, leagueID, firstMatchID int64) error {
	_, err := in.store.League(ctx, leagueID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("lookup league: %w", err)
	}

	first, err := in.api.Match(ctx, firstMatchID)
	if err != nil {
		return fmt.Errorf("first match %d: %w", firstMatchID, err)
	}
	info, err := in.api.League(ctx, leagueID)
	if err != nil {
		return fmt.Errorf("league info: %w", err)
	}
	l := store.League{ID: leagueID, Name: info.Name, Tier: info.Tier, PatchID: first.Patch}
	if err := in.store.UpsertLeague(ctx, l); err != nil {
		return fmt.Errorf("upsert league: %w", err)
	}
	in.log.Info("stored league", zap.Int64("league_id", leagueID), zap.String("name", info.Name), zap.Int64("patch", first.Patch))
	return nil
}

func (in *Ingester) match(ctx context.Context, leagueID, matchID int64) error {
	m, err := in.api.Match(ctx, matchID)
	if err != nil {
		return err
	}
	if len(m.Players) == 0 {
		in.log.Warn("match has no player data", zap.Int64("match_id", matchID))
		return nil
	}

	rows, skips := MatchRows(m, leagueID)
	for _, s := range skips {
		in.metrics.PlayerSkipped(s.Reason)
		in.log.Debug("skipped player",
			zap.Int64("match_id", matchID),
			zap.Int64("account_id", s.AccountID),
			zap.Int64("hero_id", s.HeroID),
			zap.Error(s.Err))
	}
	in.report.Skipped += len(skips)

	if len(rows) > 0 {
		if err := in.store.InsertMatchRows(ctx, rows); err != nil {
			return fmt.Errorf("insert rows: %w", err)
		}
	}
	in.report.Matches++
	in.report.Rows += len(rows)
	in.metrics.MatchIngested()
	return nil
}

func matchKey(id int64) []byte {
	return strconv.AppendInt(nil, id, 10)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
