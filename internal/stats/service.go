package stats

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/DoyleJ11/ti-helper/internal/store"
)

// Source is the slice of the store the service reads.
type Source interface {
	League(ctx context.Context, id int64) (store.League, error)
	Matches(ctx context.Context, f store.MatchFilter) ([]store.MatchRow, error)
}

// Service computes stats bundles from stored match rows.
type Service struct {
	src Source
}

func NewService(src Source) *Service {
	return &Service{src: src}
}

// Bundle computes every section the query has subjects for. Sections without
// matching rows are left out.
func (s *Service) Bundle(ctx context.Context, q Query) (Bundle, error) {
	scope, err := s.scope(ctx, q)
	if err != nil {
		return nil, err
	}

	playerID := parseID(q.PlayerID)
	heroID := parseID(q.HeroID)
	lane := laneFilterFor(q)

	bundle := Bundle{}

	if playerID != 0 && heroID != 0 {
		f := scope
		f.AccountID, f.HeroID = playerID, heroID
		if err := s.section(ctx, bundle, SectionPlayerHero, f, lane); err != nil {
			return nil, err
		}
	}

	if heroID != 0 {
		f := scope
		f.HeroID = heroID
		if err := s.section(ctx, bundle, SectionHeroBaseline, f, lane); err != nil {
			return nil, err
		}
	}

	if playerID != 0 {
		f := scope
		f.AccountID = playerID
		if err := s.section(ctx, bundle, SectionPlayerOverall, f, laneFilter{}); err != nil {
			return nil, err
		}
	}

	return bundle, nil
}

// scope turns the context into a league or patch restriction.
func (s *Service) scope(ctx context.Context, q Query) (store.MatchFilter, error) {
	leagueID := parseID(q.LeagueID)

	switch q.Context {
	case ContextTournament:
		return store.MatchFilter{LeagueID: leagueID}, nil
	case ContextPatch:
		if leagueID == 0 {
			return store.MatchFilter{}, nil
		}
		league, err := s.src.League(ctx, leagueID)
		if errors.Is(err, store.ErrNotFound) {
			return store.MatchFilter{}, fmt.Errorf("league %d: %w", leagueID, err)
		}
		if err != nil {
			return store.MatchFilter{}, fmt.Errorf("load league %d: %w", leagueID, err)
		}
		return store.MatchFilter{PatchID: league.PatchID}, nil
	case ContextAllTime:
		return store.MatchFilter{}, nil
	default:
		return store.MatchFilter{}, ErrUnknownContext
	}
}

func (s *Service) section(ctx context.Context, b Bundle, sec Section, f store.MatchFilter, lane laneFilter) error {
	rows, err := s.src.Matches(ctx, f)
	if err != nil {
		return fmt.Errorf("load matches for %s: %w", sec, err)
	}

	kept := rows[:0]
	for _, r := range rows {
		if lane.matches(r) {
			kept = append(kept, r)
		}
	}

	metrics := map[Metric]Summary{}
	for _, m := range Metrics {
		if sum, ok := Summarize(samplesOf(kept, m)); ok {
			metrics[m] = sum
		}
	}
	if len(metrics) > 0 {
		b[sec] = metrics
	}
	return nil
}

// laneFilter narrows rows to a laning matchup.
type laneFilter struct {
	friendly int64
	enemies  []int64
	side     string
}

func laneFilterFor(q Query) laneFilter {
	lf := laneFilter{friendly: parseID(q.FriendlyHeroID), side: q.Side}
	for _, id := range q.EnemyHeroIDs {
		if e := parseID(id); e != 0 {
			lf.enemies = append(lf.enemies, e)
		}
	}
	return lf
}

func (lf laneFilter) matches(r store.MatchRow) bool {
	if lf.friendly != 0 && !slices.Contains(r.AlliedHeroes, lf.friendly) {
		return false
	}
	for _, e := range lf.enemies {
		if !slices.Contains(r.EnemyHeroes, e) {
			return false
		}
	}
	switch lf.side {
	case SideRadiant:
		return r.IsRadiant
	case SideDire:
		return !r.IsRadiant
	}
	return true
}
