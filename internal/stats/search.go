package stats

import (
	"context"
	"fmt"
	"sort"

	"github.com/DoyleJ11/ti-helper/internal/store"
)

type SearchSource interface {
	PlayersByNamePrefix(ctx context.Context, prefix string) ([]store.Player, error)
	Matches(ctx context.Context, f store.MatchFilter) ([]store.MatchRow, error)
}

// PlayerResult is the mean and median of a player's tracked metrics.
type PlayerResult struct {
	AccountID int64
	Name      string
	Games     int
	Mean      map[Metric]float64
	Median    map[Metric]float64
}

// SearchPlayers summarizes every player whose name starts with prefix, limited
// to heroID when it is non-zero. Players without matches are left out.
func SearchPlayers(ctx context.Context, src SearchSource, prefix string, heroID int64) ([]PlayerResult, error) {
	players, err := src.PlayersByNamePrefix(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("players by prefix: %w", err)
	}

	seen := make(map[int64]bool, len(players))
	var out []PlayerResult
	for _, p := range players {
		if seen[p.AccountID] {
			continue
		}
		seen[p.AccountID] = true

		rows, err := src.Matches(ctx, store.MatchFilter{AccountID: p.AccountID, HeroID: heroID})
		if err != nil {
			return nil, fmt.Errorf("matches for %d: %w", p.AccountID, err)
		}
		if len(rows) == 0 {
			continue
		}

		res := PlayerResult{
			AccountID: p.AccountID,
			Name:      p.Name,
			Games:     len(rows),
			Mean:      make(map[Metric]float64, len(Metrics)),
			Median:    make(map[Metric]float64, len(Metrics)),
		}
		for _, m := range Metrics {
			samples := samplesOf(rows, m)
			sum, _ := Summarize(samples)
			res.Mean[m] = sum.Mean
			res.Median[m] = Median(samples)
		}
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
