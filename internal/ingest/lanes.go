package ingest

import (
	"errors"
	"fmt"

	"github.com/DoyleJ11/ti-helper/internal/opendota"
	"github.com/DoyleJ11/ti-helper/internal/store"
)

// minute5 indexes the per-minute lh_t/dn_t series.
const minute5 = 5

const roamingRole = 4.5

var (
	errShortGame       = errors.New("game ended before five minutes")
	errInvalidLaneRole = errors.New("invalid lane role")
	errAnonymous       = errors.New("anonymous account")
)

// Skip records a player left out of a match's rows.
type Skip struct {
	AccountID int64
	HeroID    int64
	Reason    string
	Err       error
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, errShortGame):
		return "short_game"
	case errors.Is(err, errInvalidLaneRole):
		return "invalid_lane_role"
	case errors.Is(err, errAnonymous):
		return "anonymous"
	default:
		return "other"
	}
}

// MatchRows turns a parsed match into one row per player.
func MatchRows(m opendota.Match, leagueID int64) ([]store.MatchRow, []Skip) {
	var (
		rows  []store.MatchRow
		skips []Skip
	)
	for _, p := range m.Players {
		row, err := playerRow(m, p, leagueID)
		if err != nil {
			skips = append(skips, Skip{AccountID: p.AccountID, HeroID: p.HeroID, Reason: skipReason(err), Err: err})
			continue
		}
		rows = append(rows, row)
	}
	return rows, skips
}

func playerRow(m opendota.Match, p opendota.MatchPlayer, leagueID int64) (store.MatchRow, error) {
	if len(p.LastHits) <= minute5 {
		return store.MatchRow{}, errShortGame
	}
	if p.AccountID == 0 {
		return store.MatchRow{}, errAnonymous
	}
	role, err := laneRole(p)
	if err != nil {
		return store.MatchRow{}, err
	}

	var allies, enemies []int64
	var teammates []opendota.MatchPlayer
	for _, o := range m.Players {
		if o.Lane != p.Lane {
			continue
		}
		if o.IsRadiant != p.IsRadiant {
			enemies = append(enemies, o.HeroID)
			continue
		}
		allies = append(allies, o.HeroID)
		if o.HeroID != p.HeroID {
			teammates = append(teammates, o)
		}
	}

	denies := 0
	if len(p.Denies) > minute5 {
		denies = p.Denies[minute5]
	}

	return store.MatchRow{
		LeagueID:     leagueID,
		MatchID:      m.MatchID,
		AccountID:    p.AccountID,
		HeroID:       p.HeroID,
		Kills:        p.HeroKills,
		LastHitsAt5:  p.LastHits[minute5],
		DeniesAt5:    denies,
		AlliedHeroes: allies,
		EnemyHeroes:  enemies,
		LaneRole:     supportAdjusted(role, p, teammates),
		IsRoaming:    p.IsRoaming,
		IsRadiant:    p.IsRadiant,
		PatchID:      m.Patch,
	}, nil
}

// laneRole maps OpenDota's lane_role, folding roamers and junglers into 4.5.
func laneRole(p opendota.MatchPlayer) (float64, error) {
	if p.IsRoaming || p.LaneRole == 4 {
		return roamingRole, nil
	}
	if p.LaneRole <= 0 {
		return 0, fmt.Errorf("%w %d", errInvalidLaneRole, p.LaneRole)
	}
	return float64(p.LaneRole), nil
}

// supportAdjusted demotes a laner to a support position when their lane
// partner had at least as many last hits at five minutes.
func supportAdjusted(role float64, p opendota.MatchPlayer, teammates []opendota.MatchPlayer) float64 {
	if len(teammates) == 0 {
		return role
	}
	mate := teammates[0]
	if mate.IsRoaming || mate.LaneRole == 4 || len(mate.LastHits) <= minute5 {
		return role
	}
	if mate.LastHits[minute5] < p.LastHits[minute5] {
		return role
	}
	switch role {
	case 1:
		return 5
	case 2:
		return roamingRole
	case 3:
		return 4
	}
	return role
}
