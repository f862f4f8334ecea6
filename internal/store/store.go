// Package store holds the tournament data the dashboard aggregates: leagues,
// teams, players, heroes and one row per player per match.
package store

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when a record fails validation.
	ErrInvalidInput = errors.New("invalid input")
)

type League struct {
	ID      int64  `json:"league_id"`
	Name    string `json:"league_name"`
	Tier    string `json:"tier"`
	PatchID int64  `json:"patch_id"`
}

type Team struct {
	ID     int64  `json:"team_id"`
	Name   string `json:"team_name"`
	Rating int    `json:"rating"`
}

type Player struct {
	AccountID int64  `json:"player_account_id"`
	Name      string `json:"player_name"`
	TeamID    int64  `json:"player_team_id"`
	Active    bool   `json:"is_active"`
}

type Hero struct {
	ID               int64  `json:"hero_id"`
	Name             string `json:"hero_name"`
	AttackType       string `json:"attack_type,omitempty"`
	PrimaryAttribute string `json:"primary_attribute,omitempty"`
	BaseAttackMin    int    `json:"base_attack_min,omitempty"`
	BaseAttackMax    int    `json:"base_attack_max,omitempty"`
}

// MatchRow is one player's laning numbers in one match.
type MatchRow struct {
	LeagueID     int64
	MatchID      int64
	AccountID    int64
	HeroID       int64
	Kills        int
	LastHitsAt5  int
	DeniesAt5    int
	AlliedHeroes []int64 // same side, same lane, including HeroID
	EnemyHeroes  []int64
	LaneRole     float64
	IsRoaming    bool
	IsRadiant    bool
	PatchID      int64
}

// MatchFilter selects match rows. Zero fields do not filter.
type MatchFilter struct {
	AccountID int64
	HeroID    int64
	LeagueID  int64
	PatchID   int64
}

// Matches reports whether row passes the filter.
func (f MatchFilter) Matches(row MatchRow) bool {
	if f.AccountID != 0 && row.AccountID != f.AccountID {
		return false
	}
	if f.HeroID != 0 && row.HeroID != f.HeroID {
		return false
	}
	if f.LeagueID != 0 && row.LeagueID != f.LeagueID {
		return false
	}
	if f.PatchID != 0 && row.PatchID != f.PatchID {
		return false
	}
	return true
}

// Catalog is the read side used by the data service.
type Catalog interface {
	Leagues(ctx context.Context) ([]League, error)

	// League returns ErrNotFound if the league is unknown.
	League(ctx context.Context, id int64) (League, error)

	// MostRecentLeague returns the league with the highest id, or ErrNotFound.
	MostRecentLeague(ctx context.Context) (League, error)

	Teams(ctx context.Context) ([]Team, error)

	// TeamsByLeague returns teams that took part in the league, ordered by rating desc.
	TeamsByLeague(ctx context.Context, leagueID int64) ([]Team, error)

	Players(ctx context.Context) ([]Player, error)

	// PlayersByTeam returns the active members of a team ordered by name.
	PlayersByTeam(ctx context.Context, teamID int64) ([]Player, error)

	PlayersByNamePrefix(ctx context.Context, prefix string) ([]Player, error)

	// Heroes returns every hero ordered by name.
	Heroes(ctx context.Context) ([]Hero, error)

	// HeroesByPlayer returns heroes the player has match rows for, ordered by name.
	HeroesByPlayer(ctx context.Context, accountID int64) ([]Hero, error)

	Matches(ctx context.Context, f MatchFilter) ([]MatchRow, error)

	// LatestMatchID returns 0 when no match rows exist.
	LatestMatchID(ctx context.Context) (int64, error)
}

// Writer is the ingestion side.
type Writer interface {
	UpsertHero(ctx context.Context, h Hero) error
	UpsertLeague(ctx context.Context, l League) error
	UpsertTeam(ctx context.Context, t Team) error
	AddLeagueTeam(ctx context.Context, leagueID, teamID int64) error
	UpsertPlayer(ctx context.Context, p Player) error

	// InsertMatchRows skips rows whose (match, account) pair already exists.
	InsertMatchRows(ctx context.Context, rows []MatchRow) error
}

// ResponseCache persists raw upstream API responses keyed by endpoint.
type ResponseCache interface {
	// CachedResponse returns ErrNotFound on a miss.
	CachedResponse(ctx context.Context, endpoint string) ([]byte, time.Time, error)
	CacheResponse(ctx context.Context, endpoint string, body []byte) error
}

type Store interface {
	Catalog
	Writer
	ResponseCache
	Close() error
}

// EncodeIDs renders ids as a comma separated column value.
func EncodeIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// DecodeIDs parses a column written by EncodeIDs. Malformed entries are dropped.
func DecodeIDs(s string) []int64 {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func ValidateMatchRow(r MatchRow) error {
	if r.MatchID == 0 || r.AccountID == 0 || r.HeroID == 0 {
		return ErrInvalidInput
	}
	return nil
}
