package stats

import (
	"errors"
	"net/url"
	"strconv"
)

var ErrInvalidQuery = errors.New("invalid stats query")

// Side restricts lane filters to one faction.
const (
	SideRadiant = "radiant"
	SideDire    = "dire"
)

// Query is the wire form of a stats request. Empty fields are unset.
type Query struct {
	Context  Context
	LeagueID string
	TeamID   string
	PlayerID string
	HeroID   string

	FriendlyHeroID string
	EnemyHeroIDs   []string
	Side           string
}

// HasSubject reports whether the query names a player or a hero.
func (q Query) HasSubject() bool {
	return q.PlayerID != "" || q.HeroID != ""
}

// Values encodes the query string sent to /stats/context.
func (q Query) Values() url.Values {
	v := url.Values{}
	v.Set("context", string(q.Context))
	setIf(v, "league_id", q.LeagueID)
	setIf(v, "team_id", q.TeamID)
	setIf(v, "player_id", q.PlayerID)
	setIf(v, "hero_id", q.HeroID)
	setIf(v, "friendly_hero_id", q.FriendlyHeroID)
	for _, id := range q.EnemyHeroIDs {
		if id != "" {
			v.Add("enemy_hero_id", id)
		}
	}
	setIf(v, "side", q.Side)
	return v
}

func setIf(v url.Values, key, val string) {
	if val != "" {
		v.Set(key, val)
	}
}

// ParseQuery decodes and validates a /stats/context query string.
func ParseQuery(v url.Values) (Query, error) {
	ctx, err := ParseContext(v.Get("context"))
	if err != nil {
		return Query{}, err
	}
	q := Query{
		Context:        ctx,
		LeagueID:       v.Get("league_id"),
		TeamID:         v.Get("team_id"),
		PlayerID:       v.Get("player_id"),
		HeroID:         v.Get("hero_id"),
		FriendlyHeroID: v.Get("friendly_hero_id"),
		EnemyHeroIDs:   v["enemy_hero_id"],
		Side:           v.Get("side"),
	}
	ids := append([]string{q.LeagueID, q.TeamID, q.PlayerID, q.HeroID, q.FriendlyHeroID}, q.EnemyHeroIDs...)
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, err := strconv.ParseInt(id, 10, 64); err != nil {
			return Query{}, ErrInvalidQuery
		}
	}
	switch q.Side {
	case "", SideRadiant, SideDire:
	default:
		return Query{}, ErrInvalidQuery
	}
	return q, nil
}

// parseID returns 0 for an unset id. Callers validate with ParseQuery first.
func parseID(s string) int64 {
	if s == "" {
		return 0
	}
	id, _ := strconv.ParseInt(s, 10, 64)
	return id
}
