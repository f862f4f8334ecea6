// Package storetest checks a store.Store implementation against the behavior
// the data service and importer rely on.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/ti-helper/internal/store"
)

// Run exercises open against a fresh, empty store for each subtest.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Helper()

	t.Run("leagues", func(t *testing.T) { testLeagues(t, open(t)) })
	t.Run("teams", func(t *testing.T) { testTeams(t, open(t)) })
	t.Run("players", func(t *testing.T) { testPlayers(t, open(t)) })
	t.Run("heroes", func(t *testing.T) { testHeroes(t, open(t)) })
	t.Run("matches", func(t *testing.T) { testMatches(t, open(t)) })
	t.Run("response cache", func(t *testing.T) { testCache(t, open(t)) })
	t.Run("invalid input", func(t *testing.T) { testInvalid(t, open(t)) })
}

func testLeagues(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.MostRecentLeague(ctx)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.League(ctx, 1)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.UpsertLeague(ctx, store.League{ID: 15728, Name: "TI 2023", Tier: "premium", PatchID: 53}))
	require.NoError(t, s.UpsertLeague(ctx, store.League{ID: 16935, Name: "TI 2024", Tier: "premium"}))
	require.NoError(t, s.UpsertLeague(ctx, store.League{ID: 16935, Name: "The International 2024", Tier: "premium", PatchID: 56}))

	leagues, err := s.Leagues(ctx)
	require.NoError(t, err)
	require.Len(t, leagues, 2)
	assert.Equal(t, int64(16935), leagues[0].ID)
	assert.Equal(t, "The International 2024", leagues[0].Name)

	recent, err := s.MostRecentLeague(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(56), recent.PatchID)

	l, err := s.League(ctx, 15728)
	require.NoError(t, err)
	assert.Equal(t, "TI 2023", l.Name)
}

func testTeams(t *testing.T, s store.Store) {
	ctx := context.Background()

	require.NoError(t, s.UpsertTeam(ctx, store.Team{ID: 15, Name: "PSG.LGD", Rating: 1400}))
	require.NoError(t, s.UpsertTeam(ctx, store.Team{ID: 39, Name: "Team Liquid", Rating: 1500}))
	require.NoError(t, s.UpsertTeam(ctx, store.Team{ID: 2163, Name: "Gaimin Gladiators", Rating: 1500}))
	require.NoError(t, s.AddLeagueTeam(ctx, 16935, 15))
	require.NoError(t, s.AddLeagueTeam(ctx, 16935, 39))
	require.NoError(t, s.AddLeagueTeam(ctx, 16935, 39))

	all, err := s.Teams(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Gaimin Gladiators", "Team Liquid", "PSG.LGD"}, teamNames(all))

	inLeague, err := s.TeamsByLeague(ctx, 16935)
	require.NoError(t, err)
	assert.Equal(t, []string{"Team Liquid", "PSG.LGD"}, teamNames(inLeague))

	none, err := s.TeamsByLeague(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func teamNames(teams []store.Team) []string {
	out := make([]string, len(teams))
	for i, t := range teams {
		out[i] = t.Name
	}
	return out
}

func testPlayers(t *testing.T, s store.Store) {
	ctx := context.Background()

	require.NoError(t, s.UpsertPlayer(ctx, store.Player{AccountID: 321580662, Name: "Yatoro", TeamID: 7119388, Active: true}))
	require.NoError(t, s.UpsertPlayer(ctx, store.Player{AccountID: 113331514, Name: "Miposhka", TeamID: 7119388, Active: true}))
	require.NoError(t, s.UpsertPlayer(ctx, store.Player{AccountID: 1, Name: "Mira", TeamID: 7119388, Active: false}))
	require.NoError(t, s.UpsertPlayer(ctx, store.Player{AccountID: 2, Name: "miCKe", TeamID: 2163, Active: true}))

	byTeam, err := s.PlayersByTeam(ctx, 7119388)
	require.NoError(t, err)
	require.Len(t, byTeam, 2)
	assert.Equal(t, "Miposhka", byTeam[0].Name)
	assert.Equal(t, "Yatoro", byTeam[1].Name)

	all, err := s.Players(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	prefixed, err := s.PlayersByNamePrefix(ctx, "Mi")
	require.NoError(t, err)
	require.Len(t, prefixed, 2)
	assert.Equal(t, "Miposhka", prefixed[0].Name)
	assert.Equal(t, "Mira", prefixed[1].Name)
	assert.False(t, prefixed[1].Active)
}

func testHeroes(t *testing.T, s store.Store) {
	ctx := context.Background()

	require.NoError(t, s.UpsertHero(ctx, store.Hero{ID: 8, Name: "Juggernaut", AttackType: "Melee", PrimaryAttribute: "agi", BaseAttackMin: 20, BaseAttackMax: 24}))
	require.NoError(t, s.UpsertHero(ctx, store.Hero{ID: 1, Name: "Anti-Mage"}))
	require.NoError(t, s.UpsertHero(ctx, store.Hero{ID: 74, Name: "Invoker"}))
	require.NoError(t, s.InsertMatchRows(ctx, []store.MatchRow{
		{LeagueID: 1, MatchID: 10, AccountID: 100, HeroID: 8},
		{LeagueID: 1, MatchID: 11, AccountID: 100, HeroID: 74},
		{LeagueID: 1, MatchID: 12, AccountID: 100, HeroID: 8},
		{LeagueID: 1, MatchID: 12, AccountID: 200, HeroID: 1},
	}))

	heroes, err := s.Heroes(ctx)
	require.NoError(t, err)
	require.Len(t, heroes, 3)
	assert.Equal(t, "Anti-Mage", heroes[0].Name)
	assert.Equal(t, "Melee", heroes[2].AttackType)
	assert.Equal(t, 24, heroes[2].BaseAttackMax)

	played, err := s.HeroesByPlayer(ctx, 100)
	require.NoError(t, err)
	require.Len(t, played, 2)
	assert.Equal(t, "Invoker", played[0].Name)
	assert.Equal(t, "Juggernaut", played[1].Name)
}

func testMatches(t *testing.T, s store.Store) {
	ctx := context.Background()

	latest, err := s.LatestMatchID(ctx)
	require.NoError(t, err)
	assert.Zero(t, latest)

	rows := []store.MatchRow{
		{LeagueID: 16935, MatchID: 7900000001, AccountID: 100, HeroID: 8, Kills: 5, LastHitsAt5: 31, DeniesAt5: 4,
			AlliedHeroes: []int64{8, 5}, EnemyHeroes: []int64{11, 14}, LaneRole: 1, IsRadiant: true, PatchID: 56},
		{LeagueID: 16935, MatchID: 7900000002, AccountID: 100, HeroID: 8, Kills: 2, LastHitsAt5: 22,
			LaneRole: 4.5, IsRoaming: true, PatchID: 56},
		{LeagueID: 15728, MatchID: 7200000001, AccountID: 100, HeroID: 1, Kills: 9, LastHitsAt5: 40, PatchID: 53},
	}
	require.NoError(t, s.InsertMatchRows(ctx, rows))

	dup := rows[0]
	dup.Kills = 99
	require.NoError(t, s.InsertMatchRows(ctx, []store.MatchRow{dup}))

	got, err := s.Matches(ctx, store.MatchFilter{AccountID: 100, HeroID: 8})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 5, got[0].Kills, "duplicate insert must not overwrite")
	assert.Equal(t, []int64{8, 5}, got[0].AlliedHeroes)
	assert.Equal(t, []int64{11, 14}, got[0].EnemyHeroes)
	assert.True(t, got[0].IsRadiant)
	assert.True(t, got[1].IsRoaming)
	assert.InDelta(t, 4.5, got[1].LaneRole, 1e-9)

	byPatch, err := s.Matches(ctx, store.MatchFilter{PatchID: 53})
	require.NoError(t, err)
	require.Len(t, byPatch, 1)
	assert.Equal(t, int64(7200000001), byPatch[0].MatchID)

	byLeague, err := s.Matches(ctx, store.MatchFilter{LeagueID: 16935})
	require.NoError(t, err)
	assert.Len(t, byLeague, 2)

	all, err := s.Matches(ctx, store.MatchFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	latest, err = s.LatestMatchID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7900000002), latest)
}

func testCache(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, _, err := s.CachedResponse(ctx, "matches/1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.CacheResponse(ctx, "matches/1", []byte(`{"match_id":1}`)))
	require.NoError(t, s.CacheResponse(ctx, "matches/1", []byte(`{"match_id":1,"v":2}`)))

	body, fetchedAt, err := s.CachedResponse(ctx, "matches/1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"match_id":1,"v":2}`, string(body))
	assert.False(t, fetchedAt.IsZero())
}

func testInvalid(t *testing.T, s store.Store) {
	ctx := context.Background()

	assert.ErrorIs(t, s.UpsertLeague(ctx, store.League{}), store.ErrInvalidInput)
	assert.ErrorIs(t, s.UpsertTeam(ctx, store.Team{}), store.ErrInvalidInput)
	assert.ErrorIs(t, s.UpsertHero(ctx, store.Hero{}), store.ErrInvalidInput)
	assert.ErrorIs(t, s.UpsertPlayer(ctx, store.Player{AccountID: 1}), store.ErrInvalidInput)
	assert.ErrorIs(t, s.AddLeagueTeam(ctx, 0, 1), store.ErrInvalidInput)
	assert.ErrorIs(t, s.InsertMatchRows(ctx, []store.MatchRow{{MatchID: 1}}), store.ErrInvalidInput)
	assert.ErrorIs(t, s.CacheResponse(ctx, "", nil), store.ErrInvalidInput)
}
