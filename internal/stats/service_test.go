package stats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/ti-helper/internal/store"
	"github.com/DoyleJ11/ti-helper/internal/store/memory"
)

// Two leagues on patch 57, one older league on patch 56. Player 70 plays hero 1.
func seeded(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	s := memory.New()
	for _, l := range []store.League{
		{ID: 100, Name: "Major", PatchID: 57},
		{ID: 101, Name: "Qualifier", PatchID: 57},
		{ID: 90, Name: "Old", PatchID: 56},
	} {
		require.NoError(t, s.UpsertLeague(ctx, l))
	}
	require.NoError(t, s.UpsertPlayer(ctx, store.Player{AccountID: 70, Name: "Yatoro", TeamID: 7, Active: true}))
	require.NoError(t, s.UpsertPlayer(ctx, store.Player{AccountID: 71, Name: "Yamich", TeamID: 8, Active: true}))
	require.NoError(t, s.UpsertPlayer(ctx, store.Player{AccountID: 72, Name: "Miposhka", TeamID: 7, Active: true}))

	rows := []store.MatchRow{
		{LeagueID: 100, PatchID: 57, MatchID: 1, AccountID: 70, HeroID: 1, LastHitsAt5: 30, Kills: 5, AlliedHeroes: []int64{1, 2}, EnemyHeroes: []int64{3, 4}, IsRadiant: true},
		{LeagueID: 100, PatchID: 57, MatchID: 2, AccountID: 70, HeroID: 1, LastHitsAt5: 20, Kills: 1, AlliedHeroes: []int64{1, 5}, EnemyHeroes: []int64{3}, IsRadiant: false},
		{LeagueID: 100, PatchID: 57, MatchID: 3, AccountID: 70, HeroID: 9, LastHitsAt5: 10, Kills: 3},
		{LeagueID: 101, PatchID: 57, MatchID: 4, AccountID: 71, HeroID: 1, LastHitsAt5: 40, Kills: 7, IsRadiant: true},
		{LeagueID: 90, PatchID: 56, MatchID: 5, AccountID: 70, HeroID: 1, LastHitsAt5: 50, Kills: 9},
	}
	require.NoError(t, s.InsertMatchRows(ctx, rows))
	return s
}

func TestService_Sections(t *testing.T) {
	svc := NewService(seeded(t))
	ctx := context.Background()

	t.Run("hero only yields baseline only", func(t *testing.T) {
		b, err := svc.Bundle(ctx, Query{Context: ContextTournament, LeagueID: "100", HeroID: "1"})
		require.NoError(t, err)
		require.Len(t, b, 1)
		assert.Equal(t, 2, b[SectionHeroBaseline][MetricLastHits].Count)
		assert.Equal(t, 25.0, b[SectionHeroBaseline][MetricLastHits].Mean)
	})

	t.Run("player only yields overall only", func(t *testing.T) {
		b, err := svc.Bundle(ctx, Query{Context: ContextTournament, LeagueID: "100", PlayerID: "70"})
		require.NoError(t, err)
		require.Len(t, b, 1)
		assert.Equal(t, 3, b[SectionPlayerOverall][MetricKills].Count)
	})

	t.Run("player and hero yield all three", func(t *testing.T) {
		b, err := svc.Bundle(ctx, Query{Context: ContextTournament, LeagueID: "100", PlayerID: "70", HeroID: "1"})
		require.NoError(t, err)
		assert.Len(t, b, 3)
		assert.Equal(t, 2, b[SectionPlayerHero][MetricLastHits].Count)
	})
}

func TestService_Contexts(t *testing.T) {
	svc := NewService(seeded(t))
	ctx := context.Background()

	count := func(c Context) int {
		b, err := svc.Bundle(ctx, Query{Context: c, LeagueID: "100", HeroID: "1"})
		require.NoError(t, err)
		return b[SectionHeroBaseline][MetricLastHits].Count
	}
	assert.Equal(t, 2, count(ContextTournament))
	assert.Equal(t, 3, count(ContextPatch), "both patch 57 leagues")
	assert.Equal(t, 4, count(ContextAllTime))
}

func TestService_PatchUnknownLeague(t *testing.T) {
	_, err := NewService(seeded(t)).Bundle(context.Background(), Query{Context: ContextPatch, LeagueID: "5", HeroID: "1"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestService_LaneFilters(t *testing.T) {
	svc := NewService(seeded(t))
	ctx := context.Background()
	base := Query{Context: ContextTournament, LeagueID: "100", PlayerID: "70", HeroID: "1"}

	q := base
	q.FriendlyHeroID = "2"
	b, err := svc.Bundle(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 1, b[SectionPlayerHero][MetricLastHits].Count)
	assert.Equal(t, 3, b[SectionPlayerOverall][MetricLastHits].Count, "overall ignores lane filters")

	q = base
	q.EnemyHeroIDs = []string{"3", "4"}
	b, err = svc.Bundle(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 30.0, b[SectionPlayerHero][MetricLastHits].Mean)

	q = base
	q.Side = SideDire
	b, err = svc.Bundle(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 20.0, b[SectionPlayerHero][MetricLastHits].Mean)

	q = base
	q.FriendlyHeroID = "99"
	b, err = svc.Bundle(ctx, q)
	require.NoError(t, err)
	assert.NotContains(t, b, SectionPlayerHero)
	assert.NotContains(t, b, SectionHeroBaseline)
	assert.Contains(t, b, SectionPlayerOverall)
}

func TestSearchPlayers(t *testing.T) {
	src := seeded(t)
	ctx := context.Background()

	res, err := SearchPlayers(ctx, src, "Ya", 0)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "Yamich", res[0].Name)
	assert.Equal(t, "Yatoro", res[1].Name)
	assert.Equal(t, 4, res[1].Games)
	assert.Equal(t, 27.5, res[1].Mean[MetricLastHits])
	assert.Equal(t, 25.0, res[1].Median[MetricLastHits])

	res, err = SearchPlayers(ctx, src, "Yatoro", 9)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, 1, res[0].Games)

	res, err = SearchPlayers(ctx, src, "Miposhka", 0)
	require.NoError(t, err)
	assert.Empty(t, res, "players without matches are left out")
}
