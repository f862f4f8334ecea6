package opendota

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/ti-helper/internal/store/memory"
)

func newTestClient(t *testing.T, h http.Handler, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts = append([]Option{WithRetry(2, time.Millisecond, 5*time.Millisecond)}, opts...)
	return New(srv.URL, opts...)
}

func TestClient_HeroStats(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/heroStats", r.URL.Path)
		w.Write([]byte(`[{"id":1,"localized_name":"Anti-Mage","attack_type":"Melee","primary_attr":"agi","base_attack_min":29,"base_attack_max":33}]`))
	}))

	heroes, err := c.HeroStats(context.Background())
	require.NoError(t, err)
	require.Len(t, heroes, 1)
	assert.Equal(t, HeroStat{ID: 1, LocalizedName: "Anti-Mage", AttackType: "Melee", PrimaryAttr: "agi", BaseAttackMin: 29, BaseAttackMax: 33}, heroes[0])
}

func TestClient_APIKeyAndPaths(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
	)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("api_key"))
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		w.Write([]byte(`[]`))
	}), WithAPIKey("secret"))

	ctx := context.Background()
	_, err := c.LeagueMatches(ctx, 18324)
	require.NoError(t, err)
	_, err = c.LeagueTeams(ctx, 18324)
	require.NoError(t, err)
	_, err = c.TeamPlayers(ctx, 15)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/leagues/18324/matches", "/leagues/18324/teams", "/teams/15/players"}, paths)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"leagueid":18324,"name":"The International 2025","tier":"premium"}`))
	}))

	l, err := c.League(context.Background(), 18324)
	require.NoError(t, err)
	assert.Equal(t, League{ID: 18324, Name: "The International 2025", Tier: "premium"}, l)
	assert.EqualValues(t, 3, calls.Load())
}

func TestClient_NotFound(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":"Not Found"}`, http.StatusNotFound)
	}))

	_, err := c.League(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.EqualValues(t, 1, calls.Load(), "4xx is not retried")
}

func TestClient_MatchCaching(t *testing.T) {
	var calls atomic.Int32
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch r.URL.Path {
		case "/matches/100":
			w.Write([]byte(`{"match_id":100,"patch":57,"players":[{"account_id":7,"hero_id":1,"lh_t":[0,4,9,15,22,30]}]}`))
		case "/matches/200":
			w.Write([]byte(`{"match_id":200}`))
		default:
			http.NotFound(w, r)
		}
	})
	cache := memory.New()
	ctx := context.Background()

	c := newTestClient(t, h, WithCache(cache))
	m, err := c.Match(ctx, 100)
	require.NoError(t, err)
	assert.EqualValues(t, 57, m.Patch)
	require.Len(t, m.Players, 1)
	assert.Equal(t, []int{0, 4, 9, 15, 22, 30}, m.Players[0].LastHits)

	_, err = c.Match(ctx, 100)
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls.Load(), "second read is served from memory")

	fresh := newTestClient(t, h, WithCache(cache))
	_, err = fresh.Match(ctx, 100)
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls.Load(), "new client is served from the store")

	_, err = c.Match(ctx, 200)
	require.NoError(t, err)
	_, err = c.Match(ctx, 200)
	require.NoError(t, err)
	assert.EqualValues(t, 3, calls.Load(), "matches without players are refetched")
}

func TestTeamPlayer_DisplayName(t *testing.T) {
	assert.Equal(t, "Yatoro", TeamPlayer{Name: "Yatoro", PersonaName: "yatoro_"}.DisplayName())
	assert.Equal(t, "yatoro_", TeamPlayer{PersonaName: "yatoro_"}.DisplayName())
}
