package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/ti-helper/internal/stats"
	"github.com/DoyleJ11/ti-helper/pkg/types"
)

func newServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func TestTeams_ParsesOptionsAndDropsPlaceholder(t *testing.T) {
	var gotPath string
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`<option value="">Select a team...</option>
<option value="15">Team Spirit</option>
<option value="39"> Team Liquid </option>`))
	})

	list, err := c.Teams(context.Background(), "16935")
	require.NoError(t, err)
	assert.Equal(t, "/teams/16935", gotPath)
	assert.Equal(t, []types.Option{
		{ID: "15", Label: "Team Spirit"},
		{ID: "39", Label: "Team Liquid"},
	}, list.Options)
}

func TestTeams_EmptyLeagueIsNotAnError(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<option value="">Select a team...</option>`))
	})

	list, err := c.Teams(context.Background(), "1")
	require.NoError(t, err)
	assert.Empty(t, list.Options)
}

func TestHeroes_EmptyPlayerListsEveryHero(t *testing.T) {
	var gotPath string
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`<option value="1">Anti-Mage</option>`))
	})

	_, err := c.Heroes(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "/heroes", gotPath)

	_, err = c.Heroes(context.Background(), "311360822")
	require.NoError(t, err)
	assert.Equal(t, "/heroes/311360822", gotPath)
}

func TestPlayers_ServiceErrorCarriesMessage(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<option value="">Error loading players: db down</option>`))
	})

	_, err := c.Players(context.Background(), "15")
	var se *ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Status)
	assert.Equal(t, "Error loading players: db down", se.Message)
}

func TestStats_EncodesQueryAndDecodesBundle(t *testing.T) {
	var got map[string][]string
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stats/context", r.URL.Path)
		got = r.URL.Query()
		_, _ = w.Write([]byte(`{"success":true,"data":{"hero_baseline":{"kills":{"mean":3.5,"std":1,"count":4,"min":2,"max":5,"q25":2.75,"q75":4.25}}}}`))
	})

	q := stats.Query{
		Context:        stats.ContextPatch,
		LeagueID:       "16935",
		HeroID:         "74",
		FriendlyHeroID: "5",
		EnemyHeroIDs:   []string{"8", "", "11"},
		Side:           stats.SideDire,
	}
	b, err := c.Stats(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, []string{"patch"}, got["context"])
	assert.Equal(t, []string{"16935"}, got["league_id"])
	assert.Equal(t, []string{"74"}, got["hero_id"])
	assert.Equal(t, []string{"5"}, got["friendly_hero_id"])
	assert.Equal(t, []string{"8", "11"}, got["enemy_hero_id"])
	assert.Equal(t, []string{"dire"}, got["side"])
	assert.NotContains(t, got, "player_id")
	assert.NotContains(t, got, "team_id")

	require.Contains(t, b, stats.SectionHeroBaseline)
	assert.Equal(t, 4, b[stats.SectionHeroBaseline][stats.MetricKills].Count)
	assert.InDelta(t, 3.5, b[stats.SectionHeroBaseline][stats.MetricKills].Mean, 1e-9)
}

func TestStats_Outcomes(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantEmpty bool
		wantSvc   string
		wantErr   error
	}{
		{name: "success without data", status: 200, body: `{"success":true}`, wantEmpty: true},
		{name: "success with null data", status: 200, body: `{"success":true,"data":null}`, wantEmpty: true},
		{name: "unsuccessful", status: 200, body: `{"success":false,"error":"No matches found"}`, wantSvc: "No matches found"},
		{name: "unsuccessful with error status", status: 400, body: `{"success":false,"error":"Invalid context"}`, wantSvc: "Invalid context"},
		{name: "not json", status: 502, body: `<html>bad gateway</html>`, wantErr: ErrMalformed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			b, err := c.Stats(context.Background(), stats.Query{Context: stats.ContextTournament, PlayerID: "1"})
			switch {
			case tc.wantEmpty:
				require.NoError(t, err)
				assert.True(t, b.Empty())
			case tc.wantSvc != "":
				var se *ServiceError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, tc.wantSvc, se.Message)
			default:
				assert.True(t, errors.Is(err, tc.wantErr), "got %v", err)
			}
		})
	}
}

func TestStats_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url).Stats(context.Background(), stats.Query{Context: stats.ContextTournament, PlayerID: "1"})
	assert.ErrorIs(t, err, ErrTransport)
}
