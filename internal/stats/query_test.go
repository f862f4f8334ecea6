package stats

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_ValuesRoundTrip(t *testing.T) {
	q := Query{
		Context:        ContextPatch,
		LeagueID:       "18324",
		PlayerID:       "70",
		HeroID:         "1",
		FriendlyHeroID: "2",
		EnemyHeroIDs:   []string{"3", "", "4"},
		Side:           SideDire,
	}
	v := q.Values()
	assert.Equal(t, []string{"3", "4"}, v["enemy_hero_id"])
	assert.False(t, v.Has("team_id"))

	got, err := ParseQuery(v)
	require.NoError(t, err)
	want := q
	want.EnemyHeroIDs = []string{"3", "4"}
	assert.Equal(t, want, got)
}

func TestParseQuery_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  error
	}{
		{"missing context", "player_id=1", ErrUnknownContext},
		{"unknown context", "context=season&player_id=1", ErrUnknownContext},
		{"non numeric id", "context=tournament&player_id=abc", ErrInvalidQuery},
		{"non numeric enemy", "context=tournament&hero_id=1&enemy_hero_id=x", ErrInvalidQuery},
		{"bad side", "context=all_time&hero_id=1&side=left", ErrInvalidQuery},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, err := url.ParseQuery(tc.query)
			require.NoError(t, err)
			_, err = ParseQuery(v)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestQuery_HasSubject(t *testing.T) {
	assert.False(t, Query{Context: ContextTournament, LeagueID: "1"}.HasSubject())
	assert.True(t, Query{PlayerID: "1"}.HasSubject())
	assert.True(t, Query{HeroID: "1"}.HasSubject())
}

func TestContext_Label(t *testing.T) {
	assert.Equal(t, "All Time", ContextAllTime.Label())
	assert.True(t, ContextPatch.Known())
	assert.False(t, Context("season").Known())
}
