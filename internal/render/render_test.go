package render

import (
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/ti-helper/internal/stats"
	"github.com/DoyleJ11/ti-helper/internal/store"
	"github.com/DoyleJ11/ti-helper/pkg/types"
)

func TestBundle_Card(t *testing.T) {
	b := stats.Bundle{
		stats.SectionPlayerHero: {
			stats.MetricLastHits: {Mean: 12.345, Std: 2.1, Count: 40, Min: 3, Max: 25, Q25: 9.5, Q75: 15.2},
		},
	}
	html := Bundle(b, stats.ContextTournament)

	for _, want := range []string{"12.3", "±2.1", "(40 games)", "Range: 3-25", "Q1: 9.5 | Q3: 15.2"} {
		assert.Contains(t, html, want)
	}
	assert.Contains(t, html, "Last Hits at 5 min")
	assert.Contains(t, html, `class="stats-category primary"`)
}

func TestBundle_OnlyPresentSections(t *testing.T) {
	b := stats.Bundle{
		stats.SectionHeroBaseline: {
			stats.MetricKills: {Mean: 4, Count: 2, Min: 3, Max: 5, Q25: 3.5, Q75: 4.5},
		},
	}
	html := Bundle(b, stats.ContextPatch)

	assert.Equal(t, 1, strings.Count(html, `class="stats-category`))
	assert.Contains(t, html, "Hero Baseline Performance")
	assert.NotContains(t, html, "Player &#43; Hero Performance")
	assert.NotContains(t, html, "Player Overall Performance")
	assert.NotContains(t, html, "Last Hits at 5 min")
}

func TestBundle_SectionOrder(t *testing.T) {
	s := stats.Summary{Count: 1}
	b := stats.Bundle{
		stats.SectionPlayerOverall: {stats.MetricKills: s},
		stats.SectionPlayerHero:    {stats.MetricKills: s},
		stats.SectionHeroBaseline:  {stats.MetricKills: s},
	}
	html := Bundle(b, stats.ContextAllTime)

	hero := strings.Index(html, "Player &#43; Hero")
	baseline := strings.Index(html, "Hero Baseline")
	overall := strings.Index(html, "Player Overall")
	require.NotEqual(t, -1, hero)
	assert.True(t, hero < baseline && baseline < overall)
}

func TestBundle_EmptyIsNoData(t *testing.T) {
	assert.Equal(t, NoData(stats.ContextPatch), Bundle(nil, stats.ContextPatch))
	assert.Equal(t, NoData(stats.ContextPatch), Bundle(stats.Bundle{stats.SectionHeroBaseline: {}}, stats.ContextPatch))
	assert.Equal(t, `<div class="data-message">No data available for patch context</div>`, NoData(stats.ContextPatch))
}

func TestBundle_NullSectionsSkipped(t *testing.T) {
	var onlyNull stats.Bundle
	require.NoError(t, json.Unmarshal([]byte(`{"hero_baseline":null}`), &onlyNull))
	require.Contains(t, onlyNull, stats.SectionHeroBaseline)
	assert.Equal(t, NoData(stats.ContextTournament), Bundle(onlyNull, stats.ContextTournament))

	var mixed stats.Bundle
	require.NoError(t, json.Unmarshal([]byte(`{
		"player_hero": null,
		"player_overall": {"kills": {"mean": 4, "count": 2, "min": 3, "max": 5, "q25": 3.5, "q75": 4.5}}
	}`), &mixed))
	html := Bundle(mixed, stats.ContextTournament)

	assert.Equal(t, 1, strings.Count(html, `class="stats-category`))
	assert.Contains(t, html, "Player Overall Performance")
	assert.NotContains(t, html, "Player &#43; Hero Performance")
}

func TestMessages(t *testing.T) {
	assert.Equal(t, `<div class="error-message">Error loading statistics</div>`, Error("Error loading statistics"))
	assert.Equal(t, `<div class="loading-message">Loading teams...</div>`, Loading("Loading teams"))
	assert.Contains(t, Error("<b>"), "&lt;b&gt;")
}

func TestOptions(t *testing.T) {
	assert.Equal(t, `<option value="">Select a team...</option>`, Options(nil, "Select a team..."))

	html := Options([]types.Option{{ID: "7", Label: "Team Spirit"}, {ID: "8", Label: "Tundra & Co"}}, "Select a team...")
	assert.Equal(t, `<option value="">Select a team...</option>
<option value="7">Team Spirit</option>
<option value="8">Tundra &amp; Co</option>`, html)
}

func TestIndex(t *testing.T) {
	var sb strings.Builder
	err := Index(&sb, IndexPage{
		Leagues: []store.League{
			{ID: 18324, Name: "The International 2025", Tier: "premium"},
			{ID: 17000, Name: "Empty Cup", Tier: "professional"},
		},
		DefaultLeague: 18324,
		Heroes:        []store.Hero{{ID: 1, Name: "Anti-Mage"}},
	})
	require.NoError(t, err)
	html := sb.String()

	assert.Contains(t, html, `<option value="18324" selected>The International 2025 (Premium)</option>`)
	assert.Contains(t, html, `<option value="17000">Empty Cup (Professional)</option>`)
	assert.Contains(t, html, `<select id="teamSelect" disabled>`)
	assert.Contains(t, html, `data-slot="enemy2"`)
	assert.Contains(t, html, `<option value="1">Anti-Mage</option>`)
	assert.Contains(t, html, `<option value="dire">Dire</option>`)
	assert.Contains(t, html, `class="context-tab active" data-context="tournament"`)
	assert.Contains(t, html, "🔧 Toggle Advanced Analysis Mode")
	assert.Contains(t, html, `id="statsContent"`)
}
