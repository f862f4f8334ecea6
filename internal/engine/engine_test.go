package engine

import (
	"errors"
	"reflect"
	"testing"

	"github.com/DoyleJ11/ti-helper/internal/stats"
)

func stateWith(league, team, player, hero string, mode Mode) State {
	s := NewState()
	s.Selection = Selection{LeagueID: league, TeamID: team, PlayerID: player, HeroID: hero, Mode: mode}
	return s
}

func effectTypes(effects []Effect) []EffectType {
	out := make([]EffectType, len(effects))
	for i, e := range effects {
		out[i] = e.Type
	}
	return out
}

func findEffect(effects []Effect, t EffectType, r Region) (Effect, bool) {
	for _, e := range effects {
		if e.Type == t && e.Region == r {
			return e, true
		}
	}
	return Effect{}, false
}

func TestChooseLeague(t *testing.T) {
	s := stateWith("1", "10", "100", "7", ModeNormal)

	effects, next, err := Apply(s, Command{Type: CmdChooseLeague, ID: "2"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	want := Selection{LeagueID: "2", Mode: ModeNormal}
	if next.Selection != want {
		t.Fatalf("selection: got %+v, want %+v", next.Selection, want)
	}

	wantTypes := []EffectType{EffLoadOptions, EffEnable, EffLoadOptions, EffReset, EffHideStats}
	if got := effectTypes(effects); !reflect.DeepEqual(got, wantTypes) {
		t.Fatalf("effects: got %v, want %v", got, wantTypes)
	}
	if effects[0].Region != RegionTeam || effects[0].Parent != "2" {
		t.Fatalf("first effect should load teams for league 2, got %+v", effects[0])
	}
	if effects[2].Region != RegionHero || effects[2].Parent != "" {
		t.Fatalf("hero list should be unfiltered, got %+v", effects[2])
	}
}

func TestClearingIsIdempotent(t *testing.T) {
	cases := []struct {
		name string
		cmd  Command
	}{
		{name: "league", cmd: Command{Type: CmdChooseLeague}},
		{name: "team", cmd: Command{Type: CmdChooseTeam}},
		{name: "player", cmd: Command{Type: CmdChoosePlayer}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := stateWith("1", "10", "100", "7", ModeNormal)

			first, once, err := Apply(s, tc.cmd)
			if err != nil {
				t.Fatalf("first clear: %v", err)
			}
			second, twice, err := Apply(once, tc.cmd)
			if err != nil {
				t.Fatalf("second clear: %v", err)
			}
			if !reflect.DeepEqual(first, second) {
				t.Fatalf("effects differ: %v vs %v", effectTypes(first), effectTypes(second))
			}
			if once != twice {
				t.Fatalf("state differs: %+v vs %+v", once, twice)
			}
		})
	}
}

func TestClearLeagueResetsEveryDownstreamSelect(t *testing.T) {
	s := stateWith("1", "10", "100", "7", ModeNormal)

	effects, next, err := Apply(s, Command{Type: CmdChooseLeague})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, r := range []Region{RegionTeam, RegionPlayer, RegionHero} {
		if _, ok := findEffect(effects, EffReset, r); !ok {
			t.Fatalf("expected reset of %s", r)
		}
	}
	if next.Selection.TeamID != "" || next.Selection.PlayerID != "" || next.Selection.HeroID != "" {
		t.Fatalf("downstream selection not cleared: %+v", next.Selection)
	}
}

func TestClearTeamAlwaysResetsPlayer(t *testing.T) {
	for _, player := range []string{"", "100"} {
		s := stateWith("1", "10", player, "", ModeNormal)

		effects, next, err := Apply(s, Command{Type: CmdChooseTeam})
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if _, ok := findEffect(effects, EffReset, RegionPlayer); !ok {
			t.Fatalf("player=%q: expected player reset, got %v", player, effectTypes(effects))
		}
		if next.Selection.PlayerID != "" {
			t.Fatalf("player=%q: selection not cleared", player)
		}
	}
}

func TestPreconditions(t *testing.T) {
	cases := []struct {
		name    string
		setup   State
		cmd     Command
		wantErr error
	}{
		{
			name:    "team without league",
			setup:   NewState(),
			cmd:     Command{Type: CmdChooseTeam, ID: "10"},
			wantErr: ErrNoLeague,
		},
		{
			name:    "player without team",
			setup:   stateWith("1", "", "", "", ModeNormal),
			cmd:     Command{Type: CmdChoosePlayer, ID: "100"},
			wantErr: ErrNoTeam,
		},
		{
			name:    "unknown context",
			setup:   NewState(),
			cmd:     Command{Type: CmdChooseContext, Context: "season"},
			wantErr: stats.ErrUnknownContext,
		},
		{
			name:    "advanced hero in normal mode",
			setup:   NewState(),
			cmd:     Command{Type: CmdSetAdvancedHero, Slot: SlotFriendly, ID: "5"},
			wantErr: ErrNotAdvanced,
		},
		{
			name:    "unknown slot",
			setup:   stateWith("", "", "", "", ModeAdvanced),
			cmd:     Command{Type: CmdSetAdvancedHero, Slot: "jungle", ID: "5"},
			wantErr: ErrUnknownSlot,
		},
		{
			name:    "unknown side",
			setup:   stateWith("", "", "", "", ModeAdvanced),
			cmd:     Command{Type: CmdSetAdvancedHero, Slot: SlotSide, ID: "north"},
			wantErr: ErrUnknownSide,
		},
		{
			name:    "unsupported",
			setup:   NewState(),
			cmd:     Command{Type: "Pick"},
			wantErr: ErrUnsupportedCommand,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			effects, next, err := Apply(tc.setup, tc.cmd)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("want %v, got %v", tc.wantErr, err)
			}
			if effects != nil {
				t.Fatalf("expected no effects on error, got %v", effectTypes(effects))
			}
			if next != tc.setup {
				t.Fatalf("state changed on error: %+v", next)
			}
		})
	}
}

func TestChoosePlayer(t *testing.T) {
	cases := []struct {
		name     string
		mode     Mode
		wantView StatsView
	}{
		{name: "normal renders tournament stats", mode: ModeNormal, wantView: ViewTournament},
		{name: "advanced renders unified view", mode: ModeAdvanced, wantView: ViewUnified},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := stateWith("1", "10", "", "7", tc.mode)

			effects, next, err := Apply(s, Command{Type: CmdChoosePlayer, ID: "100"})
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if next.Selection.HeroID != "" {
				t.Fatalf("hero should be cleared when the hero list reloads")
			}
			load, ok := findEffect(effects, EffLoadOptions, RegionHero)
			if !ok || load.Parent != "100" {
				t.Fatalf("expected hero list filtered by player, got %+v", effects)
			}
			st, ok := findEffect(effects, EffLoadStats, RegionStats)
			if !ok || st.View != tc.wantView {
				t.Fatalf("expected %s stats, got %+v", tc.wantView, effects)
			}
			if st.Query.PlayerID != "100" || st.Query.LeagueID != "1" || st.Query.TeamID != "10" {
				t.Fatalf("query does not reflect selection: %+v", st.Query)
			}
		})
	}
}

func TestClearPlayerLoadsAllHeroes(t *testing.T) {
	s := stateWith("1", "10", "100", "7", ModeNormal)

	effects, next, err := Apply(s, Command{Type: CmdChoosePlayer})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := []EffectType{EffLoadOptions, EffHideStats}
	if got := effectTypes(effects); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if effects[0].Parent != "" {
		t.Fatalf("expected unfiltered hero list")
	}
	if next.Selection.PlayerID != "" {
		t.Fatalf("player not cleared")
	}
}

func TestChooseHero(t *testing.T) {
	cases := []struct {
		name   string
		player string
		mode   Mode
		want   []EffectType
		view   StatsView
	}{
		{
			name:   "player and advanced",
			player: "100",
			mode:   ModeAdvanced,
			want:   []EffectType{EffEnable, EffLoadOptions, EffLoadStats},
			view:   ViewUnified,
		},
		{
			name:   "player and normal",
			player: "100",
			mode:   ModeNormal,
			want:   []EffectType{EffLoadStats},
			view:   ViewTournament,
		},
		{
			name: "no player and advanced",
			mode: ModeAdvanced,
			want: []EffectType{EffLoadStats},
			view: ViewUnified,
		},
		{
			name: "no player and normal is a no-op",
			mode: ModeNormal,
			want: []EffectType{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			team := ""
			if tc.player != "" {
				team = "10"
			}
			s := stateWith("1", team, tc.player, "", tc.mode)

			effects, next, err := Apply(s, Command{Type: CmdChooseHero, ID: "7"})
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if got := effectTypes(effects); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			if next.Selection.HeroID != "7" {
				t.Fatalf("hero not selected")
			}
			if tc.view != "" {
				st, _ := findEffect(effects, EffLoadStats, RegionStats)
				if st.View != tc.view || st.Query.HeroID != "7" {
					t.Fatalf("stats effect: %+v", st)
				}
			}
		})
	}
}

func TestToggleAdvanced(t *testing.T) {
	s := stateWith("1", "10", "100", "7", ModeNormal)

	on, adv, err := Apply(s, Command{Type: CmdToggleAdvanced})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if adv.Selection.Mode != ModeAdvanced {
		t.Fatalf("mode not flipped")
	}
	want := []EffectType{EffShowAdvanced, EffEnable, EffLoadOptions, EffLoadStats}
	if got := effectTypes(on); !reflect.DeepEqual(got, want) {
		t.Fatalf("entering: got %v, want %v", got, want)
	}

	adv.Selection.Advanced = AdvancedHeroes{Friendly: "3", Side: stats.SideDire}

	off, normal, err := Apply(adv, Command{Type: CmdToggleAdvanced})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want = []EffectType{EffHideAdvanced, EffReset, EffLoadStats}
	if got := effectTypes(off); !reflect.DeepEqual(got, want) {
		t.Fatalf("leaving: got %v, want %v", got, want)
	}
	if normal.Selection.Advanced != (AdvancedHeroes{}) {
		t.Fatalf("advanced slots not cleared: %+v", normal.Selection.Advanced)
	}
	if normal.Selection.Mode != ModeNormal {
		t.Fatalf("mode not restored")
	}
	st, _ := findEffect(off, EffLoadStats, RegionStats)
	if st.View != ViewTournament {
		t.Fatalf("leaving advanced with a player should render tournament stats")
	}
}

func TestToggleAdvanced_LoadsHeroListForAdvancedSlots(t *testing.T) {
	for _, hero := range []string{"", "7"} {
		s := stateWith("1", "", "", hero, ModeNormal)
		effects, _, err := Apply(s, Command{Type: CmdToggleAdvanced})
		if err != nil {
			t.Fatalf("hero=%q: unexpected err: %v", hero, err)
		}
		load, ok := findEffect(effects, EffLoadOptions, RegionAdvanced)
		if !ok {
			t.Fatalf("hero=%q: advanced selects enabled without a hero list: %v", hero, effectTypes(effects))
		}
		if load.Parent != "" {
			t.Fatalf("hero=%q: advanced slots should list every hero, got parent %q", hero, load.Parent)
		}
	}
}

func TestToggleAdvanced_WithoutSubjectRendersNothing(t *testing.T) {
	s := stateWith("1", "", "", "", ModeNormal)

	on, adv, _ := Apply(s, Command{Type: CmdToggleAdvanced})
	if ContainsEffect(on, EffLoadStats) {
		t.Fatalf("nothing selected, expected no stats load")
	}

	off, _, _ := Apply(adv, Command{Type: CmdToggleAdvanced})
	if !ContainsEffect(off, EffHideStats) {
		t.Fatalf("leaving advanced without a player should hide stats")
	}
}

func TestChooseContext_DoesNotMutateSelection(t *testing.T) {
	s := stateWith("1", "10", "100", "7", ModeNormal)

	effects, next, err := Apply(s, Command{Type: CmdChooseContext, Context: stats.ContextPatch})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if next.Selection != s.Selection {
		t.Fatalf("selection mutated: %+v", next.Selection)
	}
	if next.Context != stats.ContextPatch {
		t.Fatalf("context not activated")
	}

	st, ok := findEffect(effects, EffLoadStats, RegionStats)
	if !ok {
		t.Fatalf("expected a stats fetch")
	}
	want := stats.Query{Context: stats.ContextPatch, LeagueID: "1", TeamID: "10", PlayerID: "100", HeroID: "7"}
	if !reflect.DeepEqual(st.Query, want) {
		t.Fatalf("query: got %+v, want %+v", st.Query, want)
	}
	if st.View != ViewContext {
		t.Fatalf("context switch should not reveal the stats region")
	}
}

func TestChooseContext_WithoutSubjectOnlyActivatesTab(t *testing.T) {
	effects, _, err := Apply(NewState(), Command{Type: CmdChooseContext, Context: stats.ContextAllTime})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got := effectTypes(effects); !reflect.DeepEqual(got, []EffectType{EffActivateContext}) {
		t.Fatalf("got %v", got)
	}
}

func TestSetAdvancedHero_IncludedInQuery(t *testing.T) {
	s := stateWith("1", "10", "100", "7", ModeAdvanced)

	_, s, _ = Apply(s, Command{Type: CmdSetAdvancedHero, Slot: SlotEnemy1, ID: "11"})
	effects, s, err := Apply(s, Command{Type: CmdSetAdvancedHero, Slot: SlotSide, ID: stats.SideRadiant})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	st, ok := findEffect(effects, EffLoadStats, RegionStats)
	if !ok {
		t.Fatalf("expected unified view refresh")
	}
	if !reflect.DeepEqual(st.Query.EnemyHeroIDs, []string{"11"}) || st.Query.Side != stats.SideRadiant {
		t.Fatalf("advanced filters missing from query: %+v", st.Query)
	}
}
