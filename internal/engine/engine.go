package engine

import (
	"errors"

	"github.com/DoyleJ11/ti-helper/internal/stats"
)

var ErrNoLeague = errors.New("team chosen without a league")
var ErrNoTeam = errors.New("player chosen without a team")
var ErrNotAdvanced = errors.New("advanced mode is off")
var ErrUnknownSlot = errors.New("unknown advanced slot")
var ErrUnknownSide = errors.New("side must be radiant or dire")
var ErrUnsupportedCommand = errors.New("unsupported command")

type Mode string

const (
	ModeNormal   Mode = "normal"
	ModeAdvanced Mode = "advanced"
)

// Region is a UI area the effects act on. Every region is updated wholesale.
type Region string

const (
	RegionTeam     Region = "team"
	RegionPlayer   Region = "player"
	RegionHero     Region = "hero"
	RegionAdvanced Region = "advanced" // friendly/enemy/side selects
	RegionPanel    Region = "panel"    // advanced grid + toggle button
	RegionStats    Region = "stats"
	RegionContexts Region = "contexts"
)

type Slot string

const (
	SlotFriendly Slot = "friendly"
	SlotEnemy1   Slot = "enemy1"
	SlotEnemy2   Slot = "enemy2"
	SlotSide     Slot = "side"
)

type AdvancedHeroes struct {
	Friendly string `json:"friendly,omitempty"`
	Enemy1   string `json:"enemy1,omitempty"`
	Enemy2   string `json:"enemy2,omitempty"`
	Side     string `json:"side,omitempty"`
}

// Any reports whether a hero slot is filled. Side alone does not count.
func (a AdvancedHeroes) Any() bool {
	return a.Friendly != "" || a.Enemy1 != "" || a.Enemy2 != ""
}

type Selection struct {
	LeagueID string         `json:"league_id,omitempty"`
	TeamID   string         `json:"team_id,omitempty"`
	PlayerID string         `json:"player_id,omitempty"`
	HeroID   string         `json:"hero_id,omitempty"`
	Mode     Mode           `json:"mode"`
	Advanced AdvancedHeroes `json:"advanced"`
}

type State struct {
	Selection Selection     `json:"selection"`
	Context   stats.Context `json:"context"`
}

// StatsView says which flow asked for stats. Tournament and unified loads
// reveal the stats region, context loads only refresh it.
type StatsView string

const (
	ViewTournament StatsView = "tournament"
	ViewUnified    StatsView = "unified"
	ViewContext    StatsView = "context"
)

type CommandType string

const (
	CmdChooseLeague    CommandType = "ChooseLeague"
	CmdChooseTeam      CommandType = "ChooseTeam"
	CmdChoosePlayer    CommandType = "ChoosePlayer"
	CmdChooseHero      CommandType = "ChooseHero"
	CmdToggleAdvanced  CommandType = "ToggleAdvanced"
	CmdChooseContext   CommandType = "ChooseContext"
	CmdSetAdvancedHero CommandType = "SetAdvancedHero"
)

/*
	ChooseLeague(id)  -> LoadOptions(team) -> Enable(hero) -> LoadOptions(hero, all) -> Reset(player) -> HideStats
	ChooseLeague("")  -> Reset(team) -> Reset(player) -> Reset(hero) -> HideStats
	ChooseTeam(id)    -> LoadOptions(player) -> HideStats
	ChoosePlayer(id)  -> LoadOptions(hero, player) -> LoadStats(tournament | unified)
	ChooseHero(id)    -> depends on player + mode, see chooseHero
	ToggleAdvanced    -> ShowAdvanced -> Enable(advanced) -> LoadOptions(advanced, all) -> LoadStats?
	                  -> HideAdvanced -> Reset(advanced) -> LoadStats | HideStats
	ChooseContext(c)  -> ActivateContext -> LoadStats(context)
*/

type Command struct {
	Type    CommandType
	ID      string
	Context stats.Context
	Slot    Slot
}

type EffectType string

const (
	EffLoadOptions     EffectType = "LoadOptions"
	EffEnable          EffectType = "Enable"
	EffReset           EffectType = "Reset" // disable, drop options, show placeholder
	EffShowAdvanced    EffectType = "ShowAdvanced"
	EffHideAdvanced    EffectType = "HideAdvanced"
	EffLoadStats       EffectType = "LoadStats"
	EffHideStats       EffectType = "HideStats"
	EffActivateContext EffectType = "ActivateContext"
)

type Effect struct {
	Type    EffectType
	Region  Region
	Parent  string // LoadOptions: league/team/player id, "" for every hero
	View    StatsView
	Context stats.Context
	Query   stats.Query
}

// Apply runs one UI event against the state. It never performs I/O: the
// returned effects are executed in order by the caller, each fetch awaited
// before the next effect starts. On error the state is returned unchanged.
func Apply(s State, cmd Command) ([]Effect, State, error) {
	next := s
	sel := &next.Selection

	switch cmd.Type {
	case CmdChooseLeague:
		sel.LeagueID = cmd.ID
		clearBelow(sel, RegionTeam)

		if cmd.ID == "" {
			effects := resetAll(Cascade)
			effects = append(effects, Effect{Type: EffHideStats, Region: RegionStats})
			return effects, next, nil
		}

		return []Effect{
			{Type: EffLoadOptions, Region: RegionTeam, Parent: cmd.ID},
			{Type: EffEnable, Region: RegionHero},
			{Type: EffLoadOptions, Region: RegionHero},
			{Type: EffReset, Region: RegionPlayer},
			{Type: EffHideStats, Region: RegionStats},
		}, next, nil

	case CmdChooseTeam:
		if cmd.ID != "" && s.Selection.LeagueID == "" {
			return nil, s, ErrNoLeague
		}
		sel.TeamID = cmd.ID
		sel.PlayerID = ""

		if cmd.ID == "" {
			return []Effect{
				{Type: EffReset, Region: RegionPlayer},
				{Type: EffHideStats, Region: RegionStats},
			}, next, nil
		}

		return []Effect{
			{Type: EffLoadOptions, Region: RegionPlayer, Parent: cmd.ID},
			{Type: EffHideStats, Region: RegionStats},
		}, next, nil

	case CmdChoosePlayer:
		if cmd.ID != "" && s.Selection.TeamID == "" {
			return nil, s, ErrNoTeam
		}
		sel.PlayerID = cmd.ID
		sel.HeroID = ""

		if cmd.ID == "" {
			return []Effect{
				{Type: EffLoadOptions, Region: RegionHero},
				{Type: EffHideStats, Region: RegionStats},
			}, next, nil
		}

		effects := []Effect{{Type: EffLoadOptions, Region: RegionHero, Parent: cmd.ID}}
		if sel.Mode == ModeAdvanced {
			effects = append(effects, unifiedStats(next)...)
		} else {
			effects = append(effects, tournamentStats(next)...)
		}
		return effects, next, nil

	case CmdChooseHero:
		sel.HeroID = cmd.ID
		return chooseHero(next), next, nil

	case CmdToggleAdvanced:
		if sel.Mode == ModeAdvanced {
			sel.Mode = ModeNormal
			sel.Advanced = AdvancedHeroes{}

			effects := []Effect{
				{Type: EffHideAdvanced, Region: RegionPanel},
				{Type: EffReset, Region: RegionAdvanced},
			}
			if sel.PlayerID != "" {
				return append(effects, tournamentStats(next)...), next, nil
			}
			return append(effects, Effect{Type: EffHideStats, Region: RegionStats}), next, nil
		}

		sel.Mode = ModeAdvanced
		effects := []Effect{
			{Type: EffShowAdvanced, Region: RegionPanel},
			{Type: EffEnable, Region: RegionAdvanced},
			{Type: EffLoadOptions, Region: RegionAdvanced},
		}
		if sel.HeroID != "" || sel.Advanced.Any() {
			effects = append(effects, unifiedStats(next)...)
		}
		return effects, next, nil

	case CmdChooseContext:
		if !cmd.Context.Known() {
			return nil, s, stats.ErrUnknownContext
		}
		next.Context = cmd.Context

		effects := []Effect{{Type: EffActivateContext, Region: RegionContexts, Context: cmd.Context}}
		if sel.PlayerID != "" || sel.HeroID != "" {
			effects = append(effects, Effect{
				Type:    EffLoadStats,
				Region:  RegionStats,
				View:    ViewContext,
				Context: cmd.Context,
				Query:   QueryFor(next),
			})
		}
		return effects, next, nil

	case CmdSetAdvancedHero:
		if sel.Mode != ModeAdvanced {
			return nil, s, ErrNotAdvanced
		}
		switch cmd.Slot {
		case SlotFriendly:
			sel.Advanced.Friendly = cmd.ID
		case SlotEnemy1:
			sel.Advanced.Enemy1 = cmd.ID
		case SlotEnemy2:
			sel.Advanced.Enemy2 = cmd.ID
		case SlotSide:
			if cmd.ID != "" && cmd.ID != stats.SideRadiant && cmd.ID != stats.SideDire {
				return nil, s, ErrUnknownSide
			}
			sel.Advanced.Side = cmd.ID
		default:
			return nil, s, ErrUnknownSlot
		}

		if sel.HeroID != "" || sel.Advanced.Any() {
			return unifiedStats(next), next, nil
		}
		return nil, next, nil

	default:
		return nil, s, ErrUnsupportedCommand
	}
}

func chooseHero(s State) []Effect {
	sel := s.Selection
	if sel.HeroID == "" {
		return nil
	}

	switch {
	case sel.PlayerID != "" && sel.Mode == ModeAdvanced:
		effects := []Effect{
			{Type: EffEnable, Region: RegionAdvanced},
			{Type: EffLoadOptions, Region: RegionAdvanced},
		}
		return append(effects, unifiedStats(s)...)
	case sel.PlayerID != "":
		return tournamentStats(s)
	case sel.Mode == ModeAdvanced:
		return unifiedStats(s)
	default:
		return nil
	}
}

// tournamentStats needs a player.
func tournamentStats(s State) []Effect {
	if s.Selection.PlayerID == "" {
		return nil
	}
	return []Effect{statsEffect(s, ViewTournament)}
}

// unifiedStats needs a player, a hero or an advanced hero.
func unifiedStats(s State) []Effect {
	sel := s.Selection
	if sel.PlayerID == "" && sel.HeroID == "" && !sel.Advanced.Any() {
		return nil
	}
	return []Effect{statsEffect(s, ViewUnified)}
}

func statsEffect(s State, view StatsView) Effect {
	return Effect{
		Type:    EffLoadStats,
		Region:  RegionStats,
		View:    view,
		Context: s.Context,
		Query:   QueryFor(s),
	}
}
