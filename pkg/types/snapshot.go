package types

// StateSnapshot:
//   version: number
//   view: {
//     mode: "normal" | "advanced"
//     context: "tournament" | "patch" | "all_time"
//     selection: Selection
//     selects: { team, player, hero, advanced: SelectView }
//     stats: { visible, html, context, kind }
//     advanced: { visible, enabled, button_label }
//     contexts: ContextTab[]
//   }

// Option is one dropdown entry. The leading placeholder is never included.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// SelectView is a dropdown. Fragment is the rendered <option> list, placeholder first.
type SelectView struct {
	Enabled  bool     `json:"enabled"`
	Options  []Option `json:"options"`
	Fragment string   `json:"fragment"`
}

// Stats kinds.
const (
	StatsTournament = "tournament"
	StatsUnified    = "unified"
	StatsContext    = "context"
)

type StatsView struct {
	Visible bool   `json:"visible"`
	HTML    string `json:"html"`
	Context string `json:"context"`
	Kind    string `json:"kind,omitempty"`
}

type AdvancedView struct {
	Visible     bool   `json:"visible"`
	Enabled     bool   `json:"enabled"`
	ButtonLabel string `json:"button_label"`
}

type ContextTab struct {
	Context string `json:"context"`
	Label   string `json:"label"`
	Active  bool   `json:"active"`
}

type Selection struct {
	LeagueID string `json:"league_id,omitempty"`
	TeamID   string `json:"team_id,omitempty"`
	PlayerID string `json:"player_id,omitempty"`
	HeroID   string `json:"hero_id,omitempty"`
	Friendly string `json:"friendly_hero_id,omitempty"`
	Enemy1   string `json:"enemy_hero_1,omitempty"`
	Enemy2   string `json:"enemy_hero_2,omitempty"`
	Side     string `json:"side,omitempty"`
}

// View is everything a client needs to paint the dashboard.
// Selects is keyed by region: team, player, hero, advanced.
type View struct {
	Mode      string                `json:"mode"`
	Context   string                `json:"context"`
	Selection Selection             `json:"selection"`
	Selects   map[string]SelectView `json:"selects"`
	Stats     StatsView             `json:"stats"`
	Advanced  AdvancedView          `json:"advanced"`
	Contexts  []ContextTab          `json:"contexts"`
}

// Clone copies the view so snapshots handed to clients never alias the session's.
func (v View) Clone() View {
	out := v
	out.Selects = make(map[string]SelectView, len(v.Selects))
	for k, s := range v.Selects {
		s.Options = append([]Option(nil), s.Options...)
		out.Selects[k] = s
	}
	out.Contexts = append([]ContextTab(nil), v.Contexts...)
	return out
}
