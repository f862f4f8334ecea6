package session

import (
	"github.com/DoyleJ11/ti-helper/internal/engine"
	"github.com/DoyleJ11/ti-helper/internal/render"
	"github.com/DoyleJ11/ti-helper/internal/stats"
	"github.com/DoyleJ11/ti-helper/pkg/types"
)

const (
	advancedOffLabel = "🔧 Toggle Advanced Analysis Mode"
	advancedOnLabel  = "🔧 Disable Advanced Mode"
)

// resetPlaceholder is shown in a disabled dropdown.
func resetPlaceholder(r engine.Region) string {
	if r == engine.RegionPlayer {
		return "Select a player..."
	}
	return "Select..."
}

func initialView(s engine.State) types.View {
	ctx := s.Context
	if ctx == "" {
		ctx = stats.ContextTournament
	}
	v := types.View{
		Mode:     string(s.Selection.Mode),
		Context:  string(ctx),
		Selects:  make(map[string]types.SelectView),
		Stats:    types.StatsView{Context: string(ctx)},
		Advanced: types.AdvancedView{ButtonLabel: advancedOffLabel},
		Contexts: contextTabs(ctx),
	}
	for _, r := range []engine.Region{engine.RegionTeam, engine.RegionPlayer, engine.RegionHero} {
		v.Selects[string(r)] = types.SelectView{Fragment: render.Options(nil, resetPlaceholder(r))}
	}
	// No fragment until the hero list loads, so the page keeps the one it rendered.
	v.Selects[string(engine.RegionAdvanced)] = types.SelectView{}
	if s.Selection.Mode == engine.ModeAdvanced {
		v.Advanced = types.AdvancedView{Visible: true, ButtonLabel: advancedOnLabel}
	}
	return v
}

func statsKind(view engine.StatsView) string {
	switch view {
	case engine.ViewUnified:
		return types.StatsUnified
	case engine.ViewContext:
		return types.StatsContext
	default:
		return types.StatsTournament
	}
}

func contextTabs(active stats.Context) []types.ContextTab {
	tabs := make([]types.ContextTab, 0, len(stats.Contexts))
	for _, c := range stats.Contexts {
		tabs = append(tabs, types.ContextTab{Context: string(c), Label: c.Label(), Active: c == active})
	}
	return tabs
}

// viewUpdate returns the view change for an effect that needs no fetch, or
// nil when the effect has no region to act on.
func viewUpdate(e engine.Effect) func(v *types.View) {
	switch e.Type {
	case engine.EffEnable:
		return func(v *types.View) {
			sv := v.Selects[string(e.Region)]
			sv.Enabled = true
			v.Selects[string(e.Region)] = sv
			if e.Region == engine.RegionAdvanced {
				v.Advanced.Enabled = true
			}
		}

	case engine.EffReset:
		if e.Region == engine.RegionAdvanced {
			// Advanced selects keep their hero list, only values and enablement go.
			return func(v *types.View) {
				sv := v.Selects[string(e.Region)]
				sv.Enabled = false
				v.Selects[string(e.Region)] = sv
				v.Advanced.Enabled = false
			}
		}
		return func(v *types.View) {
			v.Selects[string(e.Region)] = types.SelectView{
				Fragment: render.Options(nil, resetPlaceholder(e.Region)),
			}
		}

	case engine.EffShowAdvanced:
		return func(v *types.View) {
			v.Advanced.Visible = true
			v.Advanced.ButtonLabel = advancedOnLabel
		}

	case engine.EffHideAdvanced:
		return func(v *types.View) {
			v.Advanced.Visible = false
			v.Advanced.ButtonLabel = advancedOffLabel
		}

	case engine.EffHideStats:
		return func(v *types.View) {
			v.Stats.Visible = false
		}

	case engine.EffActivateContext:
		return func(v *types.View) {
			v.Context = string(e.Context)
			v.Contexts = contextTabs(e.Context)
		}
	}
	return nil
}
