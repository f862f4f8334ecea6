package session

import (
	"errors"

	"go.uber.org/zap"

	"github.com/DoyleJ11/ti-helper/internal/engine"
	"github.com/DoyleJ11/ti-helper/internal/gateway"
	"github.com/DoyleJ11/ti-helper/internal/render"
	"github.com/DoyleJ11/ti-helper/internal/stats"
	"github.com/DoyleJ11/ti-helper/pkg/types"
)

type stampedEffect struct {
	engine.Effect
	seq uint64
}

// run executes one command's effects in order. Fetches are awaited before the
// next effect starts. It never touches session state directly.
func (s *Session) run(effects []stampedEffect) {
	defer s.post(invocationDone{})

	for _, e := range effects {
		if s.ctx.Err() != nil {
			return
		}
		switch e.Type {
		case engine.EffLoadOptions:
			s.loadOptions(e)
		case engine.EffLoadStats:
			s.loadStats(e)
		default:
			apply := viewUpdate(e.Effect)
			if apply == nil {
				s.log.Warn("effect has no view region",
					zap.String("effect", string(e.Type)),
					zap.String("region", string(e.Region)))
				continue
			}
			s.update(e, apply)
		}
	}
}

func (s *Session) update(e stampedEffect, apply func(v *types.View)) {
	s.post(regionUpdate{region: e.Region, seq: e.seq, apply: apply})
}

type optionSource struct {
	noun        string
	placeholder string
}

var optionSources = map[engine.Region]optionSource{
	engine.RegionTeam:     {noun: "teams", placeholder: "Select a team..."},
	engine.RegionPlayer:   {noun: "players", placeholder: "Select a player..."},
	engine.RegionHero:     {noun: "heroes", placeholder: "Select a hero..."},
	engine.RegionAdvanced: {noun: "heroes", placeholder: "Select a hero..."},
}

func (s *Session) loadOptions(e stampedEffect) {
	src, ok := optionSources[e.Region]
	if !ok {
		s.log.Warn("cannot load options for region", zap.String("region", string(e.Region)))
		return
	}
	if s.gw == nil {
		return
	}
	key := string(e.Region)
	advanced := e.Region == engine.RegionAdvanced

	s.update(e, func(v *types.View) {
		sv := v.Selects[key]
		sv.Fragment = render.Options(nil, "Loading "+src.noun+"...")
		sv.Options = nil
		if !advanced {
			sv.Enabled = false
		}
		v.Selects[key] = sv
	})

	list, err := s.fetchOptions(e)
	if err != nil {
		s.log.Warn("loading options failed",
			zap.String("region", key),
			zap.String("parent", e.Parent),
			zap.Error(err))
	}

	s.update(e, func(v *types.View) {
		sv := v.Selects[key]
		if err != nil {
			sv.Options = nil
			sv.Fragment = render.Options(nil, optionsError(src.noun, err))
			if !advanced {
				sv.Enabled = false
			}
			v.Selects[key] = sv
			return
		}
		sv.Options = list.Options
		sv.Fragment = render.Options(list.Options, src.placeholder)
		if advanced {
			sv.Enabled = v.Advanced.Enabled
		} else {
			sv.Enabled = len(list.Options) > 0
		}
		v.Selects[key] = sv
	})
}

func (s *Session) fetchOptions(e stampedEffect) (gateway.OptionList, error) {
	switch e.Region {
	case engine.RegionTeam:
		return s.gw.Teams(s.ctx, e.Parent)
	case engine.RegionPlayer:
		return s.gw.Players(s.ctx, e.Parent)
	case engine.RegionHero:
		return s.gw.Heroes(s.ctx, e.Parent)
	default:
		return s.gw.Heroes(s.ctx, "")
	}
}

func optionsError(noun string, err error) string {
	var se *gateway.ServiceError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return "Error loading " + noun
}

func (s *Session) loadStats(e stampedEffect) {
	if s.gw == nil {
		return
	}
	ctx := e.Context
	if ctx == "" {
		ctx = stats.ContextTournament
	}
	reveal := e.View != engine.ViewContext

	s.update(e, func(v *types.View) {
		if reveal {
			v.Stats.Visible = true
		}
		v.Stats.Kind = statsKind(e.View)
		v.Stats.Context = string(ctx)
		v.Stats.HTML = render.Loading("Loading statistics for " + string(ctx))
	})

	bundle, err := s.gw.Stats(s.ctx, e.Query)
	if err != nil {
		s.log.Warn("loading stats failed",
			zap.String("view", string(e.View)),
			zap.String("context", string(ctx)),
			zap.Error(err))
	}

	s.update(e, func(v *types.View) {
		v.Stats.Kind = statsKind(e.View)
		v.Stats.Context = string(ctx)
		v.Stats.HTML = statsHTML(e.View, ctx, bundle, err)
	})
}

func statsHTML(view engine.StatsView, ctx stats.Context, b stats.Bundle, err error) string {
	if err == nil {
		return render.Bundle(b, ctx)
	}
	var se *gateway.ServiceError
	if errors.As(err, &se) {
		msg := se.Message
		if msg == "" {
			msg = "Unknown error"
		}
		return render.Error("Error loading statistics: " + msg)
	}
	if view == engine.ViewUnified {
		return render.Error("Error loading visualization")
	}
	return render.Error("Error loading statistics")
}
