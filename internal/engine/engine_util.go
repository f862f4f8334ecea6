package engine

import "github.com/DoyleJ11/ti-helper/internal/stats"

func NewState() State {
	return State{
		Selection: Selection{Mode: ModeNormal},
		Context:   stats.ContextTournament,
	}
}

func ContainsEffect(effects []Effect, effectType EffectType) bool {
	for _, effect := range effects {
		if effect.Type == effectType {
			return true
		}
	}
	return false
}

// QueryFor builds the stats query for the current selection and context.
// Advanced slots are only sent in advanced mode.
func QueryFor(s State) stats.Query {
	sel := s.Selection
	q := stats.Query{
		Context:  s.Context,
		LeagueID: sel.LeagueID,
		TeamID:   sel.TeamID,
		PlayerID: sel.PlayerID,
		HeroID:   sel.HeroID,
	}
	if sel.Mode == ModeAdvanced {
		q.FriendlyHeroID = sel.Advanced.Friendly
		for _, id := range []string{sel.Advanced.Enemy1, sel.Advanced.Enemy2} {
			if id != "" {
				q.EnemyHeroIDs = append(q.EnemyHeroIDs, id)
			}
		}
		q.Side = sel.Advanced.Side
	}
	if q.Context == "" {
		q.Context = stats.ContextTournament
	}
	return q
}
