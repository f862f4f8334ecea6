package engine

// Cascade is the dropdown chain from the league down. A region's selection is
// only meaningful while every region above it is set.
var Cascade = []Region{
	RegionTeam,
	RegionPlayer,
	RegionHero,
}

// clearBelow empties the selection at from and everything after it in the cascade.
func clearBelow(sel *Selection, from Region) {
	clearing := false
	for _, r := range Cascade {
		if r == from {
			clearing = true
		}
		if !clearing {
			continue
		}
		switch r {
		case RegionTeam:
			sel.TeamID = ""
		case RegionPlayer:
			sel.PlayerID = ""
		case RegionHero:
			sel.HeroID = ""
		}
	}
}

func resetAll(regions []Region) []Effect {
	effects := make([]Effect, 0, len(regions))
	for _, r := range regions {
		effects = append(effects, Effect{Type: EffReset, Region: r})
	}
	return effects
}
