package opendota

type HeroStat struct {
	ID            int64  `json:"id"`
	LocalizedName string `json:"localized_name"`
	AttackType    string `json:"attack_type"`
	PrimaryAttr   string `json:"primary_attr"`
	BaseAttackMin int    `json:"base_attack_min"`
	BaseAttackMax int    `json:"base_attack_max"`
}

type League struct {
	ID   int64  `json:"leagueid"`
	Name string `json:"name"`
	Tier string `json:"tier"`
}

type LeagueMatch struct {
	MatchID int64 `json:"match_id"`
}

type LeagueTeam struct {
	TeamID int64   `json:"team_id"`
	Name   string  `json:"name"`
	Rating float64 `json:"rating"`
}

type TeamPlayer struct {
	AccountID           int64  `json:"account_id"`
	Name                string `json:"name"`
	PersonaName         string `json:"personaname"`
	IsCurrentTeamMember bool   `json:"is_current_team_member"`
}

// DisplayName prefers the pro name and falls back to the Steam persona name.
func (p TeamPlayer) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.PersonaName
}

type Match struct {
	MatchID int64         `json:"match_id"`
	Patch   int64         `json:"patch"`
	Players []MatchPlayer `json:"players"`
}

type MatchPlayer struct {
	AccountID int64  `json:"account_id"`
	Name      string `json:"name"`
	HeroID    int64  `json:"hero_id"`
	HeroKills int    `json:"hero_kills"`
	Lane      int    `json:"lane"`
	LaneRole  int    `json:"lane_role"`
	IsRoaming bool   `json:"is_roaming"`
	IsRadiant bool   `json:"isRadiant"`

	// Per-minute cumulative last hits and denies.
	LastHits []int `json:"lh_t"`
	Denies   []int `json:"dn_t"`
}
