package postgres

import (
	"time"

	"github.com/DoyleJ11/ti-helper/internal/store"
)

type leagueModel struct {
	LeagueID   int64  `gorm:"column:league_id;primaryKey;autoIncrement:false"`
	LeagueName string `gorm:"column:league_name;not null"`
	Tier       string `gorm:"column:tier;not null;default:''"`
	PatchID    int64  `gorm:"column:patch_id;not null;default:0"`
}

func (leagueModel) TableName() string { return "leagues" }

func (m leagueModel) toStore() store.League {
	return store.League{ID: m.LeagueID, Name: m.LeagueName, Tier: m.Tier, PatchID: m.PatchID}
}

type teamModel struct {
	TeamID   int64  `gorm:"column:team_id;primaryKey;autoIncrement:false"`
	TeamName string `gorm:"column:team_name;not null"`
	Rating   int    `gorm:"column:rating;not null;default:0"`
}

func (teamModel) TableName() string { return "teams" }

func (m teamModel) toStore() store.Team {
	return store.Team{ID: m.TeamID, Name: m.TeamName, Rating: m.Rating}
}

type leagueTeamModel struct {
	LeagueID int64 `gorm:"column:league_id;primaryKey;autoIncrement:false"`
	TeamID   int64 `gorm:"column:team_id;primaryKey;autoIncrement:false"`
}

func (leagueTeamModel) TableName() string { return "league_teams" }

type playerModel struct {
	AccountID  int64  `gorm:"column:account_id;primaryKey;autoIncrement:false"`
	TeamID     int64  `gorm:"column:team_id;primaryKey;autoIncrement:false"`
	PlayerName string `gorm:"column:player_name;not null"`
	IsActive   bool   `gorm:"column:is_active;not null"`
}

func (playerModel) TableName() string { return "players" }

func (m playerModel) toStore() store.Player {
	return store.Player{AccountID: m.AccountID, Name: m.PlayerName, TeamID: m.TeamID, Active: m.IsActive}
}

type heroModel struct {
	HeroID           int64  `gorm:"column:hero_id;primaryKey;autoIncrement:false"`
	HeroName         string `gorm:"column:hero_name;not null"`
	AttackType       string `gorm:"column:attack_type;not null;default:''"`
	PrimaryAttribute string `gorm:"column:primary_attribute;not null;default:''"`
	BaseAttackMin    int    `gorm:"column:base_attack_min;not null;default:0"`
	BaseAttackMax    int    `gorm:"column:base_attack_max;not null;default:0"`
}

func (heroModel) TableName() string { return "heroes" }

func (m heroModel) toStore() store.Hero {
	return store.Hero{
		ID:               m.HeroID,
		Name:             m.HeroName,
		AttackType:       m.AttackType,
		PrimaryAttribute: m.PrimaryAttribute,
		BaseAttackMin:    m.BaseAttackMin,
		BaseAttackMax:    m.BaseAttackMax,
	}
}

type matchModel struct {
	LeagueID          int64   `gorm:"column:league_id;not null;index"`
	MatchID           int64   `gorm:"column:match_id;primaryKey;autoIncrement:false"`
	AccountID         int64   `gorm:"column:account_id;primaryKey;autoIncrement:false;index:idx_matches_account_hero,priority:1"`
	HeroID            int64   `gorm:"column:hero_id;not null;index:idx_matches_account_hero,priority:2;index"`
	Kills             int     `gorm:"column:kills;not null;default:0"`
	LastHits5         int     `gorm:"column:last_hits_5;not null;default:0"`
	Denies5           int     `gorm:"column:denies_5;not null;default:0"`
	HeroesOnLane      string  `gorm:"column:heroes_on_lane;not null;default:''"`
	EnemyHeroesOnLane string  `gorm:"column:enemy_heroes_on_lane;not null;default:''"`
	LaneRole          float64 `gorm:"column:lane_role;not null;default:0"`
	IsRoaming         bool    `gorm:"column:is_roaming;not null;default:false"`
	IsRadiant         bool    `gorm:"column:is_radiant;not null;default:false"`
	PatchID           int64   `gorm:"column:patch_id;not null;default:0;index"`
}

func (matchModel) TableName() string { return "matches" }

func matchFromStore(r store.MatchRow) matchModel {
	return matchModel{
		LeagueID:          r.LeagueID,
		MatchID:           r.MatchID,
		AccountID:         r.AccountID,
		HeroID:            r.HeroID,
		Kills:             r.Kills,
		LastHits5:         r.LastHitsAt5,
		Denies5:           r.DeniesAt5,
		HeroesOnLane:      store.EncodeIDs(r.AlliedHeroes),
		EnemyHeroesOnLane: store.EncodeIDs(r.EnemyHeroes),
		LaneRole:          r.LaneRole,
		IsRoaming:         r.IsRoaming,
		IsRadiant:         r.IsRadiant,
		PatchID:           r.PatchID,
	}
}

func (m matchModel) toStore() store.MatchRow {
	return store.MatchRow{
		LeagueID:     m.LeagueID,
		MatchID:      m.MatchID,
		AccountID:    m.AccountID,
		HeroID:       m.HeroID,
		Kills:        m.Kills,
		LastHitsAt5:  m.LastHits5,
		DeniesAt5:    m.Denies5,
		AlliedHeroes: store.DecodeIDs(m.HeroesOnLane),
		EnemyHeroes:  store.DecodeIDs(m.EnemyHeroesOnLane),
		LaneRole:     m.LaneRole,
		IsRoaming:    m.IsRoaming,
		IsRadiant:    m.IsRadiant,
		PatchID:      m.PatchID,
	}
}

type apiCacheModel struct {
	Endpoint  string    `gorm:"column:endpoint;primaryKey"`
	Response  []byte    `gorm:"column:response;not null"`
	FetchedAt time.Time `gorm:"column:fetched_at;not null"`
}

func (apiCacheModel) TableName() string { return "api_cache" }
