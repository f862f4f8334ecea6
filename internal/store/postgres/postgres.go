// Package postgres implements store.Store on PostgreSQL through gorm.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/DoyleJ11/ti-helper/internal/store"
)

type Store struct {
	db  *gorm.DB
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

// Open connects and migrates the schema.
func Open(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := gorm.Open(pgdriver.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}
	log.Info("postgres store ready")
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(
		&leagueModel{},
		&teamModel{},
		&leagueTeamModel{},
		&playerModel{},
		&heroModel{},
		&matchModel{},
		&apiCacheModel{},
	)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Leagues(ctx context.Context) ([]store.League, error) {
	var models []leagueModel
	if err := s.db.WithContext(ctx).Order("league_id DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("query leagues: %w", err)
	}
	out := make([]store.League, len(models))
	for i, m := range models {
		out[i] = m.toStore()
	}
	return out, nil
}

func (s *Store) League(ctx context.Context, id int64) (store.League, error) {
	var m leagueModel
	err := s.db.WithContext(ctx).Where("league_id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.League{}, store.ErrNotFound
	}
	if err != nil {
		return store.League{}, fmt.Errorf("get league %d: %w", id, err)
	}
	return m.toStore(), nil
}

func (s *Store) MostRecentLeague(ctx context.Context) (store.League, error) {
	var m leagueModel
	err := s.db.WithContext(ctx).Order("league_id DESC").Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.League{}, store.ErrNotFound
	}
	if err != nil {
		return store.League{}, fmt.Errorf("most recent league: %w", err)
	}
	return m.toStore(), nil
}

func (s *Store) Teams(ctx context.Context) ([]store.Team, error) {
	var models []teamModel
	if err := s.db.WithContext(ctx).Order("rating DESC, team_name").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("query teams: %w", err)
	}
	return teamsToStore(models), nil
}

func (s *Store) TeamsByLeague(ctx context.Context, leagueID int64) ([]store.Team, error) {
	var models []teamModel
	err := s.db.WithContext(ctx).
		Joins("JOIN league_teams lt ON lt.team_id = teams.team_id").
		Where("lt.league_id = ?", leagueID).
		Order("teams.rating DESC, teams.team_name").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("query teams for league %d: %w", leagueID, err)
	}
	return teamsToStore(models), nil
}

func teamsToStore(models []teamModel) []store.Team {
	out := make([]store.Team, len(models))
	for i, m := range models {
		out[i] = m.toStore()
	}
	return out
}

func (s *Store) Players(ctx context.Context) ([]store.Player, error) {
	return s.findPlayers(s.db.WithContext(ctx))
}

func (s *Store) PlayersByTeam(ctx context.Context, teamID int64) ([]store.Player, error) {
	return s.findPlayers(s.db.WithContext(ctx).Where("team_id = ? AND is_active", teamID))
}

func (s *Store) PlayersByNamePrefix(ctx context.Context, prefix string) ([]store.Player, error) {
	return s.findPlayers(s.db.WithContext(ctx).Where("starts_with(player_name, ?)", prefix))
}

func (s *Store) findPlayers(q *gorm.DB) ([]store.Player, error) {
	var models []playerModel
	if err := q.Order("player_name, account_id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	out := make([]store.Player, len(models))
	for i, m := range models {
		out[i] = m.toStore()
	}
	return out, nil
}

func (s *Store) Heroes(ctx context.Context) ([]store.Hero, error) {
	return s.findHeroes(s.db.WithContext(ctx))
}

func (s *Store) HeroesByPlayer(ctx context.Context, accountID int64) ([]store.Hero, error) {
	var models []heroModel
	err := s.db.WithContext(ctx).Raw(`
		SELECT h.*
		FROM heroes h
		WHERE h.hero_id IN (SELECT DISTINCT hero_id FROM matches WHERE account_id = ?)
		ORDER BY h.hero_name
	`, accountID).Scan(&models).Error
	if err != nil {
		return nil, fmt.Errorf("query heroes for player %d: %w", accountID, err)
	}
	return heroesToStore(models), nil
}

func (s *Store) findHeroes(q *gorm.DB) ([]store.Hero, error) {
	var models []heroModel
	if err := q.Order("hero_name").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("query heroes: %w", err)
	}
	return heroesToStore(models), nil
}

func heroesToStore(models []heroModel) []store.Hero {
	out := make([]store.Hero, len(models))
	for i, m := range models {
		out[i] = m.toStore()
	}
	return out
}

func (s *Store) Matches(ctx context.Context, f store.MatchFilter) ([]store.MatchRow, error) {
	q := s.db.WithContext(ctx).Model(&matchModel{})
	if f.AccountID != 0 {
		q = q.Where("account_id = ?", f.AccountID)
	}
	if f.HeroID != 0 {
		q = q.Where("hero_id = ?", f.HeroID)
	}
	if f.LeagueID != 0 {
		q = q.Where("league_id = ?", f.LeagueID)
	}
	if f.PatchID != 0 {
		q = q.Where("patch_id = ?", f.PatchID)
	}

	var models []matchModel
	if err := q.Order("match_id, account_id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	out := make([]store.MatchRow, len(models))
	for i, m := range models {
		out[i] = m.toStore()
	}
	return out, nil
}

func (s *Store) LatestMatchID(ctx context.Context) (int64, error) {
	var id sql.NullInt64
	if err := s.db.WithContext(ctx).Model(&matchModel{}).Select("MAX(match_id)").Row().Scan(&id); err != nil {
		return 0, fmt.Errorf("latest match id: %w", err)
	}
	return id.Int64, nil
}

func (s *Store) upsert(ctx context.Context, value any, key ...string) error {
	cols := make([]clause.Column, len(key))
	for i, k := range key {
		cols[i] = clause.Column{Name: k}
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   cols,
		UpdateAll: true,
	}).Create(value).Error
}

func (s *Store) UpsertHero(ctx context.Context, h store.Hero) error {
	if h.ID == 0 {
		return store.ErrInvalidInput
	}
	m := heroModel{
		HeroID:           h.ID,
		HeroName:         h.Name,
		AttackType:       h.AttackType,
		PrimaryAttribute: h.PrimaryAttribute,
		BaseAttackMin:    h.BaseAttackMin,
		BaseAttackMax:    h.BaseAttackMax,
	}
	if err := s.upsert(ctx, &m, "hero_id"); err != nil {
		return fmt.Errorf("upsert hero %d: %w", h.ID, err)
	}
	return nil
}

func (s *Store) UpsertLeague(ctx context.Context, l store.League) error {
	if l.ID == 0 {
		return store.ErrInvalidInput
	}
	m := leagueModel{LeagueID: l.ID, LeagueName: l.Name, Tier: l.Tier, PatchID: l.PatchID}
	if err := s.upsert(ctx, &m, "league_id"); err != nil {
		return fmt.Errorf("upsert league %d: %w", l.ID, err)
	}
	return nil
}

func (s *Store) UpsertTeam(ctx context.Context, t store.Team) error {
	if t.ID == 0 {
		return store.ErrInvalidInput
	}
	m := teamModel{TeamID: t.ID, TeamName: t.Name, Rating: t.Rating}
	if err := s.upsert(ctx, &m, "team_id"); err != nil {
		return fmt.Errorf("upsert team %d: %w", t.ID, err)
	}
	return nil
}

func (s *Store) AddLeagueTeam(ctx context.Context, leagueID, teamID int64) error {
	if leagueID == 0 || teamID == 0 {
		return store.ErrInvalidInput
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&leagueTeamModel{LeagueID: leagueID, TeamID: teamID}).Error
	if err != nil {
		return fmt.Errorf("add team %d to league %d: %w", teamID, leagueID, err)
	}
	return nil
}

func (s *Store) UpsertPlayer(ctx context.Context, p store.Player) error {
	if p.AccountID == 0 || p.TeamID == 0 {
		return store.ErrInvalidInput
	}
	m := playerModel{AccountID: p.AccountID, TeamID: p.TeamID, PlayerName: p.Name, IsActive: p.Active}
	if err := s.upsert(ctx, &m, "account_id", "team_id"); err != nil {
		return fmt.Errorf("upsert player %d: %w", p.AccountID, err)
	}
	return nil
}

func (s *Store) InsertMatchRows(ctx context.Context, rows []store.MatchRow) error {
	if len(rows) == 0 {
		return nil
	}
	models := make([]matchModel, len(rows))
	for i, r := range rows {
		if err := store.ValidateMatchRow(r); err != nil {
			return err
		}
		models[i] = matchFromStore(r)
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(models, 200).Error
	if err != nil {
		return fmt.Errorf("insert %d match rows: %w", len(rows), err)
	}
	return nil
}

func (s *Store) CachedResponse(ctx context.Context, endpoint string) ([]byte, time.Time, error) {
	var m apiCacheModel
	err := s.db.WithContext(ctx).Where("endpoint = ?", endpoint).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, time.Time{}, store.ErrNotFound
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("get cached %s: %w", endpoint, err)
	}
	return m.Response, m.FetchedAt, nil
}

func (s *Store) CacheResponse(ctx context.Context, endpoint string, body []byte) error {
	if endpoint == "" {
		return store.ErrInvalidInput
	}
	m := apiCacheModel{Endpoint: endpoint, Response: body, FetchedAt: s.now().UTC()}
	if err := s.upsert(ctx, &m, "endpoint"); err != nil {
		return fmt.Errorf("cache %s: %w", endpoint, err)
	}
	return nil
}
