// Package sqlite implements store.Store on a single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	_ "modernc.org/sqlite"

	"github.com/DoyleJ11/ti-helper/internal/store"
)

//go:embed schema.sql
var schemaFS embed.FS

type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

// Open creates the file if needed and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	dsn := "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer at a time; a single connection also keeps :memory: databases shared.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema.sql: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, string(schemaSQL)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Leagues(ctx context.Context) ([]store.League, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT league_id, league_name, tier, patch_id
		FROM leagues
		ORDER BY league_id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query leagues: %w", err)
	}
	defer rows.Close()

	var out []store.League
	for rows.Next() {
		var l store.League
		if err := rows.Scan(&l.ID, &l.Name, &l.Tier, &l.PatchID); err != nil {
			return nil, fmt.Errorf("scan league: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) League(ctx context.Context, id int64) (store.League, error) {
	var l store.League
	err := s.db.QueryRowContext(ctx, `
		SELECT league_id, league_name, tier, patch_id
		FROM leagues
		WHERE league_id = ?
	`, id).Scan(&l.ID, &l.Name, &l.Tier, &l.PatchID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.League{}, store.ErrNotFound
	}
	if err != nil {
		return store.League{}, fmt.Errorf("get league %d: %w", id, err)
	}
	return l, nil
}

func (s *Store) MostRecentLeague(ctx context.Context) (store.League, error) {
	var l store.League
	err := s.db.QueryRowContext(ctx, `
		SELECT league_id, league_name, tier, patch_id
		FROM leagues
		ORDER BY league_id DESC
		LIMIT 1
	`).Scan(&l.ID, &l.Name, &l.Tier, &l.PatchID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.League{}, store.ErrNotFound
	}
	if err != nil {
		return store.League{}, fmt.Errorf("most recent league: %w", err)
	}
	return l, nil
}

func (s *Store) Teams(ctx context.Context) ([]store.Team, error) {
	return s.queryTeams(ctx, `
		SELECT team_id, team_name, rating
		FROM teams
		ORDER BY rating DESC, team_name
	`)
}

func (s *Store) TeamsByLeague(ctx context.Context, leagueID int64) ([]store.Team, error) {
	return s.queryTeams(ctx, `
		SELECT t.team_id, t.team_name, t.rating
		FROM teams t
		JOIN league_teams lt ON lt.team_id = t.team_id
		WHERE lt.league_id = ?
		ORDER BY t.rating DESC, t.team_name
	`, leagueID)
}

func (s *Store) queryTeams(ctx context.Context, query string, args ...any) ([]store.Team, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query teams: %w", err)
	}
	defer rows.Close()

	var out []store.Team
	for rows.Next() {
		var t store.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Rating); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) Players(ctx context.Context) ([]store.Player, error) {
	return s.queryPlayers(ctx, "1 = 1")
}

func (s *Store) PlayersByTeam(ctx context.Context, teamID int64) ([]store.Player, error) {
	return s.queryPlayers(ctx, "team_id = ? AND is_active = 1", teamID)
}

// PlayersByNamePrefix is case sensitive, unlike LIKE.
func (s *Store) PlayersByNamePrefix(ctx context.Context, prefix string) ([]store.Player, error) {
	return s.queryPlayers(ctx, "substr(player_name, 1, ?) = ?", utf8.RuneCountInString(prefix), prefix)
}

func (s *Store) queryPlayers(ctx context.Context, where string, args ...any) ([]store.Player, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT account_id, player_name, team_id, is_active
		FROM players
		WHERE `+where+`
		ORDER BY player_name, account_id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()

	var out []store.Player
	for rows.Next() {
		var p store.Player
		if err := rows.Scan(&p.AccountID, &p.Name, &p.TeamID, &p.Active); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) Heroes(ctx context.Context) ([]store.Hero, error) {
	return s.queryHeroes(ctx, `
		SELECT hero_id, hero_name, attack_type, primary_attribute, base_attack_min, base_attack_max
		FROM heroes
		ORDER BY hero_name
	`)
}

func (s *Store) HeroesByPlayer(ctx context.Context, accountID int64) ([]store.Hero, error) {
	return s.queryHeroes(ctx, `
		SELECT h.hero_id, h.hero_name, h.attack_type, h.primary_attribute, h.base_attack_min, h.base_attack_max
		FROM heroes h
		WHERE h.hero_id IN (SELECT DISTINCT hero_id FROM matches WHERE account_id = ?)
		ORDER BY h.hero_name
	`, accountID)
}

func (s *Store) queryHeroes(ctx context.Context, query string, args ...any) ([]store.Hero, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query heroes: %w", err)
	}
	defer rows.Close()

	var out []store.Hero
	for rows.Next() {
		var h store.Hero
		if err := rows.Scan(&h.ID, &h.Name, &h.AttackType, &h.PrimaryAttribute, &h.BaseAttackMin, &h.BaseAttackMax); err != nil {
			return nil, fmt.Errorf("scan hero: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *Store) Matches(ctx context.Context, f store.MatchFilter) ([]store.MatchRow, error) {
	var (
		where []string
		args  []any
	)
	add := func(col string, v int64) {
		if v != 0 {
			where = append(where, col+" = ?")
			args = append(args, v)
		}
	}
	add("account_id", f.AccountID)
	add("hero_id", f.HeroID)
	add("league_id", f.LeagueID)
	add("patch_id", f.PatchID)

	query := `
		SELECT league_id, match_id, account_id, hero_id, kills, last_hits_5, denies_5,
		       heroes_on_lane, enemy_heroes_on_lane, lane_role, is_roaming, is_radiant, patch_id
		FROM matches`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY match_id, account_id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var out []store.MatchRow
	for rows.Next() {
		var (
			r             store.MatchRow
			allied, enemy string
		)
		if err := rows.Scan(&r.LeagueID, &r.MatchID, &r.AccountID, &r.HeroID, &r.Kills, &r.LastHitsAt5, &r.DeniesAt5,
			&allied, &enemy, &r.LaneRole, &r.IsRoaming, &r.IsRadiant, &r.PatchID); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		r.AlliedHeroes = store.DecodeIDs(allied)
		r.EnemyHeroes = store.DecodeIDs(enemy)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) LatestMatchID(ctx context.Context) (int64, error) {
	var id sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(match_id) FROM matches`).Scan(&id); err != nil {
		return 0, fmt.Errorf("latest match id: %w", err)
	}
	return id.Int64, nil
}

func (s *Store) UpsertHero(ctx context.Context, h store.Hero) error {
	if h.ID == 0 {
		return store.ErrInvalidInput
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO heroes (hero_id, hero_name, attack_type, primary_attribute, base_attack_min, base_attack_max)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(hero_id) DO UPDATE SET
			hero_name = excluded.hero_name,
			attack_type = excluded.attack_type,
			primary_attribute = excluded.primary_attribute,
			base_attack_min = excluded.base_attack_min,
			base_attack_max = excluded.base_attack_max
	`, h.ID, h.Name, h.AttackType, h.PrimaryAttribute, h.BaseAttackMin, h.BaseAttackMax)
	if err != nil {
		return fmt.Errorf("upsert hero %d: %w", h.ID, err)
	}
	return nil
}

func (s *Store) UpsertLeague(ctx context.Context, l store.League) error {
	if l.ID == 0 {
		return store.ErrInvalidInput
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leagues (league_id, league_name, tier, patch_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(league_id) DO UPDATE SET
			league_name = excluded.league_name,
			tier = excluded.tier,
			patch_id = excluded.patch_id
	`, l.ID, l.Name, l.Tier, l.PatchID)
	if err != nil {
		return fmt.Errorf("upsert league %d: %w", l.ID, err)
	}
	return nil
}

func (s *Store) UpsertTeam(ctx context.Context, t store.Team) error {
	if t.ID == 0 {
		return store.ErrInvalidInput
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO teams (team_id, team_name, rating)
		VALUES (?, ?, ?)
		ON CONFLICT(team_id) DO UPDATE SET
			team_name = excluded.team_name,
			rating = excluded.rating
	`, t.ID, t.Name, t.Rating)
	if err != nil {
		return fmt.Errorf("upsert team %d: %w", t.ID, err)
	}
	return nil
}

func (s *Store) AddLeagueTeam(ctx context.Context, leagueID, teamID int64) error {
	if leagueID == 0 || teamID == 0 {
		return store.ErrInvalidInput
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO league_teams (league_id, team_id) VALUES (?, ?)
	`, leagueID, teamID)
	if err != nil {
		return fmt.Errorf("add team %d to league %d: %w", teamID, leagueID, err)
	}
	return nil
}

func (s *Store) UpsertPlayer(ctx context.Context, p store.Player) error {
	if p.AccountID == 0 || p.TeamID == 0 {
		return store.ErrInvalidInput
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO players (account_id, team_id, player_name, is_active)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(account_id, team_id) DO UPDATE SET
			player_name = excluded.player_name,
			is_active = excluded.is_active
	`, p.AccountID, p.TeamID, p.Name, p.Active)
	if err != nil {
		return fmt.Errorf("upsert player %d: %w", p.AccountID, err)
	}
	return nil
}

func (s *Store) InsertMatchRows(ctx context.Context, rows []store.MatchRow) error {
	for _, r := range rows {
		if err := store.ValidateMatchRow(r); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO matches (
			league_id, match_id, account_id, hero_id, kills, last_hits_5, denies_5,
			heroes_on_lane, enemy_heroes_on_lane, lane_role, is_roaming, is_radiant, patch_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare match insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx,
			r.LeagueID, r.MatchID, r.AccountID, r.HeroID, r.Kills, r.LastHitsAt5, r.DeniesAt5,
			store.EncodeIDs(r.AlliedHeroes), store.EncodeIDs(r.EnemyHeroes),
			r.LaneRole, r.IsRoaming, r.IsRadiant, r.PatchID,
		); err != nil {
			return fmt.Errorf("insert match %d/%d: %w", r.MatchID, r.AccountID, err)
		}
	}
	return tx.Commit()
}

func (s *Store) CachedResponse(ctx context.Context, endpoint string) ([]byte, time.Time, error) {
	var (
		body      []byte
		fetchedAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT response, fetched_at FROM api_cache WHERE endpoint = ?
	`, endpoint).Scan(&body, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, store.ErrNotFound
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("get cached %s: %w", endpoint, err)
	}
	ts, err := time.Parse(time.RFC3339Nano, fetchedAt)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("parse cache time for %s: %w", endpoint, err)
	}
	return body, ts, nil
}

func (s *Store) CacheResponse(ctx context.Context, endpoint string, body []byte) error {
	if endpoint == "" {
		return store.ErrInvalidInput
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO api_cache (endpoint, response, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT(endpoint) DO UPDATE SET
			response = excluded.response,
			fetched_at = excluded.fetched_at
	`, endpoint, body, s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("cache %s: %w", endpoint, err)
	}
	return nil
}
