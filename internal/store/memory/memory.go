// Package memory is an in-process implementation of store.Store used by tests
// and by the server's --store=memory mode.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/DoyleJ11/ti-helper/internal/store"
)

type matchKey struct {
	matchID   int64
	accountID int64
}

type playerKey struct {
	accountID int64
	teamID    int64
}

type cached struct {
	body      []byte
	fetchedAt time.Time
}

type Store struct {
	mu          sync.RWMutex
	leagues     map[int64]store.League
	teams       map[int64]store.Team
	leagueTeams map[int64]map[int64]bool
	players     map[playerKey]store.Player
	heroes      map[int64]store.Hero
	matches     map[matchKey]store.MatchRow
	cache       map[string]cached
	now         func() time.Time
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		leagues:     make(map[int64]store.League),
		teams:       make(map[int64]store.Team),
		leagueTeams: make(map[int64]map[int64]bool),
		players:     make(map[playerKey]store.Player),
		heroes:      make(map[int64]store.Hero),
		matches:     make(map[matchKey]store.MatchRow),
		cache:       make(map[string]cached),
		now:         time.Now,
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) Leagues(_ context.Context) ([]store.League, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.League, 0, len(s.leagues))
	for _, l := range s.leagues {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) League(_ context.Context, id int64) (store.League, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.leagues[id]
	if !ok {
		return store.League{}, store.ErrNotFound
	}
	return l, nil
}

func (s *Store) MostRecentLeague(ctx context.Context) (store.League, error) {
	leagues, _ := s.Leagues(ctx)
	if len(leagues) == 0 {
		return store.League{}, store.ErrNotFound
	}
	return leagues[0], nil
}

func (s *Store) Teams(_ context.Context) ([]store.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Team, 0, len(s.teams))
	for _, t := range s.teams {
		out = append(out, t)
	}
	sortTeams(out)
	return out, nil
}

func (s *Store) TeamsByLeague(_ context.Context, leagueID int64) ([]store.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.Team
	for teamID := range s.leagueTeams[leagueID] {
		if t, ok := s.teams[teamID]; ok {
			out = append(out, t)
		}
	}
	sortTeams(out)
	return out, nil
}

func sortTeams(teams []store.Team) {
	sort.Slice(teams, func(i, j int) bool {
		if teams[i].Rating != teams[j].Rating {
			return teams[i].Rating > teams[j].Rating
		}
		return teams[i].Name < teams[j].Name
	})
}

func (s *Store) Players(_ context.Context) ([]store.Player, error) {
	return s.filterPlayers(func(store.Player) bool { return true }), nil
}

func (s *Store) PlayersByTeam(_ context.Context, teamID int64) ([]store.Player, error) {
	return s.filterPlayers(func(p store.Player) bool { return p.TeamID == teamID && p.Active }), nil
}

func (s *Store) PlayersByNamePrefix(_ context.Context, prefix string) ([]store.Player, error) {
	return s.filterPlayers(func(p store.Player) bool { return strings.HasPrefix(p.Name, prefix) }), nil
}

func (s *Store) filterPlayers(keep func(store.Player) bool) []store.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.Player
	for _, p := range s.players {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].AccountID < out[j].AccountID
	})
	return out
}

func (s *Store) Heroes(_ context.Context) ([]store.Hero, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Hero, 0, len(s.heroes))
	for _, h := range s.heroes {
		out = append(out, h)
	}
	sortHeroes(out)
	return out, nil
}

func (s *Store) HeroesByPlayer(_ context.Context, accountID int64) ([]store.Hero, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[int64]bool)
	var out []store.Hero
	for _, m := range s.matches {
		if m.AccountID != accountID || seen[m.HeroID] {
			continue
		}
		seen[m.HeroID] = true
		if h, ok := s.heroes[m.HeroID]; ok {
			out = append(out, h)
		}
	}
	sortHeroes(out)
	return out, nil
}

func sortHeroes(heroes []store.Hero) {
	sort.Slice(heroes, func(i, j int) bool { return heroes[i].Name < heroes[j].Name })
}

func (s *Store) Matches(_ context.Context, f store.MatchFilter) ([]store.MatchRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.MatchRow
	for _, m := range s.matches {
		if f.Matches(m) {
			out = append(out, copyRow(m))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MatchID != out[j].MatchID {
			return out[i].MatchID < out[j].MatchID
		}
		return out[i].AccountID < out[j].AccountID
	})
	return out, nil
}

func (s *Store) LatestMatchID(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest int64
	for k := range s.matches {
		latest = max(latest, k.matchID)
	}
	return latest, nil
}

func (s *Store) UpsertHero(_ context.Context, h store.Hero) error {
	if h.ID == 0 {
		return store.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.heroes[h.ID] = h
	return nil
}

func (s *Store) UpsertLeague(_ context.Context, l store.League) error {
	if l.ID == 0 {
		return store.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leagues[l.ID] = l
	return nil
}

func (s *Store) UpsertTeam(_ context.Context, t store.Team) error {
	if t.ID == 0 {
		return store.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams[t.ID] = t
	return nil
}

func (s *Store) AddLeagueTeam(_ context.Context, leagueID, teamID int64) error {
	if leagueID == 0 || teamID == 0 {
		return store.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.leagueTeams[leagueID] == nil {
		s.leagueTeams[leagueID] = make(map[int64]bool)
	}
	s.leagueTeams[leagueID][teamID] = true
	return nil
}

func (s *Store) UpsertPlayer(_ context.Context, p store.Player) error {
	if p.AccountID == 0 || p.TeamID == 0 {
		return store.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[playerKey{p.AccountID, p.TeamID}] = p
	return nil
}

func (s *Store) InsertMatchRows(_ context.Context, rows []store.MatchRow) error {
	for _, r := range rows {
		if err := store.ValidateMatchRow(r); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		k := matchKey{r.MatchID, r.AccountID}
		if _, exists := s.matches[k]; exists {
			continue
		}
		s.matches[k] = copyRow(r)
	}
	return nil
}

func (s *Store) CachedResponse(_ context.Context, endpoint string) ([]byte, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cache[endpoint]
	if !ok {
		return nil, time.Time{}, store.ErrNotFound
	}
	return slices.Clone(c.body), c.fetchedAt, nil
}

func (s *Store) CacheResponse(_ context.Context, endpoint string, body []byte) error {
	if endpoint == "" {
		return store.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[endpoint] = cached{body: slices.Clone(body), fetchedAt: s.now()}
	return nil
}

func copyRow(r store.MatchRow) store.MatchRow {
	r.AlliedHeroes = slices.Clone(r.AlliedHeroes)
	r.EnemyHeroes = slices.Clone(r.EnemyHeroes)
	return r
}
