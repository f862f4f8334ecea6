package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/ti-helper/internal/render"
	"github.com/DoyleJ11/ti-helper/internal/stats"
	"github.com/DoyleJ11/ti-helper/internal/store"
	"github.com/DoyleJ11/ti-helper/pkg/types"
)

// dataService serves the dropdown fragments, stats and the JSON API from the store.
type dataService struct {
	catalog store.Catalog
	stats   *stats.Service
	log     *zap.Logger
}

func (d *dataService) index(w http.ResponseWriter, r *http.Request) {
	page := render.IndexPage{}

	leagues, err := d.catalog.Leagues(r.Context())
	if err == nil {
		page.Leagues = leagues
		page.Heroes, err = d.catalog.Heroes(r.Context())
	}
	if err == nil {
		if recent, rerr := d.catalog.MostRecentLeague(r.Context()); rerr == nil {
			page.DefaultLeague = recent.ID
		}
	}
	if err != nil {
		// Serve an empty dashboard rather than failing the page.
		d.log.Warn("index: store unavailable", zap.Error(err))
		page = render.IndexPage{}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.Index(w, page); err != nil {
		d.log.Error("index: render failed", zap.Error(err))
	}
}

func pathID(r *http.Request, key string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return id, nil
}

func writeOptions(w http.ResponseWriter, status int, fragment string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(fragment))
}

// optionsError answers with a single empty-valued option carrying the message.
func (d *dataService) optionsError(w http.ResponseWriter, noun string, status int, err error) {
	d.log.Warn("loading options failed", zap.String("list", noun), zap.Error(err))
	writeOptions(w, status, render.Options(nil, "Error loading "+noun+": "+err.Error()))
}

func (d *dataService) teamOptions(w http.ResponseWriter, r *http.Request) {
	leagueID, err := pathID(r, "leagueID")
	if err != nil {
		d.optionsError(w, "teams", http.StatusBadRequest, err)
		return
	}
	teams, err := d.catalog.TeamsByLeague(r.Context(), leagueID)
	if err != nil {
		d.optionsError(w, "teams", http.StatusInternalServerError, err)
		return
	}
	opts := make([]types.Option, 0, len(teams))
	for _, t := range teams {
		opts = append(opts, types.Option{ID: strconv.FormatInt(t.ID, 10), Label: t.Name})
	}
	writeOptions(w, http.StatusOK, render.Options(opts, "Select a team..."))
}

func (d *dataService) playerOptions(w http.ResponseWriter, r *http.Request) {
	teamID, err := pathID(r, "teamID")
	if err != nil {
		d.optionsError(w, "players", http.StatusBadRequest, err)
		return
	}
	players, err := d.catalog.PlayersByTeam(r.Context(), teamID)
	if err != nil {
		d.optionsError(w, "players", http.StatusInternalServerError, err)
		return
	}
	opts := make([]types.Option, 0, len(players))
	for _, p := range players {
		opts = append(opts, types.Option{ID: strconv.FormatInt(p.AccountID, 10), Label: p.Name})
	}
	writeOptions(w, http.StatusOK, render.Options(opts, "Select a player..."))
}

func (d *dataService) heroOptions(w http.ResponseWriter, r *http.Request) {
	var (
		heroes []store.Hero
		err    error
	)
	if chi.URLParam(r, "playerID") == "" {
		heroes, err = d.catalog.Heroes(r.Context())
	} else {
		var playerID int64
		playerID, err = pathID(r, "playerID")
		if err != nil {
			d.optionsError(w, "heroes", http.StatusBadRequest, err)
			return
		}
		heroes, err = d.catalog.HeroesByPlayer(r.Context(), playerID)
	}
	if err != nil {
		d.optionsError(w, "heroes", http.StatusInternalServerError, err)
		return
	}
	opts := make([]types.Option, 0, len(heroes))
	for _, h := range heroes {
		opts = append(opts, types.Option{ID: strconv.FormatInt(h.ID, 10), Label: h.Name})
	}
	writeOptions(w, http.StatusOK, render.Options(opts, "Select a hero..."))
}

func (d *dataService) contextStats(w http.ResponseWriter, r *http.Request) {
	q, err := stats.ParseQuery(r.URL.Query())
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	if !q.HasSubject() {
		writeFailure(w, http.StatusBadRequest, "player_id or hero_id is required")
		return
	}

	bundle, err := d.stats.Bundle(r.Context(), q)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeFailure(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		d.log.Error("stats failed", zap.String("query", r.URL.RawQuery), zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, bundle)
}

func (d *dataService) apiLeagues(w http.ResponseWriter, r *http.Request) {
	leagues, err := d.catalog.Leagues(r.Context())
	d.answer(w, leagues, err)
}

func (d *dataService) apiMostRecentLeague(w http.ResponseWriter, r *http.Request) {
	league, err := d.catalog.MostRecentLeague(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		writeFailure(w, http.StatusNotFound, "no leagues found")
		return
	}
	d.answer(w, league, err)
}

func (d *dataService) apiTeams(w http.ResponseWriter, r *http.Request) {
	leagueID, err := pathID(r, "leagueID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	teams, err := d.catalog.TeamsByLeague(r.Context(), leagueID)
	d.answer(w, teams, err)
}

func (d *dataService) apiPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := d.catalog.Players(r.Context())
	d.answer(w, players, err)
}

func (d *dataService) apiTeamPlayers(w http.ResponseWriter, r *http.Request) {
	teamID, err := pathID(r, "teamID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	players, err := d.catalog.PlayersByTeam(r.Context(), teamID)
	d.answer(w, players, err)
}

func (d *dataService) apiHeroes(w http.ResponseWriter, r *http.Request) {
	heroes, err := d.catalog.Heroes(r.Context())
	d.answer(w, heroes, err)
}

func (d *dataService) answer(w http.ResponseWriter, data any, err error) {
	if err != nil {
		d.log.Error("api request failed", zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, data)
}
