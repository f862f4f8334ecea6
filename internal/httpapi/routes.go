package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/ti-helper/internal/hub"
	"github.com/DoyleJ11/ti-helper/internal/observability"
	"github.com/DoyleJ11/ti-helper/internal/stats"
	"github.com/DoyleJ11/ti-helper/internal/store"
	"github.com/DoyleJ11/ti-helper/internal/ws"
)

// Deps are the collaborators the router serves. A nil Hub disables the
// dashboard transport; a nil Catalog disables the data service.
type Deps struct {
	Hub     *hub.Hub
	Catalog store.Catalog
	Metrics *observability.Metrics
	Logger  *zap.Logger
	WS      ws.Options
}

func SetupRoutes(d Deps) http.Handler {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	// Public routes
	r.Get("/healthz", Healthz)
	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	if d.Hub != nil {
		wsOpts := d.WS
		if wsOpts.Logger == nil {
			wsOpts.Logger = log
		}
		r.Post("/sessions", CreateSession(d.Hub, log))
		r.Get("/ws", ws.Handler(d.Hub, wsOpts))
	} else {
		log.Warn("no session hub configured, dashboard transport disabled")
	}

	if d.Catalog == nil {
		log.Warn("no store configured, data service disabled")
		return r
	}

	ds := &dataService{catalog: d.Catalog, stats: stats.NewService(d.Catalog), log: log}
	r.Get("/", ds.index)
	r.Get("/teams/{leagueID}", ds.teamOptions)
	r.Get("/players/{teamID}", ds.playerOptions)
	r.Get("/heroes", ds.heroOptions)
	r.Get("/heroes/{playerID}", ds.heroOptions)
	r.Get("/stats/context", ds.contextStats)

	r.Route("/api", func(r chi.Router) {
		r.Get("/leagues", ds.apiLeagues)
		r.Get("/leagues/most-recent", ds.apiMostRecentLeague)
		r.Get("/teams/{leagueID}", ds.apiTeams)
		r.Get("/players", ds.apiPlayers)
		r.Get("/players/{teamID}", ds.apiTeamPlayers)
		r.Get("/heroes", ds.apiHeroes)
	})
	return r
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("took", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
