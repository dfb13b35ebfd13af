package web

import (
	"net/http"
	"time"

	"americano-app/internal/export"
	"americano-app/internal/live"
	"americano-app/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

type Server struct {
	svc       *service.TournamentService
	hub       *live.Hub
	auth      *Auth
	publisher *export.Publisher
	log       *logrus.Logger
	origins   []string
	devMode   bool
	now       func() time.Time
}

type Options struct {
	Service *service.TournamentService
	Hub     *live.Hub
	Auth    *Auth
	// Publisher may be nil; publishing then answers 503.
	Publisher   *export.Publisher
	Logger      *logrus.Logger
	CORSOrigins []string
	DevMode     bool
}

func NewServer(opts Options) *Server {
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Server{
		svc:       opts.Service,
		hub:       opts.Hub,
		auth:      opts.Auth,
		publisher: opts.Publisher,
		log:       opts.Logger,
		origins:   origins,
		devMode:   opts.DevMode,
		now:       time.Now,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: !allowsAnyOrigin(s.origins),
		MaxAge:           300,
	}))

	r.Get("/healthz", s.handleHealth)
	if s.hub != nil {
		r.Get("/ws", s.hub.ServeWS)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/snapshot", s.handleSnapshot)
		r.Get("/standings", s.handleStandings)
		r.Get("/head-to-head", s.handleHeadToHead)
		r.Get("/matches", s.handleMatches)

		r.Route("/public", func(r chi.Router) {
			r.Get("/live", s.handleLive)
			r.Get("/schedule", s.handleSchedule)
			r.Get("/results", s.handleRecentResults)
			r.Get("/top-scorers", s.handleTopScorers)
			r.Get("/next-round", s.handleNextRound)
			r.Get("/summary", s.handleSummary)
			r.Get("/courts", s.handleCourts)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)

			r.Group(func(r chi.Router) {
				r.Use(s.auth.RequireAdmin)

				r.Post("/players", s.handlePlayerCreate)
				r.Put("/players/{playerID}", s.handlePlayerUpdate)
				r.Delete("/players/{playerID}", s.handlePlayerDelete)

				r.Post("/matches/generate", s.handleMatchesGenerate)
				r.Post("/matches", s.handleMatchCreate)
				r.Delete("/matches/{matchID}", s.handleMatchDelete)
				r.Post("/matches/{matchID}/start", s.handleMatchStart)
				r.Post("/matches/{matchID}/pause", s.handleMatchPause)
				r.Post("/matches/{matchID}/result", s.handleMatchResult)
				r.Post("/matches/{matchID}/reopen", s.handleMatchReopen)

				r.Post("/schedule", s.handleScheduleGenerate)
				r.Post("/rounds/advance", s.handleRoundAdvance)
				r.Put("/rounds", s.handleRoundSet)
				r.Put("/settings", s.handleSettingsUpdate)

				r.Post("/snapshot/reload", s.handleSnapshotReload)
				r.Put("/snapshot", s.handleSnapshotImport)
				r.Get("/snapshot/history", s.handleSnapshotHistory)

				r.Get("/export/standings.csv", s.handleExportStandings)
				r.Get("/export/snapshot.json", s.handleExportSnapshot)
				r.Post("/export/publish", s.handleExportPublish)

				r.Post("/dev/reset", s.handleDevReset)
			})
		})
	})

	return r
}

func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

// handleHealth reports the live revision and, when the hub is attached, how many
// viewers are connected.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := envelope{"status": "ok", "revision": s.svc.Revision().ID}
	if s.hub != nil {
		body["liveClients"] = s.hub.ClientCount()
	}
	s.respond(w, r, http.StatusOK, body)
}
