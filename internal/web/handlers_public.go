package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"americano-app/internal/engine"
	"americano-app/internal/model"
)

const (
	defaultRecentResults = 10
	defaultTopScorers    = 3
)

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := s.svc.Snapshot()
	headers := http.Header{}
	if rev := s.svc.Revision(); rev.ID != "" {
		headers.Set("X-Revision", rev.ID)
	}
	if err := writeJSON(w, http.StatusOK, snap, headers); err != nil {
		s.log.WithError(err).Error("write snapshot")
	}
}

func (s *Server) handleStandings(w http.ResponseWriter, r *http.Request) {
	var rows []StandingRow
	s.svc.View(func(t *model.Tournament) { rows = buildStandings(t) })
	s.respond(w, r, http.StatusOK, envelope{"standings": rows})
}

func (s *Server) handleHeadToHead(w http.ResponseWriter, r *http.Request) {
	a, errA := intQuery(r, "a", 0)
	b, errB := intQuery(r, "b", 0)
	if err := errors.Join(errA, errB); err != nil {
		s.badRequest(w, r, err)
		return
	}
	if a == 0 || b == 0 || a == b {
		s.badRequest(w, r, errors.New("query parameters a and b must name two different players"))
		return
	}
	var (
		rec   engine.HeadToHeadRecord
		found bool
	)
	s.svc.View(func(t *model.Tournament) {
		if t.PlayerIndex(a) < 0 || t.PlayerIndex(b) < 0 {
			return
		}
		found = true
		rec = engine.HeadToHeadSummary(t, a, b)
	})
	if !found {
		s.serviceError(w, r, engine.ErrPlayerNotFound)
		return
	}
	s.respond(w, r, http.StatusOK, rec)
}

func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	round, err := intQuery(r, "round", 0)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	status := model.MatchStatus(strings.TrimSpace(r.URL.Query().Get("status")))
	if status != "" && !status.Valid() {
		s.badRequest(w, r, fmt.Errorf("unknown match status %q", status))
		return
	}
	var matches []engine.MatchView
	s.svc.View(func(t *model.Tournament) {
		matches = engine.ListMatches(t, engine.MatchFilter{Round: round, Status: status})
	})
	s.respond(w, r, http.StatusOK, MatchList{Matches: matches})
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	var matches []engine.MatchView
	s.svc.View(func(t *model.Tournament) { matches = engine.LiveMatches(t) })
	s.respond(w, r, http.StatusOK, MatchList{Matches: matches})
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	filter := engine.ScheduleFilter(strings.TrimSpace(r.URL.Query().Get("filter")))
	switch filter {
	case "":
		filter = engine.ScheduleToday
	case engine.ScheduleToday, engine.ScheduleTomorrow, engine.ScheduleAll:
	default:
		s.badRequest(w, r, fmt.Errorf("unknown schedule filter %q", filter))
		return
	}
	now := s.now()
	var slots []engine.TimeSlot
	s.svc.View(func(t *model.Tournament) { slots = engine.ScheduleFor(t, filter, now) })
	s.respond(w, r, http.StatusOK, ScheduleView{Filter: filter, Slots: slots})
}

func (s *Server) handleRecentResults(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", defaultRecentResults)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	var matches []engine.MatchView
	s.svc.View(func(t *model.Tournament) { matches = engine.RecentResults(t, limit) })
	s.respond(w, r, http.StatusOK, MatchList{Matches: matches})
}

func (s *Server) handleTopScorers(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", defaultTopScorers)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	var players []model.Player
	s.svc.View(func(t *model.Tournament) { players = engine.TopScorers(t, limit) })
	s.respond(w, r, http.StatusOK, envelope{"players": players})
}

func (s *Server) handleNextRound(w http.ResponseWriter, r *http.Request) {
	var view engine.NextRoundView
	s.svc.View(func(t *model.Tournament) { view = engine.NextRound(t) })
	s.respond(w, r, http.StatusOK, view)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, http.StatusOK, s.summary())
}

func (s *Server) handleCourts(w http.ResponseWriter, r *http.Request) {
	var courts []engine.CourtSchedule
	s.svc.View(func(t *model.Tournament) { courts = engine.CourtSchedules(t) })
	s.respond(w, r, http.StatusOK, envelope{"courts": courts})
}
