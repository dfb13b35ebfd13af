package web

import (
	"net/http"

	"americano-app/internal/engine"
	"americano-app/internal/model"
	"americano-app/internal/store"
)

func (s *Server) handleScheduleGenerate(w http.ResponseWriter, r *http.Request) {
	scheduled, err := s.svc.Schedule(r.Context())
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, envelope{"matches": scheduled})
}

func (s *Server) handleRoundAdvance(w http.ResponseWriter, r *http.Request) {
	round, err := s.svc.AdvanceRound(r.Context())
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, RoundView{CurrentRound: round})
}

func (s *Server) handleRoundSet(w http.ResponseWriter, r *http.Request) {
	var in roundRequest
	if err := readJSON(w, r, &in); err != nil {
		s.badRequest(w, r, err)
		return
	}
	if err := s.svc.SetRound(r.Context(), in.Round); err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, RoundView{CurrentRound: in.Round})
}

func (s *Server) handleSettingsUpdate(w http.ResponseWriter, r *http.Request) {
	var in engine.SettingsInput
	if err := readJSON(w, r, &in); err != nil {
		s.badRequest(w, r, err)
		return
	}
	settings, err := s.svc.UpdateSettings(r.Context(), in)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, settings)
}

func (s *Server) handleSnapshotReload(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Load(r.Context()); err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, s.summary())
}

func (s *Server) handleSnapshotImport(w http.ResponseWriter, r *http.Request) {
	var in model.Tournament
	if err := readDocumentJSON(w, r, &in); err != nil {
		s.badRequest(w, r, err)
		return
	}
	if err := s.svc.Import(r.Context(), in); err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, s.summary())
}

func (s *Server) handleSnapshotHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", 0)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	revs, err := s.svc.History(r.Context(), limit)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if revs == nil {
		revs = []store.Revision{}
	}
	s.respond(w, r, http.StatusOK, HistoryView{Revisions: revs})
}

func (s *Server) handleDevReset(w http.ResponseWriter, r *http.Request) {
	if !s.devMode {
		http.NotFound(w, r)
		return
	}
	if err := s.svc.Reset(r.Context()); err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.log.Warn("tournament reset to defaults")
	s.respond(w, r, http.StatusOK, s.summary())
}

func (s *Server) summary() engine.Summary {
	var sum engine.Summary
	s.svc.View(func(t *model.Tournament) { sum = engine.Summarize(t) })
	return sum
}
