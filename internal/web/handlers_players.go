package web

import (
	"net/http"

	"americano-app/internal/engine"
)

func (s *Server) handlePlayerCreate(w http.ResponseWriter, r *http.Request) {
	var in engine.PlayerInput
	if err := readJSON(w, r, &in); err != nil {
		s.badRequest(w, r, err)
		return
	}
	player, err := s.svc.AddPlayer(r.Context(), in)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusCreated, player)
}

func (s *Server) handlePlayerUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "playerID")
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	var in engine.PlayerInput
	if err := readJSON(w, r, &in); err != nil {
		s.badRequest(w, r, err)
		return
	}
	player, err := s.svc.UpdatePlayer(r.Context(), id, in)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, player)
}

func (s *Server) handlePlayerDelete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "playerID")
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	removed, err := s.svc.DeletePlayer(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, DeletePlayerView{RemovedMatches: removed})
}
