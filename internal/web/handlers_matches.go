package web

import (
	"context"
	"errors"
	"net/http"

	"americano-app/internal/engine"
	"americano-app/internal/model"
)

func (s *Server) handleMatchesGenerate(w http.ResponseWriter, r *http.Request) {
	created, err := s.svc.GenerateMatches(r.Context())
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusCreated, envelope{"created": created})
}

func (s *Server) handleMatchCreate(w http.ResponseWriter, r *http.Request) {
	var in engine.MatchInput
	if err := readJSON(w, r, &in); err != nil {
		s.badRequest(w, r, err)
		return
	}
	match, err := s.svc.CreateMatch(r.Context(), in)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusCreated, match)
}

func (s *Server) handleMatchDelete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "matchID")
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	if err := s.svc.DeleteMatch(r.Context(), id); err != nil {
		s.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMatchStart(w http.ResponseWriter, r *http.Request) {
	s.moveMatch(w, r, s.svc.StartMatch)
}

func (s *Server) handleMatchPause(w http.ResponseWriter, r *http.Request) {
	s.moveMatch(w, r, s.svc.PauseMatch)
}

func (s *Server) handleMatchReopen(w http.ResponseWriter, r *http.Request) {
	s.moveMatch(w, r, s.svc.EditResult)
}

func (s *Server) moveMatch(w http.ResponseWriter, r *http.Request, move func(context.Context, int) (model.Match, error)) {
	id, err := idParam(r, "matchID")
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	match, err := move(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, match)
}

func (s *Server) handleMatchResult(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "matchID")
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	var in scoreRequest
	if err := readJSON(w, r, &in); err != nil {
		s.badRequest(w, r, err)
		return
	}
	if in.Player1Points == nil || in.Player2Points == nil {
		s.serviceError(w, r, engine.ErrInvalidScore)
		return
	}
	res, err := s.svc.SubmitResult(r.Context(), id, *in.Player1Points, *in.Player2Points, in.Confirm)
	if err != nil {
		var mismatch *engine.TotalMismatchError
		if !errors.As(err, &mismatch) {
			s.log.WithError(err).WithField("match", id).Warn("result rejected")
		}
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, res)
}
