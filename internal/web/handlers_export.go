package web

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"americano-app/internal/export"
	"americano-app/internal/model"
)

func (s *Server) handleExportStandings(w http.ResponseWriter, r *http.Request) {
	s.attachment(w, r, export.StandingsFileName, export.CSVContentType, export.WriteStandingsCSV)
}

func (s *Server) handleExportSnapshot(w http.ResponseWriter, r *http.Request) {
	s.attachment(w, r, export.SnapshotFileName, export.JSONContentType, export.WriteSnapshotJSON)
}

// attachment renders into a buffer first so a failed render still gets a clean 500.
func (s *Server) attachment(w http.ResponseWriter, r *http.Request, name, contentType string, render func(io.Writer, *model.Tournament) error) {
	var buf bytes.Buffer
	var err error
	s.svc.View(func(t *model.Tournament) { err = render(&buf, t) })
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.log.WithError(err).WithField("file", name).Error("write export")
	}
}

func (s *Server) handleExportPublish(w http.ResponseWriter, r *http.Request) {
	if s.publisher == nil {
		s.errorResponse(w, r, http.StatusServiceUnavailable, "export bucket is not configured")
		return
	}
	published, err := s.publisher.Publish(r.Context(), s.svc.Snapshot(), s.now())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.log.WithField("files", len(published.Files)).Info("exports published")
	s.respond(w, r, http.StatusOK, published)
}
