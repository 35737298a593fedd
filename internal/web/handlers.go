package web

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/csvview/internal/core"
	"github.com/JonMunkholm/csvview/internal/logging"
	"github.com/JonMunkholm/csvview/internal/web/templates"
)

// handlePage renders the empty page: upload area, delimiter control and the
// placeholder.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, templates.PageData{})
}

// handlePageUpload is the no-script path: the form posts the file here and
// the whole page comes back with the table, the placeholder or the error.
func (s *Server) handlePageUpload(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	data := templates.PageData{Delimiter: delimiterValue(r)}

	if err == nil {
		var view *core.View
		view, err = s.viewer.Run(WithRequestMetadata(r.Context(), r), up)
		if err == nil {
			data.Output = templates.Output{Filename: up.Filename, View: view}
			s.renderPage(w, r, http.StatusOK, data)
			return
		}
	}

	if errors.Is(err, core.ErrNoInput) {
		s.renderPage(w, r, http.StatusOK, data)
		return
	}

	status := statusFor(err)
	logError(r, err, status)
	resp := newErrorResponse(err)
	data.Output = templates.Output{Filename: up.Filename, Err: resp.Error, Code: resp.Code}
	s.renderPage(w, r, status, data)
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, data templates.PageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.Page(data).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "error", err)
	}
}

// delimiterValue echoes the submitted delimiter control so the page keeps
// the user's choice. Unknown values fall back to auto.
func delimiterValue(r *http.Request) string {
	v := r.FormValue("delimiter")
	for _, opt := range templates.DelimiterOptions {
		if opt.Value == v {
			return v
		}
	}
	return "auto"
}

// handleHealth reports liveness and run slot occupancy.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"runs":   s.viewer.Status(),
	})
}
