package web

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/csvview/internal/core"
	"github.com/JonMunkholm/csvview/internal/web/templates"
)

// placeholderResponse is returned by /api/view when nothing was uploaded.
type placeholderResponse struct {
	Placeholder string `json:"placeholder"`
}

// handleView runs the pipeline on the posted upload and returns the view
// for the table widget, as JSON or as msgpack when the client accepts it.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if errors.Is(err, core.ErrNoInput) {
		writeNegotiated(w, r, http.StatusOK, placeholderResponse{Placeholder: templates.PlaceholderText})
		return
	}
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	view, err := s.viewer.Run(WithRequestMetadata(r.Context(), r), up)
	if errors.Is(err, core.ErrNoInput) {
		writeNegotiated(w, r, http.StatusOK, placeholderResponse{Placeholder: templates.PlaceholderText})
		return
	}
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	writeNegotiated(w, r, http.StatusOK, view)
}
