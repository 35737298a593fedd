package web

import (
	"fmt"
	"net/http"

	"github.com/JonMunkholm/csvview/internal/core"
	"github.com/JonMunkholm/csvview/internal/logging"
)

// handleExport parses the posted upload and streams it back as CSV or XLSX.
// The format comes from the "format" query parameter (default csv).
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := core.ParseExportFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	up, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	res, err := s.viewer.Load(WithRequestMetadata(r.Context(), r), up)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename(up.Filename)))

	if err := format.Write(w, res.Dataset); err != nil {
		// Headers are sent; the client sees a truncated file.
		logging.FromContext(r.Context()).Error("export failed", "format", format, "error", err)
	}
}
