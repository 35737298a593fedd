// Package web provides HTTP handlers for the viewer.
// This file contains shared request decoding and response encoding.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/JonMunkholm/csvview/internal/core"
)

const (
	contentTypeJSON    = "application/json"
	contentTypeMsgpack = "application/msgpack"
)

// viewRequest is the body of an upload posted as a document: what the page
// script sends after reading the file as a data URI.
type viewRequest struct {
	Filename  string `json:"filename"`
	Contents  string `json:"contents"`
	Delimiter string `json:"delimiter"`
}

// readUpload decodes an upload from a JSON or msgpack document, or from a
// multipart form with a "file" part and a "delimiter" field. The body is
// capped at UPLOAD_MAX_FILE_SIZE.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (core.Upload, error) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case contentTypeJSON, contentTypeMsgpack:
		var req viewRequest
		if err := decodeBody(r.Body, mediaType, &req); err != nil {
			return core.Upload{}, err
		}
		return core.NewUploadFromDataURI(req.Contents, req.Filename, req.Delimiter)

	default:
		if err := r.ParseMultipartForm(maxSize); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return core.Upload{}, fmt.Errorf("%w: %w", core.ErrTooLarge, err)
			}
			return core.Upload{}, fmt.Errorf("%w: %w", errInvalidBody, err)
		}

		delimiter := core.ParseDelimiterChoice(r.FormValue("delimiter"))

		file, header, err := r.FormFile("file")
		if errors.Is(err, http.ErrMissingFile) {
			return core.Upload{Delimiter: delimiter}, core.ErrNoInput
		}
		if err != nil {
			return core.Upload{}, fmt.Errorf("%w: %w", errInvalidBody, err)
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return core.Upload{}, fmt.Errorf("read upload: %w", err)
		}
		if header.Filename == "" && len(data) == 0 {
			return core.Upload{Delimiter: delimiter}, core.ErrNoInput
		}

		return core.Upload{
			Payload:   core.Payload{Filename: header.Filename, Data: data},
			Delimiter: delimiter,
		}, nil
	}
}

func decodeBody(body io.Reader, mediaType string, v any) error {
	var err error
	if mediaType == contentTypeMsgpack {
		dec := msgpack.NewDecoder(body)
		dec.SetCustomStructTag("json")
		err = dec.Decode(v)
	} else {
		err = json.NewDecoder(body).Decode(v)
	}
	if err == nil {
		return nil
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: %w", core.ErrTooLarge, err)
	}
	return fmt.Errorf("%w: %w", errInvalidBody, err)
}

// wantsMsgpack reports whether the client asked for a msgpack response.
func wantsMsgpack(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), contentTypeMsgpack)
}

// writeJSON encodes v as JSON with the given status.
// Encoding errors are only logged since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}

// writeMsgpack encodes v as msgpack using the JSON field names, with map
// keys sorted so identical views encode to identical bytes.
func writeMsgpack(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeMsgpack)
	w.WriteHeader(status)

	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		slog.Error("msgpack encode error", "error", err)
	}
}

// writeNegotiated writes v as msgpack or JSON depending on Accept.
func writeNegotiated(w http.ResponseWriter, r *http.Request, status int, v any) {
	if wantsMsgpack(r) {
		writeMsgpack(w, status, v)
		return
	}
	writeJSON(w, status, v)
}
