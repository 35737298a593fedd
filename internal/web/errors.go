package web

// errors.go provides unified error response handling for the web layer.
//
// Every pipeline failure is:
//   - logged with the technical error, support code and request ID
//   - mapped to an HTTP status by its type
//   - returned as JSON to API clients, or rendered in place of the table
//     on the page

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/csvview/internal/core"
	"github.com/JonMunkholm/csvview/internal/logging"
	"github.com/JonMunkholm/csvview/internal/web/templates"
)

var (
	errRateLimited = errors.New("rate limit exceeded")
	errInvalidBody = errors.New("invalid request body")
)

// ErrorResponse is the JSON body of API errors. Error is the text shown in
// place of the table; Message, Action and Code come from core.MapError.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// newErrorResponse builds the response body for err. Errors that match a
// known pattern are shown verbatim; anything else only as the generic
// message so internals do not leak.
func newErrorResponse(err error) ErrorResponse {
	ue := core.NewUserError(err)
	text := ue.User.Message
	if core.IsUserFacing(err) {
		text = ue.Technical.Error()
	}
	return ErrorResponse{
		Error:   text,
		Message: ue.User.Message,
		Action:  ue.User.Action,
		Code:    ue.User.Code,
	}
}

// statusFor maps a pipeline or request error to an HTTP status.
func statusFor(err error) int {
	var parseErr *core.ParseError
	var tooLarge *http.MaxBytesError

	switch {
	case errors.Is(err, core.ErrTooLarge), errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrUndecodable), errors.As(err, &parseErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrTooManyUploads), errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, core.ErrNoInput),
		errors.Is(err, core.ErrInvalidDataURI),
		errors.Is(err, core.ErrUnsupportedFormat),
		errors.Is(err, errInvalidBody):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// logError records a failed request with its support code.
func logError(r *http.Request, err error, status int) {
	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", core.MapError(err).Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}
}

// respondError logs err and writes it in the format the client expects.
func respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	logError(r, err, status)

	if wantsJSON(r) {
		writeJSON(w, status, newErrorResponse(err))
		return
	}

	body := newErrorResponse(err)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = templates.ErrorAlert(body.Error, body.Code).Render(r.Context(), w)
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
