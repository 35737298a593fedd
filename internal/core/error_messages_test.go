package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error returns empty", nil, ""},
		{"inflated size", fmt.Errorf("inflate: %w", errors.New("file too large: gzip content exceeds 10 bytes")), "FILE001"},
		{"body limit", errors.New("http: request body too large"), "FILE001"},
		{"undecodable", ErrUndecodable, "FILE003"},
		{"decode attempts", &DecodeError{Attempts: []error{errNULByte}}, "FILE003"},
		{"no input", ErrNoInput, "FILE004"},
		{"empty file beats parse wrapper", &ParseError{Delimiter: ",", Err: errNoColumns}, "FILE005"},
		{"bad data uri", errors.New("invalid data uri: missing comma"), "FILE006"},
		{"ragged rows", &ParseError{Delimiter: ",", Err: errors.New("expected 2 fields in line 3, saw 3")}, "PARSE002"},
		{"generic parse failure", &ParseError{Delimiter: "::", Err: errors.New("delimiter must be a single character, got 2")}, "PARSE001"},
		{"busy", ErrTooManyUploads, "UPL002"},
		{"cancelled", fmt.Errorf("run: %w", errors.New("context canceled")), "UPL004"},
		{"timed out", errors.New("context deadline exceeded"), "UPL005"},
		{"rate limit", errors.New("rate limit exceeded"), "RATE001"},
		{"unknown", errors.New("some random internal error"), "ERR000"},
		{"case insensitive", errors.New("FILE TOO LARGE"), "FILE001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(ErrTooManyUploads)
	want := "System is busy processing other uploads (Code: UPL002). Please wait a moment and try again"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
	if FormatUserError(nil) != "" {
		t.Error("FormatUserError(nil) should be empty")
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("nil error is not user facing")
	}
	if !IsUserFacing(ErrUndecodable) {
		t.Error("decode failure should be user facing")
	}
	if IsUserFacing(errors.New("random internal error xyz")) {
		t.Error("unknown error should not be user facing")
	}
}

func TestNewUserError(t *testing.T) {
	if got := NewUserError(nil); got != nil {
		t.Errorf("NewUserError(nil) = %v, want nil", got)
	}

	techErr := &ParseError{Delimiter: ";", Err: errors.New("expected 1 fields in line 2, saw 2")}
	userErr := NewUserError(techErr)

	if userErr.Error() != "Rows have more fields than the header" {
		t.Errorf("Error() = %q, want user message", userErr.Error())
	}

	var pe *ParseError
	if !errors.As(userErr, &pe) || pe.Delimiter != ";" {
		t.Error("Unwrap() should expose the ParseError")
	}
}
