package core

// # Error Codes Reference
//
// This file maps pipeline errors to user-facing messages with codes for
// support reference. The raw error text is still what the page shows in
// place of the table; the code and action travel with API responses and
// server logs.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: upload or inflated content exceeds the limit
//	          Patterns: "file too large", "request body too large"
//
//	FILE002 - Unsupported compression: archive could not be inflated
//	          Patterns: "inflate"
//
//	FILE003 - Undecodable: no text encoding matched the bytes
//	          Patterns: "could not decode", "encoding error"
//
//	FILE004 - No file: nothing was uploaded
//	          Patterns: "no file provided"
//
//	FILE005 - Empty file: the upload has no header row
//	          Patterns: "no columns to parse"
//
//	FILE006 - Bad data URI: contents are not "<prefix>,<base64>"
//	          Patterns: "invalid data uri"
//
// # Parse Errors (PARSE001-PARSE099)
//
//	PARSE002 - Ragged rows: a row has more fields than the header
//	           Patterns: "fields in line"
//
//	PARSE001 - Parse failure: the text could not be read with the delimiter
//	           Patterns: "error parsing file"
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL001 - Bad export format: format is not csv or xlsx
//	         Patterns: "unsupported export format"
//
//	UPL002 - System busy: every run slot is taken
//	         Patterns: "too many uploads"
//
//	UPL003 - Bad request body: request could not be decoded
//	         Patterns: "invalid request body"
//
//	UPL004 - Request cancelled
//	         Patterns: "context canceled"
//
//	UPL005 - Request timeout
//	         Patterns: "context deadline exceeded"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests from one client
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check the server log for the request_id.
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is ordered: file-level causes are checked before the
// generic parse wrapper, because a ParseError message embeds its cause.
var errorPatterns = []errorPattern{
	// File errors
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Upload a smaller file or split it into parts",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Upload a smaller file or split it into parts",
			Code:    "FILE001",
		},
	},
	{
		pattern: "inflate",
		msg: UserMessage{
			Message: "Compressed file could not be read",
			Action:  "Upload the uncompressed file instead",
			Code:    "FILE002",
		},
	},
	{
		pattern: "could not decode",
		msg: UserMessage{
			Message: "File is not readable text",
			Action:  "Save the file as UTF-8 and upload it again",
			Code:    "FILE003",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File is not readable text",
			Action:  "Save the file as UTF-8 and upload it again",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Drag and drop or select a file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "no columns to parse",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Upload a file with a header row",
			Code:    "FILE005",
		},
	},
	{
		pattern: "invalid data uri",
		msg: UserMessage{
			Message: "Upload contents are malformed",
			Action:  "Reload the page and upload the file again",
			Code:    "FILE006",
		},
	},

	// Parse errors
	{
		pattern: "fields in line",
		msg: UserMessage{
			Message: "Rows have more fields than the header",
			Action:  "Check the delimiter setting or fix the ragged rows",
			Code:    "PARSE002",
		},
	},
	{
		pattern: "error parsing file",
		msg: UserMessage{
			Message: "File could not be parsed",
			Action:  "Try a different delimiter",
			Code:    "PARSE001",
		},
	},

	// Upload errors
	{
		pattern: "unsupported export format",
		msg: UserMessage{
			Message: "Export format is not supported",
			Action:  "Choose csv or xlsx",
			Code:    "UPL001",
		},
	},
	{
		pattern: "too many uploads",
		msg: UserMessage{
			Message: "System is busy processing other uploads",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "Request could not be read",
			Action:  "Reload the page and try again",
			Code:    "UPL003",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try uploading a smaller file",
			Code:    "UPL005",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches the known patterns (case-insensitive) and returns the first
// match, or the ERR000 fallback.
//
// Example:
//
//	msg := MapError(&ParseError{Delimiter: ",", Err: errNoColumns})
//	// msg.Code == "FILE005"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError formats err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its mapped user message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
