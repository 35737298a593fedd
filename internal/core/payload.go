package core

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrNoInput is returned when a pipeline run is triggered before any file
// has been uploaded. Callers render a neutral placeholder instead of an error.
var ErrNoInput = errors.New("no file provided")

// ErrInvalidDataURI is returned for upload contents that are not
// "<prefix>,<base64>".
var ErrInvalidDataURI = errors.New("invalid data uri")

// Payload is one uploaded file held in memory for the duration of a single
// pipeline run. It is never shared between runs.
type Payload struct {
	Filename string
	Data     []byte
}

// Upload is everything a pipeline run needs: the payload and the user's
// delimiter preference.
type Upload struct {
	Payload
	Delimiter DelimiterChoice
}

// ParseDataURI decodes an upload widget value of the form
// "<content-type-prefix>,<base64 payload>".
//
// An empty value means nothing has been uploaded yet and yields ErrNoInput.
func ParseDataURI(contents string) ([]byte, error) {
	if strings.TrimSpace(contents) == "" {
		return nil, ErrNoInput
	}

	prefix, encoded, ok := strings.Cut(contents, ",")
	if !ok {
		return nil, fmt.Errorf("%w: missing ',' after %q", ErrInvalidDataURI, truncate(prefix, 32))
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		// Some clients strip padding.
		raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(strings.TrimSpace(encoded), "="))
		if rawErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDataURI, err)
		}
		data = raw
	}

	return data, nil
}

// NewUploadFromDataURI builds an Upload from the values posted by the upload
// widget: the data URI, the original filename and the delimiter control value.
func NewUploadFromDataURI(contents, filename, delimiter string) (Upload, error) {
	data, err := ParseDataURI(contents)
	if err != nil {
		return Upload{}, err
	}
	return Upload{
		Payload:   Payload{Filename: filename, Data: data},
		Delimiter: ParseDelimiterChoice(delimiter),
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
