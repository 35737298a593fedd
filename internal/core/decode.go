package core

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// ErrUndecodable is the terminal decode failure: no candidate encoding
// matched and the charset-detecting fallback could not produce a table.
var ErrUndecodable = errors.New("could not decode uploaded file")

var (
	errNULByte         = errors.New("contains NUL bytes")
	errWideText        = errors.New("NUL bytes look like wide-character text")
	errInvalidSequence = errors.New("invalid byte sequence")
	errOddLength       = errors.New("odd number of bytes")
)

// utf8BOM is stripped from UTF-8 text before parsing.
const utf8BOM = "\xef\xbb\xbf"

// detectionSampleSize bounds the bytes handed to the charset detector.
const detectionSampleSize = 64 * 1024

// wideNULPercent is the share of even or of odd byte offsets that must hold
// NUL for a payload to be read as UTF-16 rather than single-byte text.
const wideNULPercent = 30

var (
	utf16LEBOM = []byte{0xff, 0xfe}
	utf16BEBOM = []byte{0xfe, 0xff}
)

// DecodedText is uploaded bytes turned into text.
type DecodedText struct {
	Text     string
	Encoding string
	// Detected is true when the text came from the charset-detecting
	// fallback rather than the candidate list.
	Detected bool
}

// DecodeError lists why every candidate encoding rejected the payload.
type DecodeError struct {
	Attempts []error
}

func (e *DecodeError) Error() string {
	parts := make([]string, len(e.Attempts))
	for i, err := range e.Attempts {
		parts[i] = err.Error()
	}
	return "encoding error: no candidate encoding matched (" + strings.Join(parts, "; ") + ")"
}

func (e *DecodeError) Unwrap() []error {
	return e.Attempts
}

// decodeStrategy is one candidate encoding.
type decodeStrategy struct {
	name   string
	decode func([]byte) (string, error)
}

// candidateEncodings is tried in order; the first success wins.
var candidateEncodings = []decodeStrategy{
	{name: "utf-8", decode: decodeUTF8},
	{name: "latin-1", decode: decodeLatin1},
	{name: "utf-16", decode: decodeUTF16},
}

// Decode converts raw bytes to text using the first candidate encoding that
// accepts them. It returns a *DecodeError when none does.
func Decode(data []byte) (DecodedText, error) {
	attempts := make([]error, 0, len(candidateEncodings))
	for _, s := range candidateEncodings {
		text, err := s.decode(data)
		if err == nil {
			return DecodedText{Text: text, Encoding: s.name}, nil
		}
		attempts = append(attempts, fmt.Errorf("%s: %w", s.name, err))
	}
	return DecodedText{}, &DecodeError{Attempts: attempts}
}

// looksWide reports whether the NUL bytes in data mark UTF-16 text: NULs
// together with a UTF-16 byte order mark, or NULs filling a large share of
// the even or the odd offsets. ASCII in UTF-16 puts a NUL in every other
// byte; a stray NUL in single-byte text does not.
func looksWide(data []byte) bool {
	var even, odd int
	for i, b := range data {
		if b != 0 {
			continue
		}
		if i%2 == 0 {
			even++
		} else {
			odd++
		}
	}
	if even+odd == 0 {
		return false
	}
	if bytes.HasPrefix(data, utf16LEBOM) || bytes.HasPrefix(data, utf16BEBOM) {
		return true
	}

	evenSlots, oddSlots := (len(data)+1)/2, len(data)/2
	return even*100 >= wideNULPercent*evenSlots ||
		(oddSlots > 0 && odd*100 >= wideNULPercent*oddSlots)
}

// decodeUTF8 accepts valid UTF-8 unless its NUL bytes mark wide text.
func decodeUTF8(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte(utf8BOM))
	if looksWide(data) {
		return "", errWideText
	}
	if !utf8.Valid(data) {
		return "", errInvalidSequence
	}
	return string(data), nil
}

// decodeLatin1 accepts any single-byte text whose NUL bytes do not mark a
// wide-character encoding.
func decodeLatin1(data []byte) (string, error) {
	if looksWide(data) {
		return "", errWideText
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// decodeUTF16 honours a byte order mark and assumes little-endian without one.
func decodeUTF16(data []byte) (string, error) {
	if len(data)%2 != 0 {
		return "", errOddLength
	}
	out, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	if bytes.IndexByte(out, 0) >= 0 {
		return "", errNULByte
	}
	if bytes.ContainsRune(out, utf8.RuneError) {
		return "", errInvalidSequence
	}
	return string(out), nil
}

// DecodeDetected is the byte-level fallback: it asks a charset detector what
// the payload is and decodes it with the matching registered encoding.
func DecodeDetected(data []byte) (DecodedText, error) {
	sample := data
	if len(sample) > detectionSampleSize {
		sample = sample[:detectionSampleSize]
	}

	result, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil {
		return DecodedText{}, fmt.Errorf("detect charset: %w", err)
	}

	enc, name := charset.Lookup(result.Charset)
	if enc == nil {
		return DecodedText{}, fmt.Errorf("detected charset %q is not supported", result.Charset)
	}

	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return DecodedText{}, fmt.Errorf("decode as %s: %w", name, err)
	}
	if bytes.IndexByte(out, 0) >= 0 {
		return DecodedText{}, fmt.Errorf("decode as %s: %w", name, errNULByte)
	}

	return DecodedText{
		Text:     strings.TrimPrefix(string(out), utf8BOM),
		Encoding: name,
		Detected: true,
	}, nil
}
