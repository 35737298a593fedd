package core

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"fmt"
	"io"

	"github.com/ulikunitz/xz"
)

// Compression identifies the container format of an uploaded payload.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionBzip2
	CompressionXZ
)

// String returns the string representation of Compression.
func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionBzip2:
		return "bzip2"
	case CompressionXZ:
		return "xz"
	default:
		return "none"
	}
}

// ErrTooLarge is returned when an upload, or its inflated content, is over
// the configured size limit.
var ErrTooLarge = errors.New("file too large")

// Magic byte signatures for compression detection
var (
	gzipMagic  = []byte{0x1f, 0x8b}
	bzip2Magic = []byte{0x42, 0x5a, 0x68}
	xzMagic    = []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}
)

// DetectCompression inspects the leading bytes of data.
func DetectCompression(data []byte) Compression {
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		return CompressionGzip
	case bytes.HasPrefix(data, bzip2Magic):
		return CompressionBzip2
	case bytes.HasPrefix(data, xzMagic):
		return CompressionXZ
	default:
		return CompressionNone
	}
}

// Inflate returns the decompressed payload when data is gzip, bzip2 or xz
// compressed, and data unchanged otherwise. The inflated size is capped at
// limit bytes (no cap when limit <= 0).
func Inflate(data []byte, limit int64) ([]byte, Compression, error) {
	ct := DetectCompression(data)
	if ct == CompressionNone {
		return data, ct, nil
	}

	var reader io.Reader
	switch ct {
	case CompressionGzip:
		gzReader, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, ct, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzReader.Close()
		reader = gzReader

	case CompressionBzip2:
		reader = bzip2.NewReader(bytes.NewReader(data))

	case CompressionXZ:
		xzReader, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, ct, fmt.Errorf("failed to create xz reader: %w", err)
		}
		reader = xzReader
	}

	if limit > 0 {
		reader = io.LimitReader(reader, limit+1)
	}

	out, err := io.ReadAll(reader)
	if err != nil {
		return nil, ct, fmt.Errorf("decompress %s: %w", ct, err)
	}
	if limit > 0 && int64(len(out)) > limit {
		return nil, ct, fmt.Errorf("%w: %s content exceeds %d bytes", ErrTooLarge, ct, limit)
	}

	return out, ct, nil
}
