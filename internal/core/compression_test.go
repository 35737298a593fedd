package core

import (
	"bytes"
	"compress/gzip"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

func gzipBytes(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func xzBytes(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw, err := xz.NewWriter(&buf)
	require.NoError(t, err)
	_, err = zw.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDetectCompression(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Compression
	}{
		{"plain text", []byte("a,b\n"), CompressionNone},
		{"empty", nil, CompressionNone},
		{"gzip", []byte{0x1f, 0x8b, 0x08}, CompressionGzip},
		{"bzip2", []byte("BZh91AY"), CompressionBzip2},
		{"xz", []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00, 0x00}, CompressionXZ},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectCompression(tt.data))
		})
	}
}

func TestInflate_Passthrough(t *testing.T) {
	in := []byte("a,b\n1,2\n")
	out, ct, err := Inflate(in, 10)
	require.NoError(t, err)
	assert.Equal(t, CompressionNone, ct)
	assert.Equal(t, in, out)
}

func TestInflate_Gzip(t *testing.T) {
	out, ct, err := Inflate(gzipBytes(t, "a,b\n1,2\n"), 1<<20)
	require.NoError(t, err)
	assert.Equal(t, CompressionGzip, ct)
	assert.Equal(t, "a,b\n1,2\n", string(out))
}

func TestInflate_XZ(t *testing.T) {
	out, ct, err := Inflate(xzBytes(t, "x|y\n"), 1<<20)
	require.NoError(t, err)
	assert.Equal(t, CompressionXZ, ct)
	assert.Equal(t, "x|y\n", string(out))
}

func TestInflate_TooLarge(t *testing.T) {
	_, _, err := Inflate(gzipBytes(t, strings.Repeat("a", 100)), 50)
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Contains(t, err.Error(), "file too large")
}

func TestInflate_Corrupt(t *testing.T) {
	_, ct, err := Inflate([]byte{0x1f, 0x8b, 0x00, 0x01}, 0)
	assert.Error(t, err)
	assert.Equal(t, CompressionGzip, ct)
}
