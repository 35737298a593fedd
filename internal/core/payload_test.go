package core

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dataURI(b []byte) string {
	return "data:text/csv;base64," + base64.StdEncoding.EncodeToString(b)
}

func TestParseDataURI(t *testing.T) {
	data, err := ParseDataURI(dataURI([]byte("a,b\n1,2\n")))
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(data))
}

func TestParseDataURI_Empty(t *testing.T) {
	_, err := ParseDataURI("   ")
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestParseDataURI_MissingComma(t *testing.T) {
	_, err := ParseDataURI("data:text/csv;base64")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDataURI)
}

func TestParseDataURI_UnpaddedBase64(t *testing.T) {
	encoded := base64.RawStdEncoding.EncodeToString([]byte("ab"))
	data, err := ParseDataURI("data:;base64," + encoded)
	require.NoError(t, err)
	assert.Equal(t, "ab", string(data))
}

func TestParseDataURI_BadBase64(t *testing.T) {
	_, err := ParseDataURI("data:;base64,!!!")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDataURI)
}

func TestNewUploadFromDataURI(t *testing.T) {
	up, err := NewUploadFromDataURI(dataURI([]byte("x")), "x.csv", "tab")
	require.NoError(t, err)

	assert.Equal(t, "x.csv", up.Filename)
	assert.Equal(t, []byte("x"), up.Data)
	assert.False(t, up.Delimiter.IsAuto())
	assert.Equal(t, "\t", ResolveDelimiter("", up.Delimiter))
}
