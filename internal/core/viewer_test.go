package core

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"github.com/JonMunkholm/csvview/internal/config"
)

func newTestViewer(t *testing.T) *Viewer {
	t.Helper()
	return NewViewer(config.Defaults())
}

func upload(name, content, delimiter string) Upload {
	return Upload{
		Payload:   Payload{Filename: name, Data: []byte(content)},
		Delimiter: ParseDelimiterChoice(delimiter),
	}
}

func TestViewer_Run(t *testing.T) {
	v := newTestViewer(t)

	view, err := v.Run(context.Background(), upload("data.csv", "a,b,c\n1,2,3\n", "auto"))
	require.NoError(t, err)

	assert.Equal(t, ",", view.Delimiter)
	assert.Equal(t, "utf-8", view.Encoding)
	assert.Equal(t, Summary{Filename: "data.csv", Rows: 1, Columns: 3}, view.Summary)
	assert.Equal(t, []map[string]any{{"a": int64(1), "b": int64(2), "c": int64(3)}}, view.Data)
	assert.Equal(t, 20, view.PageSize)
	assert.False(t, view.Virtualize)
}

func TestViewer_NoInput(t *testing.T) {
	v := newTestViewer(t)
	_, err := v.Run(context.Background(), Upload{})
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestViewer_EmptyNamedFile(t *testing.T) {
	v := newTestViewer(t)
	_, err := v.Run(context.Background(), upload("empty.csv", "", "auto"))

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, errNoColumns)
}

func TestViewer_Deterministic(t *testing.T) {
	v := newTestViewer(t)
	up := upload("d.tsv", "x\ty\tz\n1\tfoo\t2.5\n2\tbar\tNA\n", "auto")

	first, err := v.Run(context.Background(), up)
	require.NoError(t, err)
	second, err := v.Run(context.Background(), up)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
	assert.Equal(t, "\t", first.Delimiter)
}

func TestViewer_RaggedRows(t *testing.T) {
	v := newTestViewer(t)
	_, err := v.Run(context.Background(), upload("bad.csv", "a,b\n1,2,3\n", "comma"))

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, err.Error(), "','")
}

func TestViewer_ExplicitDelimiterNotValidated(t *testing.T) {
	v := newTestViewer(t)
	view, err := v.Run(context.Background(), upload("c.csv", "a,b\n1,2\n", "semicolon"))
	require.NoError(t, err)

	assert.Equal(t, ";", view.Delimiter)
	assert.Equal(t, 1, view.Summary.Columns)
	assert.Equal(t, "a,b", view.Columns[0].ID)
}

func TestViewer_UTF16Upload(t *testing.T) {
	data, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte("a;b\n1;2\n"))
	require.NoError(t, err)

	v := newTestViewer(t)
	view, err := v.Run(context.Background(), Upload{Payload: Payload{Filename: "w.csv", Data: data}})
	require.NoError(t, err)

	assert.Equal(t, "utf-16", view.Encoding)
	assert.Equal(t, ";", view.Delimiter)
	assert.Equal(t, []string{"a", "b"}, []string{view.Columns[0].ID, view.Columns[1].ID})
}

func TestViewer_GzipUpload(t *testing.T) {
	v := newTestViewer(t)
	up := Upload{Payload: Payload{Filename: "data.csv.gz", Data: gzipBytes(t, "a|b\n1|2\n")}}

	res, err := v.Load(context.Background(), up)
	require.NoError(t, err)
	assert.Equal(t, CompressionGzip, res.Compression)
	assert.Equal(t, "|", res.Delimiter)
	assert.Equal(t, 1, res.Dataset.NumRows())
}

func TestViewer_InflatedTooLarge(t *testing.T) {
	cfg := config.Defaults()
	cfg.Upload.MaxDecodedSize = 4
	v := NewViewer(cfg)

	_, err := v.Run(context.Background(), Upload{Payload: Payload{Filename: "big.gz", Data: gzipBytes(t, "a,b\n1,2\n")}})
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Equal(t, "FILE001", MapError(err).Code)
}

func TestViewer_Undecodable(t *testing.T) {
	v := newTestViewer(t)
	_, err := v.Run(context.Background(), Upload{Payload: Payload{Filename: "blob.bin", Data: make([]byte, 9)}})
	assert.ErrorIs(t, err, ErrUndecodable)
	assert.Equal(t, "could not decode uploaded file", err.Error())
}

func TestViewer_CancelledContext(t *testing.T) {
	v := newTestViewer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := v.Run(ctx, upload("a.csv", "a\n1\n", ""))
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestViewer_BusyLimiter(t *testing.T) {
	cfg := config.Defaults()
	cfg.Upload.MaxConcurrent = 1
	cfg.Upload.MaxWaitTime = 1
	v := NewViewer(cfg)

	require.NoError(t, v.limiter.Acquire(context.Background()))
	defer v.limiter.Release()

	_, err := v.Run(context.Background(), upload("a.csv", "a\n1\n", ""))
	assert.ErrorIs(t, err, ErrTooManyUploads)
	assert.Equal(t, 1, v.Status().Active)
}

func TestViewer_StrayNULIsUTF8(t *testing.T) {
	v := newTestViewer(t)

	for _, content := range []string{
		"name,qty\nwidget,3\ngad\x00et,17\n",
		"name,qty\nwidget,3\ngad\x00et,170\n",
	} {
		view, err := v.Run(context.Background(), upload("nul.csv", content, ""))
		require.NoError(t, err)
		assert.Equal(t, "utf-8", view.Encoding)
		assert.Equal(t, Summary{Filename: "nul.csv", Rows: 2, Columns: 2}, view.Summary)
	}
}

func TestViewer_CROnlyLineEndings(t *testing.T) {
	v := newTestViewer(t)

	view, err := v.Run(context.Background(), upload("mac.csv", "a;b;c\r1;2;3\r4;5;6\r", ""))
	require.NoError(t, err)
	assert.Equal(t, ";", view.Delimiter)
	assert.Equal(t, Summary{Filename: "mac.csv", Rows: 2, Columns: 3}, view.Summary)
}

func TestViewer_FallbackKeepsContextErrors(t *testing.T) {
	v := newTestViewer(t)

	// Rejected by every candidate, so the run takes the detection path.
	data := append(encodeUTF16(t, "a,b\n1,2\n"), 'x')

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := v.decodeAndParse(ctx, data, AutoDelimiter)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrUndecodable)

	ctx, cancel = context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	_, err = v.decodeAndParse(ctx, data, AutoDelimiter)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "UPL005", MapError(err).Code)
}

func encodeUTF16(t *testing.T, s string) []byte {
	t.Helper()
	b, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return b
}
