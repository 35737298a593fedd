package templates

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/csvview/internal/core"
)

func renderPage(t *testing.T, data PageData) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Page(data).Render(context.Background(), &buf))
	return buf.String()
}

func TestPage_Placeholder(t *testing.T) {
	html := renderPage(t, PageData{})

	assert.Contains(t, html, PlaceholderText)
	assert.Contains(t, html, `<p id="status"></p>`)
	assert.Contains(t, html, `value="auto" checked`)
	assert.NotContains(t, html, `id="table"`)
}

func TestPage_Error(t *testing.T) {
	html := renderPage(t, PageData{
		Delimiter: "tab",
		Output:    Output{Err: `error parsing file with delimiter '<'`, Code: "PARSE001"},
	})

	assert.Contains(t, html, "Failed to parse file: error parsing file with delimiter &#39;&lt;&#39;")
	assert.Contains(t, html, `data-code="PARSE001"`)
	assert.Contains(t, html, `value="tab" checked`)
	assert.NotContains(t, html, PlaceholderText)
}

func TestPage_Table(t *testing.T) {
	view := core.DefaultPackager.Package("a<b>.csv", &core.Dataset{
		Columns: []string{"a"},
		Types:   []core.ColumnType{core.TypeInteger},
		Rows:    [][]any{{int64(1)}},
	})

	html := renderPage(t, PageData{Output: Output{View: view}})

	assert.Contains(t, html, "Loaded: a&lt;b&gt;.csv")
	assert.Contains(t, html, "Rows: 1, Columns: 1")
	assert.Contains(t, html, `data-page-size="20"`)
	assert.Contains(t, html, `data-virtualize="false"`)
	assert.Contains(t, html, `id="table-data"`)
	assert.NotContains(t, html, "a<b>.csv")
}

func TestOutput_Status(t *testing.T) {
	assert.Equal(t, "", Output{}.Status())
	assert.Equal(t, "Failed to parse file: boom", Output{Err: "boom"}.Status())
}

func TestPage_WidgetAssets(t *testing.T) {
	html := renderPage(t, PageData{})

	base := WidgetCDN + "/tabulator-tables@" + TabulatorVersion + "/dist/"
	assert.Contains(t, html, base+"css/tabulator.min.css")
	assert.Contains(t, html, base+"js/tabulator.min.js")
	assert.Contains(t, html, `<script src="/static/app.js" defer></script>`)
}

func TestErrorAlert_Escapes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ErrorAlert(`bad "<x>"`, `C"1`).Render(context.Background(), &buf))

	assert.Equal(t,
		`<div class="alert" role="alert" data-code="C&#34;1">Failed to parse file: bad &#34;&lt;x&gt;&#34;</div>`,
		buf.String())
}
