// Package templates holds the HTML views of the viewer. The components are
// written in the .templ files; run `templ generate` after editing them.
package templates

import (
	"context"
	"io"

	"github.com/JonMunkholm/csvview/internal/core"
)

// TabulatorVersion is the table widget release loaded by the page.
const TabulatorVersion = "6.3.0"

// WidgetCDN is the origin the widget assets are loaded from. The CSP allows it.
const WidgetCDN = "https://unpkg.com"

// PlaceholderText is shown before anything has been uploaded.
const PlaceholderText = "No file uploaded yet."

// TableDataID is the id of the JSON script element carrying the view.
const TableDataID = "table-data"

// DelimiterOption is one radio button of the delimiter control.
type DelimiterOption struct {
	Value string
	Label string
}

// DelimiterOptions are offered in this order; auto is the default.
var DelimiterOptions = []DelimiterOption{
	{Value: "auto", Label: "Auto"},
	{Value: "comma", Label: "Comma (,)"},
	{Value: "tab", Label: "Tab (\\t)"},
	{Value: "semicolon", Label: "Semicolon (;)"},
}

func checkedDelimiter(selected string) string {
	if selected == "" {
		return "auto"
	}
	return selected
}

// PageData is the state of the single page: the last upload's result, if any.
type PageData struct {
	Delimiter string
	Output    Output
}

// Output is what the output area shows: a placeholder, an error or a table.
type Output struct {
	Filename string
	View     *core.View
	Err      string
	Code     string
}

// Status returns the status line text for the output.
func (o Output) Status() string {
	switch {
	case o.Err != "":
		return "Failed to parse file: " + o.Err
	case o.View != nil:
		return o.View.Summary.Loaded()
	default:
		return ""
	}
}

// Render writes the output area contents, so an Output can be used as a
// component.
func (o Output) Render(ctx context.Context, w io.Writer) error {
	return outputArea(o).Render(ctx, w)
}
