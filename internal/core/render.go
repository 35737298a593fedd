package core

import "fmt"

// Display defaults for the table widget.
const (
	DefaultPageSize            = 20
	DefaultVirtualizeThreshold = 1000
)

// Column describes one table column for the widget. Name and ID are the
// same string so rows can be looked up by either.
type Column struct {
	Name string     `json:"name"`
	ID   string     `json:"id"`
	Type ColumnType `json:"type"`
}

// Summary is the short description shown above the table.
type Summary struct {
	Filename string `json:"filename"`
	Rows     int    `json:"rows"`
	Columns  int    `json:"columns"`
}

// Loaded returns the "Loaded: <file>" line.
func (s Summary) Loaded() string {
	return "Loaded: " + s.Filename
}

// Counts returns the "Rows: n, Columns: m" line.
func (s Summary) Counts() string {
	return fmt.Sprintf("Rows: %d, Columns: %d", s.Rows, s.Columns)
}

// TableOptions are the widget features switched on for every table. The
// widget implements all of them client-side.
type TableOptions struct {
	PageAction       string `json:"page_action"`
	FilterAction     string `json:"filter_action"`
	SortAction       string `json:"sort_action"`
	SortMode         string `json:"sort_mode"`
	ColumnSelectable string `json:"column_selectable"`
	RowSelectable    string `json:"row_selectable"`
	Editable         bool   `json:"editable"`
	ExportFormat     string `json:"export_format"`
	ExportHeaders    string `json:"export_headers"`
}

// DefaultTableOptions are native paging, filtering and multi-column sorting,
// single column and multi-row selection, editable cells and CSV export with
// display headers.
var DefaultTableOptions = TableOptions{
	PageAction:       "native",
	FilterAction:     "native",
	SortAction:       "native",
	SortMode:         "multi",
	ColumnSelectable: "single",
	RowSelectable:    "multi",
	Editable:         true,
	ExportFormat:     "csv",
	ExportHeaders:    "display",
}

// View is everything the table widget needs to display a dataset.
type View struct {
	Columns    []Column         `json:"columns"`
	Data       []map[string]any `json:"data"`
	PageSize   int              `json:"page_size"`
	Virtualize bool             `json:"virtualization"`
	Summary    Summary          `json:"summary"`
	Delimiter  string           `json:"delimiter"`
	Encoding   string           `json:"encoding"`
	Options    TableOptions     `json:"options"`
}

// Packager turns datasets into views. PageSize is constant for every
// dataset; Virtualize is set once a dataset has more rows than
// VirtualizeThreshold.
type Packager struct {
	PageSize            int
	VirtualizeThreshold int
}

// DefaultPackager uses a page size of 20 and virtualizes above 1000 rows.
var DefaultPackager = Packager{
	PageSize:            DefaultPageSize,
	VirtualizeThreshold: DefaultVirtualizeThreshold,
}

// Package builds the view of ds uploaded as filename.
func (p Packager) Package(filename string, ds *Dataset) *View {
	columns := make([]Column, len(ds.Columns))
	for i, name := range ds.Columns {
		columns[i] = Column{Name: name, ID: name, Type: ds.Types[i]}
	}

	return &View{
		Columns:    columns,
		Data:       ds.Records(),
		PageSize:   p.PageSize,
		Virtualize: ds.NumRows() > p.VirtualizeThreshold,
		Summary: Summary{
			Filename: filename,
			Rows:     ds.NumRows(),
			Columns:  ds.NumColumns(),
		},
		Options: DefaultTableOptions,
	}
}
