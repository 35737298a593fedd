package core

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ColumnType is the value type inferred for a column.
type ColumnType string

const (
	TypeText    ColumnType = "text"
	TypeInteger ColumnType = "integer"
	TypeNumber  ColumnType = "number"
	TypeBoolean ColumnType = "boolean"
)

var errNoColumns = errors.New("no columns to parse from file")

// maxSafeInteger is the largest integer a JavaScript number holds exactly.
// Integer columns with larger magnitudes are kept as text.
const maxSafeInteger = 1 << 53

// lineBreaks turns CRLF and lone CR line endings into LF, since encoding/csv
// only ends records at LF.
var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// normalizeLineBreaks rewrites every line ending in text as LF.
func normalizeLineBreaks(text string) string {
	if !strings.Contains(text, "\r") {
		return text
	}
	return lineBreaks.Replace(text)
}

// missingValues are cell spellings read as a missing value.
var missingValues = map[string]bool{
	"":         true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
	"-NaN":     true,
	"-nan":     true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

var booleanValues = map[string]bool{
	"True": true, "TRUE": true, "true": true,
	"False": false, "FALSE": false, "false": false,
}

// ParseError reports a failure to parse text with a given delimiter. Its
// message is shown to the user as is.
type ParseError struct {
	Delimiter string
	Err       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("error parsing file with delimiter %s: %v", quoteDelimiter(e.Delimiter), e.Err)
}

// quoteDelimiter renders d in single quotes with control characters escaped,
// so a tab reads as '\t'.
func quoteDelimiter(d string) string {
	q := strconv.Quote(d)
	return "'" + q[1:len(q)-1] + "'"
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Dataset is a parsed table: ordered column labels, a type per column and
// rows of values aligned with the columns. A nil value is missing.
type Dataset struct {
	Columns []string
	Types   []ColumnType
	Rows    [][]any
}

// NumRows returns the number of data rows.
func (d *Dataset) NumRows() int {
	return len(d.Rows)
}

// NumColumns returns the number of columns.
func (d *Dataset) NumColumns() int {
	return len(d.Columns)
}

// Records returns the rows as mappings keyed by column label.
func (d *Dataset) Records() []map[string]any {
	records := make([]map[string]any, len(d.Rows))
	for i, row := range d.Rows {
		rec := make(map[string]any, len(d.Columns))
		for j, col := range d.Columns {
			rec[col] = row[j]
		}
		records[i] = rec
	}
	return records
}

// Parse reads delimited text into a Dataset. The first non-blank record is
// the header. Rows shorter than the header are padded with missing values;
// longer rows are an error. Any failure is a *ParseError.
func Parse(text, delimiter string) (*Dataset, error) {
	comma, err := delimiterRune(delimiter)
	if err != nil {
		return nil, &ParseError{Delimiter: delimiter, Err: err}
	}

	text = normalizeLineBreaks(strings.TrimPrefix(text, utf8BOM))

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var header []string
	var raw [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Delimiter: delimiter, Err: err}
		}
		if isBlankRecord(rec) {
			continue
		}
		if header == nil {
			header = rec
			continue
		}
		if len(rec) > len(header) {
			line, _ := r.FieldPos(0)
			return nil, &ParseError{
				Delimiter: delimiter,
				Err:       fmt.Errorf("expected %d fields in line %d, saw %d", len(header), line, len(rec)),
			}
		}
		raw = append(raw, rec)
	}

	if header == nil {
		return nil, &ParseError{Delimiter: delimiter, Err: errNoColumns}
	}

	ds := &Dataset{
		Columns: NormalizeLabels(header),
		Types:   make([]ColumnType, len(header)),
		Rows:    make([][]any, len(raw)),
	}
	for i := range ds.Rows {
		ds.Rows[i] = make([]any, len(header))
	}
	for j := range header {
		ds.Types[j] = fillColumn(ds.Rows, raw, j)
	}

	return ds, nil
}

// NormalizeLabels turns header cells into unique string column labels. Empty
// labels become "Unnamed: <index>"; repeated labels get ".1", ".2", ...
// suffixes in order of appearance.
func NormalizeLabels(header []string) []string {
	labels := make([]string, len(header))
	for i, h := range header {
		if strings.TrimSpace(h) == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		labels[i] = h
	}

	seen := make(map[string]int, len(labels))
	used := make(map[string]bool, len(labels))
	for i, label := range labels {
		if !used[label] {
			seen[label] = 1
			used[label] = true
			continue
		}
		n := max(seen[label], 1)
		candidate := label + "." + strconv.Itoa(n)
		for used[candidate] {
			n++
			candidate = label + "." + strconv.Itoa(n)
		}
		seen[label] = n + 1
		used[candidate] = true
		labels[i] = candidate
	}
	return labels
}

// fillColumn infers the type of column j of raw and writes the typed values
// into rows.
func fillColumn(rows [][]any, raw [][]string, j int) ColumnType {
	cell := func(i int) (string, bool) {
		if j >= len(raw[i]) || missingValues[raw[i][j]] {
			return "", false
		}
		return raw[i][j], true
	}

	isInt, isFloat, isBool := true, true, true
	unsafeInt := false
	present := 0
	for i := range raw {
		v, ok := cell(i)
		if !ok {
			continue
		}
		present++
		t := strings.TrimSpace(v)
		if !unsafeInt {
			n, err := strconv.ParseInt(t, 10, 64)
			switch {
			case errors.Is(err, strconv.ErrRange):
				unsafeInt = true
				isInt = false
			case err != nil:
				isInt = false
			case n > maxSafeInteger || n < -maxSafeInteger:
				unsafeInt = true
			}
		}
		if isFloat {
			if f, err := strconv.ParseFloat(t, 64); err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
				isFloat = false
			}
		}
		if isBool {
			if _, ok := booleanValues[t]; !ok {
				isBool = false
			}
		}
	}

	typ := TypeText
	switch {
	case present == 0, unsafeInt:
	case isInt:
		typ = TypeInteger
	case isFloat:
		typ = TypeNumber
	case isBool:
		typ = TypeBoolean
	}

	for i := range raw {
		v, ok := cell(i)
		if !ok {
			continue
		}
		t := strings.TrimSpace(v)
		switch typ {
		case TypeInteger:
			n, _ := strconv.ParseInt(t, 10, 64)
			rows[i][j] = n
		case TypeNumber:
			f, _ := strconv.ParseFloat(t, 64)
			rows[i][j] = f
		case TypeBoolean:
			rows[i][j] = booleanValues[t]
		default:
			rows[i][j] = v
		}
	}

	return typ
}

func delimiterRune(delimiter string) (rune, error) {
	if utf8.RuneCountInString(delimiter) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %d", utf8.RuneCountInString(delimiter))
	}
	r, _ := utf8.DecodeRuneInString(delimiter)
	return r, nil
}

func isBlankRecord(rec []string) bool {
	return len(rec) == 1 && strings.TrimSpace(rec[0]) == ""
}
