// Package events reads uploaded event-count CSVs and aggregates them per neighbourhood.
package events

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"district-map/internal/models"
)

// ErrEmptyFile is returned when the upload has no header row
var ErrEmptyFile = eris.New("csv has no header row")

// ErrMissingColumn is returned when the key column is absent from the header
var ErrMissingColumn = eris.New("csv is missing a required column")

// Columns names the CSV headers the loader reads. Matching is case-insensitive.
type Columns struct {
	Key      string
	Name     string
	Year     string
	Count    string
	District string
}

// DefaultColumns returns the column names of the neighbourhood event export
func DefaultColumns() Columns {
	return Columns{
		Key:      "NEIGHBOURHOOD_NUMBER",
		Name:     "NEIGHBOURHOOD_NAME",
		Year:     "year",
		Count:    "EventCount",
		District: "District",
	}
}

// Table is a parsed upload: the original header plus one typed row per line
type Table struct {
	Header  []string
	Rows    []models.RawRow
	Columns Columns
}

// rowView is the typed projection csvutil decodes each record into.
// Tags are internal names the real header is rewritten to.
type rowView struct {
	Key      string `csv:"@key"`
	Name     string `csv:"@name"`
	Year     string `csv:"@year"`
	Count    string `csv:"@count"`
	District string `csv:"@district"`
}

// ReadTable parses a CSV with a header row. Blank lines are skipped, short
// rows are padded and long rows truncated to the header width.
func ReadTable(r io.Reader, cols Columns) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, eris.Wrap(err, "csv: read header")
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	canonical, found := canonicalHeader(header, cols)
	if !found {
		return nil, eris.Wrapf(ErrMissingColumn, "column %q", cols.Key)
	}

	pr := &paddedReader{r: cr, width: len(header), line: 1}
	dec, err := csvutil.NewDecoder(pr, canonical...)
	if err != nil {
		return nil, eris.Wrap(err, "csv: create decoder")
	}

	table := &Table{
		Header:  append([]string(nil), header...),
		Columns: cols,
	}

	for {
		var v rowView
		if err := dec.Decode(&v); err == io.EOF {
			break
		} else if err != nil {
			return nil, eris.Wrapf(err, "csv: decode line %d", pr.line)
		}

		table.Rows = append(table.Rows, models.RawRow{
			Line:     pr.line,
			Key:      NormalizeKey(v.Key),
			Name:     strings.TrimSpace(v.Name),
			Year:     parseInt(v.Year),
			Count:    ParseCount(v.Count),
			District: parseInt(v.District),
			Record:   pr.last,
		})
	}

	return table, nil
}

// canonicalHeader rewrites the configured column names to the rowView tags.
// Other columns get unique placeholder names so csvutil ignores them.
func canonicalHeader(header []string, cols Columns) ([]string, bool) {
	targets := []struct {
		name string
		tag  string
	}{
		{cols.Key, "@key"},
		{cols.Name, "@name"},
		{cols.Year, "@year"},
		{cols.Count, "@count"},
		{cols.District, "@district"},
	}

	out := make([]string, len(header))
	used := make(map[string]bool)
	foundKey := false

	for i, col := range header {
		out[i] = fmt.Sprintf("#%d", i)
		col = strings.TrimSpace(col)
		for _, t := range targets {
			if t.name == "" || used[t.tag] || !strings.EqualFold(col, t.name) {
				continue
			}
			out[i] = t.tag
			used[t.tag] = true
			if t.tag == "@key" {
				foundKey = true
			}
			break
		}
	}

	return out, foundKey
}

// paddedReader feeds csvutil fixed-width records and remembers the last one
type paddedReader struct {
	r     *csv.Reader
	width int
	line  int
	last  []string
}

func (p *paddedReader) Read() ([]string, error) {
	for {
		record, err := p.r.Read()
		if err != nil {
			return nil, err
		}
		p.line, _ = p.r.FieldPos(0)

		if isBlank(record) {
			continue
		}

		fixed := make([]string, p.width)
		copy(fixed, record)
		p.last = fixed
		return append([]string(nil), fixed...), nil
	}
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// NormalizeKey trims the key and, when it is an integer, returns its canonical
// decimal form so "007", " 7" and 7 all compare equal.
func NormalizeKey(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return strconv.FormatInt(n, 10)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && math.Abs(f) < 1<<53 && f == math.Trunc(f) {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}

// ParseCount coerces an event count. Fractions truncate, anything else is 0.
func ParseCount(raw string) int {
	s := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return int(f)
	}
	return 0
}

func parseInt(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}
