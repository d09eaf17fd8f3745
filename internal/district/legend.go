package district

import (
	"fmt"
	"strings"

	"district-map/internal/models"
)

// LegendRow is the summary of one district bucket
type LegendRow struct {
	District int               `json:"district"`
	Color    string            `json:"color"`
	Regions  int               `json:"regions"`
	Totals   models.YearCounts `json:"totals"`
}

// Legend summarises every district bucket. It is derived on each call and
// never cached.
type Legend struct {
	Years     []int       `json:"years"`
	Rows      []LegendRow `json:"rows"`
	Unmatched int         `json:"unmatched"` // boundary features without a record
	Orphans   []string    `json:"orphans"`   // record keys without a boundary
}

// Legend sums each year's counts over exactly the regions in each bucket
func (m *Map) Legend() Legend {
	l := Legend{
		Years:     m.years,
		Rows:      make([]LegendRow, 0),
		Unmatched: m.Unmatched(),
		Orphans:   m.orphans,
	}
	if l.Orphans == nil {
		l.Orphans = []string{}
	}

	for _, d := range m.index.Districts() {
		row := LegendRow{
			District: d,
			Color:    m.opts.Palette.Color(d),
			Totals:   models.NewYearCounts(m.years),
		}
		for _, r := range m.index.Members(d) {
			row.Totals.Add(r.Record.Counts)
			row.Regions++
		}
		l.Rows = append(l.Rows, row)
	}

	return l
}

// Row returns the legend row for district d
func (l Legend) Row(d int) (LegendRow, bool) {
	for _, row := range l.Rows {
		if row.District == d {
			return row, true
		}
	}
	return LegendRow{}, false
}

// Text formats the row as "District 1: 5 (2023), 3 (2024)"
func (r LegendRow) Text(years []int) string {
	parts := make([]string, 0, len(years))
	for _, y := range years {
		parts = append(parts, fmt.Sprintf("%d (%d)", r.Totals[y], y))
	}
	return fmt.Sprintf("District %d: %s", r.District, strings.Join(parts, ", "))
}

// Lines returns one text line per district
func (l Legend) Lines() []string {
	lines := make([]string, 0, len(l.Rows))
	for _, row := range l.Rows {
		lines = append(lines, row.Text(l.Years))
	}
	return lines
}
