package models

import "sort"

// YearCounts maps a year bucket to its summed event count
type YearCounts map[int]int

// NewYearCounts returns counts with every given year initialised to zero
func NewYearCounts(years []int) YearCounts {
	c := make(YearCounts, len(years))
	for _, y := range years {
		c[y] = 0
	}
	return c
}

// Add sums other into c
func (c YearCounts) Add(other YearCounts) {
	for y, n := range other {
		c[y] += n
	}
}

// Years returns the bucket years in ascending order
func (c YearCounts) Years() []int {
	years := make([]int, 0, len(c))
	for y := range c {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// RawRow is one uploaded CSV line
type RawRow struct {
	Line     int      // 1-based line in the source file, header is line 1
	Key      string   // normalised neighbourhood key, empty when missing
	Name     string   // display name as uploaded
	Year     int      // 0 when missing or not numeric
	Count    int      // non-numeric counts coerce to 0
	District int      // 0 when missing or not numeric
	Record   []string // original fields, aligned with the table header
}

// NeighbourhoodRecord is the aggregate of every row sharing a key
type NeighbourhoodRecord struct {
	Key      string     `json:"key"`
	Name     string     `json:"name"`
	Counts   YearCounts `json:"counts"`
	District int        `json:"district"` // 0 until the join assigns one
}
