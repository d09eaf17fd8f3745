package events

import (
	"sort"
	"strconv"

	"district-map/internal/models"
)

// AggregateOptions configures Aggregate
type AggregateOptions struct {
	// Years fixes the year buckets. Empty means every distinct year in the rows.
	Years []int
	// DefaultDistrict is carried when no row of a group names a district. 0 leaves it absent.
	DefaultDistrict int
}

// Aggregation is the result of grouping raw rows by neighbourhood key
type Aggregation struct {
	Records []models.NeighbourhoodRecord
	Years   []int
	Dropped int // rows without a key
	Ignored int // keyed rows whose year is not a bucket
}

// Aggregate groups rows by key and sums counts per year bucket. Records are
// sorted by key. The display name is the first non-empty name seen and the
// district is the last non-zero district seen.
func Aggregate(rows []models.RawRow, opts AggregateOptions) *Aggregation {
	years := opts.Years
	if len(years) == 0 {
		years = distinctYears(rows)
	}
	buckets := make(map[int]bool, len(years))
	for _, y := range years {
		buckets[y] = true
	}

	agg := &Aggregation{Years: append([]int(nil), years...)}
	sort.Ints(agg.Years)

	groups := make(map[string]*models.NeighbourhoodRecord)
	order := make([]string, 0)

	for _, row := range rows {
		if row.Key == "" {
			agg.Dropped++
			continue
		}

		rec, ok := groups[row.Key]
		if !ok {
			rec = &models.NeighbourhoodRecord{
				Key:      row.Key,
				Counts:   models.NewYearCounts(agg.Years),
				District: opts.DefaultDistrict,
			}
			groups[row.Key] = rec
			order = append(order, row.Key)
		}

		if rec.Name == "" {
			rec.Name = row.Name
		}
		if row.District != 0 {
			rec.District = row.District
		}

		if !buckets[row.Year] {
			agg.Ignored++
			continue
		}
		rec.Counts[row.Year] += row.Count
	}

	sort.Slice(order, func(i, j int) bool { return KeyLess(order[i], order[j]) })
	agg.Records = make([]models.NeighbourhoodRecord, 0, len(order))
	for _, k := range order {
		agg.Records = append(agg.Records, *groups[k])
	}

	return agg
}

func distinctYears(rows []models.RawRow) []int {
	seen := make(map[int]bool)
	years := make([]int, 0)
	for _, row := range rows {
		if row.Key == "" || row.Year == 0 || seen[row.Year] {
			continue
		}
		seen[row.Year] = true
		years = append(years, row.Year)
	}
	sort.Ints(years)
	return years
}

// KeyLess orders normalised keys: numeric keys numerically and before the rest
func KeyLess(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}
