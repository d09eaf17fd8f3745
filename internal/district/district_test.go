package district

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"district-map/internal/geo"
	"district-map/internal/models"
)

var testYears = []int{2023, 2024}

// square returns a unit-square polygon feature with its lower-left corner at x,y
func square(key string, x, y float64) string {
	return fmt.Sprintf(`{"type":"Feature","properties":{"NEIGHBOURHOOD_NUMBER":%s},"geometry":{"type":"Polygon","coordinates":[[[%g,%g],[%g,%g],[%g,%g],[%g,%g],[%g,%g]]]}}`,
		key, x, y, x+1, y, x+1, y+1, x, y+1, x, y)
}

func collection(t *testing.T, features ...string) *geo.FeatureCollection {
	t.Helper()
	fc, err := geo.DecodeFeatureCollection([]byte(`{"type":"FeatureCollection","features":[` + strings.Join(features, ",") + `]}`))
	require.NoError(t, err)
	return fc
}

func record(key, name string, district int, counts ...int) models.NeighbourhoodRecord {
	rec := models.NeighbourhoodRecord{Key: key, Name: name, District: district, Counts: models.NewYearCounts(testYears)}
	for i, n := range counts {
		rec.Counts[testYears[i]] = n
	}
	return rec
}

// fixture joins four boundary features onto four records:
// key 1 and 2 match, key 3 is drawn as two features with an invalid district,
// feature 99 has no record and record 4 has no feature
func fixture(t *testing.T) *Map {
	t.Helper()
	fc := collection(t,
		square("1", 0, 0),
		square(`"2"`, 2, 0),
		square("3", 4, 0),
		square("99", 6, 0),
		square("3.0", 4, 1),
	)
	records := []models.NeighbourhoodRecord{
		record("1", "alpha park", 0, 5, 3),
		record("2", "BRAVO", 2, 1, 1),
		record("3", "charlie", 9, 2, 0),
		record("4", "delta", 3, 7, 7),
	}
	return Join(fc, records, testYears, DefaultOptions())
}

// assertPartition checks every matched region sits in exactly the bucket of
// its current district
func assertPartition(t *testing.T, m *Map) {
	t.Helper()
	seen := make(map[string]int)
	for _, d := range m.Index().Districts() {
		for _, r := range m.Index().Members(d) {
			_, dup := seen[r.Key]
			require.False(t, dup, "region %s in more than one bucket", r.Key)
			require.Equal(t, d, r.District(), "region %s", r.Key)
			seen[r.Key] = d
		}
	}
	require.Len(t, seen, len(m.Regions()))
}
