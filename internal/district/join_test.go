package district

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"district-map/internal/models"
)

func TestJoin(t *testing.T) {
	m := fixture(t)

	assert.Equal(t, 3, m.Index().Len())
	assert.Equal(t, 1, m.Unmatched())
	assert.Equal(t, []string{"4"}, m.Orphans())

	d, ok := m.DistrictOf("1")
	require.True(t, ok)
	assert.Equal(t, 1, d, "missing district defaults to 1")

	d, _ = m.DistrictOf("2")
	assert.Equal(t, 2, d)

	d, _ = m.DistrictOf("3")
	assert.Equal(t, 1, d, "out of range district defaults to 1")

	_, ok = m.DistrictOf("99")
	assert.False(t, ok)

	assertPartition(t, m)
}

func TestJoinMergesProperties(t *testing.T) {
	m := fixture(t)

	r, ok := m.Region("1")
	require.True(t, ok)
	require.Len(t, r.Features, 1)

	props := r.Features[0].Properties
	assert.Equal(t, "alpha park", props["NEIGHBOURHOOD_NAME"])
	assert.Equal(t, 5, props["2023"])
	assert.Equal(t, 3, props["2024"])
	assert.Equal(t, 1, props[Property])
}

func TestJoinDuplicateFeaturesShareRegion(t *testing.T) {
	m := fixture(t)

	r, ok := m.Region("3")
	require.True(t, ok)
	assert.Len(t, r.Features, 2)
	assert.Equal(t, 1, r.Features[1].Properties[Property])
}

func TestJoinFirstRecordWins(t *testing.T) {
	fc := collection(t, square("1", 0, 0))
	records := []models.NeighbourhoodRecord{
		record("1", "first", 2, 1, 1),
		record("1", "second", 3, 9, 9),
	}

	m := Join(fc, records, testYears, DefaultOptions())

	r, ok := m.Region("1")
	require.True(t, ok)
	assert.Equal(t, "first", r.Record.Name)
	assert.Equal(t, 2, r.District())
}

func TestJoinDoesNotMutateRecords(t *testing.T) {
	fc := collection(t, square("1", 0, 0))
	records := []models.NeighbourhoodRecord{record("1", "a", 0, 1, 1)}

	m := Join(fc, records, testYears, DefaultOptions())
	_, err := m.Reassign("1", 4)
	require.NoError(t, err)

	assert.Equal(t, 0, records[0].District)
}

func TestReassign(t *testing.T) {
	m := fixture(t)

	r, err := m.Reassign(" 003 ", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, r.District())
	for _, f := range r.Features {
		assert.Equal(t, 5, f.Properties[Property])
	}

	d, ok := m.Index().Lookup("3")
	require.True(t, ok)
	assert.Equal(t, 5, d)
	assertPartition(t, m)
}

func TestReassignSameDistrict(t *testing.T) {
	m := fixture(t)

	r, err := m.Reassign("2", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, r.District())
	assert.Len(t, m.Index().Members(2), 1)
	assertPartition(t, m)
}

func TestReassignErrors(t *testing.T) {
	m := fixture(t)

	_, err := m.Reassign("1", 0)
	assert.True(t, eris.Is(err, ErrInvalidDistrict))

	_, err = m.Reassign("1", 7)
	assert.True(t, eris.Is(err, ErrInvalidDistrict))

	_, err = m.Reassign("99", 2)
	assert.True(t, eris.Is(err, ErrUnknownRegion))

	_, err = m.Reassign("4", 2)
	assert.True(t, eris.Is(err, ErrUnknownRegion))

	d, _ := m.DistrictOf("1")
	assert.Equal(t, 1, d)
	assertPartition(t, m)
}

func TestReassignSequencePreservesPartition(t *testing.T) {
	m := fixture(t)

	moves := []struct {
		key string
		d   int
	}{
		{"1", 2}, {"2", 6}, {"3", 2}, {"1", 1}, {"2", 2}, {"3", 4}, {"1", 4},
	}
	for _, mv := range moves {
		_, err := m.Reassign(mv.key, mv.d)
		require.NoError(t, err)
		assertPartition(t, m)
	}
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{Default: 12}.withDefaults()

	assert.Equal(t, "NEIGHBOURHOOD_NUMBER", o.KeyProperty)
	assert.Equal(t, 6, o.Max)
	assert.Equal(t, 1, o.Default)
	assert.Equal(t, DefaultPalette, o.Palette)
}

func TestPaletteColor(t *testing.T) {
	assert.Equal(t, "#FF0000", DefaultPalette.Color(1))
	assert.Equal(t, "#00FFFF", DefaultPalette.Color(6))
	assert.Equal(t, FallbackColor, DefaultPalette.Color(7))
	assert.Equal(t, FallbackColor, DefaultPalette.Color(0))
}
