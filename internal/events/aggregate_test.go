package events

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"district-map/internal/models"
)

func TestAggregateSumsPerYear(t *testing.T) {
	rows := []models.RawRow{
		{Key: "1", Name: "A", Year: 2023, Count: 5},
		{Key: "1", Name: "A", Year: 2024, Count: 3},
	}

	agg := Aggregate(rows, AggregateOptions{Years: []int{2023, 2024}})

	require.Len(t, agg.Records, 1)
	rec := agg.Records[0]
	assert.Equal(t, "1", rec.Key)
	assert.Equal(t, "A", rec.Name)
	assert.Equal(t, models.YearCounts{2023: 5, 2024: 3}, rec.Counts)
	assert.Equal(t, 0, rec.District)
	assert.Equal(t, []int{2023, 2024}, agg.Years)
}

func TestAggregateGroupsAndOrders(t *testing.T) {
	rows := []models.RawRow{
		{Key: "10", Name: "", Year: 2023, Count: 1},
		{Key: "2", Name: "Two", Year: 2023, Count: 2, District: 3},
		{Key: "10", Name: "Ten", Year: 2023, Count: 4, District: 5},
		{Key: "2", Name: "Other", Year: 2023, Count: 1},
		{Key: "", Name: "nokey", Year: 2023, Count: 9},
		{Key: "2", Name: "Two", Year: 2019, Count: 7},
		{Key: "x", Name: "Ex", Year: 2024, Count: 1},
	}

	agg := Aggregate(rows, AggregateOptions{Years: []int{2024, 2023}})

	require.Len(t, agg.Records, 3)
	assert.Equal(t, []string{"2", "10", "x"}, []string{agg.Records[0].Key, agg.Records[1].Key, agg.Records[2].Key})
	assert.Equal(t, []int{2023, 2024}, agg.Years)

	two := agg.Records[0]
	assert.Equal(t, "Two", two.Name)
	assert.Equal(t, 3, two.District)
	assert.Equal(t, models.YearCounts{2023: 3, 2024: 0}, two.Counts)

	ten := agg.Records[1]
	assert.Equal(t, "Ten", ten.Name)
	assert.Equal(t, 5, ten.District)
	assert.Equal(t, 5, ten.Counts[2023])

	assert.Equal(t, 1, agg.Dropped)
	assert.Equal(t, 1, agg.Ignored)
}

func TestAggregateDerivesYears(t *testing.T) {
	rows := []models.RawRow{
		{Key: "1", Year: 2024, Count: 1},
		{Key: "1", Year: 2022, Count: 2},
		{Key: "2", Year: 0, Count: 8},
		{Key: "", Year: 1999, Count: 1},
	}

	agg := Aggregate(rows, AggregateOptions{})

	assert.Equal(t, []int{2022, 2024}, agg.Years)
	require.Len(t, agg.Records, 2)
	assert.Equal(t, models.YearCounts{2022: 0, 2024: 0}, agg.Records[1].Counts)
	assert.Equal(t, 1, agg.Ignored)
}

func TestAggregateDefaultDistrict(t *testing.T) {
	rows := []models.RawRow{{Key: "1", Year: 2023, Count: 1}}

	agg := Aggregate(rows, AggregateOptions{Years: []int{2023}, DefaultDistrict: 1})
	assert.Equal(t, 1, agg.Records[0].District)
}

func TestAggregateEmpty(t *testing.T) {
	agg := Aggregate(nil, AggregateOptions{Years: []int{2023}})
	assert.Empty(t, agg.Records)
	assert.Equal(t, []int{2023}, agg.Years)
}

func TestKeyLess(t *testing.T) {
	keys := []string{"b", "10", "-1", "2", "a"}
	sort.Slice(keys, func(i, j int) bool { return KeyLess(keys[i], keys[j]) })
	assert.Equal(t, []string{"-1", "2", "10", "a", "b"}, keys)
}
