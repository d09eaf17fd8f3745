package session

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"district-map/internal/district"
	"district-map/internal/events"
	"district-map/internal/geo"
)

const boundaries = `{"type":"FeatureCollection","features":[
	{"type":"Feature","properties":{"NEIGHBOURHOOD_NUMBER":1},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}},
	{"type":"Feature","properties":{"NEIGHBOURHOOD_NUMBER":2},"geometry":{"type":"Polygon","coordinates":[[[2,0],[3,0],[3,1],[2,1],[2,0]]]}}
]}`

type upload struct {
	table *events.Table
	agg   *events.Aggregation
	m     *district.Map
}

func prepare(t *testing.T, csv string) upload {
	t.Helper()
	table, err := events.ReadTable(strings.NewReader(csv), events.DefaultColumns())
	require.NoError(t, err)

	agg := events.Aggregate(table.Rows, events.AggregateOptions{})

	fc, err := geo.DecodeFeatureCollection([]byte(boundaries))
	require.NoError(t, err)

	return upload{table: table, agg: agg, m: district.Join(fc, agg.Records, agg.Years, district.DefaultOptions())}
}

func commit(t *testing.T, s *Session, u upload) {
	t.Helper()
	require.NoError(t, s.Commit(s.Begin(), u.table, u.agg, u.m))
}

const firstUpload = "NEIGHBOURHOOD_NUMBER,NEIGHBOURHOOD_NAME,year,EventCount\n1,A,2023,5\n1,A,2024,3\n2,B,2023,1\n"

func TestSessionRequiresData(t *testing.T) {
	s := newSession("id", time.Now())

	assert.False(t, s.Loaded())

	_, err := s.Render()
	assert.True(t, eris.Is(err, ErrNoData))
	_, err = s.Legend()
	assert.True(t, eris.Is(err, ErrNoData))
	_, err = s.Summary()
	assert.True(t, eris.Is(err, ErrNoData))
	_, _, err = s.Reassign("1", 2)
	assert.True(t, eris.Is(err, ErrNoData))
	assert.True(t, eris.Is(s.Export(&bytes.Buffer{}, ""), ErrNoData))
}

func TestSessionCommit(t *testing.T) {
	s := newSession("id", time.Now())
	commit(t, s, prepare(t, firstUpload))

	require.True(t, s.Loaded())

	sum, err := s.Summary()
	require.NoError(t, err)
	assert.Equal(t, Summary{
		Rows:      3,
		Records:   2,
		Matched:   2,
		Unmatched: 0,
		Orphans:   []string{},
		Years:     []int{2023, 2024},
	}, sum)

	fc, err := s.Render()
	require.NoError(t, err)
	assert.Len(t, fc.Features, 2)
}

func TestSessionSupersededUpload(t *testing.T) {
	s := newSession("id", time.Now())

	slow := s.Begin()
	fast := s.Begin()

	latest := prepare(t, firstUpload)
	require.NoError(t, s.Commit(fast, latest.table, latest.agg, latest.m))

	stale := prepare(t, "NEIGHBOURHOOD_NUMBER,year,EventCount\n2,2020,9\n")
	err := s.Commit(slow, stale.table, stale.agg, stale.m)
	assert.True(t, eris.Is(err, ErrSuperseded))

	sum, err := s.Summary()
	require.NoError(t, err)
	assert.Equal(t, []int{2023, 2024}, sum.Years)
}

func TestSessionNewUploadReplacesState(t *testing.T) {
	s := newSession("id", time.Now())
	commit(t, s, prepare(t, firstUpload))

	_, _, err := s.Reassign("1", 4)
	require.NoError(t, err)

	commit(t, s, prepare(t, "NEIGHBOURHOOD_NUMBER,year,EventCount\n2,2022,1\n"))

	legend, err := s.Legend()
	require.NoError(t, err)
	assert.Equal(t, []string{"District 1: 1 (2022)"}, legend.Lines())
}

func TestSessionReset(t *testing.T) {
	s := newSession("id", time.Now())
	commit(t, s, prepare(t, firstUpload))

	s.Reset()

	assert.False(t, s.Loaded())
	_, err := s.Legend()
	assert.True(t, eris.Is(err, ErrNoData))
}

func TestSessionReassign(t *testing.T) {
	s := newSession("id", time.Now())
	commit(t, s, prepare(t, firstUpload))

	features, legend, err := s.Reassign("1", 2)
	require.NoError(t, err)

	require.Len(t, features, 1)
	assert.Equal(t, 2, features[0].Properties[district.Property])
	assert.Equal(t, []string{
		"District 1: 1 (2023), 0 (2024)",
		"District 2: 5 (2023), 3 (2024)",
	}, legend.Lines())

	_, _, err = s.Reassign("1", 9)
	assert.True(t, eris.Is(err, district.ErrInvalidDistrict))
}

func TestSessionExport(t *testing.T) {
	s := newSession("id", time.Now())
	commit(t, s, prepare(t, firstUpload))

	_, _, err := s.Reassign("2", 3)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.Export(&buf, "District"))
	assert.Equal(t, "NEIGHBOURHOOD_NUMBER,NEIGHBOURHOOD_NAME,year,EventCount,District\n"+
		"1,A,2023,5,1\n1,A,2024,3,1\n2,B,2023,1,3\n", buf.String())
}
