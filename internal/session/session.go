// Package session holds the per-browser editing state: the uploaded table and
// the joined district map.
package session

import (
	"io"
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"district-map/internal/district"
	"district-map/internal/events"
	"district-map/internal/geo"
)

var (
	// ErrNoData is returned before the first successful upload
	ErrNoData = eris.New("no data loaded")
	// ErrSuperseded is returned when a newer upload began before this one committed
	ErrSuperseded = eris.New("upload superseded by a newer upload")
)

// Session is the state of one browser session. All methods are safe for
// concurrent use.
type Session struct {
	ID string

	mu       sync.Mutex
	gen      uint64
	table    *events.Table
	agg      *events.Aggregation
	m        *district.Map
	lastSeen time.Time
}

func newSession(id string, now time.Time) *Session {
	return &Session{ID: id, lastSeen: now}
}

// Begin starts an upload and returns its generation. Only the most recently
// begun upload may commit.
func (s *Session) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	return s.gen
}

// Commit replaces the session state with the result of upload gen. The old
// state is reset first so nothing from a previous upload survives.
func (s *Session) Commit(gen uint64, table *events.Table, agg *events.Aggregation, m *district.Map) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return eris.Wrapf(ErrSuperseded, "generation %d, latest %d", gen, s.gen)
	}

	s.reset()
	s.table = table
	s.agg = agg
	s.m = m
	return nil
}

// Reset drops the loaded data
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Session) reset() {
	s.table = nil
	s.agg = nil
	s.m = nil
}

// Loaded reports whether an upload has been committed
func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m != nil
}

// Render returns the styled feature collection
func (s *Session) Render() (*geo.FeatureCollection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		return nil, ErrNoData
	}
	return s.m.Render(), nil
}

// Legend returns freshly computed district totals
func (s *Session) Legend() (district.Legend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		return district.Legend{}, ErrNoData
	}
	return s.m.Legend(), nil
}

// Summary describes the loaded upload
type Summary struct {
	Rows      int      `json:"rows"`
	Records   int      `json:"records"`
	Dropped   int      `json:"dropped"`
	Ignored   int      `json:"ignored"`
	Matched   int      `json:"matched"`
	Unmatched int      `json:"unmatched"`
	Orphans   []string `json:"orphans"`
	Years     []int    `json:"years"`
}

// Summary returns counts describing the loaded upload
func (s *Session) Summary() (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		return Summary{}, ErrNoData
	}

	sum := Summary{
		Rows:      len(s.table.Rows),
		Records:   len(s.agg.Records),
		Dropped:   s.agg.Dropped,
		Ignored:   s.agg.Ignored,
		Matched:   s.m.Index().Len(),
		Unmatched: s.m.Unmatched(),
		Orphans:   s.m.Orphans(),
		Years:     s.m.Years(),
	}
	if sum.Orphans == nil {
		sum.Orphans = []string{}
	}
	return sum, nil
}

// Reassign moves a region to a new district and returns its re-rendered
// features with the refreshed legend
func (s *Session) Reassign(key string, d int) ([]*geo.Feature, district.Legend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		return nil, district.Legend{}, ErrNoData
	}

	r, err := s.m.Reassign(key, d)
	if err != nil {
		return nil, district.Legend{}, err
	}

	return s.m.RenderRegion(r), s.m.Legend(), nil
}

// Export writes the uploaded rows with current districts as CSV
func (s *Session) Export(w io.Writer, column string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		return ErrNoData
	}
	return district.Export(w, s.table, s.m, column)
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}
