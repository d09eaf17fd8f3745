package district

import (
	"sort"
	"strconv"

	"github.com/rotisserie/eris"

	"district-map/internal/events"
	"district-map/internal/geo"
	"district-map/internal/models"
)

// Region is a neighbourhood whose boundary matched an aggregated record. A
// neighbourhood drawn as several boundary features is one region.
type Region struct {
	Key      string
	Record   *models.NeighbourhoodRecord
	Features []*geo.Feature
}

// District returns the region's current district
func (r *Region) District() int {
	return r.Record.District
}

func (r *Region) setDistrict(d int) {
	r.Record.District = d
	for _, f := range r.Features {
		f.Properties[Property] = d
	}
}

type slot struct {
	feature *geo.Feature
	region  *Region // nil when the feature matched no record
}

// Map is the joined state of one upload: every boundary feature in file order,
// the matched regions, and the district index over them.
type Map struct {
	opts     Options
	years    []int
	slots    []slot
	regions  map[string]*Region
	index    *Index
	orphans  []string
	stations []geo.Station
}

// Join merges records onto the boundary features whose key property matches
// the record key after normalisation. The first record per key wins. A matched
// region gets the record's district when valid, else opts.Default. Unmatched
// features are kept for rendering but stay out of the index.
func Join(fc *geo.FeatureCollection, records []models.NeighbourhoodRecord, years []int, opts Options) *Map {
	opts = opts.withDefaults()

	byKey := make(map[string]*models.NeighbourhoodRecord, len(records))
	for i := range records {
		rec := records[i]
		if rec.Key == "" {
			continue
		}
		if _, dup := byKey[rec.Key]; dup {
			continue
		}
		byKey[rec.Key] = &rec
	}

	m := &Map{
		opts:    opts,
		years:   append([]int(nil), years...),
		slots:   make([]slot, 0, len(fc.Features)),
		regions: make(map[string]*Region),
		index:   NewIndex(),
	}

	for _, f := range fc.Features {
		raw, _ := f.PropertyString(opts.KeyProperty)
		key := events.NormalizeKey(raw)

		rec, ok := byKey[key]
		if key == "" || !ok {
			m.slots = append(m.slots, slot{feature: f})
			continue
		}

		r, seen := m.regions[key]
		if !seen {
			if !opts.Valid(rec.District) {
				rec.District = opts.Default
			}
			r = &Region{Key: key, Record: rec}
			m.regions[key] = r
			m.index.Add(r)
		}

		m.merge(f, rec)
		r.Features = append(r.Features, f)
		m.slots = append(m.slots, slot{feature: f, region: r})
	}

	for key := range byKey {
		if _, ok := m.regions[key]; !ok {
			m.orphans = append(m.orphans, key)
		}
	}
	sort.Slice(m.orphans, func(i, j int) bool { return events.KeyLess(m.orphans[i], m.orphans[j]) })

	return m
}

// merge copies the record's fields into the feature property bag
func (m *Map) merge(f *geo.Feature, rec *models.NeighbourhoodRecord) {
	if rec.Name != "" {
		f.Properties[m.opts.NameProperty] = rec.Name
	}
	for _, y := range m.years {
		f.Properties[strconv.Itoa(y)] = rec.Counts[y]
	}
	f.Properties[Property] = rec.District
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.KeyProperty == "" {
		o.KeyProperty = d.KeyProperty
	}
	if o.NameProperty == "" {
		o.NameProperty = d.NameProperty
	}
	if o.Max <= 0 {
		o.Max = d.Max
	}
	if !o.Valid(o.Default) {
		o.Default = 1
	}
	if len(o.Palette) == 0 {
		o.Palette = d.Palette
	}
	return o
}

// SetStations attaches the station layer used for nearest-station tooltips
func (m *Map) SetStations(stations []geo.Station) {
	m.stations = stations
}

// Reassign moves the region with key to district d. Reassigning to the
// current district is a no-op.
func (m *Map) Reassign(key string, d int) (*Region, error) {
	if !m.opts.Valid(d) {
		return nil, eris.Wrapf(ErrInvalidDistrict, "district %d is outside 1..%d", d, m.opts.Max)
	}

	r, ok := m.regions[events.NormalizeKey(key)]
	if !ok {
		return nil, eris.Wrapf(ErrUnknownRegion, "key %q", key)
	}

	old := r.District()
	if old == d {
		return r, nil
	}

	m.index.Move(r, old, d)
	r.setDistrict(d)

	return r, nil
}

// DistrictOf returns the current district of the region with key
func (m *Map) DistrictOf(key string) (int, bool) {
	r, ok := m.regions[events.NormalizeKey(key)]
	if !ok {
		return 0, false
	}
	return r.District(), true
}

// Region returns the matched region with key
func (m *Map) Region(key string) (*Region, bool) {
	r, ok := m.regions[events.NormalizeKey(key)]
	return r, ok
}

// Regions returns every matched region ordered by key
func (m *Map) Regions() []*Region {
	out := make([]*Region, 0, len(m.regions))
	for _, r := range m.regions {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return events.KeyLess(out[i].Key, out[j].Key) })
	return out
}

// Index returns the district index
func (m *Map) Index() *Index {
	return m.index
}

// Years returns the year buckets
func (m *Map) Years() []int {
	return m.years
}

// Options returns the options the map was joined with
func (m *Map) Options() Options {
	return m.opts
}

// Unmatched returns the number of boundary features that matched no record
func (m *Map) Unmatched() int {
	n := 0
	for _, s := range m.slots {
		if s.region == nil {
			n++
		}
	}
	return n
}

// Orphans returns record keys that matched no boundary feature
func (m *Map) Orphans() []string {
	return m.orphans
}
