package district

import (
	"sort"

	"district-map/internal/events"
)

// Index maps each district to the set of regions assigned to it. A region is
// in at most one bucket. Buckets stay present once created, even when empty.
type Index struct {
	buckets map[int]map[string]*Region
}

// NewIndex creates an empty index
func NewIndex() *Index {
	return &Index{buckets: make(map[int]map[string]*Region)}
}

// Add puts r in the bucket of its current district
func (ix *Index) Add(r *Region) {
	ix.bucket(r.District())[r.Key] = r
}

// Move takes r out of bucket from and puts it in bucket to
func (ix *Index) Move(r *Region, from, to int) {
	if b, ok := ix.buckets[from]; ok {
		delete(b, r.Key)
	}
	ix.bucket(to)[r.Key] = r
}

func (ix *Index) bucket(d int) map[string]*Region {
	b, ok := ix.buckets[d]
	if !ok {
		b = make(map[string]*Region)
		ix.buckets[d] = b
	}
	return b
}

// Districts returns every bucket's district in ascending order
func (ix *Index) Districts() []int {
	ds := make([]int, 0, len(ix.buckets))
	for d := range ix.buckets {
		ds = append(ds, d)
	}
	sort.Ints(ds)
	return ds
}

// Members returns the regions of district d ordered by key
func (ix *Index) Members(d int) []*Region {
	b := ix.buckets[d]
	out := make([]*Region, 0, len(b))
	for _, r := range b {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return events.KeyLess(out[i].Key, out[j].Key) })
	return out
}

// Lookup returns the district whose bucket holds key
func (ix *Index) Lookup(key string) (int, bool) {
	for d, b := range ix.buckets {
		if _, ok := b[key]; ok {
			return d, true
		}
	}
	return 0, false
}

// Len returns the number of indexed regions
func (ix *Index) Len() int {
	n := 0
	for _, b := range ix.buckets {
		n += len(b)
	}
	return n
}
