package geo

import (
	"encoding/json"
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/xy"
)

// decode converts a GeoJSON geometry to a go-geom value
func (g *Geometry) decode() (geom.T, error) {
	if g == nil {
		return nil, eris.New("nil geometry")
	}

	raw, err := json.Marshal(g)
	if err != nil {
		return nil, eris.Wrap(err, "geo: encode geometry")
	}

	var t geom.T
	if err := geojson.Unmarshal(raw, &t); err != nil {
		return nil, eris.Wrapf(err, "geo: decode %s geometry", g.Type)
	}
	return t, nil
}

// Centroid returns the area-weighted centroid of a polygon or multipolygon,
// or the point itself for a point geometry
func Centroid(g *Geometry) (lat, lng float64, err error) {
	t, err := g.decode()
	if err != nil {
		return 0, 0, err
	}

	var c geom.Coord
	switch v := t.(type) {
	case *geom.Point:
		c = v.Coords()
	case *geom.Polygon:
		if v.NumLinearRings() == 0 {
			return 0, 0, eris.New("empty polygon")
		}
		c = xy.PolygonsCentroid(v)
	case *geom.MultiPolygon:
		if v.NumPolygons() == 0 {
			return 0, 0, eris.New("empty multipolygon")
		}
		c = xy.MultiPolygonCentroid(v)
	default:
		return 0, 0, eris.Errorf("unsupported geometry type: %s", g.Type)
	}

	if len(c) < 2 || math.IsNaN(c[0]) || math.IsNaN(c[1]) {
		return 0, 0, eris.New("no valid coordinates found")
	}

	return c[1], c[0], nil
}

// Bounds returns the GeoJSON bbox [minLng, minLat, maxLng, maxLat] of every
// decodable geometry in the collection, or nil when there is none
func Bounds(fc *FeatureCollection) []float64 {
	b := geom.NewBounds(geom.XY)
	for _, f := range fc.Features {
		t, err := f.Geometry.decode()
		if err != nil {
			continue
		}
		b.Extend(t)
	}

	if b.IsEmpty() {
		return nil
	}
	return []float64{b.Min(0), b.Min(1), b.Max(0), b.Max(1)}
}
