package geo

import (
	"encoding/json"
	"strconv"

	"github.com/rotisserie/eris"
)

// GeoJSON types for boundary and point layers
type FeatureCollection struct {
	Type     string     `json:"type"`
	Features []*Feature `json:"features"`
	BBox     []float64  `json:"bbox,omitempty"`
}

type Feature struct {
	Type       string                 `json:"type"`
	ID         json.RawMessage        `json:"id,omitempty"`
	Geometry   *Geometry              `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// DecodeFeatureCollection parses a GeoJSON FeatureCollection. Features without
// a property bag get an empty one.
func DecodeFeatureCollection(data []byte) (*FeatureCollection, error) {
	var fc FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrap(err, "geo: decode feature collection")
	}
	if fc.Type != "FeatureCollection" {
		return nil, eris.Errorf("geo: expected FeatureCollection, got %q", fc.Type)
	}

	for i, f := range fc.Features {
		if f == nil {
			return nil, eris.Errorf("geo: feature %d is null", i)
		}
		if f.Properties == nil {
			f.Properties = make(map[string]interface{})
		}
	}

	return &fc, nil
}

// Clone returns a copy of the feature with its own property bag. Geometry is
// shared since it is never mutated.
func (f *Feature) Clone() *Feature {
	props := make(map[string]interface{}, len(f.Properties))
	for k, v := range f.Properties {
		props[k] = v
	}
	return &Feature{
		Type:       f.Type,
		ID:         f.ID,
		Geometry:   f.Geometry,
		Properties: props,
	}
}

// PropertyString returns a property as text. Numbers are formatted without
// exponent so 10 and 10.0 both read "10".
func (f *Feature) PropertyString(name string) (string, bool) {
	v, ok := f.Properties[name]
	if !ok || v == nil {
		return "", false
	}

	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	case int:
		return strconv.Itoa(t), true
	case bool:
		return strconv.FormatBool(t), true
	}

	return "", false
}
