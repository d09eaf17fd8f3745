package geo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFeatureCollection(t *testing.T) {
	fc, err := DecodeFeatureCollection([]byte(`{
		"type": "FeatureCollection",
		"features": [
			{"type":"Feature","id":7,"properties":{"n":1},"geometry":{"type":"Point","coordinates":[1,2]}},
			{"type":"Feature","properties":null,"geometry":null}
		]
	}`))
	require.NoError(t, err)

	require.Len(t, fc.Features, 2)
	assert.Equal(t, json.RawMessage("7"), fc.Features[0].ID)
	assert.NotNil(t, fc.Features[1].Properties)
	assert.Nil(t, fc.Features[1].Geometry)
}

func TestDecodeFeatureCollectionErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `nope`},
		{"wrong type", `{"type":"Feature"}`},
		{"null feature", `{"type":"FeatureCollection","features":[null]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeFeatureCollection([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestFeatureClone(t *testing.T) {
	f := &Feature{Type: "Feature", Properties: map[string]interface{}{"a": 1}}

	c := f.Clone()
	c.Properties["b"] = 2

	assert.NotContains(t, f.Properties, "b")
	assert.Equal(t, 1, c.Properties["a"])
}

func TestPropertyString(t *testing.T) {
	f := &Feature{Properties: map[string]interface{}{
		"s":    "abc",
		"int":  float64(10),
		"frac": 10.5,
		"big":  float64(1234567),
		"b":    true,
		"nil":  nil,
		"arr":  []interface{}{1},
	}}

	tests := []struct {
		key  string
		want string
		ok   bool
	}{
		{"s", "abc", true},
		{"int", "10", true},
		{"frac", "10.5", true},
		{"big", "1234567", true},
		{"b", "true", true},
		{"nil", "", false},
		{"arr", "", false},
		{"missing", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := f.PropertyString(tt.key)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
