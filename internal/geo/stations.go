package geo

import (
	"fmt"
	"math"
)

// StationNumberProperty is the point property holding a station's number
const StationNumberProperty = "Station Number"

// Station is a fire station point from the station layer
type Station struct {
	Number    string  `json:"number"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Stations extracts the point features of a station layer. Features that are
// not points or lack a number are skipped.
func Stations(fc *FeatureCollection) []Station {
	stations := make([]Station, 0, len(fc.Features))

	for _, f := range fc.Features {
		if f.Geometry == nil || f.Geometry.Type != "Point" {
			continue
		}
		number, ok := f.PropertyString(StationNumberProperty)
		if !ok || number == "" {
			continue
		}
		lat, lng, err := Centroid(f.Geometry)
		if err != nil {
			continue
		}

		stations = append(stations, Station{Number: number, Latitude: lat, Longitude: lng})
	}

	return stations
}

// LabelStations sets a "label" property on every station point so the page
// can draw the number inside its marker
func LabelStations(fc *FeatureCollection) {
	for _, f := range fc.Features {
		if number, ok := f.PropertyString(StationNumberProperty); ok {
			f.Properties["label"] = number
		}
	}
}

// FindNearestStation finds the nearest station to a given location
func FindNearestStation(stations []Station, lat, lng float64) (Station, float64, bool) {
	var nearest Station
	minDist := math.MaxFloat64

	for _, s := range stations {
		dist := Haversine(lat, lng, s.Latitude, s.Longitude)
		if dist < minDist {
			minDist = dist
			nearest = s
		}
	}

	return nearest, minDist, len(stations) > 0
}

// String returns station info as a string
func (s Station) String() string {
	return fmt.Sprintf("Station %s", s.Number)
}
