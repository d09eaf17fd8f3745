// Package district joins aggregated neighbourhood records onto boundary
// features and maintains the editable district grouping.
package district

import "github.com/rotisserie/eris"

// Property is the feature property holding the assigned district
const Property = "district"

// FallbackColor styles features whose district has no palette entry
const FallbackColor = "#000000"

var (
	// ErrInvalidDistrict is returned when a district is outside 1..Max
	ErrInvalidDistrict = eris.New("invalid district")
	// ErrUnknownRegion is returned when no joined feature has the key
	ErrUnknownRegion = eris.New("unknown region")
)

// Palette maps district n to entry n-1
type Palette []string

// DefaultPalette has one colour per district
var DefaultPalette = Palette{"#FF0000", "#00FF00", "#0000FF", "#FFFF00", "#FF00FF", "#00FFFF"}

// Color returns the district colour or FallbackColor
func (p Palette) Color(district int) string {
	if district < 1 || district > len(p) {
		return FallbackColor
	}
	return p[district-1]
}

// Options configures Join
type Options struct {
	KeyProperty  string // boundary property holding the neighbourhood key
	NameProperty string // property the record name is merged into
	Max          int    // highest valid district
	Default      int    // district for records without a valid one
	Palette      Palette
}

// DefaultOptions returns options for the neighbourhood boundary file
func DefaultOptions() Options {
	return Options{
		KeyProperty:  "NEIGHBOURHOOD_NUMBER",
		NameProperty: "NEIGHBOURHOOD_NAME",
		Max:          6,
		Default:      1,
		Palette:      DefaultPalette,
	}
}

// Valid reports whether d is an assignable district
func (o Options) Valid(d int) bool {
	return d >= 1 && d <= o.Max
}
