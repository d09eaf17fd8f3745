package district

import (
	"fmt"
	"html"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"district-map/internal/geo"
)

// Style is the Leaflet path style of a rendered feature
type Style struct {
	Color       string  `json:"color"`
	Weight      int     `json:"weight"`
	FillOpacity float64 `json:"fillOpacity"`
}

// Rendered feature properties
const (
	StyleProperty   = "style"
	TooltipProperty = "tooltip"
	LabelProperty   = "label"
	KeyProperty     = "key"
	MatchedProperty = "matched"
)

// Render returns a copy of every boundary feature styled by district colour
// with tooltip and label point. The collection bbox covers all features.
func (m *Map) Render() *geo.FeatureCollection {
	caser := cases.Title(language.English)

	fc := &geo.FeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]*geo.Feature, 0, len(m.slots)),
	}
	for _, s := range m.slots {
		fc.Features = append(fc.Features, m.render(s.feature, s.region, caser))
	}
	fc.BBox = geo.Bounds(fc)

	return fc
}

// RenderRegion returns the rendered features of one region
func (m *Map) RenderRegion(r *Region) []*geo.Feature {
	caser := cases.Title(language.English)

	out := make([]*geo.Feature, 0, len(r.Features))
	for _, f := range r.Features {
		out = append(out, m.render(f, r, caser))
	}
	return out
}

func (m *Map) render(f *geo.Feature, r *Region, caser cases.Caser) *geo.Feature {
	out := f.Clone()

	d := 0
	if r != nil {
		d = r.District()
	}
	out.Properties[StyleProperty] = Style{
		Color:       m.opts.Palette.Color(d),
		Weight:      1,
		FillOpacity: 0.5,
	}
	out.Properties[MatchedProperty] = r != nil

	lat, lng, err := geo.Centroid(f.Geometry)
	hasLabel := err == nil
	if hasLabel {
		out.Properties[LabelProperty] = []float64{lng, lat}
	}

	if r != nil {
		out.Properties[KeyProperty] = r.Key
		out.Properties[TooltipProperty] = m.tooltip(f, r, caser, lat, lng, hasLabel)
	}

	return out
}

func (m *Map) tooltip(f *geo.Feature, r *Region, caser cases.Caser, lat, lng float64, hasLabel bool) string {
	var b strings.Builder

	// boundary's own name when the upload has none
	name := r.Record.Name
	if name == "" {
		name, _ = f.PropertyString(m.opts.NameProperty)
	}

	fmt.Fprintf(&b, "<strong>%s</strong><br>", html.EscapeString(caser.String(name)))
	fmt.Fprintf(&b, "Neighbourhood #: %s<br>", html.EscapeString(r.Key))
	for _, y := range m.years {
		fmt.Fprintf(&b, "%d Events: %d<br>", y, r.Record.Counts[y])
	}
	fmt.Fprintf(&b, "District: %d", r.District())

	if hasLabel {
		if s, km, ok := geo.FindNearestStation(m.stations, lat, lng); ok {
			fmt.Fprintf(&b, "<br>Nearest station: %s (%.1f km)", html.EscapeString(s.Number), km)
		}
	}

	return b.String()
}
