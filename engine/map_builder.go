package engine

import (
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/language"
)

// ============================================================================
// MAP BUILDER: Choropleth regions keyed by ISO alpha-3 code
// ============================================================================
// Rows without a usable code are left out of Regions but kept in Rows, so
// the spec still reports the full subset it was built from.
// ============================================================================

// rdYlBu is the fixed diverging scale, low → high.
var rdYlBu = []string{
	"#a50026", "#d73027", "#f46d43", "#fdae61", "#fee090", "#ffffbf",
	"#e0f3f8", "#abd9e9", "#74add1", "#4575b4", "#313695",
}

// Choropleth builds one region per row with a recognized location code.
// Intensity is the value's position between the min and max of the kept
// regions; a flat domain puts every region at the midpoint.
func Choropleth(view RecordView, measure, title string, opts ...Option) ChartSpec {
	cfg := applyOptions(opts)

	spec := ChartSpec{
		Kind:  KindChoropleth,
		Title: title,
		Encoding: Encoding{
			Location: cfg.LocationKey,
			Color:    measure,
		},
		Rows: Materialize(view),
		ColorScale: &ColorScale{
			Name:  cfg.ColorScaleKey,
			Stops: append([]string(nil), cfg.ColorScale...),
		},
	}

	n := view.Len()
	if n == 0 {
		spec.Warning = EmptyResultWarning
		return spec
	}

	kept := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if IsCountryCode(view.Dimension(i, cfg.LocationKey)) {
			kept = append(kept, i)
		}
	}
	if len(kept) == 0 {
		return spec
	}

	mapped := newIndexView(view, kept)
	lo, hi := MinMaxMeasure(mapped, measure)
	spec.ColorScale.Min = lo
	spec.ColorScale.Max = hi

	spec.Regions = make([]Region, 0, len(kept))
	for i := 0; i < mapped.Len(); i++ {
		v := mapped.Measure(i, measure)
		t := 0.5
		if hi > lo {
			t = (v - lo) / (hi - lo)
		}
		spec.Regions = append(spec.Regions, Region{
			Location:  mapped.Dimension(i, cfg.LocationKey),
			Label:     mapped.Dimension(i, cfg.LabelKey),
			Value:     v,
			Intensity: t,
			Color:     interpolateColor(cfg.ColorScale, t),
		})
	}
	return spec
}

// IsCountryCode reports whether code is a current ISO 3166-1 alpha-3 code
// for a country or territory. Well-formed but unassigned codes ("XYZ"),
// deprecated codes and macro-regions are rejected.
func IsCountryCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	r, err := language.ParseRegion(code)
	return err == nil && r.IsCountry() && r.ISO3() == code
}

// interpolateColor returns the RGB interpolation of stops at t ∈ [0, 1].
func interpolateColor(stops []string, t float64) string {
	if len(stops) == 0 {
		return ""
	}
	if len(stops) == 1 || t <= 0 {
		return stops[0]
	}
	if t >= 1 {
		return stops[len(stops)-1]
	}
	pos := t * float64(len(stops)-1)
	i := int(math.Floor(pos))
	frac := pos - float64(i)
	a, b := parseHex(stops[i]), parseHex(stops[i+1])
	var out [3]int
	for c := 0; c < 3; c++ {
		out[c] = int(math.Round(float64(a[c]) + (float64(b[c])-float64(a[c]))*frac))
	}
	return fmt.Sprintf("#%02x%02x%02x", out[0], out[1], out[2])
}

// parseHex decodes "#rrggbb"; malformed input decodes as black.
func parseHex(s string) [3]int {
	var rgb [3]int
	if len(s) != 7 || s[0] != '#' {
		return rgb
	}
	for c := 0; c < 3; c++ {
		v, err := strconv.ParseUint(s[1+2*c:3+2*c], 16, 8)
		if err != nil {
			return [3]int{}
		}
		rgb[c] = int(v)
	}
	return rgb
}
