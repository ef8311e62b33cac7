package engine

import (
	"math"
	"sort"
)

// ============================================================================
// CHART BUILDER: Ranked bars and scatter plots from a RecordView
// ============================================================================
// Builders are pure: same view contents + same arguments → equal ChartSpec.
// They never filter or rank; the caller hands them the subset to draw.
// ============================================================================

// Default color palette for chart series.
var defaultColors = []string{
	"#636EFA", "#EF553B", "#00CC96", "#AB63FA", "#FFA15A",
	"#19D3F3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

// RankedBar encodes one bar per row: label → x, measure → y, label → color,
// with a numeric text label on every bar. The view must already be ranked.
func RankedBar(view RecordView, measure, title string, opts ...Option) ChartSpec {
	cfg := applyOptions(opts)

	spec := ChartSpec{
		Kind:  KindRankedBar,
		Title: title,
		Encoding: Encoding{
			X:      cfg.LabelKey,
			Y:      measure,
			Color:  cfg.LabelKey,
			Labels: true,
		},
		Rows: Materialize(view),
	}

	n := view.Len()
	if n == 0 {
		spec.Warning = EmptyResultWarning
		return spec
	}

	spec.Series = make([]ChartSeries, 0, n)
	for i := 0; i < n; i++ {
		label := view.Dimension(i, cfg.LabelKey)
		value := view.Measure(i, measure)
		spec.Series = append(spec.Series, ChartSeries{
			Name: label,
			Data: []ChartPoint{{
				Label: label,
				Value: value,
				Text:  FormatValue(value),
			}},
			Color: defaultColors[i%len(defaultColors)],
		})
	}
	return spec
}

// Scatter encodes one point per row: x and y measures, marker area
// proportional to the size measure relative to the subset mean, clipped to
// the configured radius bounds, colored by the color dimension.
func Scatter(view RecordView, x, y, size, title string, opts ...Option) ChartSpec {
	cfg := applyOptions(opts)

	spec := ChartSpec{
		Kind:  KindScatter,
		Title: title,
		Encoding: Encoding{
			X:     x,
			Y:     y,
			Size:  size,
			Color: cfg.ColorKey,
		},
		Rows: Materialize(view),
	}

	n := view.Len()
	if n == 0 {
		spec.Warning = EmptyResultWarning
		return spec
	}

	groups := UniqueValues(view, cfg.ColorKey)
	sort.Strings(groups)
	groupColor := make(map[string]string, len(groups))
	for i, g := range groups {
		groupColor[g] = defaultColors[i%len(defaultColors)]
	}

	mean := MeanMeasure(view, size)
	spec.Points = make([]ScatterPoint, 0, n)
	for i := 0; i < n; i++ {
		group := view.Dimension(i, cfg.ColorKey)
		sz := view.Measure(i, size)
		spec.Points = append(spec.Points, ScatterPoint{
			Label:  view.Dimension(i, cfg.LabelKey),
			Group:  group,
			X:      view.Measure(i, x),
			Y:      view.Measure(i, y),
			Size:   sz,
			Radius: markerRadius(sz, mean, cfg),
			Color:  groupColor[group],
		})
	}
	return spec
}

// markerRadius is non-decreasing in v and always within [MinRadius, MaxRadius].
func markerRadius(v, mean float64, cfg *config) float64 {
	if v <= 0 || mean <= 0 {
		return cfg.MinRadius
	}
	r := cfg.BaseRadius * math.Sqrt(v/mean)
	r = math.Max(cfg.MinRadius, math.Min(cfg.MaxRadius, r))
	return RoundTo2(r)
}
