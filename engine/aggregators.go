package engine

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ============================================================================
// RANKING: Stable top-N ordering via RecordView
// ============================================================================
// Rank produces an index view of at most limit indices into its input.
// Ties keep input order, and Filter keeps dataset order, so ranked output
// is fully deterministic.
// ============================================================================

// DefaultLimit is the dashboard's "top-N".
const DefaultLimit = 15

// Direction selects the ranking order.
type Direction string

const (
	Descending Direction = "desc"
	Ascending  Direction = "asc"
)

// Rank sorts view by measure in direction and truncates to limit rows.
// limit <= 0 means DefaultLimit. An unknown direction ranks descending.
func Rank(view RecordView, measure string, direction Direction, limit int) RecordView {
	if limit <= 0 {
		limit = DefaultLimit
	}

	n := view.Len()
	indices := make([]int, n)
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		indices[i] = i
		values[i] = view.Measure(i, measure)
	}

	if direction == Ascending {
		sort.SliceStable(indices, func(a, b int) bool { return values[indices[a]] < values[indices[b]] })
	} else {
		sort.SliceStable(indices, func(a, b int) bool { return values[indices[a]] > values[indices[b]] })
	}

	if len(indices) > limit {
		indices = indices[:limit]
	}
	return newIndexView(view, indices)
}

// Top ranks descending with the default limit.
func Top(view RecordView, measure string) RecordView {
	return Rank(view, measure, Descending, DefaultLimit)
}

// ============================================================================
// MEASURE STATS
// ============================================================================

// MeanMeasure computes the average of a named measure.
func MeanMeasure(view RecordView, measure string) float64 {
	n := view.Len()
	if n == 0 {
		return 0
	}
	var total float64
	for i := 0; i < n; i++ {
		total += view.Measure(i, measure)
	}
	return total / float64(n)
}

// MinMaxMeasure returns the smallest and largest value of a measure.
// An empty view returns (0, 0).
func MinMaxMeasure(view RecordView, measure string) (float64, float64) {
	n := view.Len()
	if n == 0 {
		return 0, 0
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := 0; i < n; i++ {
		v := view.Measure(i, measure)
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// UniqueValues returns distinct non-empty values for a dimension in first-seen order.
func UniqueValues(view RecordView, dimension string) []string {
	seen := make(map[string]bool)
	var result []string
	for i := 0; i < view.Len(); i++ {
		val := view.Dimension(i, dimension)
		if val != "" && !seen[val] {
			seen[val] = true
			result = append(result, val)
		}
	}
	return result
}

// ============================================================================
// FORMATTING UTILITIES
// ============================================================================

// FormatInt formats an integer with comma separators.
func FormatInt(n int64) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	if n < 1000 {
		return strconv.FormatInt(n, 10)
	}
	return fmt.Sprintf("%s,%03d", FormatInt(n/1000), n%1000)
}

// FormatValue formats a measure value for a text label: whole numbers
// with separators, fractional values to 2 decimals.
func FormatValue(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return FormatInt(int64(v))
	}
	return strconv.FormatFloat(RoundTo2(v), 'f', 2, 64)
}

// RoundTo2 rounds to 2 decimal places.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

// LabelForKey turns "gdp_per_capita" into "Gdp per capita" when no schema
// display name is at hand.
func LabelForKey(key string) string {
	if key == "" {
		return ""
	}
	s := strings.ReplaceAll(key, "_", " ")
	return strings.ToUpper(s[:1]) + s[1:]
}
