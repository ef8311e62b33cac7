package engine

import (
	"errors"
	"fmt"
)

// ============================================================================
// EXECUTOR: Filter → Rank → Build dispatcher
// ============================================================================
// Entry point: Execute(query, view, opts...)
//
// Pipeline:
//   1. Apply the query's predicate → index view (table queries skip this)
//   2. Rank + truncate (ranked-bar only)
//   3. Dispatch to the kind's builder
//
// Everything is in-memory and bounded by the view size; nothing blocks.
// ============================================================================

var (
	// ErrUnknownKind is returned for a ViewQuery whose Kind has no builder.
	ErrUnknownKind = errors.New("unknown chart kind")
	// ErrUnknownMeasure is returned when a query names a measure the view lacks.
	ErrUnknownMeasure = errors.New("unknown measure")
)

// Execute runs a ViewQuery against a RecordView and returns a fresh ChartSpec.
func Execute(query ViewQuery, view RecordView, opts ...Option) (ChartSpec, error) {
	switch query.Kind {
	case KindTable:
		return Table(view, query.Title, opts...), nil

	case KindRankedBar:
		if err := requireMeasures(view, query.Metric); err != nil {
			return ChartSpec{}, err
		}
		ranked := Rank(Filter(view, query.Predicate), query.Metric, query.Direction, query.Limit)
		return RankedBar(ranked, query.Metric, query.Title, opts...), nil

	case KindScatter:
		if err := requireMeasures(view, query.X, query.Y, query.Size); err != nil {
			return ChartSpec{}, err
		}
		return Scatter(Filter(view, query.Predicate), query.X, query.Y, query.Size, query.Title, opts...), nil

	case KindChoropleth:
		if err := requireMeasures(view, query.Metric); err != nil {
			return ChartSpec{}, err
		}
		return Choropleth(Filter(view, query.Predicate), query.Metric, query.Title, opts...), nil

	default:
		return ChartSpec{}, fmt.Errorf("%w: %q", ErrUnknownKind, query.Kind)
	}
}

func requireMeasures(view RecordView, keys ...string) error {
	known := make(map[string]bool)
	for _, k := range view.MeasureKeys() {
		known[k] = true
	}
	for _, k := range keys {
		if !known[k] {
			return fmt.Errorf("%w: %q", ErrUnknownMeasure, k)
		}
	}
	return nil
}
