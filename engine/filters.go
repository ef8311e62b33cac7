package engine

import (
	"sort"
	"strings"
)

// ============================================================================
// FILTERS: Equality predicates over dimensions via RecordView
// ============================================================================
// Single-pass filter: checks ALL constraints per record in one loop.
// Returns an index view over the parent: zero data copy, original
// relative order preserved.
// ============================================================================

// Constraint requires Dimension to equal Value exactly.
type Constraint struct {
	Dimension string `json:"dimension"`
	Value     string `json:"value"`
}

// Predicate is a conjunction of equality constraints. The zero value
// matches every record.
type Predicate struct {
	Constraints []Constraint `json:"constraints"`
}

// Where starts a predicate with a single constraint.
func Where(dimension, value string) Predicate {
	return Predicate{}.And(dimension, value)
}

// And returns a copy of p with one more constraint. A later constraint on
// the same dimension replaces the earlier one.
func (p Predicate) And(dimension, value string) Predicate {
	out := Predicate{Constraints: make([]Constraint, 0, len(p.Constraints)+1)}
	for _, c := range p.Constraints {
		if c.Dimension != dimension {
			out.Constraints = append(out.Constraints, c)
		}
	}
	out.Constraints = append(out.Constraints, Constraint{Dimension: dimension, Value: value})
	return out
}

// IsEmpty returns true if no constraints are set.
func (p Predicate) IsEmpty() bool { return len(p.Constraints) == 0 }

// Matches reports whether record i of view satisfies every constraint.
func (p Predicate) Matches(view RecordView, i int) bool {
	for _, c := range p.Constraints {
		if view.Dimension(i, c.Dimension) != c.Value {
			return false
		}
	}
	return true
}

// String renders the predicate as "continent=Asia, year=1952" with
// constraints in dimension order.
func (p Predicate) String() string {
	if p.IsEmpty() {
		return "all"
	}
	parts := make([]string, 0, len(p.Constraints))
	for _, c := range p.Constraints {
		parts = append(parts, c.Dimension+"="+c.Value)
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}

// Filter returns a view of records matching predicate, in the original
// relative order. Zero matches yields an empty view, never an error.
func Filter(view RecordView, predicate Predicate) RecordView {
	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if predicate.Matches(view, i) {
			indices = append(indices, i)
		}
	}
	return newIndexView(view, indices)
}
