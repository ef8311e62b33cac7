package reactive

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Signal is a named, independently settable filter input. Domain lists
// every value a control may select, in display order.
type Signal struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Domain  []string `json:"domain"`
	Default string   `json:"default"`
}

// Contains reports whether value is in the signal's domain.
func (s Signal) Contains(value string) bool {
	for _, v := range s.Domain {
		if v == value {
			return true
		}
	}
	return false
}

// FilterState is an immutable snapshot of every signal's current value in
// one view-group. With returns a new snapshot; the receiver never changes.
type FilterState struct {
	names  []string
	values map[string]string
}

func newFilterState(signals []Signal) FilterState {
	st := FilterState{
		names:  make([]string, 0, len(signals)),
		values: make(map[string]string, len(signals)),
	}
	for _, s := range signals {
		st.names = append(st.names, s.Name)
		st.values[s.Name] = s.Default
	}
	return st
}

// Value returns the current value of a signal ("" if undeclared).
func (s FilterState) Value(name string) string { return s.values[name] }

// Int returns a signal value parsed as an integer (years).
func (s FilterState) Int(name string) (int, error) {
	v, err := strconv.Atoi(s.values[name])
	if err != nil {
		return 0, fmt.Errorf("signal %s: %w", name, err)
	}
	return v, nil
}

// Names returns the declared signal names in declaration order.
func (s FilterState) Names() []string { return append([]string(nil), s.names...) }

// Values returns a copy of the name → value mapping.
func (s FilterState) Values() map[string]string {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// With returns a copy of s with one signal changed.
func (s FilterState) With(name, value string) FilterState {
	next := FilterState{names: s.names, values: s.Values()}
	next.values[name] = value
	return next
}

// Equal reports whether both snapshots hold the same values.
func (s FilterState) Equal(other FilterState) bool {
	if len(s.values) != len(other.values) {
		return false
	}
	for k, v := range s.values {
		if ov, ok := other.values[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the state as a plain object.
func (s FilterState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.values)
}
