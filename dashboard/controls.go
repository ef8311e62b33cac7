package dashboard

import (
	"strconv"

	"github.com/spektr-org/gapminder/reactive"
)

// ControlKind is how the page renders a control.
type ControlKind string

const (
	ControlSelect ControlKind = "select"
	ControlSlider ControlKind = "slider"
)

// yearStep is the spacing at which a year domain renders as a slider.
const yearStep = 5

// ControlOption is one selectable value.
type ControlOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Control describes one input of the control surface. Its options are the
// signal's domain, so no out-of-domain value is selectable from the page.
type Control struct {
	Signal  string          `json:"signal"`
	Label   string          `json:"label"`
	Kind    ControlKind     `json:"kind"`
	Options []ControlOption `json:"options"`
	Value   string          `json:"value"`
	Min     int             `json:"min,omitempty"`
	Max     int             `json:"max,omitempty"`
	Step    int             `json:"step,omitempty"`
}

// Controls describes the control surface of a group snapshot. Values come
// from the same read as the snapshot's slots.
func Controls(snap reactive.Snapshot) []Control {
	state := snap.State
	signals := snap.Signals
	controls := make([]Control, 0, len(signals))
	for _, s := range signals {
		c := Control{
			Signal:  s.Name,
			Label:   s.Label,
			Kind:    ControlSelect,
			Options: make([]ControlOption, 0, len(s.Domain)),
			Value:   state.Value(s.Name),
		}
		for _, v := range s.Domain {
			c.Options = append(c.Options, ControlOption{Label: v, Value: v})
		}
		if s.Name == SignalYear {
			if lo, hi, ok := evenlySpaced(s.Domain, yearStep); ok {
				c.Kind = ControlSlider
				c.Min, c.Max, c.Step = lo, hi, yearStep
			}
		}
		controls = append(controls, c)
	}
	return controls
}

// evenlySpaced reports whether values are integers ascending by exactly step.
func evenlySpaced(values []string, step int) (lo, hi int, ok bool) {
	if len(values) < 2 {
		return 0, 0, false
	}
	prev := 0
	for i, v := range values {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, false
		}
		if i > 0 && n-prev != step {
			return 0, 0, false
		}
		if i == 0 {
			lo = n
		}
		prev = n
	}
	return lo, prev, true
}
