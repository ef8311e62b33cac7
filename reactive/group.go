// Package reactive maps named filter signals to derived chart slots.
//
// A Group is one view-group (a dashboard tab): it owns a FilterState and a
// set of slots. Each slot declares, once at registration, which signals it
// depends on. Set validates a control event, recomputes exactly the slots
// whose dependency set contains the changed signal, and commits the new
// state and specs together.
//
//	g, _ := reactive.NewGroup("population", []reactive.Signal{continent, year})
//	_ = g.Register("chart", []string{"continent", "year"}, buildChart)
//	upd, err := g.Set("year", "1957") // recomputes "chart" only
//
// Groups never share state. Events against one group are serialized.
package reactive

import (
	"fmt"
	"sync"
	"time"

	"github.com/spektr-org/gapminder/engine"
)

// SlotFunc derives a slot's ChartSpec from the group's FilterState.
// It must be pure: same state in, equal spec out.
type SlotFunc func(FilterState) (engine.ChartSpec, error)

// Renderer is the render surface. Render is called for every committed
// slot spec, in commit order, while the group is locked: it must not call
// back into the group.
type Renderer interface {
	Render(group, slot string, spec engine.ChartSpec)
}

// Observer receives recompute and rejection events for metrics. Both are
// reported only for committed work and declared signals: a rejection naming
// an undeclared signal arrives as UnknownSignal.
type Observer interface {
	SlotRecomputed(group, slot string, elapsed time.Duration)
	SelectionRejected(group, signal string)
}

// UnknownSignal is the signal name reported to an Observer when an event
// names a signal the group does not declare.
const UnknownSignal = "unknown"

// Option configures a Group.
type Option func(*Group)

// WithRenderer attaches a render surface.
func WithRenderer(r Renderer) Option {
	return func(g *Group) { g.renderer = r }
}

// WithObserver attaches a metrics observer.
func WithObserver(o Observer) Option {
	return func(g *Group) { g.observer = o }
}

type slot struct {
	name       string
	deps       []string
	fn         SlotFunc
	spec       engine.ChartSpec
	generation uint64
}

// Group is one view-group: signals, FilterState, slots and the dependency
// table from signal name to dependent slots.
type Group struct {
	name     string
	signals  []Signal
	byName   map[string]Signal
	renderer Renderer
	observer Observer

	mu         sync.Mutex
	state      FilterState
	slots      []*slot
	slotByName map[string]*slot
	dependents map[string][]*slot
}

// SlotUpdate is one recomputed slot within an Update.
type SlotUpdate struct {
	Slot       string           `json:"slot"`
	Generation uint64           `json:"generation"`
	Spec       engine.ChartSpec `json:"spec"`
}

// Update describes the effect of one accepted Set.
// Slots is empty when the value did not change.
type Update struct {
	Group  string       `json:"group"`
	Signal string       `json:"signal"`
	Value  string       `json:"value"`
	State  FilterState  `json:"state"`
	Slots  []SlotUpdate `json:"slots"`
}

// NewGroup declares a view-group's signals. Every default must be in its
// signal's domain and names must be unique.
func NewGroup(name string, signals []Signal, opts ...Option) (*Group, error) {
	g := &Group{
		name:       name,
		byName:     make(map[string]Signal, len(signals)),
		slotByName: make(map[string]*slot),
		dependents: make(map[string][]*slot),
	}
	for _, s := range signals {
		if _, dup := g.byName[s.Name]; dup {
			return nil, fmt.Errorf("group %s: signal %s declared twice", name, s.Name)
		}
		s.Domain = append([]string(nil), s.Domain...)
		if !s.Contains(s.Default) {
			return nil, &InvalidSelectionError{Group: name, Signal: s.Name, Value: s.Default, Err: ErrOutOfDomain}
		}
		g.signals = append(g.signals, s)
		g.byName[s.Name] = s
	}
	for _, opt := range opts {
		opt(g)
	}
	g.state = newFilterState(g.signals)
	return g, nil
}

// Name returns the group name.
func (g *Group) Name() string { return g.name }

// Signals returns the declared signals.
func (g *Group) Signals() []Signal {
	out := make([]Signal, len(g.signals))
	for i, s := range g.signals {
		s.Domain = append([]string(nil), s.Domain...)
		out[i] = s
	}
	return out
}

// Register adds a slot depending on deps and computes it immediately from
// the current state, so no registered slot is ever uninitialized.
func (g *Group) Register(name string, deps []string, fn SlotFunc) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, dup := g.slotByName[name]; dup {
		return fmt.Errorf("group %s: %w: %s", g.name, ErrDuplicateSlot, name)
	}
	seen := make(map[string]bool, len(deps))
	var uniq []string
	for _, d := range deps {
		if _, ok := g.byName[d]; !ok {
			return fmt.Errorf("group %s: slot %s: %w: %s", g.name, name, ErrUnknownSignal, d)
		}
		if !seen[d] {
			seen[d] = true
			uniq = append(uniq, d)
		}
	}

	s := &slot{name: name, deps: uniq, fn: fn}
	spec, elapsed, err := g.run(s, g.state)
	if err != nil {
		return err
	}
	s.spec = spec
	s.generation = 1
	g.recomputed(s, elapsed)

	g.slots = append(g.slots, s)
	g.slotByName[name] = s
	for _, d := range uniq {
		g.dependents[d] = append(g.dependents[d], s)
	}
	g.render(s)
	return nil
}

// Set applies a control event. An undeclared signal or out-of-domain value
// returns *InvalidSelectionError and leaves the group untouched. Setting the
// current value is accepted with no recompute. Otherwise every dependent
// slot is recomputed against the new state; if any of them fails, nothing
// is committed and the error wraps ErrSlotFailed.
func (g *Group) Set(signal, value string) (Update, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	sig, ok := g.byName[signal]
	if !ok {
		return Update{}, g.reject(signal, value, ErrUnknownSignal)
	}
	if !sig.Contains(value) {
		return Update{}, g.reject(signal, value, ErrOutOfDomain)
	}

	upd := Update{Group: g.name, Signal: signal, Value: value, State: g.state, Slots: []SlotUpdate{}}
	if g.state.Value(signal) == value {
		return upd, nil
	}

	next := g.state.With(signal, value)
	affected := g.dependents[signal]
	specs := make([]engine.ChartSpec, len(affected))
	elapsed := make([]time.Duration, len(affected))
	for i, s := range affected {
		spec, took, err := g.run(s, next)
		if err != nil {
			return Update{}, err
		}
		specs[i], elapsed[i] = spec, took
	}

	g.state = next
	upd.State = next
	for i, s := range affected {
		s.spec = specs[i]
		s.generation++
		upd.Slots = append(upd.Slots, SlotUpdate{Slot: s.name, Generation: s.generation, Spec: s.spec})
	}
	for i, s := range affected {
		g.recomputed(s, elapsed[i])
		g.render(s)
	}
	return upd, nil
}

// State returns the current FilterState snapshot.
func (g *Group) State() FilterState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Spec returns a slot's current ChartSpec. Specs are shared with the
// group and must be treated as read-only.
func (g *Group) Spec(name string) (engine.ChartSpec, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.slotByName[name]
	if !ok {
		return engine.ChartSpec{}, false
	}
	return s.spec, true
}

// Generation returns how many times a slot has been computed (0 if absent).
func (g *Group) Generation(name string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if s, ok := g.slotByName[name]; ok {
		return s.generation
	}
	return 0
}

// Slots returns slot names in registration order.
func (g *Group) Slots() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	names := make([]string, len(g.slots))
	for i, s := range g.slots {
		names[i] = s.name
	}
	return names
}

// Dependencies returns the signals a slot declared.
func (g *Group) Dependencies(name string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if s, ok := g.slotByName[name]; ok {
		return append([]string(nil), s.deps...)
	}
	return nil
}

// Dependents returns the slots recomputed when signal changes.
func (g *Group) Dependents(signal string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var names []string
	for _, s := range g.dependents[signal] {
		names = append(names, s.name)
	}
	return names
}

// Snapshot is a consistent read of a group's state and all its slots.
type Snapshot struct {
	Name    string       `json:"name"`
	Signals []Signal     `json:"signals"`
	State   FilterState  `json:"state"`
	Slots   []SlotUpdate `json:"slots"`
}

// Snapshot reads state and slots under one lock.
func (g *Group) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	snap := Snapshot{Name: g.name, Signals: g.Signals(), State: g.state, Slots: make([]SlotUpdate, 0, len(g.slots))}
	for _, s := range g.slots {
		snap.Slots = append(snap.Slots, SlotUpdate{Slot: s.name, Generation: s.generation, Spec: s.spec})
	}
	return snap
}

func (g *Group) reject(signal, value string, cause error) error {
	if g.observer != nil {
		label := signal
		if cause == ErrUnknownSignal {
			label = UnknownSignal
		}
		g.observer.SelectionRejected(g.name, label)
	}
	return &InvalidSelectionError{Group: g.name, Signal: signal, Value: value, Err: cause}
}

// run computes one slot, converting a panic into ErrSlotFailed.
func (g *Group) run(s *slot, st FilterState) (spec engine.ChartSpec, elapsed time.Duration, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("group %s: %w: %s: %v", g.name, ErrSlotFailed, s.name, r)
		}
	}()
	spec, err = s.fn(st)
	if err != nil {
		return engine.ChartSpec{}, 0, fmt.Errorf("group %s: %w: %s: %w", g.name, ErrSlotFailed, s.name, err)
	}
	return spec, time.Since(start), nil
}

func (g *Group) recomputed(s *slot, elapsed time.Duration) {
	if g.observer != nil {
		g.observer.SlotRecomputed(g.name, s.name, elapsed)
	}
}

func (g *Group) render(s *slot) {
	if g.renderer != nil {
		g.renderer.Render(g.name, s.name, s.spec)
	}
}
