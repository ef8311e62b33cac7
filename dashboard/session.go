package dashboard

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spektr-org/gapminder/reactive"
)

// ErrUnknownTab is returned when an event names a tab the session lacks.
var ErrUnknownTab = errors.New("unknown tab")

// Session owns one live group per tab. Groups are never shared between
// sessions, so a change in one session cannot recompute another's slots.
type Session struct {
	ID      string
	Created time.Time

	tabs   []TabDef
	groups []*reactive.Group
	byName map[string]*reactive.Group
}

// NewSession instantiates every tab with default selections.
func (d *Dashboard) NewSession(opts ...reactive.Option) (*Session, error) {
	s := &Session{
		ID:      uuid.NewString(),
		Created: time.Now().UTC(),
		tabs:    d.Tabs(),
		byName:  make(map[string]*reactive.Group, len(d.tabs)),
	}
	for _, tab := range s.tabs {
		g, err := d.NewGroup(tab, opts...)
		if err != nil {
			return nil, fmt.Errorf("session %s: %w", s.ID, err)
		}
		s.groups = append(s.groups, g)
		s.byName[tab.Name] = g
	}
	return s, nil
}

// Tab returns a tab's live group.
func (s *Session) Tab(name string) (*reactive.Group, bool) {
	g, ok := s.byName[name]
	return g, ok
}

// Set routes a control event to one tab.
func (s *Session) Set(tab, signal, value string) (reactive.Update, error) {
	g, ok := s.byName[tab]
	if !ok {
		return reactive.Update{}, fmt.Errorf("%w: %s", ErrUnknownTab, tab)
	}
	return g.Set(signal, value)
}

// TabSnapshot is a tab's label, controls and current slots.
type TabSnapshot struct {
	Label    string    `json:"label"`
	Controls []Control `json:"controls"`
	reactive.Snapshot
}

// SessionSnapshot is the whole page state for one session.
type SessionSnapshot struct {
	ID   string        `json:"id"`
	Tabs []TabSnapshot `json:"tabs"`
}

// Snapshot reads every tab. Each tab is internally consistent; tabs are
// independent so no cross-tab consistency is needed.
func (s *Session) Snapshot() SessionSnapshot {
	snap := SessionSnapshot{ID: s.ID, Tabs: make([]TabSnapshot, 0, len(s.groups))}
	for i, g := range s.groups {
		gs := g.Snapshot()
		snap.Tabs = append(snap.Tabs, TabSnapshot{
			Label:    s.tabs[i].Label,
			Controls: Controls(gs),
			Snapshot: gs,
		})
	}
	return snap
}
