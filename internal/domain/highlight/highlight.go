// Package highlight implements the hover and pin state behind chart emphasis.
//
// Hover moves between idle and focused(anchor). Pinning is a separate value
// that hover never changes; only Toggle and Clear touch it.
package highlight

import (
	"sync"

	"github.com/okian/marquee/internal/domain/model"
)

// State is the hover state.
type State int

// Hover states.
const (
	Idle State = iota
	Focused
)

func (s State) String() string {
	if s == Focused {
		return "focused"
	}
	return "idle"
}

// Graph lists the neighbours of each entity.
type Graph map[string][]string

// NewGraph builds an undirected neighbour list from resolved connections.
func NewGraph(conns []model.Connection) Graph {
	g := Graph{}
	for _, c := range conns {
		g[c.FromID] = append(g[c.FromID], c.ToID)
		g[c.ToID] = append(g[c.ToID], c.FromID)
	}
	return g
}

// Option configures a Machine.
type Option func(*Machine)

// WithOnFocus registers a callback run with the new set on every transition
// into Focused. The callback runs with the machine unlocked.
func WithOnFocus(fn func(model.HighlightSet)) Option {
	return func(m *Machine) { m.onFocus = fn }
}

// WithOnIdle registers a callback run on every transition into Idle.
func WithOnIdle(fn func()) Option {
	return func(m *Machine) { m.onIdle = fn }
}

// Machine holds hover and pin state for one dashboard session.
type Machine struct {
	mu      sync.RWMutex
	graph   Graph
	state   State
	current model.HighlightSet
	pinned  string

	onFocus func(model.HighlightSet)
	onIdle  func()
}

// New creates an idle machine over graph.
func New(graph Graph, opts ...Option) *Machine {
	m := &Machine{graph: graph}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetGraph swaps the neighbour list, e.g. after a dataset reload. A focused
// set is recomputed against the new graph.
func (m *Machine) SetGraph(g Graph) {
	m.mu.Lock()
	m.graph = g
	if m.state == Focused {
		m.current = m.setFor(m.current.AnchorID)
	}
	m.mu.Unlock()
}

// Enter focuses id and returns the new highlight set: id plus every entity
// connected to it.
func (m *Machine) Enter(id string) model.HighlightSet {
	m.mu.Lock()
	m.state = Focused
	m.current = m.setFor(id)
	set := m.current
	fn := m.onFocus
	m.mu.Unlock()

	if fn != nil {
		fn(set)
	}
	return set
}

// Leave returns to idle and clears the highlight set.
func (m *Machine) Leave() {
	m.mu.Lock()
	wasFocused := m.state == Focused
	m.state = Idle
	m.current = model.HighlightSet{}
	fn := m.onIdle
	m.mu.Unlock()

	if wasFocused && fn != nil {
		fn()
	}
}

// Toggle pins key, replaces a different pinned key, or unpins key when it is
// already pinned. It returns the pinned key after the change.
func (m *Machine) Toggle(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pinned == key {
		m.pinned = ""
	} else {
		m.pinned = key
	}
	return m.pinned
}

// ClearPin drops any pinned selection.
func (m *Machine) ClearPin() {
	m.mu.Lock()
	m.pinned = ""
	m.mu.Unlock()
}

// State returns the hover state.
func (m *Machine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Current returns the highlight set; ok is false when idle.
func (m *Machine) Current() (model.HighlightSet, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current, m.state == Focused
}

// Pinned returns the pinned key; ok is false when nothing is pinned.
func (m *Machine) Pinned() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pinned, m.pinned != ""
}

func (m *Machine) setFor(id string) model.HighlightSet {
	return model.NewHighlightSet(id, m.graph[id]...)
}
