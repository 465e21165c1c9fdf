// Package registry is an in-memory, thread-safe store of built catalogs
// keyed by name, with change notification for anything that wants to
// react to catalogs appearing (the HTTP surface, mainly).
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/signalsfoundry/starfield-simulator/core"
)

// EventType indicates what kind of change happened in the registry.
type EventType int

const (
	EventCatalogAdded EventType = iota
)

// Event is emitted to subscribers when something interesting happens.
type Event struct {
	Type    EventType
	Name    string
	Stars   int
	Epoch   float64
	Catalog *core.Catalog
}

// Registry holds catalogs by name.
type Registry struct {
	mu sync.RWMutex

	catalogs map[string]*core.Catalog
	subs     []func(Event)
}

// New constructs an empty registry.
func New() *Registry {
	return &Registry{
		catalogs: make(map[string]*core.Catalog),
	}
}

// Add stores a catalog under name. It returns an error if the name is
// already taken.
func (r *Registry) Add(name string, c *core.Catalog) error {
	r.mu.Lock()
	if _, exists := r.catalogs[name]; exists {
		r.mu.Unlock()
		return fmt.Errorf("catalog %q already registered", name)
	}
	r.catalogs[name] = c
	subs := append([]func(Event){}, r.subs...)
	r.mu.Unlock()

	ev := Event{
		Type:    EventCatalogAdded,
		Name:    name,
		Stars:   c.Len(),
		Epoch:   c.Epoch,
		Catalog: c,
	}
	for _, fn := range subs {
		fn(ev)
	}
	return nil
}

// Get returns the catalog with the given name, or nil if not found.
func (r *Registry) Get(name string) *core.Catalog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.catalogs[name]
}

// Names returns the registered catalog names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.catalogs))
	for name := range r.catalogs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Subscribe registers a callback invoked on every future event.
func (r *Registry) Subscribe(fn func(Event)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, fn)
}
