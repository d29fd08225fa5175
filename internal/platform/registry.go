// Package platform registers content provider implementations by name.
package platform

import (
	"fmt"
	"sort"
	"sync"

	"coursarr/internal/contracts"
	"coursarr/internal/models"
	"coursarr/internal/netutil"
)

// Constructor builds one platform implementation over a session.
type Constructor func(session *netutil.Session, settings *models.Settings) contracts.Platform

// Registry maps provider names to constructors.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
}

// NewRegistry returns an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

// Register binds a provider name to its constructor. Re-registering a name
// replaces the previous constructor.
func (r *Registry) Register(name string, c Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.constructors[name] = c
}

// New instantiates the named provider.
func (r *Registry) New(name string, session *netutil.Session, settings *models.Settings) (contracts.Platform, error) {
	r.mu.RLock()
	c, ok := r.constructors[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown platform %q (registered: %v)", name, r.Names())
	}
	return c(session, settings), nil
}

// Names returns the registered provider names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
