package route

import (
	"fmt"
	"sort"
	"sync"

	"github.com/v2xlab/obu/core/model"
)

// Registry maps route names to their waypoints.
type Registry struct {
	mu     sync.RWMutex
	routes map[string][]model.Waypoint
}

// NewRegistry returns a registry holding the built-in routes.
func NewRegistry() *Registry {
	r := &Registry{routes: map[string][]model.Waypoint{}}
	r.routes[ChulaRouteName] = ChulaRoute()
	return r
}

// Add registers or replaces a route. Empty routes are rejected because a
// session cursor must always index a waypoint.
func (r *Registry) Add(name string, wps []model.Waypoint) error {
	if name == "" {
		return fmt.Errorf("route name is required")
	}
	if len(wps) == 0 {
		return fmt.Errorf("route %s has no waypoints", name)
	}
	cp := make([]model.Waypoint, len(wps))
	copy(cp, wps)
	r.mu.Lock()
	r.routes[name] = cp
	r.mu.Unlock()
	return nil
}

// Lookup returns the waypoints of a route.
func (r *Registry) Lookup(name string) ([]model.Waypoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wps, ok := r.routes[name]
	return wps, ok
}

// Names lists the registered routes in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.routes))
	for n := range r.routes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
