package crud

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"sync"

	"github.com/wondertwin-ai/backoffice/pkg/store"
)

// ErrInvalidResource is returned for resource names outside resourceName.
var ErrInvalidResource = errors.New("invalid resource name")

var resourceName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// Registry hands out one Service per resource name, creating it on first use.
type Registry struct {
	mu       sync.Mutex
	services map[string]*Service
	clock    *store.Clock
}

// NewRegistry creates an empty registry. A nil clock uses the wall clock.
func NewRegistry(clock *store.Clock) *Registry {
	if clock == nil {
		clock = store.NewClock()
	}
	return &Registry{
		services: make(map[string]*Service),
		clock:    clock,
	}
}

// Resource returns the service for name. Every call with the same name
// returns the same *Service, including concurrent first calls.
func (r *Registry) Resource(name string) (*Service, error) {
	if !resourceName.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidResource, name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	svc, ok := r.services[name]
	if !ok {
		svc = newService(name, r.clock)
		r.services[name] = svc
	}
	return svc, nil
}

// Names returns the names of all resources created so far, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns every resource's entities in insertion order.
func (r *Registry) Snapshot() map[string][]Entity {
	r.mu.Lock()
	services := make([]*Service, 0, len(r.services))
	for _, svc := range r.services {
		services = append(services, svc)
	}
	r.mu.Unlock()

	out := make(map[string][]Entity, len(services))
	for _, svc := range services {
		out[svc.name] = svc.List()
	}
	return out
}

// Load replaces the contents of the named resources. Resources not present
// in snapshot keep their current contents. Nothing is loaded if any name is
// malformed.
func (r *Registry) Load(snapshot map[string][]Entity) error {
	for name := range snapshot {
		if !resourceName.MatchString(name) {
			return fmt.Errorf("%w: %q", ErrInvalidResource, name)
		}
	}
	for name, items := range snapshot {
		svc, err := r.Resource(name)
		if err != nil {
			return err
		}
		svc.load(items)
	}
	return nil
}

// Reset empties every resource store. Services stay registered so handles
// obtained earlier remain the live instance for their name.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, svc := range r.services {
		svc.entries.Reset()
	}
}
