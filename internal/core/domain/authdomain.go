package domain

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrDomainConflict indicates a service name was registered twice with
// different scopes.
var ErrDomainConflict = errors.New("authorization domain conflict")

// AuthorizationDomain is a named credential scope. Two domains are the same
// domain iff both fields are equal, so values can be used as map keys.
type AuthorizationDomain struct {
	// ServiceName is the ClientLogin service identifier, e.g. "cl".
	ServiceName string
	// Scope is the OAuth scope URI.
	Scope string
}

func (d AuthorizationDomain) String() string {
	return fmt.Sprintf("%s (%s)", d.ServiceName, d.Scope)
}

// Registry maps service names to their authorization domains. It is built
// once at startup and handed to services and authorizers.
type Registry struct {
	mu      sync.RWMutex
	domains map[string]AuthorizationDomain
}

// NewRegistry creates a registry holding the given domains.
func NewRegistry(domains ...AuthorizationDomain) (*Registry, error) {
	r := &Registry{domains: make(map[string]AuthorizationDomain, len(domains))}
	for _, d := range domains {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a domain. Registering an identical domain again is a no-op.
func (r *Registry) Register(d AuthorizationDomain) error {
	if d.ServiceName == "" {
		return fmt.Errorf("%w: empty service name", ErrDomainConflict)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.domains[d.ServiceName]; ok && existing != d {
		return fmt.Errorf("%w: %s already registered with scope %s", ErrDomainConflict, d.ServiceName, existing.Scope)
	}
	r.domains[d.ServiceName] = d
	return nil
}

// Lookup returns the domain registered for a service name.
func (r *Registry) Lookup(serviceName string) (AuthorizationDomain, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.domains[serviceName]
	return d, ok
}

// Domains returns every registered domain ordered by service name.
func (r *Registry) Domains() []AuthorizationDomain {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]AuthorizationDomain, 0, len(r.domains))
	for _, d := range r.domains {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ServiceName < out[j].ServiceName })
	return out
}
