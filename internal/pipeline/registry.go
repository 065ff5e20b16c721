// Package pipeline orders and runs the formatting passes against one
// document, producing the run report.
package pipeline

import (
	"errors"
	"fmt"
	"sync"

	"github.com/thesistools/thesisfmt/internal/passes"
)

// Sentinel errors for the pipeline package.
var (
	// ErrPassAlreadyRegistered is returned when registering a duplicate pass.
	ErrPassAlreadyRegistered = errors.New("pass already registered")

	// ErrPassNotFound is returned when a pass dependency is not found.
	ErrPassNotFound = errors.New("pass not found")

	// ErrDependencyCycle is returned when pass dependencies form a cycle.
	ErrDependencyCycle = errors.New("dependency cycle detected")
)

// Registry holds the available passes and their dependency graph.
type Registry struct {
	mu     sync.RWMutex
	passes map[string]passes.Pass
	order  []string // registration order
}

// NewRegistry creates an empty pass registry.
func NewRegistry() *Registry {
	return &Registry{
		passes: make(map[string]passes.Pass),
		order:  make([]string, 0),
	}
}

// Register adds a pass to the registry.
// Returns an error if a pass with the same name is already registered.
func (r *Registry) Register(p passes.Pass) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.passes[name]; exists {
		return fmt.Errorf("%w: %s", ErrPassAlreadyRegistered, name)
	}

	r.passes[name] = p
	r.order = append(r.order, name)
	return nil
}

// Get returns a pass by name.
func (r *Registry) Get(name string) (passes.Pass, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.passes[name]
	return p, ok
}

// Names returns all pass names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// GetOrdered returns passes sorted by dependencies. Passes with no
// dependencies come first; when several passes sit at the same level,
// registration order is preserved.
func (r *Registry) GetOrdered() ([]passes.Pass, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ordered()
}

func (r *Registry) ordered() ([]passes.Pass, error) {
	inDegree := make(map[string]int)
	for _, name := range r.order {
		inDegree[name] = 0
	}

	for _, name := range r.order {
		p := r.passes[name]
		for _, dep := range p.Dependencies() {
			if _, ok := r.passes[dep]; !ok {
				return nil, fmt.Errorf("%w: pass %q depends on %q", ErrPassNotFound, name, dep)
			}
			inDegree[name]++
		}
	}

	// Kahn's algorithm, seeded in registration order for stability.
	var queue []string
	for _, name := range r.order {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	var ordered []passes.Pass
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		ordered = append(ordered, r.passes[name])

		for _, depName := range r.order {
			p := r.passes[depName]
			for _, dep := range p.Dependencies() {
				if dep == name {
					inDegree[depName]--
					if inDegree[depName] == 0 {
						queue = append(queue, depName)
					}
				}
			}
		}
	}

	if len(ordered) != len(r.passes) {
		return nil, ErrDependencyCycle
	}

	return ordered, nil
}

// Validate checks that every declared dependency exists and the graph
// is acyclic.
func (r *Registry) Validate() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for name, p := range r.passes {
		for _, dep := range p.Dependencies() {
			if _, ok := r.passes[dep]; !ok {
				return fmt.Errorf("%w: pass %q depends on %q", ErrPassNotFound, name, dep)
			}
		}
	}

	_, err := r.ordered()
	return err
}
