// Package solver resolves the solver class responsible for a simulation
// directory.
package solver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/snek5000/snekctl/internal/params"
)

// ErrNotRegistered is returned by Import for unknown short names.
var ErrNotRegistered = errors.New("solver is not registered")

// Simul is a simulation instantiated from restart parameters.
type Simul interface {
	// Exec runs a task runner target, blocking until it finishes.
	Exec(ctx context.Context, target string, opts ExecOptions) error
	// Params returns the parameters the simulation was created with.
	Params() *params.Parameters
}

// ExecOptions configures Simul.Exec.
type ExecOptions struct {
	Nproc int
}

// Factory creates a simulation for the run directory dir.
type Factory func(ctx context.Context, dir string, p *params.Parameters) (Simul, error)

// Class is a resolved solver.
type Class struct {
	Name    string
	factory Factory
}

// New instantiates a simulation.
func (c *Class) New(ctx context.Context, dir string, p *params.Parameters) (Simul, error) {
	return c.factory(ctx, dir, p)
}

// Registry maps solver short names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Import resolves name to a solver class.
func (r *Registry) Import(name string) (*Class, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotRegistered, name)
	}
	return &Class{Name: name, factory: factory}, nil
}

// Names returns the registered short names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = NewRegistry()

// Default returns the process wide registry.
func Default() *Registry {
	return defaultRegistry
}

// Register adds a factory to the default registry.
func Register(name string, factory Factory) {
	defaultRegistry.Register(name, factory)
}

// Import resolves name from the default registry.
func Import(name string) (*Class, error) {
	return defaultRegistry.Import(name)
}
