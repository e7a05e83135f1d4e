package cost

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages the cost models of the deployment targets
type Registry interface {
	// Register adds a model under its target name
	Register(model Model) error
	// Get returns the model of a target
	Get(target string) (Model, error)
	// Models returns all registered models ordered by target
	Models() []Model
	// ListTargets returns the registered targets in sorted order
	ListTargets() []string
}

type registry struct {
	mu     sync.RWMutex
	models map[string]Model
}

// NewRegistry creates a registry holding the given models
func NewRegistry(models ...Model) (Registry, error) {
	r := &registry{
		models: make(map[string]Model),
	}
	for _, m := range models {
		if err := r.Register(m); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *registry) Register(model Model) error {
	if model == nil {
		return fmt.Errorf("model cannot be nil")
	}
	target := model.Target()
	if target == "" {
		return fmt.Errorf("target name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.models[target]; exists {
		return fmt.Errorf("target %q is already registered", target)
	}

	r.models[target] = model
	return nil
}

func (r *registry) Get(target string) (Model, error) {
	r.mu.RLock()
	model, exists := r.models[target]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("target %q is not registered", target)
	}
	return model, nil
}

func (r *registry) Models() []Model {
	r.mu.RLock()
	defer r.mu.RUnlock()

	models := make([]Model, 0, len(r.models))
	for _, target := range r.sortedTargets() {
		models = append(models, r.models[target])
	}
	return models
}

func (r *registry) ListTargets() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedTargets()
}

func (r *registry) sortedTargets() []string {
	targets := make([]string, 0, len(r.models))
	for target := range r.models {
		targets = append(targets, target)
	}
	sort.Strings(targets)
	return targets
}
