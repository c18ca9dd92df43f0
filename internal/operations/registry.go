package operations

import (
	"fmt"
	"sync"
)

// Registry holds the pipeline steps in registration order
type Registry struct {
	mu    sync.RWMutex
	steps map[string]Step
	order []string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		steps: make(map[string]Step),
	}
}

// Register adds a Step to the registry
func (r *Registry) Register(step Step) error {
	if step == nil {
		return fmt.Errorf("cannot register nil step")
	}
	id := step.ID()
	if id == "" {
		return fmt.Errorf("step ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.steps[id]; exists {
		return fmt.Errorf("step with ID %s already registered", id)
	}
	r.steps[id] = step
	r.order = append(r.order, id)
	return nil
}

// ListIDs returns all registered Step IDs in registration order
func (r *Registry) ListIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// Count returns the number of registered steps
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.steps)
}

// Resolve returns the steps for ids ordered so that every step comes after
// its dependencies; steps with no ordering constraint keep registration order.
// An empty ids list selects every registered step. Dependencies that are not
// selected are not pulled in.
func (r *Registry) Resolve(ids []string) ([]Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	selected := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		for _, id := range r.order {
			selected[id] = true
		}
	}
	for _, id := range ids {
		if _, ok := r.steps[id]; !ok {
			return nil, NewNotFoundError(id)
		}
		selected[id] = true
	}

	for id := range selected {
		for _, dep := range r.steps[id].GetDependencies() {
			if _, ok := r.steps[dep]; !ok {
				return nil, fmt.Errorf("step %s depends on unregistered step %s", id, dep)
			}
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	marks := make(map[string]int, len(r.steps))
	ordered := make([]Step, 0, len(selected))

	var visit func(id string) error
	visit = func(id string) error {
		switch marks[id] {
		case visiting:
			return fmt.Errorf("dependency cycle detected at step %s", id)
		case done:
			return nil
		}
		marks[id] = visiting
		for _, dep := range r.steps[id].GetDependencies() {
			if err := visit(dep); err != nil {
				return err
			}
		}
		marks[id] = done
		if selected[id] {
			ordered = append(ordered, r.steps[id])
		}
		return nil
	}

	for _, id := range r.order {
		if err := visit(id); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}
