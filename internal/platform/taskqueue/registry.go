package taskqueue

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Handler executes one delivery of a task against its target.
type Handler func(ctx context.Context, targetID uuid.UUID) error

// Registry maps task names to handlers. Registration is explicit and happens
// once at startup so unknown task names fail loudly instead of vanishing.
type Registry struct {
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register binds a handler to a task name. Registering the same name twice
// is a wiring bug and is rejected.
func (r *Registry) Register(taskName string, handler Handler) error {
	if taskName == "" {
		return fmt.Errorf("task name is required")
	}
	if handler == nil {
		return fmt.Errorf("handler for task %q is required", taskName)
	}
	if _, exists := r.handlers[taskName]; exists {
		return fmt.Errorf("task %q is already registered", taskName)
	}
	r.handlers[taskName] = handler
	return nil
}

// Lookup resolves a task name to its handler.
func (r *Registry) Lookup(taskName string) (Handler, bool) {
	handler, ok := r.handlers[taskName]
	return handler, ok
}

// TaskNames returns the registered names, for startup logging.
func (r *Registry) TaskNames() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	return names
}
