package widget

import (
	"fmt"
	"sync"
)

// NotFoundError is returned when a group references an unregistered plugin.
// This is a configuration mistake and fatal for the whole group.
type NotFoundError struct {
	Plugin string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("widget plugin %q not found", e.Plugin)
}

// IsNotFound returns true if the error is NotFoundError.
func IsNotFound(err error) bool {
	_, ok := err.(NotFoundError)
	return ok
}

// Registry manages widget registration and lookup by plugin name.
type Registry struct {
	mu      sync.RWMutex
	widgets map[string]Widget
}

// NewRegistry creates a new empty widget registry.
func NewRegistry() *Registry {
	return &Registry{widgets: make(map[string]Widget)}
}

// Register adds a widget to the registry.
// Returns an error if a widget with the same name already exists.
func (r *Registry) Register(w Widget) error {
	if w == nil {
		return fmt.Errorf("cannot register nil widget")
	}
	name := w.Name()
	if name == "" {
		return fmt.Errorf("widget name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.widgets[name]; exists {
		return fmt.Errorf("widget %q already registered", name)
	}
	r.widgets[name] = w
	return nil
}

// Get retrieves a widget by plugin name.
func (r *Registry) Get(name string) (Widget, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.widgets[name]
	if !ok {
		return nil, NotFoundError{Plugin: name}
	}
	return w, nil
}

// Has checks if a widget with the given name exists.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.widgets[name]
	return ok
}

// Names returns the registered plugin names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.widgets))
	for name := range r.widgets {
		names = append(names, name)
	}
	return names
}

// globalRegistry is the default widget registry; builtin widgets register
// themselves here from init.
var globalRegistry = NewRegistry()

// DefaultRegistry returns the global widget registry.
func DefaultRegistry() *Registry {
	return globalRegistry
}

// Register adds a widget to the global registry.
func Register(w Widget) error {
	return globalRegistry.Register(w)
}

func mustRegister(w Widget) {
	if err := Register(w); err != nil {
		panic(err)
	}
}
