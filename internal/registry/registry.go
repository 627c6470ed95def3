package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/specialistvlad/reactidoc/internal/statevar"
)

// Module is the interface that all catalog modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the component types of a single application instance.
type Registry struct {
	types map[string]*statevar.Type
}

// New creates and initializes a new Registry instance.
func New(modules ...Module) *Registry {
	r := &Registry{types: make(map[string]*statevar.Type)}
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

// RegisterType adds a component type. Registering a name twice panics.
func (r *Registry) RegisterType(t *statevar.Type) {
	if _, exists := r.types[t.Name]; exists {
		panic(fmt.Sprintf("component type '%s' already registered", t.Name))
	}
	slog.Debug("Registering component type.", "type", t.Name, "variables", len(t.Order), "actions", len(t.Actions))
	r.types[t.Name] = t
}

// Type looks up a component type.
func (r *Registry) Type(name string) (*statevar.Type, bool) {
	t, ok := r.types[name]
	return t, ok
}

// IsTemplate reports whether the named type instantiates its own children.
func (r *Registry) IsTemplate(name string) bool {
	t, ok := r.types[name]
	return ok && t.Template
}

// Types lists the registered type names in order.
func (r *Registry) Types() []string {
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
