package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/reactidoc/internal/ctxlog"
	"github.com/specialistvlad/reactidoc/internal/nodeid"
	"github.com/specialistvlad/reactidoc/internal/statevar"
)

// ValidateRegistry checks every registered type before documents are loaded.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, name := range r.Types() {
		t := r.types[name]
		if !nodeid.ValidName(name) {
			errs = append(errs, fmt.Sprintf("type name '%s' cannot be written as a block type", name))
		}
		if err := t.Validate(); err != nil {
			errs = append(errs, err.Error())
		}
		for _, v := range t.Order {
			if !nodeid.ValidName(v) {
				errs = append(errs, fmt.Sprintf("type '%s': variable '%s' cannot be referenced from expressions", name, v))
			}
		}
		if len(t.Actions) > 0 && !hasEssential(t.Defs) {
			logger.Warn("Component type declares actions but no essential variables.", "type", name)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func hasEssential(defs map[string]*statevar.Def) bool {
	for _, d := range defs {
		if d.Essential {
			return true
		}
	}
	return false
}
