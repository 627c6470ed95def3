package app

import (
	"github.com/specialistvlad/reactidoc/internal/components"
	"github.com/specialistvlad/reactidoc/internal/registry"
)

// coreModules is the definitive list of all component modules that are
// compiled into the reactidoc binary.
var coreModules = []registry.Module{
	&components.Module{},
}
