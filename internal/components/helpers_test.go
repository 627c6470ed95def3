package components_test

import (
	"github.com/specialistvlad/reactidoc/internal/session"
	"github.com/zclconf/go-cty/cty"
)

func sessionAction(component, name string, args cty.Value) session.Action {
	return session.Action{Component: component, Name: name, Args: args}
}
