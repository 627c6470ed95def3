package registry

import (
	"context"
	"log/slog"
	"testing"

	"github.com/specialistvlad/reactidoc/internal/ctxlog"
	"github.com/specialistvlad/reactidoc/internal/statevar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

type moduleFunc func(r *Registry)

func (f moduleFunc) Register(r *Registry) { f(r) }

func constType(name string) *statevar.Type {
	return statevar.NewType(name, statevar.Fragment{{
		Name:   statevar.DefaultVar,
		Type:   cty.Number,
		Define: func(statevar.Reader) cty.Value { return cty.Zero },
	}})
}

func testContext() context.Context {
	return ctxlog.WithLogger(context.Background(), slog.New(slog.DiscardHandler))
}

func TestNew_RegistersModules(t *testing.T) {
	r := New(moduleFunc(func(r *Registry) {
		r.RegisterType(constType("number"))
		r.RegisterType(constType("repeat").AsTemplate())
	}))

	assert.Equal(t, []string{"number", "repeat"}, r.Types())
	_, ok := r.Type("number")
	assert.True(t, ok)
	assert.True(t, r.IsTemplate("repeat"))
	assert.False(t, r.IsTemplate("number"))
	assert.False(t, r.IsTemplate("missing"))
}

func TestRegisterType_DuplicatePanics(t *testing.T) {
	r := New()
	r.RegisterType(constType("number"))
	assert.Panics(t, func() { r.RegisterType(constType("number")) })
}

func TestValidateRegistry(t *testing.T) {
	r := New()
	r.RegisterType(constType("number"))
	require.NoError(t, r.ValidateRegistry(testContext()))

	r.RegisterType(statevar.NewType("broken", statevar.Fragment{{Name: "value"}}))
	r.RegisterType(statevar.NewType("bad name", statevar.Fragment{{
		Name:   "value",
		Define: func(statevar.Reader) cty.Value { return cty.True },
	}}))

	err := r.ValidateRegistry(testContext())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'broken'")
	assert.Contains(t, err.Error(), "'bad name'")
}
