package localsession_test

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/specialistvlad/reactidoc/internal/session"
	rtestutil "github.com/specialistvlad/reactidoc/internal/testutil"
	"github.com/specialistvlad/reactidoc/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

const sessionDoc = `
number "third" {
  value = 1 / 3
}
repeat "rep" {
  count = 3
  number "n" {
    value = count.index * 10
  }
}
mathinput "m" {
  prefill = "x + 1"
}
select_from_sequence "s" {
  from = 1
  to   = 100
}
`

func TestDispatch_Errors(t *testing.T) {
	h := rtestutil.Load(t, sessionDoc)

	testCases := []struct {
		name   string
		action session.Action
		want   error
	}{
		{
			name:   "unknown component",
			action: session.Action{Component: "doc.nope", Name: "updateValue"},
			want:   session.ErrUnknownComponent,
		},
		{
			name:   "unknown action",
			action: session.Action{Component: "doc.third", Name: "updateValue"},
			want:   session.ErrUnknownAction,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, h.Session.Dispatch(h.Ctx, tc.action), tc.want)
		})
	}

	t.Run("action error leaves the document usable", func(t *testing.T) {
		err := h.Session.Dispatch(h.Ctx, session.Action{Component: "doc.rep", Name: "setCount", Args: cty.StringVal("many")})
		require.Error(t, err)
		assert.Equal(t, 20.0, h.Number("doc.rep.n[2]", "value"))
	})
}

func TestDispatch_CountsActions(t *testing.T) {
	h := rtestutil.Load(t, sessionDoc)

	h.Do("doc.m", "updateValue", cty.StringVal("2"))
	h.Do("doc.m", "updateValue", cty.StringVal("3"))
	_ = h.Session.Dispatch(h.Ctx, session.Action{Component: "doc.m", Name: "nope"})

	expected := `
# HELP reactidoc_session_actions_total Total actions dispatched
# TYPE reactidoc_session_actions_total counter
reactidoc_session_actions_total{action="nope",status="rejected"} 1
reactidoc_session_actions_total{action="updateValue",status="ok"} 2
`
	require.NoError(t, testutil.GatherAndCompare(h.Metrics, strings.NewReader(expected), "reactidoc_session_actions_total"))
	assert.Equal(t, "3", h.Read("doc.m", "text").AsString())
}

func TestReadAllStateVariables(t *testing.T) {
	h := rtestutil.Load(t, sessionDoc)
	h.Do("doc.rep", "setCount", cty.NumberIntVal(1))

	t.Run("forced snapshot holds the active tree", func(t *testing.T) {
		snap, err := h.Session.ReadAllStateVariables(h.Ctx, false, false)
		require.NoError(t, err)
		assert.Contains(t, snap, "doc.rep.n[0]")
		assert.NotContains(t, snap, "doc.rep.n[1]")
		assert.NotContains(t, snap["doc.rep"], "children", "internal variables are not exposed")
	})

	t.Run("stale snapshot includes retained instances", func(t *testing.T) {
		snap, err := h.Session.ReadAllStateVariables(h.Ctx, true, false)
		require.NoError(t, err)
		require.Contains(t, snap, "doc.rep.n[2]")
		assert.Equal(t, 20.0, value.AsFloat(snap["doc.rep.n[2]"]["value"]))
	})

	t.Run("display formatting", func(t *testing.T) {
		snap, err := h.Session.ReadAllStateVariables(h.Ctx, false, true)
		require.NoError(t, err)
		assert.Equal(t, cty.StringVal("0.3333333333"), snap["doc.third"]["value"])
		assert.Equal(t, cty.StringVal("x + 1"), snap["doc.m"]["value"])
		assert.Equal(t, cty.StringVal("1 + x"), snap["doc.m"]["text"])
	})
}

func TestDiagnostics_FromExpandedComponents(t *testing.T) {
	h := rtestutil.Load(t, `
repeat "rep" {
  count = 1
  number "n" {
    value = count.index > 0 ? missing : 1
  }
}
`)
	unknown := func() bool {
		for _, d := range h.Session.Diagnostics() {
			if d.Summary == "Unknown reference" {
				return true
			}
		}
		return false
	}

	assert.False(t, unknown(), "the first instance never reads missing")
	h.Do("doc.rep", "setCount", cty.NumberIntVal(2))
	assert.True(t, unknown(), "the new instance is evaluated by the dispatch itself")
}

func TestVariant_OverrideIsDeterministic(t *testing.T) {
	a := rtestutil.Load(t, sessionDoc, rtestutil.WithVariant(3, "seed"))
	b := rtestutil.Load(t, sessionDoc, rtestutil.WithVariant(3, "seed"))

	require.Contains(t, a.Session.Commitments(), "doc.s")
	assert.Equal(t, a.Session.Commitments(), b.Session.Commitments())
	assert.NotEqual(t, a.Session.ID(), b.Session.ID())
}

func TestClose(t *testing.T) {
	h := rtestutil.Load(t, sessionDoc)
	require.NoError(t, h.Session.Close(h.Ctx))

	require.ErrorIs(t, h.Session.Close(h.Ctx), session.ErrClosed)
	require.ErrorIs(t, h.Session.Dispatch(h.Ctx, session.Action{Component: "doc.m", Name: "updateValue"}), session.ErrClosed)
	_, err := h.Session.ReadAllStateVariables(h.Ctx, true, false)
	require.ErrorIs(t, err, session.ErrClosed)
	_, err = h.Session.Read(h.Ctx, "doc.third", "value")
	require.ErrorIs(t, err, session.ErrClosed)
}
