package testutil

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/specialistvlad/reactidoc/internal/components"
	"github.com/specialistvlad/reactidoc/internal/config"
	"github.com/specialistvlad/reactidoc/internal/ctxlog"
	"github.com/specialistvlad/reactidoc/internal/hcldoc"
	"github.com/specialistvlad/reactidoc/internal/localsession"
	"github.com/specialistvlad/reactidoc/internal/registry"
	"github.com/specialistvlad/reactidoc/internal/session"
	"github.com/specialistvlad/reactidoc/internal/value"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Harness is a live session over a document given as a string.
type Harness struct {
	T        *testing.T
	Ctx      context.Context
	Session  session.Session
	Metrics  *prometheus.Registry
	Logs     *SafeBuffer
	Document *config.Document
}

// Option adjusts how a harness loads its document.
type Option func(*session.Options)

// WithVariant fixes the variant index and seed.
func WithVariant(index int, seed string) Option {
	return func(o *session.Options) {
		o.Variant = &config.Variant{Index: index, Seed: seed}
	}
}

// Load parses src with the full component catalog and opens a session on
// it. Set REACTIDOC_TEST_LOGS=true to print the debug log of each test.
func Load(t *testing.T, src string, opts ...Option) *Harness {
	t.Helper()

	logs := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := ctxlog.WithLogger(context.Background(), logger)
	t.Cleanup(func() {
		if os.Getenv("REACTIDOC_TEST_LOGS") == "true" {
			t.Logf("--- LOGS ---\n%s", logs.String())
		}
	})

	doc, err := hcldoc.NewLoader().Parse(ctx, "test.hcl", []byte(src))
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	o := session.Options{Registerer: reg}
	for _, opt := range opts {
		opt(&o)
	}
	factory := &localsession.SessionFactory{}
	s, err := factory.NewSession(ctx, doc, registry.New(&components.Module{}), o)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(ctx) })

	return &Harness{T: t, Ctx: ctx, Session: s, Metrics: reg, Logs: logs, Document: doc}
}

// Read resolves one variable, failing the test on error.
func (h *Harness) Read(component, name string) cty.Value {
	h.T.Helper()
	v, err := h.Session.Read(h.Ctx, component, name)
	require.NoError(h.T, err)
	return v
}

// Number resolves one variable as a float.
func (h *Harness) Number(component, name string) float64 {
	h.T.Helper()
	return value.AsFloat(h.Read(component, name))
}

// Do dispatches an action, failing the test on error.
func (h *Harness) Do(component, action string, args cty.Value) {
	h.T.Helper()
	require.NoError(h.T, h.Session.Dispatch(h.Ctx, session.Action{Component: component, Name: action, Args: args}))
}

// Snapshot returns the resolved state of every active component.
func (h *Harness) Snapshot() session.Snapshot {
	h.T.Helper()
	snap, err := h.Session.ReadAllStateVariables(h.Ctx, false, false)
	require.NoError(h.T, err)
	return snap
}
