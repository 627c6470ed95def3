// Package localsession provides a concrete implementation of the session.Session
// and session.SessionFactory interfaces for local, in-process resolution.
package localsession

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/reactidoc/internal/config"
	"github.com/specialistvlad/reactidoc/internal/ctxlog"
	"github.com/specialistvlad/reactidoc/internal/engine"
	"github.com/specialistvlad/reactidoc/internal/graph"
	"github.com/specialistvlad/reactidoc/internal/inmemorystore"
	"github.com/specialistvlad/reactidoc/internal/inmemorytopology"
	"github.com/specialistvlad/reactidoc/internal/metrics"
	"github.com/specialistvlad/reactidoc/internal/registry"
	"github.com/specialistvlad/reactidoc/internal/session"
	"github.com/specialistvlad/reactidoc/internal/topologystore"
	"github.com/specialistvlad/reactidoc/internal/value"
	"github.com/specialistvlad/reactidoc/internal/variant"
	"github.com/zclconf/go-cty/cty"
)

// SessionFactory implements session.SessionFactory for local runs.
type SessionFactory struct{}

// NewSession loads doc into a fresh engine and resolves it.
func (f *SessionFactory) NewSession(
	ctx context.Context,
	doc *config.Document,
	reg *registry.Registry,
	opts session.Options,
) (session.Session, error) {
	if doc == nil || doc.Root == nil {
		return nil, errors.New("document has no root component")
	}
	id := uuid.NewString()
	logger := ctxlog.FromContext(ctx).With("session", id)
	ctx = ctxlog.WithLogger(ctx, logger)

	v := config.Variant{MaxExcludedFraction: variant.DefaultMaxExcludedFraction}
	if doc.Variant != nil {
		v = *doc.Variant
	}
	if opts.Variant != nil {
		v = *opts.Variant
	}
	if v.MaxExcludedFraction <= 0 {
		v.MaxExcludedFraction = variant.DefaultMaxExcludedFraction
	}
	if opts.DisplayDigits <= 0 {
		opts.DisplayDigits = session.DefaultDisplayDigits
	}

	m := metrics.New(opts.Registerer)
	sampler := variant.New(variant.Config{
		Index:               v.Index,
		Seed:                v.Seed,
		MaxExcludedFraction: v.MaxExcludedFraction,
		Samples:             m.Samples,
	})
	eng := engine.New(engine.Config{
		Graph:    graph.New(inmemorytopology.New(), inmemorystore.New()),
		Registry: reg,
		Sampler:  sampler,
		Metrics:  m,
	})

	s := &Session{
		id:       id,
		engine:   eng,
		sampler:  sampler,
		metrics:  m,
		digits:   opts.DisplayDigits,
		loadDiag: doc.Diagnostics,
	}
	root, err := eng.Load(ctx, doc.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate document: %w", err)
	}
	s.root = root
	// Children of replacement groups exist only once their parent is
	// read, so the whole active tree is forced to expand the document and
	// collect its diagnostics up front.
	s.resolve(ctx)
	logger.Debug("Session loaded.", "components", len(eng.Graph().Topology().All()), "variant", v.Index, "diagnostics", len(s.diagnostics()))
	return s, nil
}

// Session implements session.Session for local runs.
type Session struct {
	mu       sync.Mutex
	id       string
	engine   *engine.Engine
	sampler  *variant.Sampler
	metrics  *metrics.Metrics
	root     *topologystore.Component
	digits   int
	loadDiag hcl.Diagnostics
	closed   bool
}

// ID returns the session's identifier.
func (s *Session) ID() string { return s.id }

// Dispatch runs one action on the component at a.Component.
func (s *Session) Dispatch(ctx context.Context, a session.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return session.ErrClosed
	}
	logger := ctxlog.FromContext(ctx).With("session", s.id, "component", a.Component, "action", a.Name)
	ctx = ctxlog.WithLogger(ctx, logger)

	c, ok := s.engine.Graph().Topology().ByAddress(a.Component)
	if !ok {
		s.metrics.Actions.WithLabelValues(a.Name, "rejected").Inc()
		return fmt.Errorf("%w: '%s'", session.ErrUnknownComponent, a.Component)
	}
	act, ok := s.engine.TypeOf(c).Actions[a.Name]
	if !ok {
		s.metrics.Actions.WithLabelValues(a.Name, "rejected").Inc()
		return fmt.Errorf("%w: '%s' on %s '%s'", session.ErrUnknownAction, a.Name, c.Type, a.Component)
	}

	args := a.Args
	if args == cty.NilVal {
		args = cty.NullVal(cty.DynamicPseudoType)
	}
	start := time.Now()
	err := act(s.engine.Writer(ctx, c), args)
	// Re-expand after the write so that Diagnostics reflects the new state.
	s.resolve(ctx)
	s.metrics.ActionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.Actions.WithLabelValues(a.Name, "error").Inc()
		logger.Debug("Action failed.", "error", err)
		return fmt.Errorf("action '%s' on '%s': %w", a.Name, a.Component, err)
	}
	s.metrics.Actions.WithLabelValues(a.Name, "ok").Inc()
	logger.Debug("Action resolved.")
	return nil
}

// ReadAllStateVariables snapshots the document.
func (s *Session) ReadAllStateVariables(ctx context.Context, includeStale, forDisplay bool) (session.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, session.ErrClosed
	}

	var comps []*topologystore.Component
	if includeStale {
		comps = s.engine.Graph().Topology().All()
	} else {
		comps = s.resolve(ctx)
	}

	out := make(session.Snapshot, len(comps))
	for _, c := range comps {
		t := s.engine.TypeOf(c)
		vars := make(map[string]cty.Value, len(t.Order))
		for _, name := range t.Order {
			if t.Defs[name].Hidden {
				continue
			}
			var v cty.Value
			if includeStale {
				val, _, ok := s.engine.Peek(c.ID, name)
				if !ok {
					continue
				}
				v = val
			} else {
				v = s.engine.Read(ctx, c.ID, name)
			}
			if forDisplay {
				v = value.Display(v, s.digits)
			}
			vars[name] = v
		}
		out[c.Addr.String()] = vars
	}
	return out, nil
}

// Read resolves one variable of the component at address component.
func (s *Session) Read(ctx context.Context, component, name string) (cty.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return cty.NilVal, session.ErrClosed
	}
	c, ok := s.engine.Graph().Topology().ByAddress(component)
	if !ok {
		return cty.NilVal, fmt.Errorf("%w: '%s'", session.ErrUnknownComponent, component)
	}
	if _, ok := s.engine.TypeOf(c).Def(name); !ok {
		return cty.NilVal, fmt.Errorf("%s '%s' has no variable '%s'", c.Type, component, name)
	}
	return s.engine.Read(ctx, c.ID, name), nil
}

// Diagnostics returns the load diagnostics followed by those found while
// resolving.
func (s *Session) Diagnostics() hcl.Diagnostics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.diagnostics()
}

func (s *Session) diagnostics() hcl.Diagnostics {
	out := make(hcl.Diagnostics, 0, len(s.loadDiag))
	out = append(out, s.loadDiag...)
	return append(out, s.engine.Diagnostics()...)
}

// Commitments returns the committed random draws.
func (s *Session) Commitments() map[string]cty.Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]cty.Value)
	for _, addr := range s.sampler.Commitments() {
		v, _ := s.sampler.Committed(addr)
		out[addr] = v
	}
	return out
}

// Close discards the document.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return session.ErrClosed
	}
	s.closed = true
	ctxlog.FromContext(ctx).Debug("Session closed.", "session", s.id)
	return nil
}

// resolve reads every variable of every active component, parents first,
// and returns the components visited. Reading a parent's children variable
// is what instantiates a replacement group, so this walk is also what
// discovers new components and surfaces their diagnostics. Reads stay lazy
// below the session: the engine computes nothing resolve does not ask for.
func (s *Session) resolve(ctx context.Context) []*topologystore.Component {
	r := s.engine.Writer(ctx, s.root)
	var visited []*topologystore.Component
	var visit func(c *topologystore.Component)
	visit = func(c *topologystore.Component) {
		visited = append(visited, c)
		for _, name := range s.engine.TypeOf(c).Order {
			s.engine.Read(ctx, c.ID, name)
		}
		for _, ch := range r.ActiveChildren(c.ID) {
			visit(ch)
		}
	}
	visit(s.root)
	return visited
}

var (
	_ session.Session        = (*Session)(nil)
	_ session.SessionFactory = (*SessionFactory)(nil)
)
