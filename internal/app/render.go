package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/specialistvlad/reactidoc/internal/ctxlog"
	"github.com/specialistvlad/reactidoc/internal/hostlink"
	"github.com/specialistvlad/reactidoc/internal/session"
	"github.com/specialistvlad/reactidoc/internal/value"
	"gopkg.in/yaml.v3"
)

// Report is the rendered state of one variant.
type Report struct {
	Session     string                    `yaml:"session"`
	Variant     int                       `yaml:"variant"`
	Seed        string                    `yaml:"seed,omitempty"`
	Commitments map[string]any            `yaml:"commitments,omitempty"`
	State       map[string]map[string]any `yaml:"state,omitempty"`
	Diagnostics []map[string]any          `yaml:"diagnostics,omitempty"`
}

// Render opens one session, replays the action script, if any, and writes
// the resulting state as YAML.
func (a *App) Render(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	var actions []session.Action
	if a.config.ActionsPath != "" {
		var err error
		if actions, err = ReadScriptFile(a.config.ActionsPath); err != nil {
			return err
		}
		a.logger.Debug("Action script loaded.", "actions", len(actions))
	}

	report, err := a.render(ctx, a.baseVariant(), actions, true, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	return yaml.NewEncoder(a.outW).Encode(report)
}

// render produces the report of one variant. Without withState only the
// commitments and diagnostics are kept.
func (a *App) render(ctx context.Context, index int, actions []session.Action, withState bool, reg prometheus.Registerer) (*Report, error) {
	v := a.variantFor(index)
	s, err := a.sessions.NewSession(ctx, a.document, a.registry, session.Options{
		Variant:       v,
		DisplayDigits: a.config.DisplayDigits,
		Registerer:    reg,
	})
	if err != nil {
		return nil, fmt.Errorf("variant %d: %w", index, err)
	}
	defer s.Close(ctx)

	for i, act := range actions {
		if err := s.Dispatch(ctx, act); err != nil {
			return nil, fmt.Errorf("script action %d: %w", i+1, err)
		}
	}

	report := &Report{
		Session:     s.ID(),
		Variant:     v.Index,
		Seed:        v.Seed,
		Commitments: map[string]any{},
		Diagnostics: hostlink.EncodeDiagnostics(s.Diagnostics()),
	}
	for addr, val := range s.Commitments() {
		report.Commitments[addr] = value.ToGo(val)
	}
	if withState {
		snap, err := s.ReadAllStateVariables(ctx, a.config.IncludeStale, a.config.ForDisplay)
		if err != nil {
			return nil, err
		}
		report.State = make(map[string]map[string]any, len(snap))
		for addr, vars := range snap {
			out := make(map[string]any, len(vars))
			for name, val := range vars {
				out[name] = value.ToGo(val)
			}
			report.State[addr] = out
		}
	}
	return report, nil
}
