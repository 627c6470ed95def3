package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/reactidoc/internal/config"
	"github.com/specialistvlad/reactidoc/internal/ctxlog"
	"github.com/specialistvlad/reactidoc/internal/localsession"
	"github.com/specialistvlad/reactidoc/internal/registry"
	"github.com/specialistvlad/reactidoc/internal/session"
	"github.com/specialistvlad/reactidoc/internal/variant"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
	document *config.Document
	sessions session.SessionFactory
}

// NewApp is the constructor for the main application. Results are written to
// outW and logs to logW. It loads the document once; every session opened
// by the app instantiates it afresh.
func NewApp(outW, logW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	doc, err := loader.Load(ctx, cfg.DocumentPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	logger.Debug("Document loaded.", "root", doc.Root.Name, "diagnostics", len(doc.Diagnostics))

	if len(modules) == 0 {
		modules = coreModules
	}
	reg := registry.New(modules...)
	logger.Debug("All component modules registered.", "count", len(modules), "types", len(reg.Types()))

	if err := reg.ValidateRegistry(ctx); err != nil {
		return nil, err
	}
	logger.Debug("Registry validation passed.")

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		document: doc,
		sessions: &localsession.SessionFactory{},
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// variantFor returns the variant settings of the session rendering index.
func (a *App) variantFor(index int) *config.Variant {
	v := config.Variant{MaxExcludedFraction: variant.DefaultMaxExcludedFraction}
	if a.document.Variant != nil {
		v = *a.document.Variant
	}
	v.Index = index
	if a.config.Seed != "" {
		v.Seed = a.config.Seed
	}
	return &v
}

// baseVariant is the first variant index the app renders.
func (a *App) baseVariant() int {
	if a.config.OverrideVariant || a.document.Variant == nil {
		return a.config.Variant
	}
	return a.document.Variant.Index
}
