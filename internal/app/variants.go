package app

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/specialistvlad/reactidoc/internal/ctxlog"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// RenderVariants renders Variants consecutive variants concurrently and
// writes their commitments as a YAML list ordered by variant index. Each
// variant gets its own session and metrics registry.
func (a *App) RenderVariants(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	base := a.baseVariant()
	a.logger.Info("Rendering variants.", "from", base, "count", a.config.Variants, "workers", a.config.Workers)

	reports := make([]*Report, a.config.Variants)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.config.Workers)
	for i := range a.config.Variants {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := a.render(gctx, base+i, nil, false, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Debug("Variants rendered.", "count", len(reports))
	return yaml.NewEncoder(a.outW).Encode(reports)
}
