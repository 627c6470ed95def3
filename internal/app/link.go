package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/specialistvlad/reactidoc/internal/ctxlog"
	"github.com/specialistvlad/reactidoc/internal/hostlink"
	"github.com/specialistvlad/reactidoc/internal/session"
)

// Link opens a session and relays it to the host at HostURL until ctx is
// cancelled.
func (a *App) Link(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	if a.config.HostURL == "" {
		return errors.New("a host URL is required to link a document")
	}

	reg := prometheus.NewRegistry()
	s, err := a.sessions.NewSession(ctx, a.document, a.registry, session.Options{
		Variant:       a.variantFor(a.baseVariant()),
		DisplayDigits: a.config.DisplayDigits,
		Registerer:    reg,
	})
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	if a.config.HealthcheckPort > 0 {
		srv := a.startHealthcheckServer(a.config.HealthcheckPort, reg)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Error("Health check server shutdown failed", "error", err)
			}
		}()
	}

	conn, err := hostlink.Dial(ctx, hostlink.Config{
		URL:                a.config.HostURL,
		Namespace:          a.config.Namespace,
		InsecureSkipVerify: a.config.InsecureSkipVerify,
		ConnectTimeout:     a.config.ConnectTimeout,
	})
	if err != nil {
		return err
	}
	defer conn.Disconnect()

	if err := hostlink.New(conn, s).Start(ctx); err != nil {
		return fmt.Errorf("failed to start relay: %w", err)
	}
	a.logger.Info("Document linked.", "session", s.ID(), "sid", conn.Id())

	<-ctx.Done()
	a.logger.Info("Unlinking document.")
	return nil
}
