package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// healthHandler answers liveness probes while a document is linked.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// newMonitoringMux serves /health and the session metrics on /metrics.
func (a *App) newMonitoringMux(reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return mux
}

// startHealthcheckServer runs the monitoring server until it is shut down.
func (a *App) startHealthcheckServer(port int, reg *prometheus.Registry) *http.Server {
	a.logger.Debug("Configuring health check server.")
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: a.newMonitoringMux(reg),
	}
	go func() {
		a.logger.Info("Health check server starting", "address", fmt.Sprintf("http://localhost%s/health", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Health check server failed", "error", err)
		}
	}()
	return srv
}
