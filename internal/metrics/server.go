package metrics

import (
	"net/http"
	"time"

	"farmacia-catalogo/pkg/logger"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewServer returns the /metrics server on its own port, or nil when port is empty.
// The caller owns its lifecycle.
func NewServer(port string) *http.Server {
	if port == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	return &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// Start runs srv in the background. ErrServerClosed on shutdown is not an error.
func Start(srv *http.Server) {
	if srv == nil {
		return
	}
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("Metrics server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("Metrics server failed")
		}
	}()
}
