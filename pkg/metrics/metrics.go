// Package metrics provides the Prometheus metrics registry and endpoint for
// the YouTube finder. All metrics are defined in their respective packages
// (keypool, client, pagination, export) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available
// metrics, and the HTTP server that exposes them.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Registry is the default Prometheus registry used by the YouTube finder.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Handler returns the HTTP handler serving /metrics and /health.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", healthHandler)
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// Server exposes Handler on a TCP address for the lifetime of a command.
type Server struct {
	srv    *http.Server
	ln     net.Listener
	logger zerolog.Logger
}

// Listen binds addr and returns a server ready to Serve. Use ":0" for a
// random port.
func Listen(addr string, logger zerolog.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	return &Server{
		srv: &http.Server{
			Handler:           Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		},
		ln:     ln,
		logger: logger,
	}, nil
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Serve serves until ctx is done, then shuts the server down.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.Serve(s.ln)
	}()

	s.logger.Info().Str("addr", s.Addr()).Msg("Metrics server listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown metrics server: %w", err)
	}
	return nil
}

// Metrics Documentation
//
// Key Pool Metrics (pkg/keypool):
//   - ytfinder_key_rotations_total (Counter): Rotations to the next API key
//   - ytfinder_active_key_index (Gauge): Zero-based index of the key in use
//
// Request Metrics (pkg/client):
//   - ytfinder_requests_total{endpoint, status} (Counter): Attempts by API method and HTTP status
//   - ytfinder_request_duration_seconds{endpoint} (Histogram): Attempt duration by API method
//   - ytfinder_errors_total{class} (Counter): Failed attempts by class (credential, request, transport)
//   - ytfinder_pool_exhausted_total (Counter): Calls that failed after every key was tried
//   - ytfinder_probe_results_total{status} (Counter): Probe results (active, exhausted, invalid, indeterminate)
//
// Pagination Metrics (pkg/pagination):
//   - ytfinder_pages_fetched_total{query_kind} (Counter): Result pages fetched
//   - ytfinder_items_fetched_total{query_kind} (Counter): Result items fetched
//   - ytfinder_pagination_aborted_total{query_kind, reason} (Counter): Paginations stopped early
//
// Export Metrics (pkg/export):
//   - ytfinder_thumbnails_total{result} (Counter): Thumbnails by result (maxres, fallback, failed)
//
// Example Prometheus Queries:
//
//   # Quota pressure: rotations per minute
//   rate(ytfinder_key_rotations_total[1m]) * 60
//
//   # Credential failure share
//   sum(rate(ytfinder_errors_total{class="credential"}[5m])) /
//   sum(rate(ytfinder_requests_total[5m]))
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(ytfinder_request_duration_seconds_bucket[5m]))
//
//   # Partial searches
//   increase(ytfinder_pagination_aborted_total[1h])
