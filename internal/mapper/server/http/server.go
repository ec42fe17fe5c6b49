package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/autopeer-io/livemapper/internal/pkg/metrics"
	"github.com/autopeer-io/livemapper/pkg/log"
	"github.com/autopeer-io/livemapper/pkg/options"
)

const (
	RouteHealth        = "/"
	RouteVehicleStatus = "/api/vehicle/status"
	RouteHealthz       = "/healthz"
	RouteReadyz        = "/readyz"
	RouteMetrics       = "/metrics"
)

// StatusProvider returns the current vehicle status payload.
// Implemented by service.CachedStatusProxy.
type StatusProvider interface {
	GetVehicleStatus(ctx context.Context) (json.RawMessage, error)
}

// Server is the browser-facing HTTP surface of the mapper.
type Server struct {
	server  *http.Server
	options *options.HttpOptions
}

// NewServer builds the router and wraps it with the CORS policy.
func NewServer(httpOpts *options.HttpOptions, corsOpts *options.CorsOptions, provider StatusProvider) *Server {
	return &Server{
		server: &http.Server{
			Addr:              httpOpts.Addr,
			Handler:           newCorsHandler(corsOpts).Handler(newRouter(provider)),
			ReadHeaderTimeout: httpOpts.ReadHeaderTimeout,
		},
		options: httpOpts,
	}
}

func newRouter(provider StatusProvider) *mux.Router {
	h := &handler{provider: provider}

	r := mux.NewRouter()
	r.Use(instrument)

	r.HandleFunc(RouteHealth, h.health).Methods(http.MethodGet)
	r.HandleFunc(RouteVehicleStatus, h.vehicleStatus).Methods(http.MethodGet)
	r.HandleFunc(RouteHealthz, h.probe).Methods(http.MethodGet)
	r.HandleFunc(RouteReadyz, h.probe).Methods(http.MethodGet)
	r.Handle(RouteMetrics, metrics.Handler()).Methods(http.MethodGet)

	return r
}

// Handler returns the fully wrapped handler. Tests drive it through httptest.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start listens on the configured address and serves until ctx is done,
// then shuts down gracefully within the configured timeout.
func (s *Server) Start(ctx context.Context) error {
	lis, err := net.Listen(s.options.Network, s.options.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on http addr %s: %w", s.options.Addr, err)
	}

	log.Info("Starting HTTP Server", "addr", lis.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
		log.Info("Shutting down HTTP Server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.options.ShutdownTimeout)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}
