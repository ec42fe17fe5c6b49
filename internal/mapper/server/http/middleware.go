package http

import (
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/autopeer-io/livemapper/internal/pkg/metrics"
	"github.com/autopeer-io/livemapper/pkg/log"
	"github.com/autopeer-io/livemapper/pkg/options"
)

const wildcard = "*"

var allMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

// newCorsHandler translates CorsOptions into an rs/cors policy.
// Browsers reject a literal "*" origin on credentialed requests, so a wildcard
// with credentials echoes the request origin back instead.
func newCorsHandler(opts *options.CorsOptions) *cors.Cors {
	c := cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   opts.AllowedMethods,
		AllowedHeaders:   opts.AllowedHeaders,
		AllowCredentials: opts.AllowCredentials,
	}

	if slices.Contains(opts.AllowedOrigins, wildcard) && opts.AllowCredentials {
		c.AllowedOrigins = nil
		c.AllowOriginFunc = func(string) bool { return true }
	}

	if slices.Contains(opts.AllowedMethods, wildcard) {
		c.AllowedMethods = allMethods
	}

	return cors.New(c)
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument logs every routed request and records its metrics under the
// route template.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		elapsed := time.Since(start)

		metrics.HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(rec.code)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())

		if route == RouteHealthz || route == RouteReadyz || route == RouteMetrics {
			return
		}
		log.Info("HTTP request served",
			"method", r.Method,
			"route", route,
			"code", rec.code,
			"duration", elapsed,
			"remote", r.RemoteAddr,
		)
	})
}
