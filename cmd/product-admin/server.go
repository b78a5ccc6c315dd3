package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/product-admin/internal/render"
	"github.com/Sternrassler/product-admin/pkg/metrics"
	"github.com/Sternrassler/product-admin/pkg/view"
)

// server holds the dependencies of the HTTP handlers.
type server struct {
	fetcher  view.Fetcher
	renderer *render.Renderer
	redis    *redis.Client // nil without the quota gate
	logger   zerolog.Logger
}

// newRouter registers all routes.
func newRouter(s *server) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(requestLogging(s.logger))
	r.Use(requestMetrics)

	r.Get("/health", healthHandler)
	r.Get("/ready", s.readyHandler)
	r.Get("/metrics", metrics.Handler().ServeHTTP)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/products", http.StatusFound)
	})
	r.Get("/products", s.productsHandler)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// readyHandler reports ready once Redis, when configured, answers a ping.
func (s *server) readyHandler(w http.ResponseWriter, r *http.Request) {
	if s.redis != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.redis.Ping(ctx).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("Readiness check failed")
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, "Redis not ready: %v", err)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "READY")
}

// productsHandler mounts one view per request, loads it under the request
// context and renders the requested page.
func (s *server) productsHandler(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			page = n
		}
	}

	v := view.New()
	defer v.Unmount()

	status := http.StatusOK
	if err := v.Load(r.Context(), s.fetcher); err != nil {
		status = http.StatusBadGateway
	} else {
		v.ChangePage(page)
	}

	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, v, page); err != nil {
		s.logger.Error().Err(err).Str("mount_id", v.MountID()).Msg("Render failed")
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to write response")
	}
}

// requestLogging logs one line per request.
func requestLogging(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", chimw.GetReqID(r.Context())).
				Msg("HTTP request")
		})
	}
}

// requestMetrics counts requests by route pattern and status.
func requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	})
}
