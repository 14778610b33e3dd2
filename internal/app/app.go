// Package app assembles the HTTP application: middleware, routes and the
// terminal error translator.
package app

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"bookstore/internal/apperr"
	"bookstore/internal/book"
	"bookstore/internal/httpx"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures the router.
type Options struct {
	Logger         *slog.Logger
	Books          *book.Service
	DB             Pinger
	MaxBodyBytes   int64
	RateLimitRPS   float64
	RateLimitBurst int
	AllowedOrigins []string
	EnableHSTS     bool
}

// App is the assembled HTTP handler.
type App struct {
	router  *chi.Mux
	limiter *httpx.RateLimitMiddleware
}

// New wires middleware and mounts every route.
func New(opts Options) *App {
	a := &App{
		router:  chi.NewRouter(),
		limiter: httpx.NewRateLimitMiddleware(opts.RateLimitRPS, opts.RateLimitBurst),
	}

	a.router.Use(middleware.RealIP)
	a.router.Use(httpx.RequestIDMiddleware(opts.Logger))
	a.router.Use(httpx.AccessLogMiddleware)
	a.router.Use(httpx.RecoveryMiddleware)
	a.router.Use(httpx.SecurityHeadersMiddleware(opts.EnableHSTS))
	a.router.Use(httpx.CORSMiddleware(opts.AllowedOrigins))
	a.router.Use(a.limiter.Middleware)
	a.router.Use(httpx.RequestSizeLimitMiddleware(opts.MaxBodyBytes))

	a.router.NotFound(httpx.Handle(func(w http.ResponseWriter, r *http.Request) error {
		return apperr.NotFound("route not found")
	}))
	a.router.MethodNotAllowed(httpx.Handle(func(w http.ResponseWriter, r *http.Request) error {
		w.Header().Set("Allow", strings.Join(a.allowedMethods(r.URL.Path), ", "))
		return apperr.New(apperr.KindMethodNotAllowed, "method not allowed")
	}))

	a.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	a.router.Get("/readyz", httpx.Handle(func(w http.ResponseWriter, r *http.Request) error {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := opts.DB.Ping(ctx); err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "db not ready"})
			return nil
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return nil
	}))

	a.router.Route("/books", book.NewHTTPHandler(opts.Books).Routes)

	return a
}

var routeMethods = []string{
	http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete,
}

// allowedMethods lists the methods registered for path.
func (a *App) allowedMethods(path string) []string {
	var allowed []string
	for _, m := range routeMethods {
		if a.router.Match(chi.NewRouteContext(), m, path) {
			allowed = append(allowed, m)
		}
	}
	return allowed
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Close stops background work owned by the router.
func (a *App) Close() {
	a.limiter.Stop()
}
