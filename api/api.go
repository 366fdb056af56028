// Package api is the HTTP surface of the college portal server.
//
// It owns the router, the global middleware chain and the handful of handlers
// that live in the server itself: category images, the production frontend
// bundle and the Prometheus endpoint. Everything else is delegated to the
// route groups in package routes.
package api

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"collegeportal/config"
	"collegeportal/routes"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// API holds the API server
type API struct {
	router      *mux.Router
	handler     http.Handler
	server      *http.Server
	serverMu    sync.Mutex
	config      *config.Config
	groups      routes.Set
	logger      *zap.SugaredLogger
	validate    *validator.Validate
	rateLimiter *ipRateLimiter
}

// NewAPI creates a new API server with every route mounted
func NewAPI(cfg *config.Config, groups routes.Set, logger *zap.SugaredLogger) *API {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	a := &API{
		router:   mux.NewRouter(),
		config:   cfg,
		groups:   groups,
		logger:   logger,
		validate: validator.New(),
	}
	if cfg.API.RateLimit.Enabled {
		limiter, err := newIPRateLimiter(cfg.API.RateLimit.RequestsPerSecond, cfg.API.RateLimit.Burst, cfg.API.RateLimit.CacheSize)
		if err != nil {
			logger.Warnw("Rate limiting disabled", "error", err)
		} else {
			a.rateLimiter = limiter
		}
	}
	a.setupRoutes()
	a.handler = a.globalMiddleware(a.router)
	return a
}

// globalMiddleware wraps the router so every response passes through the chain,
// including 404s and preflight requests that never match a route.
// Outermost first.
func (a *API) globalMiddleware(next http.Handler) http.Handler {
	chain := []func(http.Handler) http.Handler{
		a.requestIDMiddleware,
		a.devLoggerMiddleware,
		a.errorRecoveryMiddleware,
		a.corsMiddleware,
		a.rateLimitMiddleware,
		a.jsonBodyMiddleware,
	}
	h := next
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}
	return h
}

// setupRoutes mounts the routes in their fixed order
func (a *API) setupRoutes() {
	a.router.Use(a.metricsMiddleware)
	a.router.NotFoundHandler = instrumentRoute("unmatched", http.NotFoundHandler())

	a.router.HandleFunc(a.config.Prefix("categoryImages")+"/{id}", a.getCategoryImage).
		Methods(http.MethodGet, http.MethodHead)

	for _, group := range a.groups.Groups() {
		a.mountGroup(a.config.Prefix(group.Name), group.Handler)
	}

	a.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	if a.config.IsProduction() {
		a.router.PathPrefix("/").Handler(a.frontendHandler())
	}
}

// mountGroup delegates prefix and everything below it to h with the prefix stripped
func (a *API) mountGroup(prefix string, h http.Handler) {
	stripped := stripGroupPrefix(prefix, h)
	a.router.Handle(prefix, stripped)
	a.router.PathPrefix(prefix + "/").Handler(stripped)
}

// stripGroupPrefix removes prefix from the request path before h sees it.
// The bare prefix is presented to the group as "/".
func stripGroupPrefix(prefix string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := strings.TrimPrefix(r.URL.Path, prefix)
		rp := strings.TrimPrefix(r.URL.RawPath, prefix)
		if p == "" {
			p = "/"
		}
		if r.URL.RawPath != "" && rp == "" {
			rp = "/"
		}

		r2 := new(http.Request)
		*r2 = *r
		r2.URL = new(url.URL)
		*r2.URL = *r.URL
		r2.URL.Path = p
		r2.URL.RawPath = rp
		h.ServeHTTP(w, r2)
	})
}

// Handler returns the fully wrapped handler, used by tests and custom servers
func (a *API) Handler() http.Handler {
	return a.handler
}

func (a *API) newServer(addr string) *http.Server {
	server := &http.Server{
		Addr:              addr,
		Handler:           a.handler,
		ReadHeaderTimeout: a.config.Server.ReadHeaderTimeout,
	}
	a.serverMu.Lock()
	a.server = server
	a.serverMu.Unlock()
	return server
}

// Start starts the API server
func (a *API) Start(addr string) error {
	return a.newServer(addr).ListenAndServe()
}

// Serve serves on an already bound listener
func (a *API) Serve(listener net.Listener) error {
	return a.newServer(listener.Addr().String()).Serve(listener)
}

// Stop stops the API server
func (a *API) Stop(ctx context.Context) error {
	a.serverMu.Lock()
	server := a.server
	a.serverMu.Unlock()
	if server != nil {
		return server.Shutdown(ctx)
	}
	return nil
}

// Close closes the listener and every connection immediately without draining
func (a *API) Close() error {
	a.serverMu.Lock()
	server := a.server
	a.serverMu.Unlock()
	if server != nil {
		return server.Close()
	}
	return nil
}
