package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"collegeportal/metrics"

	"github.com/gorilla/mux"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// ExposedHeaders lists the response headers browsers may read cross-origin.
// The login group returns its token in "auth".
var ExposedHeaders = []string{"auth"}

const corsAllowedMethods = "GET, HEAD, PUT, PATCH, POST, DELETE"

// corsMiddleware adds CORS headers to every response and answers preflight requests
func (a *API) corsMiddleware(next http.Handler) http.Handler {
	exposed := strings.Join(ExposedHeaders, ", ")
	allowAny := false
	for _, allowed := range a.config.API.AllowedOrigins {
		if allowed == "*" {
			allowAny = true
			break
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		if allowAny {
			h.Set("Access-Control-Allow-Origin", "*")
		} else {
			origin := r.Header.Get("Origin")
			for _, allowed := range a.config.API.AllowedOrigins {
				if origin != "" && origin == allowed {
					h.Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
			h.Add("Vary", "Origin")
		}
		h.Set("Access-Control-Expose-Headers", exposed)

		if r.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Methods", corsAllowedMethods)
			if requested := r.Header.Get("Access-Control-Request-Headers"); requested != "" {
				h.Set("Access-Control-Allow-Headers", requested)
				h.Add("Vary", "Access-Control-Request-Headers")
			}
			h.Set("Content-Length", "0")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ipRateLimiter keeps one token bucket per client IP in a bounded LRU cache
type ipRateLimiter struct {
	limiters *lru.Cache[string, *rate.Limiter]
	rps      rate.Limit
	burst    int
}

func newIPRateLimiter(requestsPerSecond, burst, cacheSize int) (*ipRateLimiter, error) {
	if requestsPerSecond <= 0 || burst <= 0 {
		return nil, fmt.Errorf("invalid rate limit: requests_per_second=%d burst=%d", requestsPerSecond, burst)
	}
	cache, err := lru.New[string, *rate.Limiter](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limiter cache: %w", err)
	}
	return &ipRateLimiter{
		limiters: cache,
		rps:      rate.Limit(requestsPerSecond),
		burst:    burst,
	}, nil
}

// Allow reports whether the client may proceed.
// Two first requests racing for the same IP may create two buckets; the loser is dropped.
func (l *ipRateLimiter) Allow(ip string) bool {
	limiter, ok := l.limiters.Get(ip)
	if !ok {
		limiter = rate.NewLimiter(l.rps, l.burst)
		if existing, found, _ := l.limiters.PeekOrAdd(ip, limiter); found {
			limiter = existing
		}
	}
	return limiter.Allow()
}

// rateLimitMiddleware provides rate limiting per IP
func (a *API) rateLimitMiddleware(next http.Handler) http.Handler {
	if a.rateLimiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := getRealIP(r, a.config.API.TrustProxy)
		if !a.rateLimiter.Allow(ip) {
			metrics.RateLimitedRequests.Inc()
			w.Header().Set("Retry-After", "1")
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// isJSONContentType matches application/json and structured +json types
func isJSONContentType(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// isJSONDocument accepts only objects and arrays at the top level, like a strict JSON body parser
func isJSONDocument(body []byte) bool {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
		return false
	}
	return json.Valid(body)
}

// jsonBodyMiddleware reads JSON request bodies up front.
// The raw body is stored in the context and re-attached so route groups can read it again.
func (a *API) jsonBodyMiddleware(next http.Handler) http.Handler {
	limit := a.config.Security.JSONBodyLimit
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body == nil || r.Body == http.NoBody || !isJSONContentType(r.Header.Get("Content-Type")) {
			next.ServeHTTP(w, r)
			return
		}

		reader := io.Reader(r.Body)
		if limit > 0 {
			reader = http.MaxBytesReader(w, r.Body, limit)
		}
		body, err := io.ReadAll(reader)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, "Request body too large", err, a.logger)
				return
			}
			writeError(w, http.StatusBadRequest, "Failed to read request body", err, a.logger)
			return
		}

		if len(bytes.TrimSpace(body)) > 0 {
			if !isJSONDocument(body) {
				writeError(w, http.StatusBadRequest, "Malformed JSON body", nil, a.logger)
				return
			}
			r = r.WithContext(WithJSONBody(r.Context(), json.RawMessage(body)))
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		r.ContentLength = int64(len(body))

		next.ServeHTTP(w, r)
	})
}

// metricsMiddleware records every matched request under its route template
func (a *API) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := "unknown"
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		instrumentRoute(route, next).ServeHTTP(w, r)
	})
}

// instrumentRoute wraps next with request counting and latency under a fixed route label
func instrumentRoute(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := newResponseWriterWrapper(w)
		next.ServeHTTP(wrapped, r)
		metrics.RecordRequest(route, r.Method, wrapped.statusCode, time.Since(start).Seconds())
	})
}
