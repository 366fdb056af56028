package api

import (
	"fmt"
	"net"
	"net/http"
	"runtime"
	"strings"

	"collegeportal/metrics"
)

// errorRecoveryMiddleware turns panics in route groups into a sanitized 500.
// The stack trace is logged server-side only and never sent to the client.
func (a *API) errorRecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}

				stackBuf := make([]byte, 4096)
				stackLen := runtime.Stack(stackBuf, false)

				path := sanitizePath(r.URL.Path)
				a.logger.Errorw("PANIC RECOVERED",
					"error", fmt.Sprintf("%v", err),
					"request_id", GetRequestIDOrDefault(r.Context()),
					"method", r.Method,
					"path", path,
					"client_ip", getRealIP(r, a.config.API.TrustProxy),
					"stack_trace", string(stackBuf[:stackLen]),
				)

				metrics.APIPanicsRecovered.WithLabelValues(r.Method, routeGroupOf(path)).Inc()

				writeError(w, http.StatusInternalServerError, "Internal server error", fmt.Errorf("panic: %v", err), a.logger)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// routeGroupOf reduces a path to its first two segments to keep metric cardinality bounded
func routeGroupOf(path string) string {
	parts := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 3)
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return "/" + strings.Join(parts, "/")
}

// getRealIP extracts the real client IP from the request, considering proxy trust settings
func getRealIP(r *http.Request, trustProxy bool) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}
	if !trustProxy {
		return directIP
	}

	// X-Forwarded-For can contain multiple IPs, take the first one (original client)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ip := strings.TrimSpace(strings.Split(xff, ",")[0])
		if ip != "" && net.ParseIP(ip) != nil {
			return ip
		}
	}

	// X-Real-IP is set by nginx
	if xri := r.Header.Get("X-Real-IP"); xri != "" && net.ParseIP(xri) != nil {
		return xri
	}

	return directIP
}
