package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries the request ID in both directions
const RequestIDHeader = "X-Request-ID"

// requestIDMiddleware adds request ID tracking and timing to all requests.
//
// Behavior:
//   - If X-Request-ID header is present in request, use that value
//   - If not present, generate a new UUID v4
//   - Set X-Request-ID in response headers for client correlation
//   - Store request ID and start time in context for downstream use
func (a *API) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Sanitize request ID to prevent log injection attacks
		requestID := sanitizeRequestID(r.Header.Get(RequestIDHeader))
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, requestID)

		ctx := WithRequestID(r.Context(), requestID)
		ctx = WithTraceStart(ctx, start)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// devLoggerMiddleware writes one access line per request in development mode:
// METHOD URL STATUS CONTENT-LENGTH - RESPONSE-TIME ms
func (a *API) devLoggerMiddleware(next http.Handler) http.Handler {
	if !a.config.IsDevelopment() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := newResponseWriterWrapper(w)

		next.ServeHTTP(wrapped, r)

		a.logger.Info(formatAccessLine(r, wrapped, time.Since(start)))
	})
}

// formatAccessLine renders the terse access log format.
// The length is the Content-Length header, else the bytes written, else "-".
func formatAccessLine(r *http.Request, w *responseWriterWrapper, elapsed time.Duration) string {
	contentLength := w.Header().Get("Content-Length")
	if contentLength == "" {
		contentLength = "-"
		if w.bytesWritten > 0 {
			contentLength = strconv.FormatInt(w.bytesWritten, 10)
		}
	}
	ms := float64(elapsed.Nanoseconds()) / float64(time.Millisecond)
	return fmt.Sprintf("%s %s %d %s - %.3f ms", r.Method, r.URL.RequestURI(), w.statusCode, contentLength, ms)
}

// responseWriterWrapper wraps http.ResponseWriter to capture the status code and body size.
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode   int
	written      bool
	bytesWritten int64
}

func newResponseWriterWrapper(w http.ResponseWriter) *responseWriterWrapper {
	return &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}
}

// WriteHeader captures the status code before writing it.
func (w *responseWriterWrapper) WriteHeader(code int) {
	if !w.written {
		w.statusCode = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

// Write implements http.ResponseWriter.Write and ensures status code is captured.
func (w *responseWriterWrapper) Write(b []byte) (int, error) {
	if !w.written {
		w.statusCode = http.StatusOK
		w.written = true
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += int64(n)
	return n, err
}

// Flush forwards to the underlying writer when it supports streaming
func (w *responseWriterWrapper) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the original writer
func (w *responseWriterWrapper) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// sanitizeRequestID cleans request ID to prevent log injection.
// Only allows alphanumeric characters, dashes, and underscores.
// Truncates to maximum 64 characters to prevent memory issues.
func sanitizeRequestID(id string) string {
	const maxLen = 64

	if id == "" {
		return ""
	}

	if len(id) > maxLen {
		id = id[:maxLen]
	}

	result := make([]byte, 0, len(id))
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c >= 'a' && c <= 'z') ||
			(c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9') ||
			c == '-' || c == '_' {
			result = append(result, c)
		}
	}

	return string(result)
}
