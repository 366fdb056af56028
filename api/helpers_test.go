package api

// Shared test helpers for the api package tests

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"collegeportal/config"
	"collegeportal/routes"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// testConfig returns the configuration LoadConfig would produce with API_VERSION=/api/v1
func testConfig() *config.Config {
	cfg := &config.Config{APIVersion: "/api/v1"}
	cfg.Server.ReadHeaderTimeout = 5 * time.Second
	cfg.Static.CategoryImagesDir = "categoryImages"
	cfg.Static.ClientBuildDir = "client/build"
	cfg.API.AllowedOrigins = []string{"*"}
	cfg.API.RateLimit.RequestsPerSecond = 100
	cfg.API.RateLimit.Burst = 100
	cfg.API.RateLimit.CacheSize = 100
	cfg.Security.JSONBodyLimit = 100 * 1024
	return cfg
}

// newObservedAPI builds an API whose log output can be asserted on
func newObservedAPI(t *testing.T, cfg *config.Config, groups routes.Set, level zapcore.Level) (*API, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(level)
	return NewAPI(cfg, groups, zap.New(core).Sugar()), logs
}

// newTestAPI builds an API with a no-op logger
func newTestAPI(t *testing.T, cfg *config.Config, groups routes.Set) *API {
	t.Helper()
	return NewAPI(cfg, groups, zap.NewNop().Sugar())
}

// do sends a request through the fully wrapped handler
func do(a *API, method, target string, body io.Reader, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	return rec
}

// writeFile creates dir/name with content, creating parent directories
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	full := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
	return full
}

// recordingGroup answers 200 with its own name and remembers the path it saw
type recordingGroup struct {
	name  string
	paths []string
}

func (g *recordingGroup) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.paths = append(g.paths, r.URL.Path)
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte(g.name))
}

// recordingSet binds a recordingGroup to every route group
func recordingSet() (routes.Set, map[string]*recordingGroup) {
	groups := make(map[string]*recordingGroup, len(routes.Names))
	for _, name := range routes.Names {
		groups[name] = &recordingGroup{name: name}
	}
	set := routes.Set{
		College:    groups[routes.College],
		Student:    groups[routes.Student],
		Login:      groups[routes.Login],
		Categories: groups[routes.Categories],
		States:     groups[routes.States],
		Services:   groups[routes.Services],
		City:       groups[routes.City],
	}
	return set, groups
}
