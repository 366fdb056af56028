package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"collegeportal/api"
	"collegeportal/config"
	"collegeportal/routes"
	"collegeportal/storage"
	"collegeportal/util/goroutine"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// ErrAlreadyStarted is returned when Start is called twice
var ErrAlreadyStarted = errors.New("application already started")

// App represents the college portal server with all its components.
type App struct {
	// Configuration
	Config *config.Config
	Logger *zap.Logger
	Sugar  *zap.SugaredLogger

	// Services
	APIServer *api.API
	Connector *storage.Connector

	// Readiness reports startup progress; nothing waits on it
	Readiness *Readiness

	groups     routes.Set
	listener   net.Listener
	listenerMu sync.Mutex
	closed     bool

	// Lifecycle
	serviceWg *sync.WaitGroup
	errCh     chan error
	started   atomic.Bool
}

// Option customizes an App before its components are built
type Option func(*App)

// WithRoutes supplies the route group handlers
func WithRoutes(groups routes.Set) Option {
	return func(a *App) { a.groups = groups }
}

// WithConfig skips LoadConfig and uses cfg as is
func WithConfig(cfg *config.Config) Option {
	return func(a *App) { a.Config = cfg }
}

// WithLogger replaces the default stdout logger
func WithLogger(logger *zap.Logger) Option {
	return func(a *App) { a.Logger = logger }
}

// WithListener serves on an already bound listener instead of the configured port
func WithListener(listener net.Listener) Option {
	return func(a *App) { a.listener = listener }
}

// NewApp creates a new application instance and initializes all components.
// No network work happens here; see Start.
func NewApp(opts ...Option) (*App, error) {
	app := &App{
		Readiness: newReadiness(),
		serviceWg: &sync.WaitGroup{},
		errCh:     make(chan error, 1),
	}
	for _, opt := range opts {
		opt(app)
	}

	// Configuration comes first so the logger can pick its encoder from NODE_ENV
	loadedConfig := app.Config == nil
	if loadedConfig {
		cfg, err := InitConfig()
		if err != nil {
			return nil, err
		}
		app.Config = cfg
	}

	if app.Logger == nil {
		logger, _, err := InitLogger(app.Config.IsProduction())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		app.Logger = logger
	}
	app.Sugar = app.Logger.Sugar()

	app.Sugar.Info("College portal API starting...")
	if loadedConfig && viper.ConfigFileUsed() == "" {
		app.Sugar.Info("No config file found, using defaults and env vars")
	}
	app.Config.LogSummary(app.Sugar)

	app.APIServer = api.NewAPI(app.Config, app.groups, app.Sugar)
	app.Connector = storage.NewConnector(app.Config, app.Sugar)

	return app, nil
}

// Start launches the database connector and the HTTP listener as two independent goroutines.
// Neither waits for the other; a failed database connection leaves the listener running.
func (a *App) Start(ctx context.Context) error {
	if !a.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	goroutine.Go(a.serviceWg, "mongodb-connector", a.Sugar, func() {
		var err error
		defer func() { a.Readiness.markDatabaseSettled(err) }()
		_, err = a.Connector.Connect(ctx)
	})

	goroutine.Go(a.serviceWg, "http-listener", a.Sugar, a.serve)

	return nil
}

// serve binds the listener if needed and blocks in the HTTP server
func (a *App) serve() {
	a.listenerMu.Lock()
	listener, closed := a.listener, a.closed
	a.listenerMu.Unlock()
	if closed {
		return
	}
	if listener == nil {
		addr := a.Config.ListenAddr()
		l, err := net.Listen("tcp", addr)
		if err != nil {
			a.Sugar.Errorw("Failed to bind HTTP listener", "addr", addr, "error", err)
			a.reportError(fmt.Errorf("failed to listen on %s: %w", addr, err))
			return
		}

		// Close may have run while we were binding
		a.listenerMu.Lock()
		if a.closed {
			a.listenerMu.Unlock()
			_ = l.Close()
			return
		}
		a.listener = l
		a.listenerMu.Unlock()
		listener = l
	}

	a.Sugar.Infof("Server is running on PORT %d", listenerPort(listener.Addr()))
	a.Readiness.markListenerBound(listener.Addr())

	if err := a.APIServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) && !a.isClosed() {
		a.Sugar.Errorw("HTTP server stopped", "error", err)
		a.reportError(fmt.Errorf("HTTP server failed: %w", err))
	}
}

func (a *App) isClosed() bool {
	a.listenerMu.Lock()
	defer a.listenerMu.Unlock()
	return a.closed
}

// reportError delivers the first fatal listener error; later ones are dropped
func (a *App) reportError(err error) {
	select {
	case a.errCh <- err:
	default:
	}
}

// listenerPort extracts the TCP port, or 0 for non-TCP listeners
func listenerPort(addr net.Addr) int {
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return tcp.Port
	}
	return 0
}

// Errors delivers listener failures other than a normal close
func (a *App) Errors() <-chan error {
	return a.errCh
}

// Run starts the application and blocks until SIGINT/SIGTERM, ctx cancellation or a listener error.
// There is no draining: the process is expected to exit right after Run returns.
func (a *App) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}
	return a.WaitForShutdown(ctx)
}

// WaitForShutdown blocks until a shutdown signal is received.
func (a *App) WaitForShutdown(ctx context.Context) error {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(c)

	select {
	case sig := <-c:
		a.Sugar.Infow("Received signal, exiting", "signal", sig.String())
		return nil
	case err := <-a.errCh:
		return err
	case <-ctx.Done():
		return nil
	}
}

// Close stops accepting connections and waits for the startup goroutines to return.
// It is safe to call before the listener is bound. The MongoDB handle is left to process exit.
func (a *App) Close() error {
	a.listenerMu.Lock()
	a.closed = true
	a.listenerMu.Unlock()

	err := a.APIServer.Close()

	// Serve may not have registered its server yet
	a.listenerMu.Lock()
	if a.listener != nil {
		_ = a.listener.Close()
	}
	a.listenerMu.Unlock()

	a.serviceWg.Wait()
	return err
}
