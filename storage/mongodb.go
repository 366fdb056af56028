package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"collegeportal/config"
	"collegeportal/metrics"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
	"go.uber.org/zap"
)

// MongoDB holds the MongoDB client and database
type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// NewMongoDB creates a new MongoDB connection and verifies it with a ping.
// The database name comes from the URI path when present, otherwise defaultDB is used.
func NewMongoDB(ctx context.Context, uri, defaultDB string) (*MongoDB, error) {
	if uri == "" {
		return nil, ErrMissingConnectionString
	}

	dbName, err := DatabaseName(uri, defaultDB)
	if err != nil {
		return nil, fmt.Errorf("invalid MongoDB connection string: %w", err)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping to verify connection
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		// Stop the driver's background monitors, the handle is never handed out
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoDB{
		Client:   client,
		Database: client.Database(dbName),
	}, nil
}

// DatabaseName extracts the database from a connection string, falling back to defaultDB
func DatabaseName(uri, defaultDB string) (string, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return "", err
	}
	if cs.Database != "" {
		return cs.Database, nil
	}
	return defaultDB, nil
}

// Close closes the MongoDB connection
func (m *MongoDB) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

// Connector makes the single startup connection attempt and remembers its outcome.
// Failures are logged and recorded but never returned to the caller as fatal.
type Connector struct {
	uri       string
	defaultDB string
	timeout   time.Duration
	logger    *zap.SugaredLogger

	once sync.Once
	mu   sync.RWMutex
	db   *MongoDB
	err  error
	done bool
}

// NewConnector creates a connector from the loaded configuration
func NewConnector(cfg *config.Config, logger *zap.SugaredLogger) *Connector {
	return &Connector{
		uri:       cfg.DBString,
		defaultDB: cfg.MongoDB.Database,
		timeout:   cfg.MongoDB.ConnectTimeout,
		logger:    logger,
	}
}

// Connect attempts the connection exactly once; later calls return the first outcome.
func (c *Connector) Connect(ctx context.Context) (*MongoDB, error) {
	c.once.Do(func() {
		db, err := c.attempt(ctx)

		c.mu.Lock()
		c.db, c.err, c.done = db, err, true
		c.mu.Unlock()

		metrics.RecordDatabaseConnect(err)
		if err != nil {
			c.logger.Errorw("MongoDB connection error",
				"error", err,
				"remediation", ClassifyConnectionError(err, config.MaskConnectionString(c.uri)))
			return
		}
		c.logger.Infow("MongoDB connected successfully", "database", db.Database.Name())
	})

	return c.Result()
}

func (c *Connector) attempt(ctx context.Context) (*MongoDB, error) {
	if c.uri == "" {
		return nil, ErrMissingConnectionString
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return NewMongoDB(ctx, c.uri, c.defaultDB)
}

// Result returns the outcome of the attempt. Before Connect has finished it returns nil, nil.
func (c *Connector) Result() (*MongoDB, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db, c.err
}

// Done reports whether the connection attempt has finished
func (c *Connector) Done() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.done
}
