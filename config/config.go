package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// RuntimeMode selects between development and production behaviour (NODE_ENV).
type RuntimeMode string

const (
	// ModeDevelopment enables the per-request access log
	ModeDevelopment RuntimeMode = "development"
	// ModeProduction enables serving the built frontend with SPA fallback
	ModeProduction RuntimeMode = "production"
)

// DefaultListenPort is the port the HTTP server binds to.
// PORT from the environment is only honored when server.honor_port_env is set.
const DefaultListenPort = 5000

// Environment variable names read at startup.
const (
	EnvAPIVersion = "API_VERSION"
	EnvDBString   = "DB_STRING"
	EnvNodeEnv    = "NODE_ENV"
	EnvPort       = "PORT"
)

// Config holds all configuration for the college portal API server
type Config struct {
	// APIVersion is the path prefix every route group is mounted under, e.g. "/api/v1"
	APIVersion string `mapstructure:"api_version"`
	// DBString is the MongoDB connection URI
	DBString string `mapstructure:"db_string"`
	// NodeEnv is the raw runtime mode
	NodeEnv string `mapstructure:"node_env"`
	// Port is read from the environment as-is, no numeric validation
	Port string `mapstructure:"port"`

	Server struct {
		HonorPortEnv      bool          `mapstructure:"honor_port_env"`
		ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	} `mapstructure:"server"`

	Static struct {
		CategoryImagesDir string `mapstructure:"category_images_dir"`
		ClientBuildDir    string `mapstructure:"client_build_dir"`
	} `mapstructure:"static"`

	MongoDB struct {
		Database       string        `mapstructure:"database"`
		ConnectTimeout time.Duration `mapstructure:"connect_timeout"` // 0 = no timeout
	} `mapstructure:"mongodb"`

	API struct {
		AllowedOrigins []string `mapstructure:"allowed_origins"`
		TrustProxy     bool     `mapstructure:"trust_proxy"`
		RateLimit      struct {
			Enabled           bool `mapstructure:"enabled"`
			RequestsPerSecond int  `mapstructure:"requests_per_second"`
			Burst             int  `mapstructure:"burst"`
			CacheSize         int  `mapstructure:"cache_size"`
		} `mapstructure:"rate_limit"`
	} `mapstructure:"api"`

	Security struct {
		JSONBodyLimit int64 `mapstructure:"json_body_limit"`
	} `mapstructure:"security"`
}

// setDefaults registers defaults for the ambient keys.
// API_VERSION, DB_STRING, NODE_ENV and PORT intentionally have none.
func setDefaults() {
	viper.SetDefault("server.honor_port_env", false)
	viper.SetDefault("server.read_header_timeout", 10*time.Second)
	viper.SetDefault("static.category_images_dir", "categoryImages")
	viper.SetDefault("static.client_build_dir", "client/build")
	viper.SetDefault("mongodb.database", "collegeportal")
	viper.SetDefault("mongodb.connect_timeout", time.Duration(0))
	viper.SetDefault("api.allowed_origins", []string{"*"})
	viper.SetDefault("api.trust_proxy", false)
	viper.SetDefault("api.rate_limit.enabled", false)
	viper.SetDefault("api.rate_limit.requests_per_second", 100)
	viper.SetDefault("api.rate_limit.burst", 100)
	viper.SetDefault("api.rate_limit.cache_size", 10000)
	viper.SetDefault("security.json_body_limit", 100*1024) // 100kb
}

// loadFromEnv sets up environment variable loading
func loadFromEnv() {
	viper.SetEnvPrefix("COLLEGEPORTAL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// The four process variables keep their plain, unprefixed names
	_ = viper.BindEnv("api_version", EnvAPIVersion)
	_ = viper.BindEnv("db_string", EnvDBString)
	_ = viper.BindEnv("node_env", EnvNodeEnv)
	_ = viper.BindEnv("port", EnvPort)
}

// LoadConfig loads configuration from .env, an optional config file and environment variables.
// Missing values are not an error; downstream components decide what an empty value means.
func LoadConfig() (*Config, error) {
	// Existing process variables win over .env entries
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()
	loadFromEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

// Mode returns the runtime mode parsed from NODE_ENV
func (c *Config) Mode() RuntimeMode {
	return RuntimeMode(c.NodeEnv)
}

// IsDevelopment reports whether NODE_ENV is exactly "development"
func (c *Config) IsDevelopment() bool {
	return c.Mode() == ModeDevelopment
}

// IsProduction reports whether NODE_ENV is exactly "production"
func (c *Config) IsProduction() bool {
	return c.Mode() == ModeProduction
}

// HasDBString reports whether a connection string was supplied
func (c *Config) HasDBString() bool {
	return c.DBString != ""
}

// ListenPort returns the port the server binds to and whether PORT was overridden.
// The server listens on DefaultListenPort unless server.honor_port_env is true and PORT parses.
func (c *Config) ListenPort() (port int, portIgnored bool) {
	if c.Port == "" {
		return DefaultListenPort, false
	}
	if c.Server.HonorPortEnv {
		if p, err := strconv.Atoi(c.Port); err == nil && p > 0 && p <= 65535 {
			return p, false
		}
		return DefaultListenPort, true
	}
	return DefaultListenPort, c.Port != strconv.Itoa(DefaultListenPort)
}

// ListenAddr returns the address for net.Listen
func (c *Config) ListenAddr() string {
	port, _ := c.ListenPort()
	return fmt.Sprintf(":%d", port)
}

// Prefix joins the API version prefix with a resource name, e.g. "/api/v1" + "college"
func (c *Config) Prefix(resource string) string {
	return c.APIVersion + "/" + resource
}
