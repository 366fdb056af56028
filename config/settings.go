package config

import (
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const redacted = "xxxxx"

// Setting is one resolved configuration value, used for startup diagnostics and the config command
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// MaskSensitiveSettings returns a copy of config with the connection string credentials masked
func MaskSensitiveSettings(config *Config) *Config {
	masked := *config
	masked.DBString = MaskConnectionString(config.DBString)
	masked.API.AllowedOrigins = append([]string(nil), config.API.AllowedOrigins...)
	return &masked
}

// MaskConnectionString hides the password of a mongodb:// or mongodb+srv:// URI.
// Strings that do not parse as URLs are masked entirely.
func MaskConnectionString(uri string) string {
	if uri == "" {
		return ""
	}
	parsed, err := url.Parse(uri)
	if err != nil || parsed.Host == "" {
		return redacted
	}
	if parsed.User != nil {
		if _, hasPassword := parsed.User.Password(); hasPassword {
			parsed.User = url.UserPassword(parsed.User.Username(), redacted)
		}
	}
	return parsed.String()
}

// Settings lists the resolved configuration in a stable order with secrets masked
func (c *Config) Settings() []Setting {
	masked := MaskSensitiveSettings(c)
	port, ignored := c.ListenPort()
	return []Setting{
		{Key: EnvAPIVersion, Value: masked.APIVersion},
		{Key: EnvDBString, Value: masked.DBString},
		{Key: EnvNodeEnv, Value: masked.NodeEnv},
		{Key: EnvPort, Value: masked.Port},
		{Key: "listen_port", Value: strconv.Itoa(port)},
		{Key: "port_env_ignored", Value: strconv.FormatBool(ignored)},
		{Key: "static.category_images_dir", Value: masked.Static.CategoryImagesDir},
		{Key: "static.client_build_dir", Value: masked.Static.ClientBuildDir},
		{Key: "mongodb.database", Value: masked.MongoDB.Database},
		{Key: "mongodb.connect_timeout", Value: masked.MongoDB.ConnectTimeout.String()},
		{Key: "api.allowed_origins", Value: strings.Join(masked.API.AllowedOrigins, ",")},
		{Key: "api.rate_limit.enabled", Value: strconv.FormatBool(masked.API.RateLimit.Enabled)},
		{Key: "security.json_body_limit", Value: strconv.FormatInt(masked.Security.JSONBodyLimit, 10)},
	}
}

// LogSummary emits the startup diagnostics. The connection string itself is never logged.
func (c *Config) LogSummary(logger *zap.SugaredLogger) {
	logger.Infow("API version", "api_version", c.APIVersion)
	if c.HasDBString() {
		logger.Info("DB_STRING loaded successfully")
	} else {
		logger.Warn("DB_STRING not loaded")
	}
	logger.Infow("Runtime mode", "node_env", c.NodeEnv)

	port, ignored := c.ListenPort()
	logger.Infow("Port", "port_env", c.Port, "listen_port", port)
	if ignored {
		logger.Warnw("PORT from the environment is ignored",
			"port_env", c.Port,
			"listen_port", port,
			"remediation", "set COLLEGEPORTAL_SERVER_HONOR_PORT_ENV=true to listen on a numeric PORT")
	}
}
