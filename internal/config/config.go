package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// KnownBackends lists the window probe backends the tracker can drive.
var KnownBackends = []string{"hyprland", "sway", "x11"}

// Config holds all configuration options for the focus tracker
type Config struct {
	Database    DatabaseConfig
	Tracker     TrackerConfig
	Server      ServerConfig
	Logging     LoggingConfig
	Application ApplicationConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Dir            string        `env:"FT_DB_DIR"`
	Filename       string        `env:"FT_DB_FILENAME"`
	QueryTimeout   time.Duration `env:"FT_DB_QUERY_TIMEOUT"`
	WriteTimeout   time.Duration `env:"FT_DB_WRITE_TIMEOUT"`
	DirPermissions uint32        `env:"FT_DB_DIR_PERMISSIONS"`
}

// TrackerConfig controls sampling and session segmentation
type TrackerConfig struct {
	PollInterval       time.Duration `env:"FT_POLL_INTERVAL"`
	IdleTimeout        time.Duration `env:"FT_IDLE_TIMEOUT"`
	ProbeTimeout       time.Duration `env:"FT_PROBE_TIMEOUT"`
	CheckpointInterval time.Duration `env:"FT_CHECKPOINT_INTERVAL"`
	TrackWindowTitles  bool          `env:"FT_TRACK_WINDOW_TITLES"`
	Backends           []string      `env:"FT_PROBE_BACKENDS"`
	Timezone           string        `env:"FT_TIMEZONE"`
}

// ServerConfig holds the HTTP listener configuration
type ServerConfig struct {
	Host            string        `env:"FT_SERVER_HOST"`
	Port            int           `env:"FT_SERVER_PORT"`
	ShutdownTimeout time.Duration `env:"FT_SHUTDOWN_TIMEOUT"`
}

// LoggingConfig holds structured logging configuration
type LoggingConfig struct {
	Level  string `env:"FT_LOG_LEVEL"`
	Format string `env:"FT_LOG_FORMAT"`
	File   string `env:"FT_LOG_FILE"`
}

// ApplicationConfig holds settings for the client commands
type ApplicationConfig struct {
	Timeout   time.Duration `env:"FT_APP_TIMEOUT"`
	ServerURL string        `env:"FT_SERVER_URL"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Database: DatabaseConfig{
			Dir:            filepath.Join(homeDir, ".ft"),
			Filename:       "ft.db",
			QueryTimeout:   10 * time.Second,
			WriteTimeout:   5 * time.Second,
			DirPermissions: 0755,
		},
		Tracker: TrackerConfig{
			PollInterval:       2 * time.Second,
			IdleTimeout:        5 * time.Minute,
			ProbeTimeout:       time.Second,
			CheckpointInterval: 30 * time.Second,
			TrackWindowTitles:  true,
			Backends:           slices.Clone(KnownBackends),
		},
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8000,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Application: ApplicationConfig{
			Timeout:   60 * time.Second,
			ServerURL: "http://127.0.0.1:8000",
		},
	}
}

// GetDatabasePath returns the full path to the database file
func (c *Config) GetDatabasePath() string {
	return filepath.Join(c.Database.Dir, c.Database.Filename)
}

// GetQueryTimeout returns the database query timeout
func (c *Config) GetQueryTimeout() time.Duration {
	return c.Database.QueryTimeout
}

// GetWriteTimeout returns the database write timeout
func (c *Config) GetWriteTimeout() time.Duration {
	return c.Database.WriteTimeout
}

// ListenAddr returns the host:port the HTTP server binds to
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// Location returns the time zone used for day buckets. An empty timezone
// means the system local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Tracker.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Tracker.Timezone)
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() error {
	if dir := os.Getenv("FT_DB_DIR"); dir != "" {
		c.Database.Dir = dir
	}
	if filename := os.Getenv("FT_DB_FILENAME"); filename != "" {
		c.Database.Filename = filename
	}
	if err := envDuration("FT_DB_QUERY_TIMEOUT", &c.Database.QueryTimeout); err != nil {
		return err
	}
	if err := envDuration("FT_DB_WRITE_TIMEOUT", &c.Database.WriteTimeout); err != nil {
		return err
	}
	if perms := os.Getenv("FT_DB_DIR_PERMISSIONS"); perms != "" {
		p, err := strconv.ParseUint(perms, 8, 32)
		if err != nil {
			return &ConfigError{Field: "FT_DB_DIR_PERMISSIONS", Message: "must be an octal permission mask"}
		}
		c.Database.DirPermissions = uint32(p)
	}

	// Tracker
	if err := envDuration("FT_POLL_INTERVAL", &c.Tracker.PollInterval); err != nil {
		return err
	}
	if err := envDuration("FT_IDLE_TIMEOUT", &c.Tracker.IdleTimeout); err != nil {
		return err
	}
	if err := envDuration("FT_PROBE_TIMEOUT", &c.Tracker.ProbeTimeout); err != nil {
		return err
	}
	if err := envDuration("FT_CHECKPOINT_INTERVAL", &c.Tracker.CheckpointInterval); err != nil {
		return err
	}
	if titles := os.Getenv("FT_TRACK_WINDOW_TITLES"); titles != "" {
		b, err := strconv.ParseBool(titles)
		if err != nil {
			return &ConfigError{Field: "FT_TRACK_WINDOW_TITLES", Message: "must be a boolean"}
		}
		c.Tracker.TrackWindowTitles = b
	}
	if backends := os.Getenv("FT_PROBE_BACKENDS"); backends != "" {
		c.Tracker.Backends = SplitList(backends)
	}
	if tz := os.Getenv("FT_TIMEZONE"); tz != "" {
		c.Tracker.Timezone = tz
	}

	// Server
	if host := os.Getenv("FT_SERVER_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("FT_SERVER_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return &ConfigError{Field: "FT_SERVER_PORT", Message: "must be an integer"}
		}
		c.Server.Port = p
	}
	if err := envDuration("FT_SHUTDOWN_TIMEOUT", &c.Server.ShutdownTimeout); err != nil {
		return err
	}

	// Logging
	if level := os.Getenv("FT_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if format := os.Getenv("FT_LOG_FORMAT"); format != "" {
		c.Logging.Format = format
	}
	if file := os.Getenv("FT_LOG_FILE"); file != "" {
		c.Logging.File = file
	}

	// Application
	if err := envDuration("FT_APP_TIMEOUT", &c.Application.Timeout); err != nil {
		return err
	}
	if url := os.Getenv("FT_SERVER_URL"); url != "" {
		c.Application.ServerURL = url
	}

	return nil
}

func envDuration(name string, target *time.Duration) error {
	raw := os.Getenv(name)
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return &ConfigError{Field: name, Message: fmt.Sprintf("invalid duration %q", raw)}
	}
	*target = d
	return nil
}

// SplitList splits a comma separated list, dropping empty items.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	if c.Database.Dir == "" {
		return &ConfigError{Field: "database.dir", Message: "database directory cannot be empty"}
	}
	if c.Database.Filename == "" {
		return &ConfigError{Field: "database.filename", Message: "database filename cannot be empty"}
	}
	if c.Database.QueryTimeout <= 0 {
		return &ConfigError{Field: "database.query_timeout", Message: "query timeout must be positive"}
	}
	if c.Database.WriteTimeout <= 0 {
		return &ConfigError{Field: "database.write_timeout", Message: "write timeout must be positive"}
	}

	if c.Tracker.PollInterval <= 0 {
		return &ConfigError{Field: "tracker.poll_interval", Message: "poll interval must be positive"}
	}
	if c.Tracker.IdleTimeout < c.Tracker.PollInterval {
		return &ConfigError{Field: "tracker.idle_timeout", Message: "idle timeout must be at least one poll interval"}
	}
	if c.Tracker.ProbeTimeout <= 0 || c.Tracker.ProbeTimeout >= c.Tracker.PollInterval {
		return &ConfigError{Field: "tracker.probe_timeout", Message: "probe timeout must be positive and shorter than the poll interval"}
	}
	if c.Tracker.CheckpointInterval < 0 {
		return &ConfigError{Field: "tracker.checkpoint_interval", Message: "checkpoint interval cannot be negative"}
	}
	for _, b := range c.Tracker.Backends {
		if !slices.Contains(KnownBackends, b) {
			return &ConfigError{Field: "tracker.backends", Message: fmt.Sprintf("unknown backend %q (known: %s)", b, strings.Join(KnownBackends, ", "))}
		}
	}
	if _, err := c.Location(); err != nil {
		return &ConfigError{Field: "tracker.timezone", Message: err.Error()}
	}

	if c.Server.Host == "" {
		return &ConfigError{Field: "server.host", Message: "host cannot be empty"}
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return &ConfigError{Field: "server.port", Message: "port must be between 1 and 65535"}
	}
	if c.Server.ShutdownTimeout <= 0 {
		return &ConfigError{Field: "server.shutdown_timeout", Message: "shutdown timeout must be positive"}
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return &ConfigError{Field: "logging.level", Message: "level must be one of debug, info, warn, error"}
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "format must be text or json"}
	}

	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}
	if c.Application.ServerURL == "" {
		return &ConfigError{Field: "application.server_url", Message: "server url cannot be empty"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
