package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names the environment variable pointing at a config file.
const ConfigFileEnv = "FT_CONFIG"

// Loader handles loading configuration from multiple sources
type Loader struct {
	config   *Config
	filePath string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		config: NewConfig(),
	}
}

// WithFile sets the config file to read. It takes precedence over FT_CONFIG.
func (l *Loader) WithFile(path string) *Loader {
	l.filePath = path
	return l
}

// Load loads configuration using the cascading strategy:
// 1. Start with defaults
// 2. Override with the config file, if any
// 3. Override with environment variables
// 4. Override with command line flags (LoadWithOverrides)
func (l *Loader) Load() (*Config, error) {
	path := l.filePath
	if path == "" {
		path = os.Getenv(ConfigFileEnv)
	}
	if path != "" {
		overrides, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		l.applyOverrides(l.config, overrides)
	}

	if err := l.config.LoadFromEnvironment(); err != nil {
		return nil, err
	}

	if err := l.config.Validate(); err != nil {
		return nil, err
	}

	return l.config, nil
}

// LoadWithOverrides loads configuration and applies command line overrides
func (l *Loader) LoadWithOverrides(overrides *ConfigOverrides) (*Config, error) {
	config, err := l.Load()
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		l.applyOverrides(config, overrides)
	}

	// Re-validate after applying overrides
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// ConfigOverrides holds values that replace the defaults. Nil fields are left
// untouched. Both command line flags and config files produce overrides.
type ConfigOverrides struct {
	DBDir          *string
	DBFilename     *string
	DBQueryTimeout *time.Duration
	DBWriteTimeout *time.Duration

	PollInterval       *time.Duration
	IdleTimeout        *time.Duration
	ProbeTimeout       *time.Duration
	CheckpointInterval *time.Duration
	TrackWindowTitles  *bool
	Backends           []string
	Timezone           *string

	Host            *string
	Port            *int
	ShutdownTimeout *time.Duration

	LogLevel  *string
	LogFormat *string
	LogFile   *string

	Timeout   *time.Duration
	ServerURL *string
}

func (l *Loader) applyOverrides(config *Config, overrides *ConfigOverrides) {
	if overrides.DBDir != nil {
		config.Database.Dir = *overrides.DBDir
	}
	if overrides.DBFilename != nil {
		config.Database.Filename = *overrides.DBFilename
	}
	if overrides.DBQueryTimeout != nil {
		config.Database.QueryTimeout = *overrides.DBQueryTimeout
	}
	if overrides.DBWriteTimeout != nil {
		config.Database.WriteTimeout = *overrides.DBWriteTimeout
	}

	if overrides.PollInterval != nil {
		config.Tracker.PollInterval = *overrides.PollInterval
	}
	if overrides.IdleTimeout != nil {
		config.Tracker.IdleTimeout = *overrides.IdleTimeout
	}
	if overrides.ProbeTimeout != nil {
		config.Tracker.ProbeTimeout = *overrides.ProbeTimeout
	}
	if overrides.CheckpointInterval != nil {
		config.Tracker.CheckpointInterval = *overrides.CheckpointInterval
	}
	if overrides.TrackWindowTitles != nil {
		config.Tracker.TrackWindowTitles = *overrides.TrackWindowTitles
	}
	if overrides.Backends != nil {
		config.Tracker.Backends = overrides.Backends
	}
	if overrides.Timezone != nil {
		config.Tracker.Timezone = *overrides.Timezone
	}

	if overrides.Host != nil {
		config.Server.Host = *overrides.Host
	}
	if overrides.Port != nil {
		config.Server.Port = *overrides.Port
	}
	if overrides.ShutdownTimeout != nil {
		config.Server.ShutdownTimeout = *overrides.ShutdownTimeout
	}

	if overrides.LogLevel != nil {
		config.Logging.Level = *overrides.LogLevel
	}
	if overrides.LogFormat != nil {
		config.Logging.Format = *overrides.LogFormat
	}
	if overrides.LogFile != nil {
		config.Logging.File = *overrides.LogFile
	}

	if overrides.Timeout != nil {
		config.Application.Timeout = *overrides.Timeout
	}
	if overrides.ServerURL != nil {
		config.Application.ServerURL = *overrides.ServerURL
	}
}

// fileConfig mirrors the on-disk layout. Durations are strings ("2s", "5m")
// so YAML and JSON files read the same way.
type fileConfig struct {
	Database struct {
		Dir          *string `yaml:"dir" json:"dir"`
		Filename     *string `yaml:"filename" json:"filename"`
		QueryTimeout *string `yaml:"query_timeout" json:"query_timeout"`
		WriteTimeout *string `yaml:"write_timeout" json:"write_timeout"`
	} `yaml:"database" json:"database"`
	Tracker struct {
		PollInterval       *string  `yaml:"poll_interval" json:"poll_interval"`
		IdleTimeout        *string  `yaml:"idle_timeout" json:"idle_timeout"`
		ProbeTimeout       *string  `yaml:"probe_timeout" json:"probe_timeout"`
		CheckpointInterval *string  `yaml:"checkpoint_interval" json:"checkpoint_interval"`
		TrackWindowTitles  *bool    `yaml:"track_window_titles" json:"track_window_titles"`
		Backends           []string `yaml:"backends" json:"backends"`
		Timezone           *string  `yaml:"timezone" json:"timezone"`
	} `yaml:"tracker" json:"tracker"`
	Server struct {
		Host            *string `yaml:"host" json:"host"`
		Port            *int    `yaml:"port" json:"port"`
		ShutdownTimeout *string `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	} `yaml:"server" json:"server"`
	Logging struct {
		Level  *string `yaml:"level" json:"level"`
		Format *string `yaml:"format" json:"format"`
		File   *string `yaml:"file" json:"file"`
	} `yaml:"logging" json:"logging"`
	Application struct {
		Timeout   *string `yaml:"timeout" json:"timeout"`
		ServerURL *string `yaml:"server_url" json:"server_url"`
	} `yaml:"application" json:"application"`
}

// ReadFile parses a YAML (.yaml, .yml) or JSON-with-comments (.json, .jsonc)
// config file into overrides.
func ReadFile(path string) (*ConfigOverrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &fc); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	default:
		return nil, &ConfigError{Field: "config", Message: fmt.Sprintf("unsupported config file extension %q", filepath.Ext(path))}
	}

	return fc.toOverrides()
}

func (fc *fileConfig) toOverrides() (*ConfigOverrides, error) {
	o := &ConfigOverrides{
		DBDir:             fc.Database.Dir,
		DBFilename:        fc.Database.Filename,
		TrackWindowTitles: fc.Tracker.TrackWindowTitles,
		Backends:          fc.Tracker.Backends,
		Timezone:          fc.Tracker.Timezone,
		Host:              fc.Server.Host,
		Port:              fc.Server.Port,
		LogLevel:          fc.Logging.Level,
		LogFormat:         fc.Logging.Format,
		LogFile:           fc.Logging.File,
		ServerURL:         fc.Application.ServerURL,
	}

	durations := []struct {
		field  string
		raw    *string
		target **time.Duration
	}{
		{"database.query_timeout", fc.Database.QueryTimeout, &o.DBQueryTimeout},
		{"database.write_timeout", fc.Database.WriteTimeout, &o.DBWriteTimeout},
		{"tracker.poll_interval", fc.Tracker.PollInterval, &o.PollInterval},
		{"tracker.idle_timeout", fc.Tracker.IdleTimeout, &o.IdleTimeout},
		{"tracker.probe_timeout", fc.Tracker.ProbeTimeout, &o.ProbeTimeout},
		{"tracker.checkpoint_interval", fc.Tracker.CheckpointInterval, &o.CheckpointInterval},
		{"server.shutdown_timeout", fc.Server.ShutdownTimeout, &o.ShutdownTimeout},
		{"application.timeout", fc.Application.Timeout, &o.Timeout},
	}
	for _, d := range durations {
		if d.raw == nil {
			continue
		}
		parsed, err := time.ParseDuration(*d.raw)
		if err != nil {
			return nil, &ConfigError{Field: d.field, Message: fmt.Sprintf("invalid duration %q", *d.raw)}
		}
		*d.target = &parsed
	}

	return o, nil
}
