package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/ripple/internal/errors"
)

const (
	// JSONFileName and YAMLFileName are the configuration file names Load
	// looks for, YAML first.
	JSONFileName = "ripple.json"
	YAMLFileName = "ripple.yaml"

	// DefaultAddr is the default server listen address.
	DefaultAddr = "localhost:8080"

	// EnvAddr overrides Server.Addr when set.
	EnvAddr = "RIPPLE_ADDR"
)

// Snapshot backends.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendS3     = "s3"
)

// Config is the complete ripple configuration.
type Config struct {
	// Server contains HTTP server settings.
	Server ServerConfig `json:"server" yaml:"server"`

	// Renderer contains reconciler settings.
	Renderer RendererConfig `json:"renderer" yaml:"renderer"`

	// Logging selects the log handler and level.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Snapshot selects where POST /snapshot persists HTML.
	Snapshot SnapshotConfig `json:"snapshot" yaml:"snapshot"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Addr is the listen address, host:port.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`

	// ShutdownTimeout bounds graceful shutdown (e.g., "10s").
	ShutdownTimeout string `json:"shutdownTimeout,omitempty" yaml:"shutdownTimeout,omitempty"`

	// PingInterval is how often idle websocket clients are pinged.
	PingInterval string `json:"pingInterval,omitempty" yaml:"pingInterval,omitempty"`

	// TaskBuffer is the capacity of the runtime's dispatch queue.
	TaskBuffer int `json:"taskBuffer,omitempty" yaml:"taskBuffer,omitempty"`

	// ClientBuffer is the number of frames queued per websocket client
	// before the client is dropped as too slow.
	ClientBuffer int `json:"clientBuffer,omitempty" yaml:"clientBuffer,omitempty"`
}

// RendererConfig contains reconciler settings.
type RendererConfig struct {
	// StrictKeys makes duplicate sibling keys panic instead of warn.
	StrictKeys bool `json:"strictKeys,omitempty" yaml:"strictKeys,omitempty"`
}

// LoggingConfig selects the log handler.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// SnapshotConfig selects the snapshot store.
type SnapshotConfig struct {
	// Backend is none, memory or s3.
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`

	// Bucket is the S3 bucket.
	Bucket string `json:"bucket,omitempty" yaml:"bucket,omitempty"`

	// Prefix is prepended to every object key.
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`

	// Region is the S3 region.
	Region string `json:"region,omitempty" yaml:"region,omitempty"`

	// Endpoint overrides the S3 endpoint, for S3-compatible stores.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`

	// UsePathStyle addresses buckets by path instead of subdomain.
	UsePathStyle bool `json:"usePathStyle,omitempty" yaml:"usePathStyle,omitempty"`
}

// New creates a Config with default values.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from dir, preferring ripple.yaml over
// ripple.json. RIPPLE_ADDR overrides the listen address.
func Load(dir string) (*Config, error) {
	for _, name := range []string{YAMLFileName, JSONFileName} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New(errors.ErrConfigNotFound).
		WithDetail("No " + YAMLFileName + " or " + JSONFileName + " found in " + dir).
		WithSuggestion("Create one, or run without a config file to use the defaults")
}

// LoadFile reads configuration from path. The format follows the file
// extension: .yaml and .yml are YAML, anything else JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrConfigNotFound).WithDetail(path)
		}
		return nil, errors.New(errors.ErrConfigParse).Wrap(err)
	}

	cfg := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New(errors.ErrConfigParse).
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check the file syntax")
	}

	cfg.configPath = path
	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the defaults with environment overrides applied, for
// running without a configuration file.
func Default() *Config {
	cfg := New()
	cfg.applyEnv()
	return cfg
}

// SaveTo writes the configuration to path in the format its extension
// names.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New(errors.ErrConfigParse).Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	// Server
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "10s"
	}
	if c.Server.PingInterval == "" {
		c.Server.PingInterval = "30s"
	}
	if c.Server.TaskBuffer == 0 {
		c.Server.TaskBuffer = 256
	}
	if c.Server.ClientBuffer == 0 {
		c.Server.ClientBuffer = 64
	}

	// Logging
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	// Snapshot
	if c.Snapshot.Backend == "" {
		c.Snapshot.Backend = BackendMemory
	}
	if c.Snapshot.Prefix == "" {
		c.Snapshot.Prefix = "snapshots/"
	}
	if c.Snapshot.Region == "" {
		c.Snapshot.Region = "us-east-1"
	}
}

func (c *Config) applyEnv() {
	if addr := os.Getenv(EnvAddr); addr != "" {
		c.Server.Addr = addr
	}
}

// Validate checks every field and reports the first invalid one as E402.
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		return invalid("server.addr", fmt.Sprintf("%q is not host:port", c.Server.Addr))
	}
	for field, value := range map[string]string{
		"server.shutdownTimeout": c.Server.ShutdownTimeout,
		"server.pingInterval":    c.Server.PingInterval,
	} {
		if d, err := time.ParseDuration(value); err != nil || d <= 0 {
			return invalid(field, fmt.Sprintf("%q is not a positive duration", value))
		}
	}
	if c.Server.TaskBuffer < 0 {
		return invalid("server.taskBuffer", "must not be negative")
	}
	if c.Server.ClientBuffer < 0 {
		return invalid("server.clientBuffer", "must not be negative")
	}

	if _, ok := levels[strings.ToLower(c.Logging.Level)]; !ok {
		return invalid("logging.level", fmt.Sprintf("unknown level %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return invalid("logging.format", fmt.Sprintf("unknown format %q", c.Logging.Format))
	}

	switch c.Snapshot.Backend {
	case BackendNone, BackendMemory:
	case BackendS3:
		if c.Snapshot.Bucket == "" {
			return invalid("snapshot.bucket", "required for the s3 backend")
		}
	default:
		return invalid("snapshot.backend", fmt.Sprintf("unknown backend %q", c.Snapshot.Backend))
	}
	return nil
}

func invalid(field, detail string) error {
	return errors.New(errors.ErrConfigInvalid).
		WithDetail(field + ": " + detail)
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ShutdownTimeout returns Server.ShutdownTimeout parsed.
func (c *Config) ShutdownTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Server.ShutdownTimeout)
	return d
}

// PingInterval returns Server.PingInterval parsed.
func (c *Config) PingInterval() time.Duration {
	d, _ := time.ParseDuration(c.Server.PingInterval)
	return d
}

// Level returns the slog level named by Logging.Level.
func (c *Config) Level() slog.Level {
	return levels[strings.ToLower(c.Logging.Level)]
}

// Exists reports whether dir holds a configuration file.
func Exists(dir string) bool {
	for _, name := range []string{YAMLFileName, JSONFileName} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up from startDir to the first directory holding a
// configuration file.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New(errors.ErrConfigNotFound).
				WithDetail("No configuration file in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}
