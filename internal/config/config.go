package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/streamstore/internal/errors"
	"github.com/vango-dev/streamstore/pkg/runtime"
)

const (
	// ConfigFileName is the conventional configuration file name.
	ConfigFileName = "streamstore.yaml"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "STREAMSTORE_"

	// DefaultAddress is the default listen address.
	DefaultAddress = ":8080"

	// DefaultMaxMessageSize is the default websocket read limit in bytes.
	DefaultMaxMessageSize = 64 * 1024
)

// Config is the complete server configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
	Runtime RuntimeConfig `yaml:"runtime"`
	Publish PublishConfig `yaml:"publish"`

	// path is where the config was loaded from, if anywhere.
	path string
}

// ServerConfig configures the HTTP and websocket host.
type ServerConfig struct {
	// Address is the listen address, e.g. ":8080".
	Address string `yaml:"address"`

	// ReadBuffer and WriteBuffer size the websocket I/O buffers.
	ReadBuffer  int `yaml:"read_buffer"`
	WriteBuffer int `yaml:"write_buffer"`

	// MaxMessageSize limits incoming websocket frames, in bytes.
	MaxMessageSize int64 `yaml:"max_message_size"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is text or json.
	Format string `yaml:"format"`
}

// RuntimeConfig configures mounted component trees.
type RuntimeConfig struct {
	// Debug enables hook order validation.
	Debug bool `yaml:"debug"`

	// MaxRenderPasses bounds the passes of one flush.
	MaxRenderPasses int `yaml:"max_render_passes"`
}

// PublishConfig configures the S3-compatible bucket rendered pages are
// published to.
type PublishConfig struct {
	Region string `yaml:"region"`

	// Endpoint overrides the S3 endpoint, e.g. for MinIO.
	Endpoint string `yaml:"endpoint"`

	// PathStyle addresses buckets as endpoint/bucket instead of
	// bucket.endpoint.
	PathStyle bool `yaml:"path_style"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:        DefaultAddress,
			ReadBuffer:     1024,
			WriteBuffer:    1024,
			MaxMessageSize: DefaultMaxMessageSize,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "streamstore",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Runtime: RuntimeConfig{
			MaxRenderPasses: runtime.DefaultMaxRenderPasses,
		},
		Publish: PublishConfig{
			Region: "us-east-1",
		},
	}
}

// Load reads the YAML file at path over the defaults and applies
// environment overrides. An empty path skips the file. The result is
// validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.New("E031").
				WithDetail("Cannot read " + path).
				Wrap(err)
		}
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, errors.New("E031").
				WithDetail("Failed to parse " + path + ": " + err.Error()).
				WithSuggestion("Check that the file is valid YAML")
		}
		cfg.path = path
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFiles loads KEY=VALUE files into the process environment without
// overriding variables that are already set. Missing files are skipped.
// With no arguments it reads .env and .env.local.
func LoadEnvFiles(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env", ".env.local"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return errors.New("E031").WithDetail("Cannot load " + p).Wrap(err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from STREAMSTORE_* variables found by lookup.
// The variable name is the upper-cased YAML path with dots replaced by
// underscores, e.g. STREAMSTORE_SERVER_ADDRESS.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	parse := func(name string, bits int) (int64, bool, error) {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return 0, false, nil
		}
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, bits)
		if err != nil {
			return 0, false, errors.New("E030").WithDetailf("%s%s: %q is not an integer", EnvPrefix, name, v)
		}
		return n, true, nil
	}
	num := func(name string, dst *int64) error {
		n, ok, err := parse(name, 64)
		if ok {
			*dst = n
		}
		return err
	}
	size := func(name string, dst *int) error {
		n, ok, err := parse(name, strconv.IntSize)
		if ok {
			*dst = int(n)
		}
		return err
	}
	flag := func(name string, dst *bool) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return errors.New("E030").WithDetailf("%s%s: %q is not a boolean", EnvPrefix, name, v)
		}
		*dst = b
		return nil
	}

	str("SERVER_ADDRESS", &c.Server.Address)
	str("METRICS_NAMESPACE", &c.Metrics.Namespace)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("PUBLISH_REGION", &c.Publish.Region)
	str("PUBLISH_ENDPOINT", &c.Publish.Endpoint)

	for _, err := range []error{
		size("SERVER_READ_BUFFER", &c.Server.ReadBuffer),
		size("SERVER_WRITE_BUFFER", &c.Server.WriteBuffer),
		num("SERVER_MAX_MESSAGE_SIZE", &c.Server.MaxMessageSize),
		size("RUNTIME_MAX_RENDER_PASSES", &c.Runtime.MaxRenderPasses),
		flag("METRICS_ENABLED", &c.Metrics.Enabled),
		flag("RUNTIME_DEBUG", &c.Runtime.Debug),
		flag("PUBLISH_PATH_STYLE", &c.Publish.PathStyle),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch {
	case c.Server.Address == "":
		return invalid("server.address must not be empty")
	case c.Server.ReadBuffer < 0 || c.Server.WriteBuffer < 0:
		return invalid("server buffers must not be negative")
	case c.Server.MaxMessageSize <= 0:
		return invalid("server.max_message_size must be positive")
	case c.Runtime.MaxRenderPasses < 1:
		return invalid("runtime.max_render_passes must be at least 1")
	case c.Metrics.Enabled && c.Metrics.Namespace == "":
		return invalid("metrics.namespace is required when metrics are enabled")
	case c.Publish.Region == "":
		return invalid("publish.region must not be empty")
	}
	if _, ok := levels[strings.ToLower(c.Log.Level)]; !ok {
		return invalid("log.level " + strconv.Quote(c.Log.Level) + " is not one of debug, info, warn, error")
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		return invalid("log.format must be text or json")
	}
	return nil
}

func invalid(msg string) *errors.StoreError {
	return errors.New("E030").WithDetail(msg)
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// SlogLevel returns the configured log level. Unknown levels map to Info.
func (c *Config) SlogLevel() slog.Level {
	if l, ok := levels[strings.ToLower(c.Log.Level)]; ok {
		return l
	}
	return slog.LevelInfo
}

// JSONLogs reports whether logs are written as JSON.
func (c *Config) JSONLogs() bool {
	return strings.EqualFold(c.Log.Format, "json")
}

// Path returns the file the configuration was loaded from, or "".
func (c *Config) Path() string {
	return c.path
}
