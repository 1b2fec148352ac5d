package config

import (
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/streamstore/internal/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func noEnv(string) (string, bool) { return "", false }

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultAddress, cfg.Server.Address)
	assert.Equal(t, 100, cfg.Runtime.MaxRenderPasses)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	assert.False(t, cfg.JSONLogs())
	assert.Empty(t, cfg.Path())
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, ConfigFileName, `
server:
  address: "127.0.0.1:9000"
  max_message_size: 1024
metrics:
  enabled: false
log:
  level: debug
  format: json
runtime:
  debug: true
  max_render_passes: 10
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Address)
	assert.EqualValues(t, 1024, cfg.Server.MaxMessageSize)
	assert.Equal(t, 1024, cfg.Server.ReadBuffer, "unset keys keep defaults")
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.True(t, cfg.JSONLogs())
	assert.True(t, cfg.Runtime.Debug)
	assert.Equal(t, 10, cfg.Runtime.MaxRenderPasses)
	assert.Equal(t, path, cfg.Path())
}

func TestLoadExpandsVariables(t *testing.T) {
	t.Setenv("STREAMSTORE_TEST_PORT", "7001")
	path := writeFile(t, ConfigFileName, "server:\n  address: \":${STREAMSTORE_TEST_PORT}\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7001", cfg.Server.Address)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, "E031", errors.CodeOf(err))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeFile(t, ConfigFileName, "server: [unclosed")
	_, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, "E031", errors.CodeOf(err))
}

func TestLoadEmptyPathUsesEnv(t *testing.T) {
	t.Setenv("STREAMSTORE_SERVER_ADDRESS", ":9999")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Address)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"STREAMSTORE_SERVER_ADDRESS":            ":1",
		"STREAMSTORE_SERVER_READ_BUFFER":        "2048",
		"STREAMSTORE_SERVER_WRITE_BUFFER":       " 4096 ",
		"STREAMSTORE_SERVER_MAX_MESSAGE_SIZE":   "512",
		"STREAMSTORE_METRICS_ENABLED":           "false",
		"STREAMSTORE_METRICS_NAMESPACE":         "app",
		"STREAMSTORE_LOG_LEVEL":                 "WARN",
		"STREAMSTORE_LOG_FORMAT":                "json",
		"STREAMSTORE_RUNTIME_DEBUG":             "1",
		"STREAMSTORE_RUNTIME_MAX_RENDER_PASSES": "5",
		"STREAMSTORE_PUBLISH_REGION":            "eu-west-1",
		"STREAMSTORE_PUBLISH_ENDPOINT":          "http://localhost:9000",
		"STREAMSTORE_PUBLISH_PATH_STYLE":        "true",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":1", cfg.Server.Address)
	assert.Equal(t, 2048, cfg.Server.ReadBuffer)
	assert.Equal(t, 4096, cfg.Server.WriteBuffer)
	assert.EqualValues(t, 512, cfg.Server.MaxMessageSize)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "app", cfg.Metrics.Namespace)
	assert.Equal(t, slog.LevelWarn, cfg.SlogLevel())
	assert.True(t, cfg.Runtime.Debug)
	assert.Equal(t, 5, cfg.Runtime.MaxRenderPasses)
	assert.Equal(t, PublishConfig{Region: "eu-west-1", Endpoint: "http://localhost:9000", PathStyle: true}, cfg.Publish)
}

func TestApplyEnvRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"STREAMSTORE_SERVER_READ_BUFFER":        "lots",
		"STREAMSTORE_METRICS_ENABLED":           "maybe",
		"STREAMSTORE_SERVER_MAX_MESSAGE_SIZE":   "9223372036854775808",
		"STREAMSTORE_RUNTIME_MAX_RENDER_PASSES": "1e3",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			err := Default().ApplyEnv(envMap(map[string]string{key: value}))
			require.Error(t, err)
			assert.Equal(t, "E030", errors.CodeOf(err))
		})
	}
}

func TestApplyEnvRejectsOutOfRangeInts(t *testing.T) {
	tooBig := strconv.FormatUint(uint64(math.MaxInt)+1, 10)
	for _, key := range []string{
		"STREAMSTORE_SERVER_READ_BUFFER",
		"STREAMSTORE_SERVER_WRITE_BUFFER",
		"STREAMSTORE_RUNTIME_MAX_RENDER_PASSES",
	} {
		t.Run(key, func(t *testing.T) {
			cfg := Default()
			err := cfg.ApplyEnv(envMap(map[string]string{key: tooBig}))
			require.Error(t, err)
			assert.Equal(t, "E030", errors.CodeOf(err))
			assert.Equal(t, Default().Server, cfg.Server, "rejected value is not applied")
			assert.Equal(t, Default().Runtime, cfg.Runtime)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty address", func(c *Config) { c.Server.Address = "" }},
		{"negative buffer", func(c *Config) { c.Server.ReadBuffer = -1 }},
		{"zero message size", func(c *Config) { c.Server.MaxMessageSize = 0 }},
		{"zero passes", func(c *Config) { c.Runtime.MaxRenderPasses = 0 }},
		{"metrics without namespace", func(c *Config) { c.Metrics.Namespace = "" }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
		{"no publish region", func(c *Config) { c.Publish.Region = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, "E030", errors.CodeOf(err))
		})
	}
}

func TestLoadValidates(t *testing.T) {
	path := writeFile(t, ConfigFileName, "log:\n  level: verbose\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, "E030", errors.CodeOf(err))
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("STREAMSTORE_TEST_FROM_FILE=yes\nSTREAMSTORE_TEST_PRESET=file\n"), 0o644))

	t.Setenv("STREAMSTORE_TEST_PRESET", "process")
	t.Setenv("STREAMSTORE_TEST_FROM_FILE", "")
	os.Unsetenv("STREAMSTORE_TEST_FROM_FILE")

	require.NoError(t, LoadEnvFiles(envPath, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "yes", os.Getenv("STREAMSTORE_TEST_FROM_FILE"))
	assert.Equal(t, "process", os.Getenv("STREAMSTORE_TEST_PRESET"), "existing variables win")
}
