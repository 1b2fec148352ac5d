package server

import (
	"net/http"
	"time"

	"dario.cat/mergo"

	"github.com/vango-dev/streamstore/internal/config"
	"github.com/vango-dev/streamstore/pkg/runtime"
)

// ServerConfig configures a Server.
type ServerConfig struct {
	// Address is the listen address used by Run.
	Address string

	// ReadBufferSize and WriteBufferSize size the websocket buffers.
	ReadBufferSize  int
	WriteBufferSize int

	// MaxMessageSize limits incoming frames, in bytes.
	MaxMessageSize int64

	// CheckOrigin validates the websocket Origin header. Nil accepts
	// same-origin requests only.
	CheckOrigin func(r *http.Request) bool

	// ReadTimeout closes a session that sends nothing for this long.
	ReadTimeout time.Duration

	// WriteTimeout bounds each frame write.
	WriteTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown in Run.
	ShutdownTimeout time.Duration

	// MaxRenderPasses is passed to every mounted root.
	MaxRenderPasses int
}

// DefaultServerConfig returns the default configuration.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:         config.DefaultAddress,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		MaxMessageSize:  config.DefaultMaxMessageSize,
		ReadTimeout:     60 * time.Second,
		WriteTimeout:    10 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		MaxRenderPasses: runtime.DefaultMaxRenderPasses,
	}
}

// FromConfig builds a ServerConfig from loaded configuration.
func FromConfig(cfg *config.Config) *ServerConfig {
	sc := DefaultServerConfig()
	sc.Address = cfg.Server.Address
	sc.ReadBufferSize = cfg.Server.ReadBuffer
	sc.WriteBufferSize = cfg.Server.WriteBuffer
	sc.MaxMessageSize = cfg.Server.MaxMessageSize
	sc.MaxRenderPasses = cfg.Runtime.MaxRenderPasses
	return sc
}

// withDefaults fills unset fields from DefaultServerConfig.
func (c *ServerConfig) withDefaults() *ServerConfig {
	defaults := DefaultServerConfig()
	if c == nil {
		return defaults
	}
	out := *c
	if err := mergo.Merge(&out, defaults); err != nil {
		return defaults
	}
	return &out
}
