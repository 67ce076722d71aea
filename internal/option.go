package internal

import (
	"io"

	"github.com/starford/quire/internal/site"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	version   string
	mode      site.Mode
	logOutput io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithVersion sets the version reported to MCP clients.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}

// WithMode overrides app.mode from the configuration.
func WithMode(m site.Mode) Option {
	return func(a *application) {
		a.mode = m
	}
}

// WithLogOutput sends logs to w instead of stdout. The stdio MCP server
// needs stdout for the protocol.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOutput = w
	}
}
