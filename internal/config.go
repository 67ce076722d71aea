package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/quire/internal/site"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App   ApplicationConfig `yaml:"app"`
	Blog  BlogConfig        `yaml:"blog"`
	Index IndexConfig       `yaml:"index"`
	Auth  AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Blog.Validate(); err != nil {
		return fmt.Errorf("blog: %w", err)
	}
	if err := c.Index.Validate(); err != nil {
		return fmt.Errorf("index: %w", err)
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
	Mode     site.Mode  `yaml:"mode"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = site.ModePrerender
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.In(site.ModePrerender, site.ModeLive)),
	); err != nil {
		return err
	}
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// BlogConfig describes where the site content lives and how articles are
// read.
type BlogConfig struct {
	ArticlesDir string `yaml:"articles_dir"`
	// ViewsDir overrides the embedded templates file by file. Optional.
	ViewsDir       string `yaml:"views_dir"`
	PublicDir      string `yaml:"public_dir"`
	SiteTitle      string `yaml:"site_title"`
	VersionHeader  bool   `yaml:"version_header"`
	WordsPerMinute int    `yaml:"words_per_minute"`
}

// Validate validates the blog configuration.
func (c *BlogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ArticlesDir, validation.Required),
		validation.Field(&c.PublicDir, validation.Required),
		validation.Field(&c.SiteTitle, validation.Required),
		validation.Field(&c.WordsPerMinute, validation.Required, validation.Min(1)),
	)
}

// IndexConfig holds the search index database configuration.
type IndexConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the index configuration.
func (c *IndexConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig protects the /mcp endpoint.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): /mcp is open, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
			Mode: site.ModePrerender,
		},
		Blog: BlogConfig{
			ArticlesDir:    "./articles",
			PublicDir:      "./public",
			SiteTitle:      "Site",
			WordsPerMinute: 200,
		},
		Index: IndexConfig{
			Path: "./quire.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
