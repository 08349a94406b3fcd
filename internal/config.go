package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Wiki      WikiConfig        `yaml:"wiki"`
	SQLite    SQLiteConfig      `yaml:"sqlite"`
	Ledger    LedgerConfig      `yaml:"ledger"`
	Artifacts ArtifactsConfig   `yaml:"artifacts"`
	Auth      AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Wiki.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Ledger.Validate(); err != nil {
		return err
	}
	if err := c.Artifacts.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
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

// WikiConfig holds the source tree configuration.
type WikiConfig struct {
	Path string `yaml:"path"`
	// Ext is the source file extension, ".tex" when empty.
	Ext string `yaml:"ext"`
	// Watch enables filesystem watching with debounced rebuilds in serve mode.
	Watch bool `yaml:"watch"`
	// Debounce is the quiet period after the last file event before a
	// rebuild runs. Zero means the built-in default.
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the wiki configuration.
func (c *WikiConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// LedgerConfig holds the creation-date ledger location.
type LedgerConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the ledger configuration.
func (c *LedgerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// ArtifactsConfig holds the JSON artifact output directory. An empty Dir
// disables artifact generation.
type ArtifactsConfig struct {
	Dir string `yaml:"dir"`
}

// Validate validates the artifacts configuration.
func (c *ArtifactsConfig) Validate() error {
	return nil
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
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
		},
		Wiki: WikiConfig{
			Path:  "./wiki",
			Ext:   ".tex",
			Watch: true,
		},
		SQLite: SQLiteConfig{
			Path: "./gwiki.db",
		},
		Ledger: LedgerConfig{
			Path: "./.gwiki-metadata.json",
		},
		Artifacts: ArtifactsConfig{
			Dir: "./indices",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
