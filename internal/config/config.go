package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Session   SessionConfig   `toml:"session"`
	MediaHost MediaHostConfig `toml:"media_host"`
	Site      SiteConfig      `toml:"site"`
	Logging   LoggingConfig   `toml:"logging"`
	Tunnel    TunnelConfig    `toml:"tunnel"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port         string `toml:"port"`
	Host         string `toml:"host"`
	TemplatesDir string `toml:"templates_dir"`
	StaticDir    string `toml:"static_dir"`
	ReadTimeout  int    `toml:"read_timeout_seconds"`
	WriteTimeout int    `toml:"write_timeout_seconds"`
}

// DatabaseConfig contains database configuration
type DatabaseConfig struct {
	Path                string `toml:"path"`
	QueryTimeoutSeconds int    `toml:"query_timeout_seconds"`
}

// SessionConfig contains session cookie configuration. Duration is the
// initial cookie lifetime; ActiveWindow is the sliding extension applied
// while the user keeps making requests.
type SessionConfig struct {
	Secret              string `toml:"secret"`
	DurationSeconds     int    `toml:"duration_seconds"`
	ActiveWindowSeconds int    `toml:"active_window_seconds"`
	SecureCookies       bool   `toml:"secure_cookies"`
}

// MediaHostConfig contains credentials for the external media host that
// stores uploaded images and song files.
type MediaHostConfig struct {
	BaseURL              string `toml:"base_url"`
	CloudName            string `toml:"cloud_name"`
	APIKey               string `toml:"api_key"`
	APISecret            string `toml:"api_secret"`
	UploadTimeoutSeconds int    `toml:"upload_timeout_seconds"`
}

// SiteConfig contains presentation knobs for the rendered pages
type SiteConfig struct {
	PodcastGenreID int  `toml:"podcast_genre_id"`
	HighlightCount int  `toml:"highlight_count"`
	WatchTemplates bool `toml:"watch_templates"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level          string `toml:"level"`
	Format         string `toml:"format"`
	RequestLogging bool   `toml:"request_logging"`
}

// TunnelConfig contains ngrok tunnel configuration
type TunnelConfig struct {
	Enabled   bool   `toml:"enabled"`
	AuthToken string `toml:"auth_token"`
	Domain    string `toml:"domain"`
}

// DefaultConfig returns a configuration with sensible defaults. Only the
// port has a meaningful default; credentials come from the environment.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			Host:         "0.0.0.0",
			TemplatesDir: "./web/templates",
			StaticDir:    "./web/static",
			ReadTimeout:  30,
			WriteTimeout: 30,
		},
		Database: DatabaseConfig{
			Path:                "./yourtune.db",
			QueryTimeoutSeconds: 5,
		},
		Session: SessionConfig{
			Secret:              "",
			DurationSeconds:     120,
			ActiveWindowSeconds: 60,
			SecureCookies:       false,
		},
		MediaHost: MediaHostConfig{
			UploadTimeoutSeconds: 30,
		},
		Site: SiteConfig{
			PodcastGenreID: 7,
			HighlightCount: 5,
			WatchTemplates: true,
		},
		Logging: LoggingConfig{
			Level:          "info",
			Format:         "text",
			RequestLogging: true,
		},
		Tunnel: TunnelConfig{
			Enabled: false,
		},
	}
}

// LoadConfig loads configuration from a TOML file and applies environment
// overrides. A missing file is created with defaults.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := cfg.SaveToFile(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config file: %w", err)
		}
		fmt.Printf("Created default configuration file at: %s\n", configPath)
	} else {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides lets environment variables win over file values.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		c.Session.Secret = v
	}
	if v := os.Getenv("CLOUD_URL"); v != "" {
		c.MediaHost.BaseURL = v
	}
	if v := os.Getenv("CLOUD_NAME"); v != "" {
		c.MediaHost.CloudName = v
	}
	if v := os.Getenv("CLOUD_API_KEY"); v != "" {
		c.MediaHost.APIKey = v
	}
	if v := os.Getenv("CLOUD_API_SECRET"); v != "" {
		c.MediaHost.APISecret = v
	}
	if v := os.Getenv("NGROK_AUTHTOKEN"); v != "" {
		c.Tunnel.AuthToken = v
	}
}

// SaveToFile saves the configuration to a TOML file
func (c *Config) SaveToFile(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	header := `# yourTune Configuration
# Credentials (session secret, media host keys, tunnel token) are usually
# supplied through the environment rather than this file.

`
	if _, err := file.WriteString(header); err != nil {
		return fmt.Errorf("failed to write config header: %w", err)
	}

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config to TOML: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}
	if c.Server.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Server.TemplatesDir == "" {
		return fmt.Errorf("templates directory cannot be empty")
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return fmt.Errorf("server timeouts must be positive")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if c.Database.QueryTimeoutSeconds < 1 {
		return fmt.Errorf("database query timeout must be at least 1 second")
	}

	if c.Session.DurationSeconds < 1 {
		return fmt.Errorf("session duration must be at least 1 second")
	}
	if c.Session.ActiveWindowSeconds < 1 {
		return fmt.Errorf("session active window must be at least 1 second")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"text": true, "json": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Logging.Format)
	}

	return nil
}

// GetAddress returns the full server address
func (c *Config) GetAddress() string {
	return c.Server.Host + ":" + c.Server.Port
}
