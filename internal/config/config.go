// Package config loads application configuration from a TOML file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Common errors.
var (
	// ErrMissingSpotifyCredentials is returned when no Spotify client
	// credentials are configured.
	ErrMissingSpotifyCredentials = errors.New("missing Spotify client credentials")

	// ErrWeakCookieSecret is returned when the guest cookie secret is
	// shorter than 32 bytes.
	ErrWeakCookieSecret = errors.New("guest cookie secret must be at least 32 bytes")
)

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Spotify  SpotifyConfig  `toml:"spotify"`
	Database DatabaseConfig `toml:"database"`
	Session  SessionConfig  `toml:"session"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Addr    string `toml:"addr"`
	BaseURL string `toml:"base_url"`
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURL  string `toml:"redirect_url"`
}

// DatabaseConfig contains PostgreSQL connection settings.
type DatabaseConfig struct {
	URL string `toml:"url"`
}

// SessionConfig contains guest session settings.
type SessionConfig struct {
	// CookieSecret is the key material for the credential codec.
	CookieSecret string `toml:"cookie_secret"`
	// SecureCookies marks session cookies Secure; enable behind TLS.
	SecureCookies bool `toml:"secure_cookies"`
}

// Load reads configuration from the TOML file at path (if non-empty),
// applies environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:    "127.0.0.1:8080",
			BaseURL: "http://127.0.0.1:8080",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables over file values. Environment
// always wins so deployments can keep secrets out of the config file.
func (c *Config) applyEnv() {
	overlay(&c.Spotify.ClientID, "SPOTIFY_ID")
	overlay(&c.Spotify.ClientSecret, "SPOTIFY_SECRET")
	overlay(&c.Spotify.RedirectURL, "SPOTIFY_REDIRECT_URL")
	overlay(&c.Database.URL, "DATABASE_URL")
	overlay(&c.Session.CookieSecret, "GUEST_COOKIE_SECRET")
	overlay(&c.Server.Addr, "LISTEN_ADDR")
	overlay(&c.Server.BaseURL, "BASE_URL")
}

func overlay(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) validate() error {
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		return ErrMissingSpotifyCredentials
	}
	if len(c.Session.CookieSecret) < 32 {
		return ErrWeakCookieSecret
	}
	if c.Database.URL == "" {
		return errors.New("missing database URL")
	}
	if c.Spotify.RedirectURL == "" {
		c.Spotify.RedirectURL = c.Server.BaseURL + "/api/guest/spotify/callback"
	}
	return nil
}
