package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

const validConfig = `
[server]
addr = "127.0.0.1:9000"

[spotify]
client_id = "id"
client_secret = "secret"

[database]
url = "postgres://localhost/crowdqueue"

[session]
cookie_secret = "0123456789abcdef0123456789abcdef"
`

func TestLoadValidFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Spotify.RedirectURL == "" {
		t.Error("RedirectURL default not applied")
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("SPOTIFY_ID", "env-id")
	t.Setenv("DATABASE_URL", "postgres://env/db")

	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Spotify.ClientID != "env-id" {
		t.Errorf("ClientID = %q, want env override", cfg.Spotify.ClientID)
	}
	if cfg.Database.URL != "postgres://env/db" {
		t.Errorf("Database.URL = %q, want env override", cfg.Database.URL)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  string
		wantErr error
	}{
		{
			name: "missing credentials",
			mutate: `
[database]
url = "postgres://localhost/db"
[session]
cookie_secret = "0123456789abcdef0123456789abcdef"
`,
			wantErr: ErrMissingSpotifyCredentials,
		},
		{
			name: "weak cookie secret",
			mutate: `
[spotify]
client_id = "id"
client_secret = "secret"
[database]
url = "postgres://localhost/db"
[session]
cookie_secret = "short"
`,
			wantErr: ErrWeakCookieSecret,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.mutate))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load("/nonexistent/config.toml"); err == nil {
		t.Error("Load() with missing file should fail")
	}
}
