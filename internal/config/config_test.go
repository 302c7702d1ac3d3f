package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var envKeys = []string{
	"DISCORD_TOKEN", "BOT_TOKEN", "STORE_DRIVER", "STORE_PATH", "LOG_LEVEL", "LOG_FORMAT",
	"CONFIRM_DELAY", "RESUPPRESS_DELAY", "METRICS_ADDR",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestFromEnv(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    *Config
		wantErr bool
	}{
		{
			name:    "missing token",
			env:     map[string]string{},
			wantErr: true,
		},
		{
			name: "token only, defaults applied",
			env:  map[string]string{"DISCORD_TOKEN": "tok"},
			want: &Config{
				Token:           "tok",
				StoreDriver:     DriverJSON,
				StorePath:       "db.json",
				LogLevel:        "info",
				LogFormat:       "console",
				ConfirmDelay:    5 * time.Second,
				ResuppressDelay: 2 * time.Second,
			},
		},
		{
			name: "legacy token variable",
			env:  map[string]string{"BOT_TOKEN": "old"},
			want: &Config{
				Token:           "old",
				StoreDriver:     DriverJSON,
				StorePath:       "db.json",
				LogLevel:        "info",
				LogFormat:       "console",
				ConfirmDelay:    5 * time.Second,
				ResuppressDelay: 2 * time.Second,
			},
		},
		{
			name: "all values set",
			env: map[string]string{
				"DISCORD_TOKEN":    "tok",
				"STORE_DRIVER":     "SQLite",
				"STORE_PATH":       "/data/links.db",
				"LOG_LEVEL":        "debug",
				"LOG_FORMAT":       "json",
				"CONFIRM_DELAY":    "8s",
				"RESUPPRESS_DELAY": "1500ms",
				"METRICS_ADDR":     ":9090",
			},
			want: &Config{
				Token:           "tok",
				StoreDriver:     DriverSQLite,
				StorePath:       "/data/links.db",
				LogLevel:        "debug",
				LogFormat:       "json",
				ConfirmDelay:    8 * time.Second,
				ResuppressDelay: 1500 * time.Millisecond,
				MetricsAddr:     ":9090",
			},
		},
		{
			name: "sqlite default path",
			env:  map[string]string{"DISCORD_TOKEN": "tok", "STORE_DRIVER": "sqlite"},
			want: &Config{
				Token:           "tok",
				StoreDriver:     DriverSQLite,
				StorePath:       "vxlinks.db",
				LogLevel:        "info",
				LogFormat:       "console",
				ConfirmDelay:    5 * time.Second,
				ResuppressDelay: 2 * time.Second,
			},
		},
		{
			name:    "unknown driver",
			env:     map[string]string{"DISCORD_TOKEN": "tok", "STORE_DRIVER": "redis"},
			wantErr: true,
		},
		{
			name:    "bad delay",
			env:     map[string]string{"DISCORD_TOKEN": "tok", "CONFIRM_DELAY": "soon"},
			wantErr: true,
		},
		{
			name:    "negative delay",
			env:     map[string]string{"DISCORD_TOKEN": "tok", "RESUPPRESS_DELAY": "-1s"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			got, err := FromEnv()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMissingTokenSentinel(t *testing.T) {
	clearEnv(t)
	if _, err := FromEnv(); !errors.Is(err, ErrMissingToken) {
		t.Errorf("error = %v, want %v", err, ErrMissingToken)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv does not override variables that are already set, even when empty.
	for _, key := range envKeys {
		if err := os.Unsetenv(key); err != nil {
			t.Fatal(err)
		}
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("DISCORD_TOKEN=from-dotenv\nLOG_LEVEL=warn\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	t.Cleanup(func() {
		_ = os.Unsetenv("DISCORD_TOKEN")
		_ = os.Unsetenv("LOG_LEVEL")
	})

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Token != "from-dotenv" || got.LogLevel != "warn" {
		t.Errorf("Load = %+v", got)
	}
}
