package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("WARDEN_DISCORD_TOKEN", "token")
	t.Setenv("WARDEN_CRCON_API_KEY", "crcon-key")
	t.Setenv("WARDEN_XAI_API_KEY", "xai-key")
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("WARDEN_CRCON_BASE_URL", "https://rcon.example/api")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Provider.Model != "grok-4" || cfg.Provider.MaxTokens != 500 {
		t.Fatalf("provider defaults = %+v", cfg.Provider)
	}
	if cfg.Ticketing.QuietWindow() != 5*time.Second {
		t.Fatalf("quiet window = %v", cfg.Ticketing.QuietWindow())
	}
	if cfg.Ticketing.AdminOverrideTTL() != 30*time.Minute {
		t.Fatalf("admin override = %v", cfg.Ticketing.AdminOverrideTTL())
	}
	if cfg.Discord.Token != "token" {
		t.Fatal("env token not applied")
	}
}

func TestLoadFileWithJSON5AndEnvPrecedence(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("WARDEN_MODEL", "grok-3-mini")

	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		// moderation backend
		moderation: {
			base_url: "https://rcon.example/api",
		},
		provider: {
			model: "grok-4", // overridden by env
			temperature: 0.5,
		},
		ticketing: {
			quiet_window_seconds: 2.5,
		},
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Moderation.BaseURL != "https://rcon.example/api" {
		t.Fatalf("base url = %q", cfg.Moderation.BaseURL)
	}
	if cfg.Provider.Temperature != 0.5 {
		t.Fatalf("temperature = %v", cfg.Provider.Temperature)
	}
	if cfg.Provider.Model != "grok-3-mini" {
		t.Fatalf("model = %q, env must win over file", cfg.Provider.Model)
	}
	if cfg.Ticketing.QuietWindow() != 2500*time.Millisecond {
		t.Fatalf("quiet window = %v", cfg.Ticketing.QuietWindow())
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name  string
		unset string
	}{
		{"missing discord token", "WARDEN_DISCORD_TOKEN"},
		{"missing crcon key", "WARDEN_CRCON_API_KEY"},
		{"missing provider key", "WARDEN_XAI_API_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv("WARDEN_CRCON_BASE_URL", "https://rcon.example/api")
			t.Setenv(tt.unset, "")

			if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadRejectsMissingBaseURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("WARDEN_CRCON_BASE_URL", "")
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing moderation base URL")
	}
}
