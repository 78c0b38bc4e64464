package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/titanous/json5"
)

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Discord: DiscordConfig{
			TicketCategories: []string{"Tickets", "Claimed Tickets"},
			AdminRole:        "HLL Admin",
		},
		Moderation: ModerationConfig{
			RequestsPerSecond: 5,
			Burst:             10,
		},
		Provider: ProviderConfig{
			APIBase:     "https://api.x.ai/v1",
			Model:       "grok-4",
			MaxTokens:   500,
			Temperature: 0.8,
		},
		Ticketing: TicketingConfig{
			PromptFile:           "prompts_de.json",
			QuietWindowSeconds:   5,
			AdminOverrideMinutes: 30,
			ContextTurns:         30,
			PunishmentRecords:    15,
			OwnerSettleSeconds:   8,
		},
	}
}

// Load reads config from a JSON5 file, then overlays env vars.
// A missing file is not an error: defaults plus env apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, cfg.validate()
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json5.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, cfg.validate()
}

// applyEnvOverrides overlays env vars onto the config.
// Env vars take precedence over file values.
func (c *Config) applyEnvOverrides() {
	envStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	envStr("WARDEN_DISCORD_TOKEN", &c.Discord.Token)
	envStr("WARDEN_SUMMARY_CHANNEL_ID", &c.Discord.SummaryChannelID)
	envStr("WARDEN_DEBUG_CHANNEL_ID", &c.Discord.DebugChannelID)
	envStr("WARDEN_ADMIN_ROLE", &c.Discord.AdminRole)

	envStr("WARDEN_CRCON_BASE_URL", &c.Moderation.BaseURL)
	envStr("WARDEN_CRCON_API_KEY", &c.Moderation.APIKey)

	envStr("WARDEN_XAI_API_BASE", &c.Provider.APIBase)
	envStr("WARDEN_XAI_API_KEY", &c.Provider.APIKey)
	envStr("WARDEN_MODEL", &c.Provider.Model)

	envStr("WARDEN_PROMPT_FILE", &c.Ticketing.PromptFile)
	if v := os.Getenv("WARDEN_QUIET_WINDOW_SECONDS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			c.Ticketing.QuietWindowSeconds = f
		}
	}
}

// validate rejects configs the bot cannot start with.
func (c *Config) validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("missing discord token (WARDEN_DISCORD_TOKEN)")
	}
	if c.Moderation.BaseURL == "" {
		return fmt.Errorf("missing moderation base URL")
	}
	if c.Moderation.APIKey == "" {
		return fmt.Errorf("missing moderation API key (WARDEN_CRCON_API_KEY)")
	}
	if c.Provider.APIKey == "" {
		return fmt.Errorf("missing provider API key (WARDEN_XAI_API_KEY)")
	}
	return nil
}
