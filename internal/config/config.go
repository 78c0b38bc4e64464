package config

import "time"

// Config is the root configuration for the Warden bot.
type Config struct {
	Discord    DiscordConfig    `json:"discord"`
	Moderation ModerationConfig `json:"moderation"`
	Provider   ProviderConfig   `json:"provider"`
	Ticketing  TicketingConfig  `json:"ticketing"`
}

// DiscordConfig configures the Discord gateway adapter.
// Token is NEVER read from the config file (secret) — only from env WARDEN_DISCORD_TOKEN.
type DiscordConfig struct {
	Token string `json:"-"` // from env WARDEN_DISCORD_TOKEN only

	// TicketCategories are the (case-insensitive) category names whose text
	// channels are treated as support tickets.
	TicketCategories []string `json:"ticket_categories"`

	// AdminRole is the role name that marks a sender as privileged.
	AdminRole string `json:"admin_role"`

	// SummaryChannelID is the operator-facing channel for escalation embeds.
	SummaryChannelID string `json:"summary_channel_id"`

	// DebugChannelID mirrors warning-level logs into a Discord channel.
	// Empty disables the mirror.
	DebugChannelID string `json:"debug_channel_id,omitempty"`
}

// ModerationConfig configures the CRCON moderation API client.
type ModerationConfig struct {
	BaseURL string `json:"base_url"`
	APIKey  string `json:"-"` // from env WARDEN_CRCON_API_KEY only

	// RequestsPerSecond bounds outbound CRCON traffic. Zero disables limiting.
	RequestsPerSecond float64 `json:"requests_per_second,omitempty"`
	Burst             int     `json:"burst,omitempty"`
}

// ProviderConfig configures the chat-completion provider (OpenAI-compatible).
type ProviderConfig struct {
	APIBase     string  `json:"api_base"`
	APIKey      string  `json:"-"` // from env WARDEN_XAI_API_KEY only
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

// TicketingConfig tunes the per-ticket orchestration state machine.
type TicketingConfig struct {
	// PromptFile is the JSON file holding the initial system prompt.
	// Accepts a bare string, a single message object, or a message array.
	PromptFile string `json:"prompt_file"`

	// QuietWindowSeconds is the debounce delay before a coalesced AI
	// invocation fires.
	QuietWindowSeconds float64 `json:"quiet_window_seconds,omitempty"`

	// AdminOverrideMinutes is the sliding expiry for the admin-override gate.
	AdminOverrideMinutes float64 `json:"admin_override_minutes,omitempty"`

	// ContextTurns is the number of most recent non-system turns kept in the
	// provider context. System turns are always kept.
	ContextTurns int `json:"context_turns,omitempty"`

	// PunishmentRecords caps how many history records the extended player
	// summary serializes into the ticket context.
	PunishmentRecords int `json:"punishment_records,omitempty"`

	// OwnerSettleSeconds waits for permission overwrites to land before
	// reading the ticket owner from a freshly created channel.
	OwnerSettleSeconds float64 `json:"owner_settle_seconds,omitempty"`
}

// QuietWindow returns the debounce delay as a duration.
func (t TicketingConfig) QuietWindow() time.Duration {
	return time.Duration(t.QuietWindowSeconds * float64(time.Second))
}

// AdminOverrideTTL returns the admin-override expiry as a duration.
func (t TicketingConfig) AdminOverrideTTL() time.Duration {
	return time.Duration(t.AdminOverrideMinutes * float64(time.Minute))
}

// OwnerSettleDelay returns the owner-detection settle delay as a duration.
func (t TicketingConfig) OwnerSettleDelay() time.Duration {
	return time.Duration(t.OwnerSettleSeconds * float64(time.Second))
}
