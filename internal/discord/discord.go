// Package discord connects the orchestration core to the Discord gateway:
// ticket channel events, the identity-capture affordance, escalation embeds
// in the operator channel, and admin buttons.
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/wardenhq/warden/internal/config"
	"github.com/wardenhq/warden/internal/support"
)

// Adapter connects to Discord via the Bot API using gateway events and
// implements support.Messenger for the orchestration core.
type Adapter struct {
	session   *discordgo.Session
	cfg       config.DiscordConfig
	settle    time.Duration
	service   *support.Service
	actions   support.Actions
	botUserID string // populated on start
}

// New creates an Adapter from config. The service is attached separately
// because service and messenger reference each other.
func New(cfg config.DiscordConfig, settle time.Duration, actions support.Actions) (*Adapter, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsMessageContent

	return &Adapter{
		session: session,
		cfg:     cfg,
		settle:  settle,
		actions: actions,
	}, nil
}

// SetService attaches the orchestration service. Must be called before Start.
func (a *Adapter) SetService(svc *support.Service) { a.service = svc }

// Start opens the gateway connection and begins receiving events.
func (a *Adapter) Start(_ context.Context) error {
	slog.Info("starting discord bot")

	a.session.AddHandler(a.handleChannelCreate)
	a.session.AddHandler(a.handleMessage)
	a.session.AddHandler(a.handleInteraction)
	a.session.AddHandler(a.handleReactionAdd)

	if err := a.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}

	user, err := a.session.User("@me")
	if err != nil {
		a.session.Close()
		return fmt.Errorf("fetch discord bot identity: %w", err)
	}
	a.botUserID = user.ID

	slog.Info("discord bot connected", "username", user.Username, "id", user.ID)
	return nil
}

// Stop closes the gateway connection.
func (a *Adapter) Stop(_ context.Context) error {
	slog.Info("stopping discord bot")
	return a.session.Close()
}

// isTicketChannel reports whether a channel sits under one of the configured
// ticket categories.
func (a *Adapter) isTicketChannel(channelID string) bool {
	ch, err := a.channel(channelID)
	if err != nil || ch.Type != discordgo.ChannelTypeGuildText || ch.ParentID == "" {
		return false
	}
	parent, err := a.channel(ch.ParentID)
	if err != nil {
		return false
	}
	for _, category := range a.cfg.TicketCategories {
		if strings.EqualFold(parent.Name, category) {
			return true
		}
	}
	return false
}

// channel resolves a channel from state, falling back to the API.
func (a *Adapter) channel(channelID string) (*discordgo.Channel, error) {
	if ch, err := a.session.State.Channel(channelID); err == nil {
		return ch, nil
	}
	return a.session.Channel(channelID)
}

// hasAdminRole checks the configured admin role on a guild member.
func (a *Adapter) hasAdminRole(guildID string, member *discordgo.Member) bool {
	if member == nil {
		return false
	}
	for _, roleID := range member.Roles {
		role, err := a.session.State.Role(guildID, roleID)
		if err != nil {
			continue
		}
		if role.Name == a.cfg.AdminRole {
			return true
		}
	}
	return false
}

// handleChannelCreate watches for fresh ticket channels. Permission
// overwrites land a moment after creation, so owner detection waits for the
// settle delay before reading them.
func (a *Adapter) handleChannelCreate(_ *discordgo.Session, c *discordgo.ChannelCreate) {
	if c.Type != discordgo.ChannelTypeGuildText {
		return
	}

	go func() {
		time.Sleep(a.settle)

		if !a.isTicketChannel(c.ID) {
			return
		}

		ownerID := a.ownerFromOverwrites(c.GuildID, c.ID)
		a.service.HandleChannelCreate(c.ID, ownerID)
	}()
}

// ownerFromOverwrites finds the first non-bot member with a view-channel
// overwrite on the channel. Returns "" when none is derivable.
func (a *Adapter) ownerFromOverwrites(guildID, channelID string) string {
	ch, err := a.session.Channel(channelID)
	if err != nil {
		slog.Warn("ticket channel fetch failed", "channel_id", channelID, "error", err)
		return ""
	}

	for _, overwrite := range ch.PermissionOverwrites {
		if overwrite.Type != discordgo.PermissionOverwriteTypeMember {
			continue
		}
		if overwrite.Allow&discordgo.PermissionViewChannel == 0 {
			continue
		}
		member, err := a.session.GuildMember(guildID, overwrite.ID)
		if err != nil || member.User == nil || member.User.Bot {
			continue
		}
		return member.User.ID
	}
	return ""
}

// handleMessage feeds ticket messages into the orchestration pipeline.
func (a *Adapter) handleMessage(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.Author.ID == a.botUserID {
		return
	}
	if m.GuildID == "" || !a.isTicketChannel(m.ChannelID) {
		return
	}

	var images []string
	for _, att := range m.Attachments {
		if strings.HasPrefix(att.ContentType, "image/") {
			images = append(images, att.URL)
		}
	}
	if m.Content == "" && len(images) == 0 {
		return
	}

	in := support.Inbound{
		ChannelID:  m.ChannelID,
		SenderID:   m.Author.ID,
		SenderName: displayName(m),
		Content:    m.Content,
		ImageURLs:  images,
		FromAdmin:  a.hasAdminRole(m.GuildID, m.Member),
	}

	slog.Debug("ticket message received",
		"channel_id", m.ChannelID, "sender_id", m.Author.ID,
		"admin", in.FromAdmin, "images", len(images))

	// Each inbound message runs its own pipeline; one ticket stalling on a
	// network call must never block another.
	go a.service.HandleMessage(context.Background(), in)
}

// handleReactionAdd relays post-close feedback reactions to the debug channel.
func (a *Adapter) handleReactionAdd(_ *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.UserID == a.botUserID {
		return
	}
	if r.Emoji.Name != feedbackUpEmoji && r.Emoji.Name != feedbackDownEmoji {
		return
	}

	msg, err := a.session.ChannelMessage(r.ChannelID, r.MessageID)
	if err != nil || msg.Author == nil || msg.Author.ID != a.botUserID {
		return
	}
	if !isFeedbackPrompt(msg.Content) {
		return
	}

	slog.Info("ticket feedback received",
		"channel_id", r.ChannelID, "user_id", r.UserID, "feedback", r.Emoji.Name)
	if a.cfg.DebugChannelID != "" {
		text := fmt.Sprintf("Feedback for ticket <#%s> from <@%s>: %s",
			r.ChannelID, r.UserID, r.Emoji.Name)
		if _, err := a.session.ChannelMessageSend(a.cfg.DebugChannelID, text); err != nil {
			slog.Warn("feedback relay failed", "error", err)
		}
	}
}

// displayName returns the best available name for a message author.
// Priority: server nickname > global display name > username.
func displayName(m *discordgo.MessageCreate) string {
	if m.Member != nil && m.Member.Nick != "" {
		return m.Member.Nick
	}
	if m.Author.GlobalName != "" {
		return m.Author.GlobalName
	}
	return m.Author.Username
}
