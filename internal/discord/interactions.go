package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/wardenhq/warden/internal/ticket"
)

// Component custom ids. The clear-all and info buttons carry the ticket
// channel id after a colon so the handler can find the ticket.
const (
	captureButtonID = "warden_identity_button"
	captureModalID  = "warden_identity_modal"
	captureInputID  = "warden_identity_value"

	clearAllButtonPrefix = "warden_clear_all:"
	ticketInfoPrefix     = "warden_ticket_info:"
)

// transcriptTurns caps the DM transcript for the ticket-info button.
const transcriptTurns = 30

func captureComponents() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Enter exact name or player id",
					Style:    discordgo.PrimaryButton,
					CustomID: captureButtonID,
				},
			},
		},
	}
}

func (a *Adapter) handleInteraction(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionMessageComponent:
		a.handleComponent(i)
	case discordgo.InteractionModalSubmit:
		a.handleModalSubmit(i)
	}
}

func (a *Adapter) handleComponent(i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID

	switch {
	case customID == captureButtonID:
		a.openCaptureModal(i)
	case strings.HasPrefix(customID, clearAllButtonPrefix):
		a.handleClearAllButton(i, strings.TrimPrefix(customID, clearAllButtonPrefix))
	case strings.HasPrefix(customID, ticketInfoPrefix):
		a.handleTicketInfoButton(i, strings.TrimPrefix(customID, ticketInfoPrefix))
	}
}

// openCaptureModal shows the name-or-id modal. Only the ticket owner may use
// the affordance.
func (a *Adapter) openCaptureModal(i *discordgo.InteractionCreate) {
	t := a.service.Registry().Get(i.ChannelID)
	if t == nil || interactionUserID(i) != t.OwnerID() {
		a.respondEphemeral(i, "Only the ticket owner can fill this in!")
		return
	}

	err := a.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: captureModalID,
			Title:    "Exact in-game name or player id",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    captureInputID,
							Label:       "Name (with clan tag) OR player id",
							Placeholder: "e.g. ℧ | Narcotic OR 76561198986670442",
							Style:       discordgo.TextInputShort,
							Required:    true,
							MinLength:   4,
							MaxLength:   50,
						},
					},
				},
			},
		},
	})
	if err != nil {
		slog.Warn("capture modal open failed", "channel_id", i.ChannelID, "error", err)
	}
}

func (a *Adapter) handleModalSubmit(i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()
	if data.CustomID != captureModalID {
		return
	}

	value := ""
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range actionsRow.Components {
			if input, ok := comp.(*discordgo.TextInput); ok && input.CustomID == captureInputID {
				value = strings.TrimSpace(input.Value)
			}
		}
	}
	if value == "" {
		a.respondEphemeral(i, "Empty input – please try again.")
		return
	}

	a.respond(i, fmt.Sprintf("Thanks! Processing %q now...", value))

	go a.service.HandleIdentitySubmit(context.Background(), i.ChannelID, interactionUserID(i), value)
}

// handleClearAllButton runs the full clear for the ticket's player.
// Admin-only.
func (a *Adapter) handleClearAllButton(i *discordgo.InteractionCreate, ticketChannelID string) {
	if !a.hasAdminRole(i.GuildID, i.Member) {
		a.respondEphemeral(i, "Only admins may use these buttons!")
		return
	}

	playerID := ""
	if t := a.service.Registry().Get(ticketChannelID); t != nil {
		playerID = t.PlayerID()
	}
	if playerID == "" {
		a.respondEphemeral(i, "No player id on this ticket – check manually.")
		return
	}

	a.respondEphemeral(i, fmt.Sprintf("Running full ban/blacklist clear for %s...", playerID))

	go func() {
		ok := a.actions.ClearAll(context.Background(), playerID)
		status := "had no effect"
		if ok {
			status = "succeeded (at least one ban/blacklist removed)"
		}
		if _, err := a.session.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
			Content: fmt.Sprintf("Full ban/blacklist clear %s.", status),
			Flags:   discordgo.MessageFlagsEphemeral,
		}); err != nil {
			slog.Warn("clear-all followup failed", "error", err)
		}
	}()
}

// handleTicketInfoButton DMs the requesting admin a transcript of the ticket.
func (a *Adapter) handleTicketInfoButton(i *discordgo.InteractionCreate, ticketChannelID string) {
	if !a.hasAdminRole(i.GuildID, i.Member) {
		a.respondEphemeral(i, "Only admins may use these buttons!")
		return
	}

	t := a.service.Registry().Get(ticketChannelID)
	if t == nil {
		a.respondEphemeral(i, "Ticket no longer active.")
		return
	}

	transcript := buildTranscript(t)
	dm, err := a.session.UserChannelCreate(interactionUserID(i))
	if err == nil {
		_, err = a.session.ChannelMessageSend(dm.ID,
			fmt.Sprintf("Info for ticket <#%s>:\n%s", ticketChannelID, transcript))
	}
	if err != nil {
		// DM blocked: show it ephemerally instead.
		a.respondEphemeral(i, fmt.Sprintf("DM blocked – info here (only you can see it):\n%s", transcript))
		return
	}
	a.respondEphemeral(i, "Info sent via DM!")
}

// buildTranscript renders the last turns of a ticket for the admin DM.
func buildTranscript(t *ticket.Ticket) string {
	var b strings.Builder
	b.WriteString("Ticket conversation (most recent turns):\n\n")
	for _, turn := range t.Snapshot(transcriptTurns) {
		if turn.Role == ticket.RoleSystem {
			continue
		}
		prefix := "Bot"
		if turn.Role == ticket.RoleUser {
			prefix = "User"
		}
		content := turn.Content
		if len(turn.Parts) > 0 {
			content = "[message with image/attachment]"
			for _, part := range turn.Parts {
				if part.Type == "text" && part.Text != "" {
					content = part.Text + " [with attachment]"
					break
				}
			}
		}
		fmt.Fprintf(&b, "%s: %s\n\n", prefix, content)
	}
	out := b.String()
	if len(out) > maxMessageLen-100 {
		out = out[:maxMessageLen-100]
	}
	return out
}

func (a *Adapter) respond(i *discordgo.InteractionCreate, content string) {
	err := a.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
	if err != nil {
		slog.Warn("interaction respond failed", "error", err)
	}
}

func (a *Adapter) respondEphemeral(i *discordgo.InteractionCreate, content string) {
	err := a.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		slog.Warn("interaction respond failed", "error", err)
	}
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
