package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/wardenhq/warden/internal/support"
)

const (
	feedbackUpEmoji   = "👍"
	feedbackDownEmoji = "👎"

	// maxMessageLen is Discord's per-message content limit.
	maxMessageLen = 2000
)

// feedbackMarkers identify the bot's own post-close feedback prompts when a
// reaction arrives.
var feedbackMarkers = []string{
	"War alles okay mit dem Support?",
	"Was everything okay with the support?",
}

func isFeedbackPrompt(content string) bool {
	for _, marker := range feedbackMarkers {
		if strings.Contains(content, marker) {
			return true
		}
	}
	return false
}

// SendText posts a message to a channel, chunking if over the Discord limit.
// Returns the id of the first chunk.
func (a *Adapter) SendText(_ context.Context, channelID, text string) (string, error) {
	firstID := ""
	for len(text) > 0 {
		chunk := text
		if len(chunk) > maxMessageLen {
			cutAt := maxMessageLen
			if idx := strings.LastIndexByte(text[:maxMessageLen], '\n'); idx > maxMessageLen/2 {
				cutAt = idx + 1
			}
			chunk = text[:cutAt]
			text = text[cutAt:]
		} else {
			text = ""
		}

		msg, err := a.session.ChannelMessageSend(channelID, chunk)
		if err != nil {
			return firstID, fmt.Errorf("send discord message: %w", err)
		}
		if firstID == "" {
			firstID = msg.ID
		}
	}
	return firstID, nil
}

// SendIdentityCapture posts the capture affordance: a button that opens the
// name-or-id modal.
func (a *Adapter) SendIdentityCapture(_ context.Context, channelID string) (string, error) {
	msg, err := a.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:    "Please provide your exact in-game name or player id:",
		Components: captureComponents(),
	})
	if err != nil {
		return "", fmt.Errorf("send identity capture: %w", err)
	}
	return msg.ID, nil
}

// EditIdentityCapture re-renders an existing capture affordance in place.
func (a *Adapter) EditIdentityCapture(_ context.Context, channelID, messageID string) error {
	content := "Please provide your exact in-game name or player id:"
	components := captureComponents()
	_, err := a.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    channelID,
		ID:         messageID,
		Content:    &content,
		Components: &components,
	})
	if err != nil {
		return fmt.Errorf("edit identity capture: %w", err)
	}
	return nil
}

// SendEscalation posts the operator-channel summary artifact.
func (a *Adapter) SendEscalation(_ context.Context, content support.EscalationContent) (string, error) {
	msg, err := a.session.ChannelMessageSendComplex(a.cfg.SummaryChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{escalationEmbed(content)},
		Components: escalationComponents(content),
	})
	if err != nil {
		return "", fmt.Errorf("send escalation embed: %w", err)
	}
	return msg.ID, nil
}

// EditEscalation rewrites an existing summary artifact in place.
func (a *Adapter) EditEscalation(_ context.Context, messageID string, content support.EscalationContent) error {
	embeds := []*discordgo.MessageEmbed{escalationEmbed(content)}
	components := escalationComponents(content)
	_, err := a.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    a.cfg.SummaryChannelID,
		ID:         messageID,
		Embeds:     &embeds,
		Components: &components,
	})
	if err != nil {
		return fmt.Errorf("edit escalation embed: %w", err)
	}
	return nil
}

// SendFeedbackPrompt posts the post-close feedback message with its reaction
// affordances.
func (a *Adapter) SendFeedbackPrompt(_ context.Context, channelID, text string) error {
	msg, err := a.session.ChannelMessageSend(channelID, text)
	if err != nil {
		return fmt.Errorf("send feedback prompt: %w", err)
	}
	for _, emoji := range []string{feedbackUpEmoji, feedbackDownEmoji} {
		if err := a.session.MessageReactionAdd(channelID, msg.ID, emoji); err != nil {
			return fmt.Errorf("add feedback reaction: %w", err)
		}
	}
	return nil
}

var _ support.Messenger = (*Adapter)(nil)
