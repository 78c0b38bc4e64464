package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/wardenhq/warden/internal/support"
)

const escalationColor = 0xffa500

// escalationEmbed renders the operator-channel summary artifact. Content is
// rebuilt from the escalation content on every call.
func escalationEmbed(content support.EscalationContent) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "Ticket escalation",
		Description: content.Summary,
		Color:       escalationColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Ticket", Value: fmt.Sprintf("<#%s>", content.TicketChannelID), Inline: true},
		},
	}

	if content.PlayerID != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Player id",
			Value: content.PlayerID,
		})
	}

	if len(content.Records) > 0 {
		var lines []string
		for _, rec := range content.Records {
			action := rec.Action
			if action == "" {
				action = "unknown"
			}
			reason := rec.Reason
			if reason == "" {
				reason = "N/A"
			}
			lines = append(lines, fmt.Sprintf("%s (%s) at %s by %s",
				action, reason, orNA(rec.Timestamp), orNA(rec.By)))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Recent punishments (with reason)",
			Value: strings.Join(lines, "\n"),
		})
	} else if content.PlayerID != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Recent punishments",
			Value: "None found",
		})
	}

	return embed
}

// escalationComponents attaches the admin buttons once a player id is known.
func escalationComponents(content support.EscalationContent) []discordgo.MessageComponent {
	if content.PlayerID == "" {
		return nil
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Remove all bans/blacklists (incl. perma)",
					Style:    discordgo.SuccessButton,
					CustomID: clearAllButtonPrefix + content.TicketChannelID,
				},
				discordgo.Button{
					Label:    "Show ticket info",
					Style:    discordgo.PrimaryButton,
					CustomID: ticketInfoPrefix + content.TicketChannelID,
				},
			},
		},
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
