package support

import (
	"context"

	"github.com/wardenhq/warden/internal/crcon"
)

// EscalationContent is the full content of the operator-facing summary
// artifact. It is always rebuilt from current ticket state, never patched
// incrementally.
type EscalationContent struct {
	TicketChannelID string
	PlayerID        string
	Summary         string
	Records         []crcon.Record // recent punishments, newest first
}

// Messenger is the chat-platform collaborator the orchestrator talks to.
// Implementations return opaque message ids that can later be edited by
// handle; the orchestrator never owns platform message objects.
type Messenger interface {
	// SendText posts a message to a ticket channel and returns its id.
	SendText(ctx context.Context, channelID, text string) (string, error)

	// SendIdentityCapture renders the identity-capture affordance (button +
	// modal) in a ticket channel and returns the message id.
	SendIdentityCapture(ctx context.Context, channelID string) (string, error)

	// EditIdentityCapture refreshes a previously rendered capture affordance.
	EditIdentityCapture(ctx context.Context, channelID, messageID string) error

	// SendEscalation posts the operator-channel summary artifact.
	SendEscalation(ctx context.Context, content EscalationContent) (string, error)

	// EditEscalation rewrites an existing summary artifact in place.
	EditEscalation(ctx context.Context, messageID string, content EscalationContent) error

	// SendFeedbackPrompt posts the post-close feedback message.
	SendFeedbackPrompt(ctx context.Context, channelID, text string) error
}

// Actions is the slice of the moderation API the response engine dispatches
// directives to.
type Actions interface {
	ClearTransient(ctx context.Context, playerID string) bool
	ClearAll(ctx context.Context, playerID string) bool
}
