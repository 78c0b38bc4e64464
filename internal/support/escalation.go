package support

import (
	"context"
	"log/slog"
	"sync"

	"github.com/wardenhq/warden/internal/resolve"
	"github.com/wardenhq/warden/internal/ticket"
)

// Notifier maintains at most one live escalation artifact per ticket in the
// operator channel. The first upsert sends it, later upserts edit in place.
type Notifier struct {
	messenger Messenger
	history   resolve.Backend

	// locks serializes upserts per ticket so concurrent escalations can never
	// produce two artifacts.
	locks sync.Map // channelID → *sync.Mutex
}

// NewNotifier creates a Notifier. history may be nil; the artifact then skips
// the recent-punishments section.
func NewNotifier(messenger Messenger, history resolve.Backend) *Notifier {
	return &Notifier{messenger: messenger, history: history}
}

// Upsert sends or edits the ticket's escalation artifact. Content is rebuilt
// from the current ticket state on every call.
func (n *Notifier) Upsert(ctx context.Context, t *ticket.Ticket, summary string) {
	lock, _ := n.locks.LoadOrStore(t.ChannelID, &sync.Mutex{})
	mu := lock.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()

	if summary == "" {
		summary = "Waiting for info / player id from the user..."
	}

	content := EscalationContent{
		TicketChannelID: t.ChannelID,
		PlayerID:        t.PlayerID(),
		Summary:         summary,
	}
	if content.PlayerID != "" && n.history != nil {
		records, err := n.history.PlayerHistory(ctx, content.PlayerID, 10)
		if err != nil {
			slog.Warn("escalation punishment fetch failed",
				"channel_id", t.ChannelID, "player_id", content.PlayerID, "error", err)
		} else {
			if len(records) > 5 {
				records = records[:5]
			}
			content.Records = records
		}
	}

	if ref := t.EscalationRef(); ref != "" {
		if err := n.messenger.EditEscalation(ctx, ref, content); err != nil {
			slog.Warn("escalation edit failed", "channel_id", t.ChannelID, "ref", ref, "error", err)
		}
		return
	}

	ref, err := n.messenger.SendEscalation(ctx, content)
	if err != nil {
		slog.Warn("escalation send failed", "channel_id", t.ChannelID, "error", err)
		return
	}
	t.SetEscalationRef(ref)
}

// Forget drops the per-ticket lock after teardown.
func (n *Notifier) Forget(channelID string) {
	n.locks.Delete(channelID)
}
