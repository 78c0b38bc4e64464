package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/wardenhq/warden/internal/crcon"
	"github.com/wardenhq/warden/internal/ticket"
)

// Backend is the slice of the moderation API the resolver needs.
type Backend interface {
	SearchPlayers(ctx context.Context, name string) ([]crcon.Player, error)
	PlayerHistory(ctx context.Context, playerID string, pageSize int) ([]crcon.Record, error)
}

// Resolver resolves human-readable identities from ticket text and maintains
// the per-ticket extended punishment summary.
type Resolver struct {
	backend     Backend
	recordLimit int
}

// New creates a Resolver. recordLimit caps how many punishment records the
// extended summary serializes into the ticket context.
func New(backend Backend, recordLimit int) *Resolver {
	if recordLimit <= 0 {
		recordLimit = 15
	}
	return &Resolver{backend: backend, recordLimit: recordLimit}
}

// ResolveMessage runs both resolution phases on one inbound message and
// reports whether a new player id was adopted. Direct extraction never calls
// the network; name search runs whenever a candidate name is present, even if
// a direct id already matched.
func (r *Resolver) ResolveMessage(ctx context.Context, t *ticket.Ticket, text string) bool {
	adopted := false

	if id := ExtractID(text); id != "" {
		if t.AdoptPlayerID(id) {
			slog.Info("player id extracted from message", "channel_id", t.ChannelID, "player_id", id)
			adopted = true
		}
	}

	if name := ExtractName(text); name != "" {
		if r.SearchAndAdopt(ctx, t, name) {
			adopted = true
		}
	}

	return adopted
}

// SearchAndAdopt queries the fuzzy name search and adopts the best match:
// the record whose latest alias last-seen timestamp is most recent. Zero
// results is a normal outcome and appends one diagnostic system turn; the
// player id stays unchanged. Network failures are logged without history
// mutation so the next message retries cleanly.
func (r *Resolver) SearchAndAdopt(ctx context.Context, t *ticket.Ticket, name string) bool {
	players, err := r.backend.SearchPlayers(ctx, name)
	if err != nil {
		slog.Warn("player name search failed", "channel_id", t.ChannelID, "name", name, "error", err)
		return false
	}

	if len(players) == 0 {
		slog.Debug("player name search empty", "channel_id", t.ChannelID, "name", name)
		t.AppendSystem(fmt.Sprintf(
			"Name search for %q found no matching player. Possibly a misspelling or a clan tag mismatch.", name))
		return false
	}

	best := crcon.BestMatch(players)
	if best == nil || best.ID == "" {
		return false
	}

	if !t.AdoptPlayerID(best.ID) {
		return false
	}
	slog.Info("player id adopted from name search",
		"channel_id", t.ChannelID, "name", name, "player_id", best.ID)
	t.AppendSystem(fmt.Sprintf("Best player id for name %q: %s", name, best.ID))
	return true
}

// AddPlayerInfo fetches the extended punishment summary for the current
// player id and appends it to the ticket history exactly once per id. A
// repeat call for the same id is a no-op. Fetch or parse failures append a
// diagnostic turn and leave the guard unset so a later retry can succeed.
func (r *Resolver) AddPlayerInfo(ctx context.Context, t *ticket.Ticket) {
	playerID := t.PlayerID()
	if playerID == "" || t.PlayerInfoAdded() {
		return
	}

	records, err := r.backend.PlayerHistory(ctx, playerID, 2*r.recordLimit)
	if err != nil {
		slog.Warn("player info fetch failed", "channel_id", t.ChannelID, "player_id", playerID, "error", err)
		t.AppendSystem(fmt.Sprintf("Could not load player info for id %s: %v", playerID, err))
		return
	}

	limited := records
	if len(limited) > r.recordLimit {
		limited = limited[:r.recordLimit]
	}

	t.AppendSystem(fmt.Sprintf(
		"Player info for id %s (up to %d most recent punishment entries, newest first): %s",
		playerID, r.recordLimit, serializeRecords(limited)))
	t.AppendSystem(banSynopsis(records))

	if t.MarkPlayerInfoAdded(playerID) {
		slog.Info("player info added to ticket context",
			"channel_id", t.ChannelID, "player_id", playerID, "records", len(limited))
	}
}

// serializeRecords emits the raw API entries where available so the model
// sees every field, not just the ones this client names.
func serializeRecords(records []crcon.Record) string {
	items := make([]json.RawMessage, 0, len(records))
	for _, rec := range records {
		if len(rec.Raw) > 0 {
			items = append(items, rec.Raw)
			continue
		}
		if data, err := json.Marshal(rec); err == nil {
			items = append(items, data)
		}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// banSynopsis derives the one-line summary of the most recent ban or
// blacklist relevant entry.
func banSynopsis(records []crcon.Record) string {
	latest := crcon.LatestBanRelevant(records)
	if latest == nil {
		return "No ban or blacklist entries found in the data – possibly only warnings or no punishments at all."
	}

	action := latest.Action
	if action == "" {
		action = "unknown"
	}
	reason := latest.Reason
	if reason == "" {
		reason = "no reason given"
	}
	timestamp := latest.Timestamp
	if timestamp == "" {
		timestamp = "unknown"
	}
	by := latest.By
	if by == "" {
		by = "unknown"
	}
	return fmt.Sprintf("Most recent relevant punishment: %s for %q at %s by %s. Full list above.",
		action, reason, timestamp, by)
}
