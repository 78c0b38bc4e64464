// Package ticket owns the per-channel support ticket state: conversation
// history, resolved player identity, the admin-override gate, and the
// cancellable timers driving debounced AI invocations.
package ticket

import (
	"sync"
	"time"
)

// Turn roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Part is one element of a multi-part user turn (text plus image URLs).
type Part struct {
	Type     string `json:"type"` // "text" or "image_url"
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// Turn is one conversation turn. Content is used for plain text turns;
// Parts is set instead when the turn carries attachments.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content,omitempty"`
	Parts   []Part `json:"parts,omitempty"`
}

// TextTurn builds a plain text turn.
func TextTurn(role, content string) Turn {
	return Turn{Role: role, Content: content}
}

// Ticket is the conversational session for one Discord text channel.
// All mutable fields are guarded by mu; network calls never happen under it.
type Ticket struct {
	ChannelID string

	mu              sync.Mutex
	ownerID         string
	history         []Turn
	playerID        string
	playerInfoAdded bool
	language        string
	closed          bool

	adminActive bool
	adminGen    uint64
	adminTimer  *time.Timer

	pendingGen   uint64
	pendingTimer *time.Timer

	escalationRef string
	captureRef    string
}

// OwnerID returns the ticket owner. Immutable after creation.
func (t *Ticket) OwnerID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ownerID
}

// AppendTurn appends one turn to the history. No-op on a closed ticket.
func (t *Ticket) AppendTurn(turn Turn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.history = append(t.history, turn)
}

// AppendSystem appends a system-role diagnostic turn.
func (t *Ticket) AppendSystem(content string) {
	t.AppendTurn(TextTurn(RoleSystem, content))
}

// Snapshot returns a copy of the history trimmed to all system turns plus the
// most recent maxTurns non-system turns, preserving relative order.
// maxTurns <= 0 keeps everything.
func (t *Ticket) Snapshot(maxTurns int) []Turn {
	t.mu.Lock()
	defer t.mu.Unlock()

	if maxTurns <= 0 {
		out := make([]Turn, len(t.history))
		copy(out, t.history)
		return out
	}

	nonSystem := 0
	for _, turn := range t.history {
		if turn.Role != RoleSystem {
			nonSystem++
		}
	}

	skip := nonSystem - maxTurns
	out := make([]Turn, 0, len(t.history))
	for _, turn := range t.history {
		if turn.Role != RoleSystem && skip > 0 {
			skip--
			continue
		}
		out = append(out, turn)
	}
	return out
}

// HistoryLen returns the current history length.
func (t *Ticket) HistoryLen() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.history)
}

// PlayerID returns the resolved player id, empty if unresolved.
func (t *Ticket) PlayerID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playerID
}

// AdoptPlayerID adopts a newly resolved id. Adopting the current id (or an
// empty one) is a no-op. A changed id atomically resets the extended-info
// guard so the punishment summary is fetched again for the new id.
func (t *Ticket) AdoptPlayerID(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id == "" || id == t.playerID || t.closed {
		return false
	}
	t.playerID = id
	t.playerInfoAdded = false
	return true
}

// PlayerInfoAdded reports whether the extended punishment summary has been
// appended for the current player id.
func (t *Ticket) PlayerInfoAdded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playerInfoAdded
}

// MarkPlayerInfoAdded sets the extended-info guard, but only if the given id
// is still the current one. A racing re-resolution wins over a stale fetch.
func (t *Ticket) MarkPlayerInfoAdded(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id != t.playerID {
		return false
	}
	t.playerInfoAdded = true
	return true
}

// SetLanguageOnce records the detected language tag from the first inbound
// message. Later calls are no-ops.
func (t *Ticket) SetLanguageOnce(lang string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.language == "" {
		t.language = lang
	}
}

// Language returns the language tag picked from the first inbound message.
func (t *Ticket) Language() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.language
}

// AdminActive reports whether the admin-override gate is set.
func (t *Ticket) AdminActive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.adminActive
}

// SetAdminActive sets the admin-override gate and (re)arms its sliding expiry
// timer. Each privileged message pushes the expiry out again.
func (t *Ticket) SetAdminActive(ttl time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.adminActive = true
	t.adminGen++
	gen := t.adminGen
	if t.adminTimer != nil {
		t.adminTimer.Stop()
	}
	t.adminTimer = time.AfterFunc(ttl, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		// A reschedule that raced the firing wins.
		if gen != t.adminGen {
			return
		}
		t.adminActive = false
		t.adminTimer = nil
	})
}

// Closed reports whether the ticket has been torn down.
func (t *Ticket) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// Close marks the ticket terminal and cancels its outstanding timers.
// Returns false if the ticket was already closed. Timer bodies that already
// started are not interrupted; their generation check makes them no-ops.
func (t *Ticket) Close() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return false
	}
	t.closed = true
	t.pendingGen++
	t.adminGen++
	if t.pendingTimer != nil {
		t.pendingTimer.Stop()
		t.pendingTimer = nil
	}
	if t.adminTimer != nil {
		t.adminTimer.Stop()
		t.adminTimer = nil
	}
	return true
}

// EscalationRef returns the operator-channel summary message id, if any.
func (t *Ticket) EscalationRef() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.escalationRef
}

// SetEscalationRef remembers the operator-channel summary message id.
func (t *Ticket) SetEscalationRef(ref string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.escalationRef = ref
}

// CaptureRef returns the identity-capture message id, if any.
func (t *Ticket) CaptureRef() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.captureRef
}

// SetCaptureRef remembers the identity-capture message id.
func (t *Ticket) SetCaptureRef(ref string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.captureRef = ref
}
