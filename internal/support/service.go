// Package support is the per-ticket orchestration core: it owns the ticket
// registry, debounced AI invocations, identity resolution triggers, directive
// dispatch, and the admin-override gate.
package support

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/wardenhq/warden/internal/config"
	"github.com/wardenhq/warden/internal/providers"
	"github.com/wardenhq/warden/internal/resolve"
	"github.com/wardenhq/warden/internal/ticket"
)

// PromptSource supplies the initial system prompt for new tickets.
type PromptSource interface {
	Snapshot() []config.PromptMessage
}

// Service wires the ticket registry, resolver, moderation actions, provider
// and platform messenger into the orchestration state machine.
type Service struct {
	cfg       config.TicketingConfig
	provider  providers.Provider
	model     config.ProviderConfig
	registry  *ticket.Registry
	debounce  *ticket.Debouncer
	resolver  *resolve.Resolver
	actions   Actions
	messenger Messenger
	notifier  *Notifier
	prompts   PromptSource
}

// Deps bundles the collaborators for NewService.
type Deps struct {
	Ticketing config.TicketingConfig
	Provider  providers.Provider
	Model     config.ProviderConfig
	Resolver  *resolve.Resolver
	Actions   Actions
	Messenger Messenger
	Notifier  *Notifier
	Prompts   PromptSource
}

// NewService creates the orchestration service.
func NewService(d Deps) *Service {
	return &Service{
		cfg:       d.Ticketing,
		provider:  d.Provider,
		model:     d.Model,
		registry:  ticket.NewRegistry(),
		debounce:  ticket.NewDebouncer(d.Ticketing.QuietWindow()),
		resolver:  d.Resolver,
		actions:   d.Actions,
		messenger: d.Messenger,
		notifier:  d.Notifier,
		prompts:   d.Prompts,
	}
}

// Registry exposes the ticket registry (admin views, tests).
func (s *Service) Registry() *ticket.Registry { return s.registry }

// seedTurns converts the current prompt into the initial ticket history.
func (s *Service) seedTurns() []ticket.Turn {
	msgs := s.prompts.Snapshot()
	seed := make([]ticket.Turn, 0, len(msgs))
	for _, m := range msgs {
		seed = append(seed, ticket.TextTurn(m.Role, m.Content))
	}
	return seed
}

// HandleChannelCreate pre-creates the ticket when the owner is already
// derivable from the new channel (permission overwrites). When ownerID is
// empty the ticket waits for the first message instead.
func (s *Service) HandleChannelCreate(channelID, ownerID string) {
	if ownerID == "" {
		slog.Debug("ticket channel created without derivable owner, waiting for first message",
			"channel_id", channelID)
		return
	}
	if _, created := s.registry.GetOrCreate(channelID, ownerID, s.seedTurns()); created {
		slog.Info("ticket created from channel event", "channel_id", channelID, "owner_id", ownerID)
	}
}

// Inbound is one message-received event from the platform adapter.
type Inbound struct {
	ChannelID  string
	SenderID   string
	SenderName string
	Content    string
	ImageURLs  []string
	FromAdmin  bool
}

// HandleMessage runs the inbound pipeline for one ticket message: ownership,
// admin gate, history append, identity resolution, debounce reset.
func (s *Service) HandleMessage(ctx context.Context, in Inbound) {
	t, created := s.registry.GetOrCreate(in.ChannelID, in.SenderID, s.seedTurns())
	if created {
		slog.Info("ticket created from first message",
			"channel_id", in.ChannelID, "owner_id", in.SenderID)
	}

	if in.FromAdmin {
		s.handleAdminMessage(t, in)
		return
	}

	if in.SenderID != t.OwnerID() {
		return
	}

	t.SetLanguageOnce(DetectLanguage(in.Content))
	t.AppendTurn(buildUserTurn(in))
	slog.Debug("owner message appended",
		"channel_id", in.ChannelID, "history_len", t.HistoryLen())

	if s.resolver.ResolveMessage(ctx, t, in.Content) {
		s.notifier.Upsert(ctx, t, "")
	}
	s.resolver.AddPlayerInfo(ctx, t)

	s.debounce.Schedule(t, func() {
		s.respond(context.Background(), t)
	})
}

// handleAdminMessage records a privileged turn and arms the sliding
// admin-override gate. A pending debounced invocation is left in place; its
// check-at-entry gate suppresses it when it fires.
func (s *Service) handleAdminMessage(t *ticket.Ticket, in Inbound) {
	t.SetAdminActive(s.cfg.AdminOverrideTTL())
	t.AppendTurn(ticket.TextTurn(ticket.RoleUser,
		fmt.Sprintf("[Admin %s]: %s", in.SenderName, in.Content)))
	slog.Info("admin override active",
		"channel_id", t.ChannelID, "admin", in.SenderName, "ttl", s.cfg.AdminOverrideTTL())
}

// HandleIdentitySubmit processes an identity-capture form submission.
// Only the ticket owner may submit; others are ignored here (the adapter
// additionally rejects them in the UI).
func (s *Service) HandleIdentitySubmit(ctx context.Context, channelID, senderID, value string) {
	t := s.registry.Get(channelID)
	if t == nil || t.Closed() || senderID != t.OwnerID() {
		return
	}

	found := false
	if id := resolve.ExtractID(value); id != "" {
		if t.AdoptPlayerID(id) {
			t.AppendSystem(fmt.Sprintf(
				"User provided player id via capture form: %s. Player info is being loaded.", id))
			s.notifier.Upsert(ctx, t, "")
			s.resolver.AddPlayerInfo(ctx, t)
			found = true
		}
	} else if s.resolver.SearchAndAdopt(ctx, t, value) {
		t.AppendSystem(fmt.Sprintf(
			"Name %q processed via capture form – player id found.", value))
		s.notifier.Upsert(ctx, t, "")
		s.resolver.AddPlayerInfo(ctx, t)
		found = true
	}

	if !found {
		t.AppendSystem(fmt.Sprintf(
			"Processing %q from the capture form failed – no player found. User must provide an exact name or id.", value))
	}

	s.debounce.Schedule(t, func() {
		s.respond(context.Background(), t)
	})
}

// respond is the debounced AI cycle. It only ever runs from a fired debounce
// task; closed and admin-override tickets are suppressed at entry. An AI call
// already in flight when the admin gate rises is allowed to finish.
func (s *Service) respond(ctx context.Context, t *ticket.Ticket) {
	if t.Closed() || t.AdminActive() {
		slog.Debug("response suppressed",
			"channel_id", t.ChannelID, "closed", t.Closed(), "admin_active", t.AdminActive())
		return
	}

	runID := uuid.NewString()
	snapshot := t.Snapshot(s.cfg.ContextTurns)
	slog.Info("starting AI response",
		"channel_id", t.ChannelID, "run_id", runID, "context_turns", len(snapshot))

	resp, err := s.provider.Chat(ctx, providers.ChatRequest{
		Messages:    toProviderMessages(snapshot),
		Model:       s.model.Model,
		MaxTokens:   s.model.MaxTokens,
		Temperature: s.model.Temperature,
	})
	if err != nil {
		// No history mutation: the next debounce cycle resubmits the
		// unchanged context.
		slog.Warn("AI call failed after retries",
			"channel_id", t.ChannelID, "run_id", runID, "error", err)
		if _, sendErr := s.messenger.SendText(ctx, t.ChannelID, apology(t.Language())); sendErr != nil {
			slog.Warn("apology send failed", "channel_id", t.ChannelID, "error", sendErr)
		}
		return
	}

	s.dispatch(ctx, t, runID, resp.Content)
}

// dispatch parses directives from the raw reply and fans out side effects in
// the fixed order: display text, capture affordance, moderation action, close
// teardown, escalation forwarding, history append. The unstripped reply is
// what enters the canonical history.
func (s *Service) dispatch(ctx context.Context, t *ticket.Ticket, runID, reply string) {
	directives, display := ParseDirectives(reply)
	slog.Debug("reply parsed", "channel_id", t.ChannelID, "run_id", runID,
		"close", directives.Close, "clear", directives.ClearTransient,
		"escalate", directives.Escalate, "capture", directives.RequestCapture)

	if display != "" {
		if _, err := s.messenger.SendText(ctx, t.ChannelID, display); err != nil {
			slog.Warn("reply send failed", "channel_id", t.ChannelID, "error", err)
		}
	}

	if directives.RequestCapture {
		s.renderCapture(ctx, t)
	}

	if directives.ClearTransient {
		if playerID := t.PlayerID(); playerID != "" {
			if s.actions.ClearTransient(ctx, playerID) {
				if _, err := s.messenger.SendText(ctx, t.ChannelID, clearNotice(t.Language())); err != nil {
					slog.Warn("clear notice send failed", "channel_id", t.ChannelID, "error", err)
				}
			}
		}
	}

	if directives.Close {
		s.closeTicket(ctx, t)
	}

	if directives.Escalate {
		s.notifier.Upsert(ctx, t, directives.Summary)
	}

	// Append the raw reply, markers included; no-op once closed.
	t.AppendTurn(ticket.TextTurn(ticket.RoleAssistant, reply))
}

// renderCapture sends the identity-capture affordance or refreshes the
// existing one; never two per ticket.
func (s *Service) renderCapture(ctx context.Context, t *ticket.Ticket) {
	if ref := t.CaptureRef(); ref != "" {
		if err := s.messenger.EditIdentityCapture(ctx, t.ChannelID, ref); err != nil {
			slog.Warn("capture refresh failed", "channel_id", t.ChannelID, "error", err)
		}
		return
	}
	ref, err := s.messenger.SendIdentityCapture(ctx, t.ChannelID)
	if err != nil {
		slog.Warn("capture send failed", "channel_id", t.ChannelID, "error", err)
		return
	}
	t.SetCaptureRef(ref)
}

// closeTicket tears the ticket down exactly once: registry removal and timer
// cancellation happen before anything else, then the feedback prompt goes out.
func (s *Service) closeTicket(ctx context.Context, t *ticket.Ticket) {
	removed := s.registry.Remove(t.ChannelID)
	if removed == nil {
		// Already torn down by a racing close.
		return
	}
	s.notifier.Forget(t.ChannelID)
	slog.Info("ticket closed", "channel_id", t.ChannelID)

	if err := s.messenger.SendFeedbackPrompt(ctx, t.ChannelID, feedbackPrompt(t.Language())); err != nil {
		slog.Warn("feedback prompt failed", "channel_id", t.ChannelID, "error", err)
	}
}

// buildUserTurn packs an inbound message into a history turn, switching to
// multi-part content when images are attached.
func buildUserTurn(in Inbound) ticket.Turn {
	if len(in.ImageURLs) == 0 {
		return ticket.TextTurn(ticket.RoleUser, in.Content)
	}

	parts := make([]ticket.Part, 0, len(in.ImageURLs)+1)
	text := in.Content
	if text == "" {
		text = "User uploaded a screenshot:"
	}
	parts = append(parts, ticket.Part{Type: "text", Text: text})
	for _, url := range in.ImageURLs {
		parts = append(parts, ticket.Part{Type: "image_url", ImageURL: url})
	}
	return ticket.Turn{Role: ticket.RoleUser, Parts: parts}
}

// toProviderMessages converts history turns into the provider wire types.
func toProviderMessages(turns []ticket.Turn) []providers.Message {
	msgs := make([]providers.Message, 0, len(turns))
	for _, turn := range turns {
		msg := providers.Message{Role: turn.Role, Content: turn.Content}
		for _, part := range turn.Parts {
			msg.Parts = append(msg.Parts, providers.ContentPart{
				Type:     part.Type,
				Text:     part.Text,
				ImageURL: part.ImageURL,
			})
		}
		msgs = append(msgs, msg)
	}
	return msgs
}
