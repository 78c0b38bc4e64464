package resolve

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/wardenhq/warden/internal/crcon"
	"github.com/wardenhq/warden/internal/ticket"
)

type fakeBackend struct {
	players       []crcon.Player
	searchErr     error
	searchCalls   int
	lastSearch    string
	records       []crcon.Record
	historyErr    error
	historyCalls  int
	lastHistoryID string
}

func (f *fakeBackend) SearchPlayers(_ context.Context, name string) ([]crcon.Player, error) {
	f.searchCalls++
	f.lastSearch = name
	return f.players, f.searchErr
}

func (f *fakeBackend) PlayerHistory(_ context.Context, playerID string, _ int) ([]crcon.Record, error) {
	f.historyCalls++
	f.lastHistoryID = playerID
	return f.records, f.historyErr
}

func newTestTicket(t *testing.T) *ticket.Ticket {
	t.Helper()
	reg := ticket.NewRegistry()
	tk, created := reg.GetOrCreate("chan-1", "owner-1", []ticket.Turn{
		ticket.TextTurn(ticket.RoleSystem, "initial prompt"),
	})
	if !created {
		t.Fatal("expected fresh ticket")
	}
	return tk
}

func TestResolveMessage_DirectID(t *testing.T) {
	backend := &fakeBackend{}
	r := New(backend, 15)
	tk := newTestTicket(t)

	adopted := r.ResolveMessage(context.Background(), tk, "Ich bin 76561198986670442")
	if !adopted {
		t.Fatal("expected id adoption")
	}
	if got := tk.PlayerID(); got != "76561198986670442" {
		t.Fatalf("player id = %q, want direct extraction", got)
	}
	// Direct extraction never touches the network, but the "ich bin" keyword
	// also yields a name candidate, which does trigger one search.
	if backend.historyCalls != 0 {
		t.Fatalf("history calls = %d, want 0", backend.historyCalls)
	}
}

func TestSearchAndAdopt_ZeroResults(t *testing.T) {
	backend := &fakeBackend{}
	r := New(backend, 15)
	tk := newTestTicket(t)
	before := tk.HistoryLen()

	if r.SearchAndAdopt(context.Background(), tk, "UnknownPlayer99") {
		t.Fatal("expected no adoption for zero results")
	}
	if tk.PlayerID() != "" {
		t.Fatalf("player id changed to %q on empty search", tk.PlayerID())
	}
	if got := tk.HistoryLen() - before; got != 1 {
		t.Fatalf("diagnostic turns appended = %d, want exactly 1", got)
	}
	last := tk.Snapshot(0)[tk.HistoryLen()-1]
	if last.Role != ticket.RoleSystem || !strings.Contains(last.Content, "UnknownPlayer99") {
		t.Fatalf("unexpected diagnostic turn: %+v", last)
	}
}

func TestSearchAndAdopt_BestMatchByLastSeen(t *testing.T) {
	old := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	backend := &fakeBackend{
		players: []crcon.Player{
			{ID: "stale-id", Names: []crcon.Alias{{Name: "Wolf", LastSeen: old}}},
			{ID: "fresh-id", Names: []crcon.Alias{{Name: "Wolf77", LastSeen: recent}, {Name: "W0lf", LastSeen: old}}},
		},
	}
	r := New(backend, 15)
	tk := newTestTicket(t)

	if !r.SearchAndAdopt(context.Background(), tk, "Wolf") {
		t.Fatal("expected adoption")
	}
	if got := tk.PlayerID(); got != "fresh-id" {
		t.Fatalf("adopted %q, want player with latest alias", got)
	}
	if backend.lastSearch != "Wolf" {
		t.Fatalf("search name = %q", backend.lastSearch)
	}
}

func TestSearchAndAdopt_NetworkErrorMutatesNothing(t *testing.T) {
	backend := &fakeBackend{searchErr: errors.New("connection reset")}
	r := New(backend, 15)
	tk := newTestTicket(t)
	before := tk.HistoryLen()

	if r.SearchAndAdopt(context.Background(), tk, "Wolf") {
		t.Fatal("expected failure")
	}
	if tk.HistoryLen() != before {
		t.Fatal("network failure must not mutate history")
	}
}

func TestAddPlayerInfo_IdempotentPerID(t *testing.T) {
	backend := &fakeBackend{
		records: []crcon.Record{
			{Action: "temp_ban", Reason: "teamkill", By: "AdminX", Timestamp: "2025-05-01T10:00:00", Raw: json.RawMessage(`{"action":"temp_ban"}`)},
		},
	}
	r := New(backend, 15)
	tk := newTestTicket(t)

	tk.AdoptPlayerID("76561198986670442")
	r.AddPlayerInfo(context.Background(), tk)
	if !tk.PlayerInfoAdded() {
		t.Fatal("expected playerInfoAdded after successful fetch")
	}
	afterFirst := tk.HistoryLen()

	// Same id again: no duplicate summary.
	r.AddPlayerInfo(context.Background(), tk)
	if backend.historyCalls != 1 {
		t.Fatalf("history calls = %d, want 1 (idempotent per id)", backend.historyCalls)
	}
	if tk.HistoryLen() != afterFirst {
		t.Fatal("repeat fetch for same id appended turns")
	}

	// Different id: exactly one more summary pair.
	tk.AdoptPlayerID("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	if tk.PlayerInfoAdded() {
		t.Fatal("id change must reset playerInfoAdded")
	}
	r.AddPlayerInfo(context.Background(), tk)
	if backend.historyCalls != 2 {
		t.Fatalf("history calls = %d, want 2", backend.historyCalls)
	}
	if got := tk.HistoryLen() - afterFirst; got != 2 {
		t.Fatalf("turns appended for new id = %d, want 2 (summary + synopsis)", got)
	}
}

func TestAddPlayerInfo_FailureLeavesGuardUnset(t *testing.T) {
	backend := &fakeBackend{historyErr: errors.New("timeout")}
	r := New(backend, 15)
	tk := newTestTicket(t)
	tk.AdoptPlayerID("76561198986670442")

	r.AddPlayerInfo(context.Background(), tk)
	if tk.PlayerInfoAdded() {
		t.Fatal("fetch failure must leave the guard unset")
	}
	last := tk.Snapshot(0)[tk.HistoryLen()-1]
	if last.Role != ticket.RoleSystem || !strings.Contains(last.Content, "Could not load") {
		t.Fatalf("expected diagnostic turn, got %+v", last)
	}

	// Retry succeeds once the backend recovers.
	backend.historyErr = nil
	r.AddPlayerInfo(context.Background(), tk)
	if !tk.PlayerInfoAdded() {
		t.Fatal("retry after recovery should set the guard")
	}
}

func TestAddPlayerInfo_Synopsis(t *testing.T) {
	tests := []struct {
		name    string
		records []crcon.Record
		want    string
	}{
		{
			name: "latest ban relevant entry",
			records: []crcon.Record{
				{Action: "warning", Reason: "chat"},
				{Action: "perma_ban", Reason: "cheating", By: "AdminY", Timestamp: "2025-01-01T00:00:00"},
			},
			want: `perma_ban for "cheating"`,
		},
		{
			name:    "no ban entries",
			records: []crcon.Record{{Action: "warning", Reason: "chat"}},
			want:    "No ban or blacklist entries found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{records: tt.records}
			r := New(backend, 15)
			tk := newTestTicket(t)
			tk.AdoptPlayerID("76561198986670442")

			r.AddPlayerInfo(context.Background(), tk)
			history := tk.Snapshot(0)
			synopsis := history[len(history)-1].Content
			if !strings.Contains(synopsis, tt.want) {
				t.Errorf("synopsis %q does not contain %q", synopsis, tt.want)
			}
		})
	}
}
