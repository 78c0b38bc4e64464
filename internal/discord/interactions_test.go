package discord

import (
	"strings"
	"testing"

	"github.com/wardenhq/warden/internal/ticket"
)

func TestBuildTranscript(t *testing.T) {
	reg := ticket.NewRegistry()
	tk, _ := reg.GetOrCreate("chan", "owner", []ticket.Turn{
		ticket.TextTurn(ticket.RoleSystem, "internal prompt, never shown"),
	})
	tk.AppendTurn(ticket.TextTurn(ticket.RoleUser, "I was banned"))
	tk.AppendTurn(ticket.TextTurn(ticket.RoleAssistant, "Sorry to hear that, what's your id?"))
	tk.AppendTurn(ticket.Turn{Role: ticket.RoleUser, Parts: []ticket.Part{
		{Type: "text", Text: "here is proof"},
		{Type: "image_url", ImageURL: "https://cdn.example/x.png"},
	}})

	out := buildTranscript(tk)
	if strings.Contains(out, "internal prompt") {
		t.Fatal("system turns must not leak into the transcript")
	}
	if !strings.Contains(out, "User: I was banned") {
		t.Errorf("user turn missing: %q", out)
	}
	if !strings.Contains(out, "Bot: Sorry to hear that") {
		t.Errorf("bot turn missing: %q", out)
	}
	if !strings.Contains(out, "here is proof [with attachment]") {
		t.Errorf("attachment turn not summarized: %q", out)
	}
}

func TestBuildTranscriptTruncates(t *testing.T) {
	reg := ticket.NewRegistry()
	tk, _ := reg.GetOrCreate("chan", "owner", nil)
	for i := 0; i < 10; i++ {
		tk.AppendTurn(ticket.TextTurn(ticket.RoleUser, strings.Repeat("x", 400)))
	}

	if out := buildTranscript(tk); len(out) > maxMessageLen-100 {
		t.Fatalf("transcript len = %d, exceeds the message budget", len(out))
	}
}
