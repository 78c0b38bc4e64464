package ticket

import (
	"sync"
	"testing"
)

func TestGetOrCreateFirstWins(t *testing.T) {
	reg := NewRegistry()

	first, created := reg.GetOrCreate("chan", "alice", []Turn{TextTurn(RoleSystem, "p")})
	if !created {
		t.Fatal("expected creation")
	}
	second, created := reg.GetOrCreate("chan", "bob", nil)
	if created {
		t.Fatal("second call must not create")
	}
	if first != second {
		t.Fatal("both calls must observe the same ticket")
	}
	if got := second.OwnerID(); got != "alice" {
		t.Fatalf("owner = %q, want the first caller's", got)
	}
}

func TestGetOrCreateConcurrent(t *testing.T) {
	reg := NewRegistry()
	const n = 16
	out := make([]*Ticket, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out[i], _ = reg.GetOrCreate("chan", "owner", nil)
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if out[i] != out[0] {
			t.Fatal("concurrent creators observed different tickets")
		}
	}
	if reg.Len() != 1 {
		t.Fatalf("registry len = %d, want 1", reg.Len())
	}
}

func TestRemoveClosesTicket(t *testing.T) {
	reg := NewRegistry()
	tk, _ := reg.GetOrCreate("chan", "owner", nil)

	removed := reg.Remove("chan")
	if removed != tk {
		t.Fatal("remove should return the ticket it evicted")
	}
	if !removed.Closed() {
		t.Fatal("removed ticket must be closed")
	}
	if reg.Get("chan") != nil {
		t.Fatal("ticket still resolvable after remove")
	}
	if reg.Remove("chan") != nil {
		t.Fatal("second remove should return nil")
	}

	// A fresh ticket for the same channel is a new session.
	fresh, created := reg.GetOrCreate("chan", "owner", nil)
	if !created || fresh == tk {
		t.Fatal("channel reuse must create a distinct ticket")
	}
}
