package ticket

import "sync"

// Registry owns the map of channel id → Ticket.
type Registry struct {
	mu      sync.Mutex
	tickets map[string]*Ticket
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tickets: make(map[string]*Ticket)}
}

// GetOrCreate returns the ticket for a channel, creating it with the given
// owner and seed history if absent. The first creation wins: concurrent calls
// for the same channel all observe the same ticket. Returns true when this
// call created the ticket.
func (r *Registry) GetOrCreate(channelID, ownerID string, seed []Turn) (*Ticket, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.tickets[channelID]; ok {
		return t, false
	}

	history := make([]Turn, len(seed))
	copy(history, seed)

	t := &Ticket{
		ChannelID: channelID,
		ownerID:   ownerID,
		history:   history,
	}
	r.tickets[channelID] = t
	return t, true
}

// Get returns the ticket for a channel, or nil.
func (r *Registry) Get(channelID string) *Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tickets[channelID]
}

// Remove deletes a ticket from the registry and cancels its timers.
// Idempotent; returns the removed ticket, or nil if absent.
func (r *Registry) Remove(channelID string) *Ticket {
	r.mu.Lock()
	t, ok := r.tickets[channelID]
	if ok {
		delete(r.tickets, channelID)
	}
	r.mu.Unlock()

	if !ok {
		return nil
	}
	t.Close()
	return t
}

// Len returns the number of active tickets.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tickets)
}
