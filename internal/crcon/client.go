// Package crcon is a client for the CRCON moderation backend: fuzzy player
// search, punishment history, and ban/blacklist clearing. All responses pass
// through a normalizing layer so the rest of the bot only ever sees one
// canonical record shape.
package crcon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/wardenhq/warden/internal/config"
)

// Client talks to a CRCON instance. Safe for concurrent use; all tickets
// share one client and its connection pool.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
}

// New creates a Client. httpClient may be shared with other API clients; nil
// falls back to a client with a 90 second budget per request.
func New(cfg config.ModerationConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 90 * time.Second}
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    httpClient,
		limiter: limiter,
	}
}

// Alias is one known name of a player with its last-seen timestamp.
type Alias struct {
	Name     string    `json:"name"`
	LastSeen time.Time `json:"-"`
}

func (a *Alias) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name     string `json:"name"`
		LastSeen string `json:"last_seen"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.Name = raw.Name
	if raw.LastSeen != "" {
		// CRCON emits ISO timestamps with and without zone suffix.
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04:05.999999"} {
			if ts, err := time.Parse(layout, raw.LastSeen); err == nil {
				a.LastSeen = ts
				break
			}
		}
	}
	return nil
}

// Player is one search result.
type Player struct {
	ID    string  `json:"player_id"`
	Names []Alias `json:"names"`
}

// lastSeen returns the latest last-seen timestamp over all aliases.
func (p Player) lastSeen() time.Time {
	var max time.Time
	for _, a := range p.Names {
		if a.LastSeen.After(max) {
			max = a.LastSeen
		}
	}
	return max
}

// BestMatch picks the player whose aliases were seen most recently. Ties keep
// the service's original ordering. Returns nil for an empty slice.
func BestMatch(players []Player) *Player {
	var best *Player
	for i := range players {
		if best == nil || players[i].lastSeen().After(best.lastSeen()) {
			best = &players[i]
		}
	}
	return best
}

// SearchPlayers runs a fuzzy, accent-insensitive name search.
// Zero results is a normal outcome, not an error.
func (c *Client) SearchPlayers(ctx context.Context, name string) ([]Player, error) {
	params := url.Values{
		"player_name":      {name},
		"exact_name_match": {"False"},
		"ignore_accent":    {"True"},
		"page_size":        {"20"},
	}

	body, err := c.get(ctx, "/get_players_history", params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Result struct {
			Players []Player `json:"players"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		// Unexpected shape is absence of data, not a crash.
		return nil, nil
	}
	return resp.Result.Players, nil
}

// PlayerHistory fetches the punishment history for a resolved player id,
// normalized into canonical records, newest first per the API ordering.
func (c *Client) PlayerHistory(ctx context.Context, playerID string, pageSize int) ([]Record, error) {
	params := url.Values{
		"player_id": {playerID},
		"page_size": {fmt.Sprintf("%d", pageSize)},
	}

	body, err := c.get(ctx, "/get_players_history", params)
	if err != nil {
		return nil, err
	}
	return normalizeRecords(body), nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("crcon: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("crcon: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, fmt.Errorf("crcon: %s: status %d: %s", path, resp.StatusCode, string(snippet))
	}

	return io.ReadAll(resp.Body)
}
