package crcon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// clearAllEndpoints is the fixed order for a full clear: transient ban,
// permanent unban, permanent-ban record, blacklist.
var clearAllEndpoints = []string{
	"remove_temp_ban",
	"unban",
	"remove_perma_ban",
	"unblacklist_player",
}

// ClearTransient removes a temporary ban for the player.
// Returns true when the endpoint reported success.
func (c *Client) ClearTransient(ctx context.Context, playerID string) bool {
	if playerID == "" {
		return false
	}
	ok, err := c.postAction(ctx, "remove_temp_ban", playerID)
	if err != nil {
		slog.Warn("crcon temp-ban clear failed", "player_id", playerID, "error", err)
		return false
	}
	slog.Info("crcon temp-ban clear", "player_id", playerID, "success", ok)
	return ok
}

// ClearAll calls every clear endpoint in order. Each call is independent — a
// failing endpoint never aborts later ones. Overall success is true iff at
// least one endpoint reported success.
func (c *Client) ClearAll(ctx context.Context, playerID string) bool {
	if playerID == "" {
		return false
	}

	any := false
	for _, endpoint := range clearAllEndpoints {
		ok, err := c.postAction(ctx, endpoint, playerID)
		if err != nil {
			slog.Warn("crcon clear endpoint failed",
				"endpoint", endpoint, "player_id", playerID, "error", err)
			continue
		}
		slog.Info("crcon clear endpoint",
			"endpoint", endpoint, "player_id", playerID, "success", ok)
		if ok {
			any = true
		}
	}
	slog.Info("crcon full clear done", "player_id", playerID, "success", any)
	return any
}

// postAction posts {player_id} to a clear endpoint. Success means HTTP 200
// and a result field that is absent, null, true, or textually successful.
func (c *Client) postAction(ctx context.Context, endpoint, playerID string) (bool, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return false, err
		}
	}

	payload, err := json.Marshal(map[string]string{"player_id": playerID})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+endpoint, bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("crcon: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("crcon: %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("crcon: %s: status %d", endpoint, resp.StatusCode)
	}

	return resultIndicatesSuccess(body), nil
}

// resultIndicatesSuccess inspects the {result} payload of an action response.
func resultIndicatesSuccess(body []byte) bool {
	var resp map[string]json.RawMessage
	if err := json.Unmarshal(body, &resp); err != nil {
		return false
	}
	raw, ok := resp["result"]
	if !ok {
		return true // absent result counts as success
	}

	var asBool bool
	if err := json.Unmarshal(raw, &asBool); err == nil {
		return asBool
	}
	if string(raw) == "null" {
		return true
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return strings.Contains(strings.ToLower(asString), "success")
	}
	return false
}
