package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// PromptMessage is one seed turn of the initial ticket history.
type PromptMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LoadPrompt parses a prompt file. The file may hold a bare JSON string, a
// single {role, content} object, or an array of them. A bare string becomes
// one system message.
func LoadPrompt(path string) ([]PromptMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt file: %w", err)
	}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, fmt.Errorf("prompt file %s is empty", path)
	}

	var asString string
	if err := json.Unmarshal([]byte(trimmed), &asString); err == nil {
		return []PromptMessage{{Role: "system", Content: asString}}, nil
	}

	var asObject PromptMessage
	if err := json.Unmarshal([]byte(trimmed), &asObject); err == nil && asObject.Content != "" {
		if asObject.Role == "" {
			asObject.Role = "system"
		}
		return []PromptMessage{asObject}, nil
	}

	var asList []PromptMessage
	if err := json.Unmarshal([]byte(trimmed), &asList); err == nil && len(asList) > 0 {
		return asList, nil
	}

	return nil, fmt.Errorf("prompt file %s: expected string, message object, or message array", path)
}

// PromptStore holds the current initial prompt and reloads it when the
// backing file changes. New tickets pick up the reloaded prompt; existing
// ticket histories are untouched.
type PromptStore struct {
	path string

	mu       sync.RWMutex
	messages []PromptMessage
}

// NewPromptStore loads the prompt file once. Load failure is fatal here so a
// broken prompt is caught at startup, not on the first ticket.
func NewPromptStore(path string) (*PromptStore, error) {
	msgs, err := LoadPrompt(path)
	if err != nil {
		return nil, err
	}
	return &PromptStore{path: path, messages: msgs}, nil
}

// Snapshot returns a copy of the current prompt messages.
func (p *PromptStore) Snapshot() []PromptMessage {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]PromptMessage, len(p.messages))
	copy(out, p.messages)
	return out
}

// Watch reloads the prompt on file changes until stop is closed.
// Reload failures keep the previous prompt and log a warning.
func (p *PromptStore) Watch(stop <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create prompt watcher: %w", err)
	}

	// Watch the directory: editors commonly replace the file (rename+create),
	// which drops a watch on the file itself.
	dir := filepath.Dir(p.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch prompt dir: %w", err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-stop:
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(p.path) {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				msgs, err := LoadPrompt(p.path)
				if err != nil {
					slog.Warn("prompt reload failed, keeping previous prompt",
						"path", p.path, "error", err)
					continue
				}
				p.mu.Lock()
				p.messages = msgs
				p.mu.Unlock()
				slog.Info("prompt reloaded", "path", p.path, "messages", len(msgs))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("prompt watcher error", "error", err)
			}
		}
	}()

	return nil
}
