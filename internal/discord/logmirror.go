package discord

import (
	"context"
	"fmt"
	"log/slog"
)

// LogMirror wraps a slog handler and mirrors warning-level and higher records
// into the configured debug channel. Sends happen on a dedicated goroutine;
// when the buffer is full records are dropped rather than blocking the bot.
func (a *Adapter) LogMirror(base slog.Handler) slog.Handler {
	if a.cfg.DebugChannelID == "" {
		return base
	}

	m := &mirrorHandler{
		base:      base,
		adapter:   a,
		channelID: a.cfg.DebugChannelID,
		queue:     make(chan string, 64),
	}
	go m.pump()
	return m
}

type mirrorHandler struct {
	base      slog.Handler
	adapter   *Adapter
	channelID string
	queue     chan string
	attrs     []slog.Attr
}

func (m *mirrorHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return m.base.Enabled(ctx, level)
}

func (m *mirrorHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelWarn {
		line := fmt.Sprintf("[%s] [%s] %s", r.Time.Format("2006-01-02 15:04:05"), r.Level, r.Message)
		for _, attr := range m.attrs {
			line += fmt.Sprintf(" %s=%v", attr.Key, attr.Value)
		}
		r.Attrs(func(attr slog.Attr) bool {
			line += fmt.Sprintf(" %s=%v", attr.Key, attr.Value)
			return true
		})
		select {
		case m.queue <- line:
		default: // full, drop
		}
	}
	return m.base.Handle(ctx, r)
}

func (m *mirrorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *m
	clone.base = m.base.WithAttrs(attrs)
	clone.attrs = append(append([]slog.Attr{}, m.attrs...), attrs...)
	return &clone
}

func (m *mirrorHandler) WithGroup(name string) slog.Handler {
	clone := *m
	clone.base = m.base.WithGroup(name)
	return &clone
}

func (m *mirrorHandler) pump() {
	for line := range m.queue {
		if len(line) > maxMessageLen {
			line = line[:maxMessageLen]
		}
		// Best effort; a failing mirror must never log at warn level itself.
		_, _ = m.adapter.session.ChannelMessageSend(m.channelID, line)
	}
}
