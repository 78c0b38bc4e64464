package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wardenhq/warden/internal/config"
	"github.com/wardenhq/warden/internal/crcon"
	"github.com/wardenhq/warden/internal/discord"
	"github.com/wardenhq/warden/internal/providers"
	"github.com/wardenhq/warden/internal/resolve"
	"github.com/wardenhq/warden/internal/support"
)

func runBot() error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	baseHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(baseHandler))

	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	prompts, err := config.NewPromptStore(cfg.Ticketing.PromptFile)
	if err != nil {
		return fmt.Errorf("load prompt: %w", err)
	}
	stop := make(chan struct{})
	defer close(stop)
	if err := prompts.Watch(stop); err != nil {
		slog.Warn("prompt hot reload unavailable", "error", err)
	}

	// One shared connection pool for CRCON and the AI provider; individual
	// request/response cycles are independent across tickets.
	httpClient := &http.Client{Timeout: 90 * time.Second}

	crconClient := crcon.New(cfg.Moderation, httpClient)
	provider := providers.NewOpenAIProvider("xai",
		cfg.Provider.APIKey, cfg.Provider.APIBase, cfg.Provider.Model, httpClient)

	adapter, err := discord.New(cfg.Discord, cfg.Ticketing.OwnerSettleDelay(), crconClient)
	if err != nil {
		return fmt.Errorf("create discord adapter: %w", err)
	}

	svc := support.NewService(support.Deps{
		Ticketing: cfg.Ticketing,
		Provider:  provider,
		Model:     cfg.Provider,
		Resolver:  resolve.New(crconClient, cfg.Ticketing.PunishmentRecords),
		Actions:   crconClient,
		Messenger: adapter,
		Notifier:  support.NewNotifier(adapter, crconClient),
		Prompts:   prompts,
	})
	adapter.SetService(svc)

	ctx := context.Background()
	if err := adapter.Start(ctx); err != nil {
		return fmt.Errorf("start discord adapter: %w", err)
	}

	// Mirror warnings into the debug channel once the gateway is up.
	slog.SetDefault(slog.New(adapter.LogMirror(baseHandler)))
	slog.Info("warden running", "tickets", svc.Registry().Len())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	slog.Info("shutting down")
	return adapter.Stop(ctx)
}
