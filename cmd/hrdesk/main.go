package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/opshr/hrdesk/pkg/agent"
	"github.com/opshr/hrdesk/pkg/audit"
	"github.com/opshr/hrdesk/pkg/cache"
	"github.com/opshr/hrdesk/pkg/config"
	"github.com/opshr/hrdesk/pkg/faq"
	"github.com/opshr/hrdesk/pkg/model/gemini"
	"github.com/opshr/hrdesk/pkg/rbac"
	"github.com/opshr/hrdesk/pkg/server"
	"github.com/opshr/hrdesk/pkg/session"
	"github.com/opshr/hrdesk/pkg/store/sqlite"
	"github.com/opshr/hrdesk/pkg/tools"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	// Setup logger.
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	apiKey, err := config.APIKey()
	if err != nil {
		slog.Error("Missing credentials", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Initialize store.
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		os.MkdirAll(dir, 0755)
	}
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// Initialize model provider.
	provider, err := gemini.New(ctx, apiKey)
	if err != nil {
		slog.Error("Failed to initialize Gemini provider", "error", err)
		os.Exit(1)
	}

	// Guard and tool registry are built once and passed explicitly.
	guard := rbac.NewGuard(cfg.Permissions)
	registry, err := tools.NewRegistry(tools.Catalog(tools.Stores{
		Employees:  store,
		Leave:      store,
		Attendance: store,
		Payroll:    store,
		Users:      store,
	}, guard))
	if err != nil {
		slog.Error("Failed to build tool registry", "error", err)
		os.Exit(1)
	}

	matcher, err := faq.New(append(faq.Defaults(), cfg.ExtraFAQ...))
	if err != nil {
		slog.Error("Failed to compile FAQ table", "error", err)
		os.Exit(1)
	}

	recorder := audit.NewRecorder(store)
	sessions := session.NewManager(store, cfg.Sessions.MaxTurns, cfg.Sessions.MaxAge.Std())

	a := agent.New(provider, registry, guard, matcher,
		cache.New(store, cfg.Cache.TTL.Std()), sessions, recorder,
		agent.Options{
			ModelName:     cfg.Model.Name,
			MaxToolRounds: cfg.Model.MaxToolRounds,
			ModelTimeout:  cfg.Model.Timeout.Std(),
		})

	// Start server.
	srv := server.New(a, recorder, registry, sessions)
	if err := srv.Start(cfg.ListenAddr); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
