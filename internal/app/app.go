// Package app provides application-level wiring and dependency injection
// for the control tower backend.
package app

import (
	"fmt"
	"log/slog"

	"scctower/internal/api"
	"scctower/internal/cache"
	"scctower/internal/config"
	"scctower/internal/databricks"
	"scctower/internal/service"
	"scctower/internal/task"
)

// Deps holds the external dependencies that main() must provide.
// These are things the app package cannot (or should not) create itself:
// config, the root logger, and the build version.
type Deps struct {
	Cfg     *config.Config
	Logger  *slog.Logger
	Version string
}

// App holds the fully-wired application. The handler carries everything the
// router needs.
type App struct {
	Handler *api.Handler
}

// New wires the Databricks client, query cache, services, and chat runner
// from the provided deps. The chat runner is conditional: when no serving
// endpoint is configured it stays nil and the chat routes answer 503.
func New(deps Deps) (*App, error) {
	cfg := deps.Cfg
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client := databricks.NewClient(databricks.Config{
		Host:                 cfg.DatabricksHost,
		Token:                cfg.DatabricksToken,
		WarehouseID:          cfg.WarehouseID,
		StatementWaitTimeout: cfg.StatementWaitTimeout,
		ChatConnectTimeout:   cfg.ChatConnectTimeout,
		ChatReadTimeout:      cfg.ChatReadTimeout,
	}, logger.With("component", "databricks"))

	queryCache := cache.New(client, logger.With("component", "query-cache"))

	dashboards, err := service.NewDashboardService(
		queryCache,
		cfg.FullSchema(),
		cfg.QueryCacheTTL,
		logger.With("component", "dashboard"),
	)
	if err != nil {
		return nil, fmt.Errorf("dashboard service: %w", err)
	}

	var chat *task.Runner
	if cfg.ChatEnabled() {
		invoker := &databricks.AgentInvoker{Client: client, Endpoint: cfg.ChatModel}
		chat = task.NewRunner(task.NewRegistry(), invoker, cfg.TaskRetention, logger.With("component", "chat"))
		logger.Info("chat agent enabled", "endpoint", cfg.ChatModel)
	} else {
		logger.Info("chat agent disabled (no serving endpoint configured)")
	}

	handler := api.NewHandler(dashboards, chat, client, deps.Version, logger.With("component", "api"))

	return &App{Handler: handler}, nil
}
