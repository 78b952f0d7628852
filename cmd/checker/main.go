package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/samber/do/v2"
	slogmulti "github.com/samber/slog-multi"

	"github.com/TheStevenMiller/Discord-Bot/internal/di"
	"github.com/TheStevenMiller/Discord-Bot/internal/modules/checker"
	"github.com/TheStevenMiller/Discord-Bot/internal/shared/config"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Setup structured logging with multiple handlers using slog-multi:
	// human-readable lines on stdout, JSON errors on stderr
	jsonHandler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(slogmulti.Fanout(textHandler, jsonHandler)))

	// Setup dependency injection
	injector, err := di.Setup()
	if err != nil {
		slog.Error("Failed to setup dependency injection", "error", err)
		return 1
	}
	defer func() {
		if err := di.Shutdown(injector); err != nil {
			slog.Error("Error during shutdown", "error", err)
		}
	}()

	cfg, err := do.Invoke[*config.Config](injector)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	// Re-level the text handler now that the configured level is known
	textHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})
	slog.SetDefault(slog.New(slogmulti.Fanout(textHandler, jsonHandler)))

	service, err := do.Invoke[*checker.Service](injector)
	if err != nil {
		slog.Error("Failed to initialize components", "error", err)
		return 1
	}

	// Test mode only verifies that all components can initialize
	if len(args) > 0 && args[0] == "--test" {
		slog.Info("All components initialized successfully")
		return 0
	}

	result, err := service.Run(context.Background())
	if err != nil {
		slog.Error("Error during message check", "error", err)
		return 1
	}

	summary, err := result.SummaryLine()
	if err != nil {
		slog.Error("Failed to render run summary", "error", err)
		return 1
	}

	// Single machine-parseable line for structured log collection
	fmt.Println(summary)
	return 0
}
