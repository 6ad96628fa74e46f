package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"tally/internal/amqp"
	"tally/internal/config"
	"tally/internal/core"
	"tally/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting notify-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL must be set for the notify worker")
		os.Exit(1)
	}

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	handler := func(ev *amqp.Event) error {
		message, icon, ok := renderNotification(ev)
		if !ok {
			logger.Warn("Ignoring event with unknown kind", "kind", ev.Kind)
			return nil
		}
		if _, err := repo.CreateNotification(ctx, ev.UserID, message, icon); err != nil {
			return fmt.Errorf("create notification for user %d: %w", ev.UserID, err)
		}
		logger.Info("Notification created", "user_id", ev.UserID, "kind", ev.Kind)
		return nil
	}

	if err := amqpClient.ConsumeEvents(ctx, handler); err != nil && ctx.Err() == nil {
		logger.Error("Consumer stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}

// renderNotification maps an event to notification text and icon.
func renderNotification(ev *amqp.Event) (message, icon string, ok bool) {
	switch ev.Kind {
	case amqp.KindBudgetAlert:
		spent := core.Money{Cents: ev.SpentCents}
		budget := core.Money{Cents: ev.BudgetCents}
		return fmt.Sprintf("Budget exceeded for %s: spent %s of %s", ev.Month, spent, budget),
			"warning", true
	case amqp.KindExportCompleted:
		return fmt.Sprintf("Your expense export is ready (%d rows)", ev.Rows),
			"info", true
	}
	return "", "", false
}
