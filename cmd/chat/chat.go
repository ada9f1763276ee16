package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	chatfeedback "github.com/set-night/chatfeedback"
	"github.com/set-night/chatfeedback/internal/config"
	"github.com/set-night/chatfeedback/internal/console"
	"github.com/set-night/chatfeedback/internal/repository"
	"github.com/set-night/chatfeedback/internal/service"
	"github.com/set-night/chatfeedback/internal/session"
	"github.com/set-night/chatfeedback/internal/telegram"
)

var errSetup = errors.New("environment setup failed")

func runChat(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(out)
	if err != nil {
		return err
	}

	logs, err := setupLogging(cfg.LogFile, debug)
	if err != nil {
		console.Troubleshoot(out, err, debug)
		return err
	}
	defer logs.Close()

	migrations, err := fs.Sub(chatfeedback.MigrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}
	store, err := repository.Open(ctx, cfg, migrations)
	if err != nil {
		slog.Error("failed to open store", "store", cfg.Store, "error", err)
		console.Troubleshoot(out, err, debug)
		return err
	}
	defer store.Close()

	backend, err := service.NewOpenRouterService(cfg.APIKey, cfg.BaseURL)
	if err != nil {
		console.Troubleshoot(out, err, debug)
		return err
	}

	opts := service.ModelOptions{
		Model:        cfg.Model,
		Temperature:  cfg.Temperature,
		SystemPrompt: cfg.SystemPrompt,
	}
	if cfg.ShowCost {
		if model, err := backend.GetModel(ctx, cfg.Model); err != nil {
			slog.Warn("model pricing unavailable", "model", cfg.Model, "error", err)
		} else {
			opts.Pricing = model
		}
	}
	client := service.NewModelClient(backend, opts)

	var notifier session.Notifier
	if cfg.TelegramEnabled() {
		n, err := telegram.NewBotNotifier(cfg)
		if err != nil {
			slog.Warn("telegram notifications disabled", "error", err)
		} else {
			notifier = n
		}
	}

	prompter := console.New(cmd.InOrStdin(), out)
	defer prompter.Close()

	ctrl := session.NewController(session.Options{
		Model:    client,
		Exit:     service.NewExitClassifier(client, config.ExitPhrases),
		History:  store,
		Feedback: store,
		Prompter: prompter,
		Notifier: notifier,
		ShowCost: cfg.ShowCost,
	})

	console.Banner(out, cfg.Model, ctrl.ID())
	slog.Info("session started", "chat_id", ctrl.ID(), "model", cfg.Model, "store", cfg.Store)

	if err := ctrl.Run(ctx); err != nil {
		slog.Error("session failed", "chat_id", ctrl.ID(), "error", err)
		console.Troubleshoot(out, err, debug)
		return err
	}
	return nil
}

// loadConfig prepares the env files and fails with guidance when the API
// key is not usable.
func loadConfig(out io.Writer) (*config.Config, error) {
	created, err := config.EnsureEnvFiles(envFile)
	if err != nil {
		slog.Warn("could not create env files", "error", err)
	}
	if created {
		fmt.Fprintf(out, "Created %s. Add your OpenRouter API key to it and run chat again.\n", envFile)
	}

	cfg, err := config.Load(envFile)
	if err != nil {
		fmt.Fprintf(out, "Could not read configuration: %v\n", err)
		return nil, errors.Join(errSetup, err)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(out, "\n%v\n\n", err)
		if errors.Is(err, config.ErrMissingCredential) || errors.Is(err, config.ErrPlaceholderCredential) {
			fmt.Fprint(out, config.SetupGuidance(err, envFile))
		}
		return nil, errors.Join(errSetup, err)
	}
	if config.APIKeyLooksSuspicious(cfg.APIKey) {
		fmt.Fprintln(out, "Warning: the API key format looks unusual. Continuing anyway.")
		slog.Warn("api key format looks unusual")
	}
	return cfg, nil
}
