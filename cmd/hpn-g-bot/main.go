// Package main is the entry point for the hpn-g-bot CLI.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hpn/hpn-g-bot/internal/bot"
	"github.com/hpn/hpn-g-bot/internal/config"
	"github.com/hpn/hpn-g-bot/internal/security"
	"github.com/hpn/hpn-g-bot/internal/ui"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// reportError writes err and, for configuration problems, where to look.
func reportError(w io.Writer, err error) {
	fmt.Fprintln(w, "Error:", err)
	if config.IsConfigError(err) || config.IsValidationError(err) {
		ui.PrintWarning(w, "check config.yaml and the HPN_BOT_* environment variables")
	}
}

// rootOptions holds flags shared by every subcommand.
type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "hpn-g-bot",
		Short:         "Forward chat messages to a hosted completion model",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config.yaml (default: search ., ./configs, /etc/hpn-g-bot, $HOME/.hpn-g-bot)")

	cmd.AddCommand(newAskCmd(opts))
	cmd.AddCommand(newServeCmd(opts))

	return cmd
}

// runtime bundles what every subcommand builds from configuration.
type runtime struct {
	cfg    *config.Configuration
	logger *slog.Logger
	bot    *bot.Bot
}

// load reads configuration, sets up logging and constructs the bot.
// A missing API key fails here, before any command does work.
func (o *rootOptions) load(logOutput io.Writer) (*runtime, error) {
	cfg, err := config.GetConfigWithPath(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := setupLogger(logOutput, cfg.Logging, cfg.OpenAI.APIKey)

	b, err := bot.New(cfg.BotOptions(), cfg.ModelOptions(), bot.WithLogger(logger))
	if err != nil {
		logger.Error("failed to initialize chat adapter", slog.String("error", err.Error()))
		return nil, err
	}

	return &runtime{cfg: cfg, logger: logger, bot: b}, nil
}

// setupLogger creates a structured logger that never emits the API key.
func setupLogger(w io.Writer, cfg config.LoggingConfig, secrets ...string) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	logger := slog.New(security.NewRedactedHandler(handler, secrets...))
	slog.SetDefault(logger)

	return logger
}
