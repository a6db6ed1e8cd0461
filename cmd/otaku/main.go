package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iba200/otaku-wireframe/internal/api"
	"github.com/iba200/otaku-wireframe/internal/cli"
	"github.com/iba200/otaku-wireframe/internal/config"
	"github.com/iba200/otaku-wireframe/internal/logger"
	"github.com/iba200/otaku-wireframe/internal/session"
	"github.com/iba200/otaku-wireframe/internal/tokenstore"
	"github.com/iba200/otaku-wireframe/internal/view"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration",
			slog.String("error", err.Error()))
	}
	logger.Setup(cfg.LogLevel, "text", os.Stderr)

	// Token storage and the alert channel for auth and server failures.
	// Alerts go to stderr so rendered output stays clean on stdout.
	tokens := tokenstore.New(cfg.TokenFile)
	alerts := view.NewAlerts(os.Stderr, cfg.NoColor)

	client, err := api.NewClient(cfg.ServerURL, cfg.HTTPTimeout, tokens, alerts)
	if err != nil {
		logger.Fatal("Failed to create API client",
			slog.String("error", err.Error()))
	}

	// The session owns the signed-in user; alerts consult it so an expiry
	// is reported once instead of once per failed call.
	sess := session.New(client, tokens)
	alerts.Bind(sess)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	app := cli.New(cfg, client, sess, os.Stdin, os.Stdout, os.Stderr)
	code := app.Run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
