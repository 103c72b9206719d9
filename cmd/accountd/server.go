// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"

	"codeberg.org/oliverandrich/accountd/internal/accounts"
	"codeberg.org/oliverandrich/accountd/internal/config"
	"codeberg.org/oliverandrich/accountd/internal/database"
	"codeberg.org/oliverandrich/accountd/internal/i18n"
	"codeberg.org/oliverandrich/accountd/internal/mailer"
	"codeberg.org/oliverandrich/accountd/internal/repository"
	"codeberg.org/oliverandrich/accountd/internal/token"
)

func runServer(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)

	setupLogger(cfg.Log.Level, cfg.Log.Format)

	if err := i18n.Init(); err != nil {
		return fmt.Errorf("initializing i18n: %w", err)
	}

	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	repo := repository.New(db)

	issuer, err := token.NewIssuer(token.Config{
		Secret:          []byte(cfg.Token.Secret),
		Issuer:          cfg.Token.Issuer,
		SessionTTL:      time.Duration(cfg.Token.SessionTTLHours) * time.Hour,
		ConfirmationTTL: time.Duration(cfg.Token.ConfirmationTTLHours) * time.Hour,
	})
	if err != nil {
		return fmt.Errorf("creating token issuer: %w", err)
	}

	notifier, err := mailer.NewService(&cfg.SMTP)
	if err != nil {
		return fmt.Errorf("creating mailer: %w", err)
	}

	svc := accounts.NewService(repo, issuer, notifier, cfg.Token.ConfirmationURL)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	setupRoutes(e, repo, svc)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_started", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		slog.Info("server_shutting_down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	return nil
}
