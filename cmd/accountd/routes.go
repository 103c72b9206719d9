// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package main

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"codeberg.org/oliverandrich/accountd/internal/accounts"
	"codeberg.org/oliverandrich/accountd/internal/handlers"
	"codeberg.org/oliverandrich/accountd/internal/middleware"
	"codeberg.org/oliverandrich/accountd/internal/repository"
)

// setupRoutes configures all HTTP routes on the given router.
func setupRoutes(e *echo.Echo, repo *repository.Repository, svc *accounts.Service) {
	e.Use(middleware.RequestLogger(slog.Default()))

	h := handlers.New(repo)
	e.GET("/health", h.Health)

	authHandler := handlers.NewAuth(svc)

	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/confirmations", authHandler.RequestConfirmation)
	auth.GET("/confirm", authHandler.Confirm)

	// Protected routes - require a valid session token
	protected := e.Group("", middleware.RequireAuth(svc))
	protected.GET("/auth/me", authHandler.Me)
	protected.GET("/users", h.ListUsers)
}
