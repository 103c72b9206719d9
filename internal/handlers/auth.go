// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"codeberg.org/oliverandrich/accountd/internal/accounts"
	"codeberg.org/oliverandrich/accountd/internal/middleware"
	"codeberg.org/oliverandrich/accountd/internal/password"
	"codeberg.org/oliverandrich/accountd/internal/repository"
	"codeberg.org/oliverandrich/accountd/internal/token"
)

// AuthHandlers contains handlers for registration, login and confirmation.
type AuthHandlers struct {
	svc *accounts.Service
}

// NewAuth creates a new AuthHandlers instance.
func NewAuth(svc *accounts.Service) *AuthHandlers {
	return &AuthHandlers{svc: svc}
}

// CredentialsRequest is the request body for registration and login.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new account and sends confirmation instructions.
func (h *AuthHandlers) Register(c echo.Context) error {
	var req CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	ctx := c.Request().Context()

	user, err := h.svc.Register(ctx, req.Email, req.Password)
	if err != nil {
		var pwErr *password.PasswordValidationError
		var valErr *repository.ValidationError
		switch {
		case errors.Is(err, accounts.ErrInvalidEmail):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid email format"})
		case errors.As(err, &pwErr):
			return c.JSON(http.StatusUnprocessableEntity, map[string]any{"error": "invalid password", "details": pwErr.Messages()})
		case errors.As(err, &valErr):
			return c.JSON(http.StatusConflict, map[string]string{"error": valErr.Error()})
		}
		slog.Error("register_failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create account"})
	}

	// Delivery failure is not fatal here; the token stays persisted and the
	// client can request a resend.
	if _, err := h.svc.RequestConfirmation(ctx, user); err != nil {
		slog.Warn("register_confirmation_failed", "user_id", user.ID, "error", err)
	}

	return c.JSON(http.StatusCreated, user)
}

// Login authenticates an email/password pair and returns a session token.
func (h *AuthHandlers) Login(c echo.Context) error {
	var req CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	user, sessionToken, err := h.svc.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		case errors.Is(err, accounts.ErrNotConfirmed):
			return c.JSON(http.StatusForbidden, map[string]string{"error": "account not confirmed"})
		}
		slog.Error("login_failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to authenticate"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"user":  user,
		"token": sessionToken,
	})
}

// ResendRequest is the request body for re-requesting confirmation mail.
type ResendRequest struct {
	Email string `json:"email"`
}

// RequestConfirmation re-sends confirmation instructions. Unknown addresses
// get the same accepted response so the endpoint cannot be used for email
// enumeration.
func (h *AuthHandlers) RequestConfirmation(c echo.Context) error {
	var req ResendRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	_, err := h.svc.RequestConfirmationByEmail(c.Request().Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrUserNotFound):
			// fall through to the generic accepted response
		case errors.Is(err, accounts.ErrAlreadyConfirmed):
			return c.JSON(http.StatusConflict, map[string]string{"error": "account already confirmed"})
		case errors.Is(err, accounts.ErrDeliveryFailed):
			return c.JSON(http.StatusBadGateway, map[string]string{"error": "failed to deliver confirmation mail"})
		default:
			slog.Error("confirmation_request_failed", "error", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to request confirmation"})
		}
	}

	return c.JSON(http.StatusAccepted, map[string]string{"status": "confirmation requested"})
}

// Confirm consumes a confirmation token presented as a query parameter.
func (h *AuthHandlers) Confirm(c echo.Context) error {
	presented := c.QueryParam("token")
	if presented == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "token is required"})
	}

	user, err := h.svc.Confirm(c.Request().Context(), presented)
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "unknown confirmation token"})
		case errors.Is(err, token.ErrInvalidToken):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid confirmation token"})
		}
		slog.Error("confirmation_failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to confirm account"})
	}

	return c.JSON(http.StatusOK, user)
}

// Me returns the user bound to the presented session token.
func (h *AuthHandlers) Me(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
	}
	return c.JSON(http.StatusOK, user)
}
