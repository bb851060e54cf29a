package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/everydaycare/server/internal/config"
	"github.com/everydaycare/server/internal/provider"
	"github.com/everydaycare/server/internal/repository"
	"github.com/everydaycare/server/internal/utils"
)

// AuthHandler wires the account lifecycle: register, login, refresh, logout
// and the password-reset flow.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
	Mail   *provider.Mailer
	Log    *zap.Logger
}

func NewAuthHandler(cfg config.Config, users *repository.UserRepo, tokens *repository.TokenRepo, mail *provider.Mailer, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Tokens: tokens, Mail: mail, Log: log}
}

// Register creates a new account. Every signup gets the "user" role; admin
// accounts are provisioned out of band.
func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Phone     string `json:"phone"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Email = strings.TrimSpace(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if req.Email == "" || req.Password == "" || req.FirstName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email, password and first_name are required"})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Users.Create(ctx, req.Email, req.Password, req.FirstName, req.LastName, req.Phone, "user", h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
		}
		return serverError(c, h.Cfg, "could not create user", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "email": strings.ToLower(req.Email)})
}

// Login verifies credentials and issues an access/refresh pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return serverError(c, h.Cfg, "login failed", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	return h.issueTokens(c, ctx, u)
}

// Refresh rotates a refresh token: the presented token is revoked and a fresh
// pair is issued.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hash := utils.HashRefreshRaw(req.RefreshToken)
	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		return serverError(c, h.Cfg, "refresh failed", err)
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return serverError(c, h.Cfg, "refresh failed", err)
	}
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		return serverError(c, h.Cfg, "refresh failed", err)
	}
	return h.issueTokens(c, ctx, u)
}

// Logout revokes the presented refresh token. Access tokens simply expire.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Tokens.RevokeByHash(ctx, utils.HashRefreshRaw(req.RefreshToken)); err != nil {
		return serverError(c, h.Cfg, "logout failed", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Me returns the caller's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	id, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return serverError(c, h.Cfg, "could not load profile", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":         u.ID,
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"phone":      u.Phone,
		"role":       u.Role,
		"created_at": u.CreatedAt,
	})
}

// RequestPasswordReset mails a short-lived reset link. The response is the
// same whether or not the email exists, so the endpoint cannot be used to
// enumerate accounts.
func (h *AuthHandler) RequestPasswordReset(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err == nil {
		tok, terr := utils.NewResetToken(h.Cfg.JWTSecret, u.ID, u.Email, h.Cfg.ResetTTLMin)
		if terr != nil {
			return serverError(c, h.Cfg, "could not issue reset token", terr)
		}
		body := fmt.Sprintf("Hi %s,\n\nUse this token to reset your password (valid for %d minutes):\n\n%s\n",
			u.FirstName, h.Cfg.ResetTTLMin, tok)
		if merr := h.Mail.Send(ctx, u.Email, "Password reset", body); merr != nil && !errors.Is(merr, provider.ErrMailerDisabled) {
			h.Log.Warn("reset mail failed", zap.Uint64("user_id", u.ID), zap.Error(merr))
		}
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return serverError(c, h.Cfg, "reset request failed", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "if that email exists, a reset link was sent"})
}

// CompletePasswordReset sets a new password from a valid reset token and
// revokes every active session.
func (h *AuthHandler) CompletePasswordReset(c echo.Context) error {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := c.Bind(&req); err != nil || req.Token == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token and new_password are required"})
	}
	if len(req.NewPassword) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}

	userID, err := utils.ParseResetToken(h.Cfg.JWTSecret, req.Token)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "invalid or expired reset token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return serverError(c, h.Cfg, "could not update password", err)
	}
	if err := h.Users.UpdatePassword(ctx, userID, hash); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return serverError(c, h.Cfg, "could not update password", err)
	}
	if err := h.Tokens.RevokeAllForUser(ctx, userID); err != nil {
		h.Log.Warn("session revoke failed after reset", zap.Uint64("user_id", userID), zap.Error(err))
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

// issueTokens signs an access token, stores a refresh token and writes the
// standard token response.
func (h *AuthHandler) issueTokens(c echo.Context, ctx context.Context, u repository.User) error {
	ident := utils.Identity{UserID: u.ID, Email: u.Email, FullName: u.FullName(), Role: u.Role}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, ident, h.Cfg.AccessTTLMin)
	if err != nil {
		return serverError(c, h.Cfg, "could not sign token", err)
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return serverError(c, h.Cfg, "could not issue refresh token", err)
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return serverError(c, h.Cfg, "could not store refresh token", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  access.Token,
		"expires_at":    access.Exp,
		"refresh_token": refresh.Raw,
		"user": echo.Map{
			"id":    u.ID,
			"email": u.Email,
			"name":  u.FullName(),
			"role":  u.Role,
		},
	})
}
