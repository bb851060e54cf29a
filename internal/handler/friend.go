package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/everydaycare/server/internal/config"
	"github.com/everydaycare/server/internal/repository"
)

// FriendHandler serves friend requests and the friend list.
type FriendHandler struct {
	Cfg     config.Config
	Friends *repository.FriendRepo
	Users   *repository.UserRepo
}

func NewFriendHandler(cfg config.Config, friends *repository.FriendRepo, users *repository.UserRepo) *FriendHandler {
	return &FriendHandler{Cfg: cfg, Friends: friends, Users: users}
}

// SendRequest invites another user by email. Inviting yourself, a friend or
// someone already invited returns 4xx.
func (h *FriendHandler) SendRequest(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	target, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no user with that email"})
		}
		return serverError(c, h.Cfg, "could not send friend request", err)
	}
	if target.ID == ident.UserID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot befriend yourself"})
	}

	id, err := h.Friends.SendRequest(ctx, ident.UserID, target.ID)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "already friends or request pending"})
		}
		return serverError(c, h.Cfg, "could not send friend request", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"request_id": id, "to_user_id": target.ID})
}

// ListIncoming returns pending requests addressed to the caller.
func (h *FriendHandler) ListIncoming(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Friends.ListIncoming(ctx, ident.UserID)
	if err != nil {
		return serverError(c, h.Cfg, "could not list friend requests", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": list})
}

// Accept answers a pending request addressed to the caller.
func (h *FriendHandler) Accept(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Friends.Accept(ctx, id, ident.UserID); err != nil {
		if errors.Is(err, repository.ErrFriendRequestNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "friend request not found"})
		}
		return serverError(c, h.Cfg, "could not accept friend request", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "friend request accepted"})
}

// Decline removes a pending request addressed to the caller.
func (h *FriendHandler) Decline(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Friends.Decline(ctx, id, ident.UserID); err != nil {
		if errors.Is(err, repository.ErrFriendRequestNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "friend request not found"})
		}
		return serverError(c, h.Cfg, "could not decline friend request", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "friend request declined"})
}

// List returns the caller's friends.
func (h *FriendHandler) List(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Friends.ListFriends(ctx, ident.UserID)
	if err != nil {
		return serverError(c, h.Cfg, "could not list friends", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"friends": list})
}

// Unfriend removes an existing friendship.
func (h *FriendHandler) Unfriend(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	otherID, err := pathID(c, "userId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Friends.Unfriend(ctx, ident.UserID, otherID); err != nil {
		if errors.Is(err, repository.ErrNotFriends) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not friends"})
		}
		return serverError(c, h.Cfg, "could not unfriend", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "unfriended"})
}
