package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/everydaycare/server/internal/config"
	"github.com/everydaycare/server/internal/repository"
)

// GroupHandler serves hobby-group CRUD and membership.
type GroupHandler struct {
	Cfg     config.Config
	Groups  *repository.GroupRepo
	Members *repository.MemberRepo
	Chat    *repository.ChatRepo
	Log     *zap.Logger
}

func NewGroupHandler(cfg config.Config, groups *repository.GroupRepo, members *repository.MemberRepo, chat *repository.ChatRepo, log *zap.Logger) *GroupHandler {
	return &GroupHandler{Cfg: cfg, Groups: groups, Members: members, Chat: chat, Log: log}
}

// Create makes a new group owned by the caller. Default channels and the
// initial memberships are seeded by the repository in one transaction.
func (h *GroupHandler) Create(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Groups.Create(ctx, req.Name, strings.TrimSpace(req.Description), ident.UserID)
	if err != nil {
		return serverError(c, h.Cfg, "could not create group", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "name": req.Name, "owner_id": ident.UserID})
}

// List returns every group with its member count and chat summary.
func (h *GroupHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	groups, err := h.Groups.ListAll(ctx)
	if err != nil {
		return serverError(c, h.Cfg, "could not list groups", err)
	}

	out := make([]echo.Map, 0, len(groups))
	for _, g := range groups {
		n, err := h.Members.Count(ctx, g.ID)
		if err != nil {
			return serverError(c, h.Cfg, "could not list groups", err)
		}
		item := echo.Map{
			"id":           g.ID,
			"name":         g.Name,
			"description":  g.Description,
			"owner_id":     g.OwnerID,
			"member_count": n,
			"created_at":   g.CreatedAt,
		}
		if s, err := h.Chat.GetSummary(ctx, g.ID); err == nil && s != nil {
			item["last_activity"] = s
		}
		out = append(out, item)
	}
	return c.JSON(http.StatusOK, echo.Map{"groups": out})
}

// Get returns one group with member count and whether the caller belongs.
func (h *GroupHandler) Get(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid group id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	g, err := h.Groups.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "group not found"})
		}
		return serverError(c, h.Cfg, "could not load group", err)
	}
	n, err := h.Members.Count(ctx, id)
	if err != nil {
		return serverError(c, h.Cfg, "could not load group", err)
	}
	isMember, err := h.Members.IsEffectiveMember(ctx, id, ident.UserID, ident.Role)
	if err != nil {
		return serverError(c, h.Cfg, "could not load group", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"group":        g,
		"member_count": n,
		"is_member":    isMember,
	})
}

// Join adds the caller to the group. Joining twice returns 409.
func (h *GroupHandler) Join(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid group id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Groups.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "group not found"})
		}
		return serverError(c, h.Cfg, "could not join group", err)
	}
	if err := h.Members.Join(ctx, id, ident.UserID, ident.FullName); err != nil {
		if errors.Is(err, repository.ErrAlreadyMember) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "already a member"})
		}
		return serverError(c, h.Cfg, "could not join group", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "joined"})
}

// Leave removes the caller's membership. Admin accounts stay members of every
// group and cannot leave.
func (h *GroupHandler) Leave(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	if ident.IsAdmin() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "admins cannot leave groups"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid group id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Members.Leave(ctx, id, ident.UserID); err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not a member"})
		}
		return serverError(c, h.Cfg, "could not leave group", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "left"})
}

// ListMembers returns a group's members with role labels, owner first.
func (h *GroupHandler) ListMembers(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid group id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	g, err := h.Groups.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "group not found"})
		}
		return serverError(c, h.Cfg, "could not list members", err)
	}
	members, err := h.Members.ListWithRoles(ctx, id, g.OwnerID)
	if err != nil {
		return serverError(c, h.Cfg, "could not list members", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"members": members, "count": len(members)})
}

// UpdateDescription changes the group description. Route middleware has
// already verified the caller owns the group or is an admin.
func (h *GroupHandler) UpdateDescription(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid group id"})
	}
	var req struct {
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Groups.UpdateDescription(ctx, id, strings.TrimSpace(req.Description)); err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "group not found"})
		}
		return serverError(c, h.Cfg, "could not update group", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "updated"})
}

// Delete removes the group with its channels, events and members, then purges
// the group's chat documents. The chat purge is best effort: a Mongo failure
// is logged, not surfaced, because the relational delete already committed.
func (h *GroupHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid group id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Groups.DeleteWithMembers(ctx, id); err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "group not found"})
		}
		return serverError(c, h.Cfg, "could not delete group", err)
	}
	if n, err := h.Chat.DeleteGroupMessages(ctx, id); err != nil {
		h.Log.Warn("chat purge failed after group delete",
			zap.Uint64("group_id", id), zap.Error(err))
	} else if n > 0 {
		h.Log.Info("purged group chat", zap.Uint64("group_id", id), zap.Int64("messages", n))
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "group deleted"})
}
