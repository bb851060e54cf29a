package handler

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/everydaycare/server/internal/config"
	"github.com/everydaycare/server/internal/repository"
)

// channelNameRe limits channel names to slug-friendly characters. The name is
// embedded in the composite chat channel id, so it must never contain '_'
// ambiguity beyond the first separator or URL-hostile characters.
var channelNameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,31}$`)

// ChannelHandler serves per-group channel management. All routes sit behind
// RequireGroupOwner, so only the owner or an admin reaches Create/Delete.
type ChannelHandler struct {
	Cfg      config.Config
	Channels *repository.ChannelRepo
	Chat     *repository.ChatRepo
	Log      *zap.Logger
}

func NewChannelHandler(cfg config.Config, channels *repository.ChannelRepo, chat *repository.ChatRepo, log *zap.Logger) *ChannelHandler {
	return &ChannelHandler{Cfg: cfg, Channels: channels, Chat: chat, Log: log}
}

// Create adds a custom channel to the group.
func (h *ChannelHandler) Create(c echo.Context) error {
	groupID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid group id"})
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.ToLower(strings.TrimSpace(req.Name))
	if !channelNameRe.MatchString(name) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "channel name must be 1-32 lowercase letters, digits or dashes"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ch, err := h.Channels.Create(ctx, groupID, name)
	if err != nil {
		if errors.Is(err, repository.ErrChannelExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "channel already exists"})
		}
		return serverError(c, h.Cfg, "could not create channel", err)
	}
	return c.JSON(http.StatusCreated, ch)
}

// List returns the group's channels, default channels ordered first.
func (h *ChannelHandler) List(c echo.Context) error {
	groupID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid group id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	channels, err := h.Channels.ListByGroup(ctx, groupID)
	if err != nil {
		return serverError(c, h.Cfg, "could not list channels", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"channels": channels})
}

// Delete removes a channel and purges its chat messages. Default channels are
// protected. Deleting a channel that is already gone succeeds.
func (h *ChannelHandler) Delete(c echo.Context) error {
	groupID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid group id"})
	}
	name := strings.ToLower(strings.TrimSpace(c.Param("name")))
	for _, def := range repository.DefaultChannels {
		if name == def {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "default channels cannot be deleted"})
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Channels.Delete(ctx, groupID, name); err != nil {
		return serverError(c, h.Cfg, "could not delete channel", err)
	}
	if n, err := h.Chat.DeleteChannelMessages(ctx, repository.ChannelID(groupID, name)); err != nil {
		h.Log.Warn("chat purge failed after channel delete",
			zap.Uint64("group_id", groupID), zap.String("channel", name), zap.Error(err))
	} else if n > 0 {
		h.Log.Info("purged channel chat",
			zap.Uint64("group_id", groupID), zap.String("channel", name), zap.Int64("messages", n))
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "channel deleted"})
}
