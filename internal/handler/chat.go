package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/everydaycare/server/internal/config"
	"github.com/everydaycare/server/internal/repository"
)

// ChatHandler serves channel chat. Message text is sanitized on the way in so
// stored documents never contain markup.
type ChatHandler struct {
	Cfg      config.Config
	Groups   *repository.GroupRepo
	Members  *repository.MemberRepo
	Channels *repository.ChannelRepo
	Chat     *repository.ChatRepo

	policy *bluemonday.Policy
}

func NewChatHandler(cfg config.Config, groups *repository.GroupRepo, members *repository.MemberRepo, channels *repository.ChannelRepo, chat *repository.ChatRepo) *ChatHandler {
	return &ChatHandler{
		Cfg:      cfg,
		Groups:   groups,
		Members:  members,
		Channels: channels,
		Chat:     chat,
		policy:   bluemonday.StrictPolicy(),
	}
}

// Post creates a message in a group channel. Caller must be a member.
func (h *ChatHandler) Post(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	groupID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid group id"})
	}
	channelName := strings.ToLower(strings.TrimSpace(c.Param("name")))
	var req struct {
		Text string `json:"text"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	text := strings.TrimSpace(h.policy.Sanitize(req.Text))
	if text == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "text is required"})
	}
	if len(text) > 2000 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "text exceeds 2000 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.requireChannelAccess(ctx, c, groupID, channelName, ident.UserID, ident.Role); err != nil {
		return err
	}

	m := &repository.ChatMessage{
		ChannelID:   repository.ChannelID(groupID, channelName),
		GroupID:     groupID,
		ChannelName: channelName,
		Text:        text,
		UserID:      ident.UserID,
		UserName:    ident.FullName,
	}
	if err := h.Chat.CreateMessage(ctx, m); err != nil {
		return serverError(c, h.Cfg, "could not post message", err)
	}
	return c.JSON(http.StatusCreated, m)
}

// List returns every message in a channel, oldest first.
func (h *ChatHandler) List(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	groupID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid group id"})
	}
	channelName := strings.ToLower(strings.TrimSpace(c.Param("name")))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.requireChannelAccess(ctx, c, groupID, channelName, ident.UserID, ident.Role); err != nil {
		return err
	}

	msgs, err := h.Chat.ListByChannel(ctx, repository.ChannelID(groupID, channelName))
	if err != nil {
		return serverError(c, h.Cfg, "could not list messages", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"messages": msgs, "count": len(msgs)})
}

// Update edits a message the caller authored.
func (h *ChatHandler) Update(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	msgID, err := primitive.ObjectIDFromHex(c.Param("messageId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid message id"})
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	text := strings.TrimSpace(h.policy.Sanitize(req.Text))
	if text == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "text is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Chat.UpdateMessage(ctx, msgID, ident.UserID, text)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrMessageNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "message not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your message"})
		}
		return serverError(c, h.Cfg, "could not update message", err)
	}
	return c.JSON(http.StatusOK, m)
}

// Delete removes a message the caller authored.
func (h *ChatHandler) Delete(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	msgID, err := primitive.ObjectIDFromHex(c.Param("messageId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid message id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Chat.DeleteMessage(ctx, msgID, ident.UserID); err != nil {
		switch {
		case errors.Is(err, repository.ErrMessageNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "message not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your message"})
		}
		return serverError(c, h.Cfg, "could not delete message", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

// Summary returns the group's last chat activity.
func (h *ChatHandler) Summary(c echo.Context) error {
	groupID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid group id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Chat.GetSummary(ctx, groupID)
	if err != nil {
		return serverError(c, h.Cfg, "could not load summary", err)
	}
	if s == nil {
		return c.JSON(http.StatusOK, echo.Map{"summary": nil})
	}
	return c.JSON(http.StatusOK, echo.Map{"summary": s})
}

// requireChannelAccess verifies the group and channel exist and the caller is
// an effective member. Writes the error response itself when access fails.
func (h *ChatHandler) requireChannelAccess(ctx context.Context, c echo.Context, groupID uint64, channelName string, userID uint64, role string) error {
	if _, err := h.Groups.GetByID(ctx, groupID); err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "group not found"})
		}
		return serverError(c, h.Cfg, "could not verify group", err)
	}
	exists, err := h.Channels.Exists(ctx, groupID, channelName)
	if err != nil {
		return serverError(c, h.Cfg, "could not verify channel", err)
	}
	if !exists {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "channel not found"})
	}
	member, err := h.Members.IsEffectiveMember(ctx, groupID, userID, role)
	if err != nil {
		return serverError(c, h.Cfg, "could not verify membership", err)
	}
	if !member {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "join the group to use its chat"})
	}
	return nil
}
