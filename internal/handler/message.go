package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"

	"github.com/everydaycare/server/internal/config"
	"github.com/everydaycare/server/internal/provider"
	"github.com/everydaycare/server/internal/repository"
)

// supportedLangs are the translation targets offered by the UI.
var supportedLangs = map[string]bool{"en": true, "zh": true, "ms": true, "ta": true}

// MessageHandler serves private messages between friends, plus on-demand
// translation of message text.
type MessageHandler struct {
	Cfg        config.Config
	Messages   *repository.MessageRepo
	Friends    *repository.FriendRepo
	Translator *provider.Translator

	policy *bluemonday.Policy
}

func NewMessageHandler(cfg config.Config, messages *repository.MessageRepo, friends *repository.FriendRepo, translator *provider.Translator) *MessageHandler {
	return &MessageHandler{
		Cfg:        cfg,
		Messages:   messages,
		Friends:    friends,
		Translator: translator,
		policy:     bluemonday.StrictPolicy(),
	}
}

// Send delivers a message to a friend. Non-friends get 403.
func (h *MessageHandler) Send(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	receiverID, err := pathID(c, "userId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req struct {
		Body string `json:"body"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body := strings.TrimSpace(h.policy.Sanitize(req.Body))
	if body == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "body is required"})
	}
	if len(body) > 2000 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "body exceeds 2000 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	friends, err := h.Friends.AreFriends(ctx, ident.UserID, receiverID)
	if err != nil {
		return serverError(c, h.Cfg, "could not send message", err)
	}
	if !friends {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you can only message friends"})
	}

	m := &repository.PrivateMessage{SenderID: ident.UserID, ReceiverID: receiverID, Body: body}
	if err := h.Messages.Create(ctx, m); err != nil {
		return serverError(c, h.Cfg, "could not send message", err)
	}
	return c.JSON(http.StatusCreated, m)
}

// Conversation returns the full two-sided thread with another user, oldest
// first.
func (h *MessageHandler) Conversation(c echo.Context) error {
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

	friends, err := h.Friends.AreFriends(ctx, ident.UserID, otherID)
	if err != nil {
		return serverError(c, h.Cfg, "could not load conversation", err)
	}
	if !friends {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you can only message friends"})
	}

	msgs, err := h.Messages.Conversation(ctx, ident.UserID, otherID)
	if err != nil {
		return serverError(c, h.Cfg, "could not load conversation", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"messages": msgs, "count": len(msgs)})
}

// Translate returns the given text in the requested language. Provider
// failures fall back to a built-in phrase dictionary, so the endpoint always
// answers; "translated" reports whether the text actually changed form.
func (h *MessageHandler) Translate(c echo.Context) error {
	var req struct {
		Text string `json:"text"`
		Lang string `json:"lang"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Text = strings.TrimSpace(req.Text)
	req.Lang = strings.ToLower(strings.TrimSpace(req.Lang))
	if req.Text == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "text is required"})
	}
	if !supportedLangs[req.Lang] {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "lang must be one of en, zh, ms, ta"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 8*time.Second)
	defer cancel()

	out, translated := h.Translator.Translate(ctx, req.Text, req.Lang)
	return c.JSON(http.StatusOK, echo.Map{
		"text":       out,
		"lang":       req.Lang,
		"translated": translated,
	})
}
