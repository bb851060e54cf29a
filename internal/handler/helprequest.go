package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/everydaycare/server/internal/config"
	"github.com/everydaycare/server/internal/queue"
	"github.com/everydaycare/server/internal/repository"
	queue_publisher "github.com/everydaycare/server/internal/service"
)

// HelpRequestHandler serves community help requests: open a request, browse
// open ones, accept one as helper, resolve.
type HelpRequestHandler struct {
	Cfg      config.Config
	Requests *repository.HelpRequestRepo
	Log      *zap.Logger

	policy *bluemonday.Policy
}

func NewHelpRequestHandler(cfg config.Config, requests *repository.HelpRequestRepo, log *zap.Logger) *HelpRequestHandler {
	return &HelpRequestHandler{Cfg: cfg, Requests: requests, Log: log, policy: bluemonday.StrictPolicy()}
}

func helpRequestJSON(h *repository.HelpRequest) echo.Map {
	return echo.Map{
		"id":          h.ID,
		"reference":   h.Reference,
		"user_id":     h.UserID,
		"category":    h.Category,
		"description": h.Description,
		"location":    h.Location,
		"status":      h.Status,
		"helper_id":   h.Helper(),
		"created_at":  h.CreatedAt,
	}
}

// Create opens a help request and publishes a broker event for downstream
// consumers. A publish failure never fails the request.
func (h *HelpRequestHandler) Create(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	var req struct {
		Category    string `json:"category"`
		Description string `json:"description"`
		Location    string `json:"location"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Category = strings.TrimSpace(req.Category)
	req.Description = strings.TrimSpace(h.policy.Sanitize(req.Description))
	if req.Category == "" || req.Description == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "category and description are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hr := &repository.HelpRequest{
		UserID:      ident.UserID,
		Category:    req.Category,
		Description: req.Description,
		Location:    req.Location,
	}
	if err := h.Requests.Create(ctx, hr); err != nil {
		return serverError(c, h.Cfg, "could not create help request", err)
	}

	go func(hr repository.HelpRequest, name string) {
		pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queue_publisher.PublishHelpRequestOpened(pubCtx, h.Log, queue.HelpRequestOpenedEvent{
			RequestID:   hr.ID,
			Reference:   hr.Reference,
			UserID:      hr.UserID,
			UserName:    name,
			Category:    hr.Category,
			Description: hr.Description,
			Location:    hr.Location,
			OpenedAt:    time.Now().UTC().Format(time.RFC3339),
		})
	}(*hr, ident.FullName)

	return c.JSON(http.StatusCreated, helpRequestJSON(hr))
}

// ListOpen returns every open request, oldest first so the longest-waiting
// requests surface at the top of the board.
func (h *HelpRequestHandler) ListOpen(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Requests.ListOpen(ctx)
	if err != nil {
		return serverError(c, h.Cfg, "could not list help requests", err)
	}
	out := make([]echo.Map, 0, len(list))
	for _, hr := range list {
		out = append(out, helpRequestJSON(hr))
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": out})
}

// ListMine returns the caller's own requests in every status.
func (h *HelpRequestHandler) ListMine(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Requests.ListByUser(ctx, ident.UserID)
	if err != nil {
		return serverError(c, h.Cfg, "could not list help requests", err)
	}
	out := make([]echo.Map, 0, len(list))
	for _, hr := range list {
		out = append(out, helpRequestJSON(hr))
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": out})
}

// Accept claims an open request as its helper. Requesters cannot accept their
// own request. A request already claimed returns 409.
func (h *HelpRequestHandler) Accept(c echo.Context) error {
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

	hr, err := h.Requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrHelpRequestNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "help request not found"})
		}
		return serverError(c, h.Cfg, "could not accept help request", err)
	}
	if hr.UserID == ident.UserID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "cannot accept your own request"})
	}
	if err := h.Requests.Accept(ctx, id, ident.UserID); err != nil {
		if errors.Is(err, repository.ErrBadStatus) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "request is no longer open"})
		}
		return serverError(c, h.Cfg, "could not accept help request", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "request accepted"})
}

// Resolve closes a request. Only the requester or the accepted helper may do
// this.
func (h *HelpRequestHandler) Resolve(c echo.Context) error {
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

	if err := h.Requests.Resolve(ctx, id, ident.UserID); err != nil {
		switch {
		case errors.Is(err, repository.ErrHelpRequestNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "help request not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "only the requester or helper can resolve"})
		case errors.Is(err, repository.ErrBadStatus):
			return c.JSON(http.StatusConflict, echo.Map{"error": "request already resolved"})
		}
		return serverError(c, h.Cfg, "could not resolve help request", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "request resolved"})
}
