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

// EventHandler serves group events. Creation and mutation are limited to the
// group owner or an admin; listing is open to any authenticated user.
type EventHandler struct {
	Cfg    config.Config
	Groups *repository.GroupRepo
	Events *repository.EventRepo
}

func NewEventHandler(cfg config.Config, groups *repository.GroupRepo, events *repository.EventRepo) *EventHandler {
	return &EventHandler{Cfg: cfg, Groups: groups, Events: events}
}

type eventRequest struct {
	ChannelName string `json:"channel_name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	EventDate   string `json:"event_date"` // YYYY-MM-DD
	StartTime   string `json:"start_time"` // HH:MM
	EndTime     string `json:"end_time"`   // HH:MM
	Location    string `json:"location"`
}

func (r *eventRequest) validate() string {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return "title is required"
	}
	if _, err := time.Parse("2006-01-02", r.EventDate); err != nil {
		return "event_date must be YYYY-MM-DD"
	}
	if _, err := time.Parse("15:04", r.StartTime); err != nil {
		return "start_time must be HH:MM"
	}
	if r.EndTime != "" {
		if _, err := time.Parse("15:04", r.EndTime); err != nil {
			return "end_time must be HH:MM"
		}
		if r.EndTime < r.StartTime {
			return "end_time must not be before start_time"
		}
	}
	if r.ChannelName == "" {
		r.ChannelName = "event"
	}
	return ""
}

// Create adds an event to a group.
func (h *EventHandler) Create(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	groupID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid group id"})
	}
	var req eventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	e := &repository.Event{
		GroupID:     groupID,
		ChannelName: req.ChannelName,
		Title:       req.Title,
		Description: req.Description,
		EventDate:   req.EventDate,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Location:    req.Location,
		CreatedBy:   ident.UserID,
	}
	if err := h.Events.Create(ctx, e); err != nil {
		return serverError(c, h.Cfg, "could not create event", err)
	}
	return c.JSON(http.StatusCreated, e)
}

// ListByGroup returns a group's events, soonest first.
func (h *EventHandler) ListByGroup(c echo.Context) error {
	groupID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid group id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Groups.GetByID(ctx, groupID); err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "group not found"})
		}
		return serverError(c, h.Cfg, "could not list events", err)
	}
	events, err := h.Events.ListByGroup(ctx, groupID)
	if err != nil {
		return serverError(c, h.Cfg, "could not list events", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"events": events})
}

// Update replaces an event's fields. Permitted for the group owner or an
// admin; the group is resolved from the stored event, not from the request.
func (h *EventHandler) Update(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req eventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	e, err := h.loadManaged(ctx, c, id, ident.UserID, ident.IsAdmin())
	if err != nil || e == nil {
		return err
	}
	e.ChannelName = req.ChannelName
	e.Title = req.Title
	e.Description = req.Description
	e.EventDate = req.EventDate
	e.StartTime = req.StartTime
	e.EndTime = req.EndTime
	e.Location = req.Location
	if err := h.Events.Update(ctx, e); err != nil {
		return serverError(c, h.Cfg, "could not update event", err)
	}
	return c.JSON(http.StatusOK, e)
}

// Delete removes an event, owner or admin only.
func (h *EventHandler) Delete(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	e, err := h.loadManaged(ctx, c, id, ident.UserID, ident.IsAdmin())
	if err != nil || e == nil {
		return err
	}
	if err := h.Events.Delete(ctx, id); err != nil {
		return serverError(c, h.Cfg, "could not delete event", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "event deleted"})
}

// loadManaged loads an event and verifies the caller may manage it. On a
// handled failure it writes the response and returns (nil, err); (nil, nil)
// never happens.
func (h *EventHandler) loadManaged(ctx context.Context, c echo.Context, eventID, callerID uint64, isAdmin bool) (*repository.Event, error) {
	e, err := h.Events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return nil, serverError(c, h.Cfg, "could not load event", err)
	}
	if !isAdmin {
		g, err := h.Groups.GetByID(ctx, e.GroupID)
		if err != nil {
			return nil, serverError(c, h.Cfg, "could not load event", err)
		}
		if g.OwnerID != callerID {
			return nil, c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
	}
	return e, nil
}
