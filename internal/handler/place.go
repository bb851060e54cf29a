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
	"github.com/everydaycare/server/internal/provider"
	"github.com/everydaycare/server/internal/repository"
)

// PlaceHandler serves the caller's saved places and their notes. Coordinates
// are resolved once at creation through the geocoding provider.
type PlaceHandler struct {
	Cfg      config.Config
	Places   *repository.PlaceRepo
	Geocoder *provider.Geocoder
	Log      *zap.Logger

	policy *bluemonday.Policy
}

func NewPlaceHandler(cfg config.Config, places *repository.PlaceRepo, geocoder *provider.Geocoder, log *zap.Logger) *PlaceHandler {
	return &PlaceHandler{
		Cfg:      cfg,
		Places:   places,
		Geocoder: geocoder,
		Log:      log,
		policy:   bluemonday.StrictPolicy(),
	}
}

// Create saves a place. A failed geocode is logged and leaves the coordinates
// at zero rather than failing the save.
func (h *PlaceHandler) Create(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	var req struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Address = strings.TrimSpace(req.Address)
	if req.Name == "" || req.Address == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and address are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 8*time.Second)
	defer cancel()

	p := &repository.Place{UserID: ident.UserID, Name: req.Name, Address: req.Address}
	lat, lng, err := h.Geocoder.Geocode(ctx, req.Address)
	if err != nil {
		h.Log.Info("geocode failed, storing place without coordinates",
			zap.String("address", req.Address), zap.Error(err))
	} else {
		p.Latitude = lat
		p.Longitude = lng
	}

	if err := h.Places.Create(ctx, p); err != nil {
		return serverError(c, h.Cfg, "could not create place", err)
	}
	return c.JSON(http.StatusCreated, p)
}

// List returns the caller's places.
func (h *PlaceHandler) List(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Places.ListByUser(ctx, ident.UserID)
	if err != nil {
		return serverError(c, h.Cfg, "could not list places", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"places": list})
}

// Delete removes a place and its notes.
func (h *PlaceHandler) Delete(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid place id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Places.Delete(ctx, id, ident.UserID); err != nil {
		if errors.Is(err, repository.ErrPlaceNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "place not found"})
		}
		return serverError(c, h.Cfg, "could not delete place", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "place deleted"})
}

// AddNote attaches a note to a place the caller owns.
func (h *PlaceHandler) AddNote(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	placeID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid place id"})
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

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	note, err := h.Places.AddNote(ctx, placeID, ident.UserID, body)
	if err != nil {
		if errors.Is(err, repository.ErrPlaceNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "place not found"})
		}
		return serverError(c, h.Cfg, "could not add note", err)
	}
	return c.JSON(http.StatusCreated, note)
}

// ListNotes returns a place's notes, newest first.
func (h *PlaceHandler) ListNotes(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	placeID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid place id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	notes, err := h.Places.ListNotes(ctx, placeID, ident.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrPlaceNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "place not found"})
		}
		return serverError(c, h.Cfg, "could not list notes", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"notes": notes})
}

// DeleteNote removes one note from a place the caller owns.
func (h *PlaceHandler) DeleteNote(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	noteID, err := pathID(c, "noteId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid note id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Places.DeleteNote(ctx, noteID, ident.UserID); err != nil {
		if errors.Is(err, repository.ErrPlaceNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
		}
		return serverError(c, h.Cfg, "could not delete note", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "note deleted"})
}
