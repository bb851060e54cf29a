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

// ContactHandler serves the caller's emergency contacts.
type ContactHandler struct {
	Cfg      config.Config
	Contacts *repository.ContactRepo
}

func NewContactHandler(cfg config.Config, contacts *repository.ContactRepo) *ContactHandler {
	return &ContactHandler{Cfg: cfg, Contacts: contacts}
}

func bindContact(c echo.Context) (name, phone, relationship string, errMsg string) {
	var req struct {
		Name         string `json:"name"`
		Phone        string `json:"phone"`
		Relationship string `json:"relationship"`
	}
	if err := c.Bind(&req); err != nil {
		return "", "", "", "invalid request body"
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" || req.Phone == "" {
		return "", "", "", "name and phone are required"
	}
	return req.Name, req.Phone, strings.TrimSpace(req.Relationship), ""
}

func (h *ContactHandler) Create(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	name, phone, rel, msg := bindContact(c)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ec := &repository.EmergencyContact{UserID: ident.UserID, Name: name, Phone: phone, Relationship: rel}
	if err := h.Contacts.Create(ctx, ec); err != nil {
		return serverError(c, h.Cfg, "could not create contact", err)
	}
	return c.JSON(http.StatusCreated, ec)
}

func (h *ContactHandler) List(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Contacts.ListByUser(ctx, ident.UserID)
	if err != nil {
		return serverError(c, h.Cfg, "could not list contacts", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"contacts": list})
}

func (h *ContactHandler) Update(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid contact id"})
	}
	name, phone, rel, msg := bindContact(c)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ec := &repository.EmergencyContact{ID: id, UserID: ident.UserID, Name: name, Phone: phone, Relationship: rel}
	if err := h.Contacts.Update(ctx, ec); err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "contact not found"})
		}
		return serverError(c, h.Cfg, "could not update contact", err)
	}
	return c.JSON(http.StatusOK, ec)
}

func (h *ContactHandler) Delete(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid contact id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Contacts.Delete(ctx, id, ident.UserID); err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "contact not found"})
		}
		return serverError(c, h.Cfg, "could not delete contact", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "contact deleted"})
}
