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

// HotlineHandler serves the shared hotline directory. Reads are open to every
// authenticated user; writes sit behind the admin role middleware.
type HotlineHandler struct {
	Cfg      config.Config
	Hotlines *repository.HotlineRepo
}

func NewHotlineHandler(cfg config.Config, hotlines *repository.HotlineRepo) *HotlineHandler {
	return &HotlineHandler{Cfg: cfg, Hotlines: hotlines}
}

func (h *HotlineHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Hotlines.ListAll(ctx)
	if err != nil {
		return serverError(c, h.Cfg, "could not list hotlines", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"hotlines": list})
}

func (h *HotlineHandler) Create(c echo.Context) error {
	var req struct {
		Name        string `json:"name"`
		Phone       string `json:"phone"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" || req.Phone == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and phone are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hl := &repository.Hotline{Name: req.Name, Phone: req.Phone, Description: req.Description}
	if err := h.Hotlines.Create(ctx, hl); err != nil {
		return serverError(c, h.Cfg, "could not create hotline", err)
	}
	return c.JSON(http.StatusCreated, hl)
}

func (h *HotlineHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hotline id"})
	}
	var req struct {
		Name        string `json:"name"`
		Phone       string `json:"phone"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" || req.Phone == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and phone are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hl := &repository.Hotline{ID: id, Name: req.Name, Phone: req.Phone, Description: req.Description}
	if err := h.Hotlines.Update(ctx, hl); err != nil {
		if errors.Is(err, repository.ErrHotlineNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hotline not found"})
		}
		return serverError(c, h.Cfg, "could not update hotline", err)
	}
	return c.JSON(http.StatusOK, hl)
}

func (h *HotlineHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hotline id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Hotlines.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrHotlineNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hotline not found"})
		}
		return serverError(c, h.Cfg, "could not delete hotline", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "hotline deleted"})
}
