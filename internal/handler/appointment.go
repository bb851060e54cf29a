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

// AppointmentHandler serves the caller's medical appointments. Every query is
// scoped to the authenticated user id, so nothing leaks across accounts.
type AppointmentHandler struct {
	Cfg   config.Config
	Appts *repository.AppointmentRepo
}

func NewAppointmentHandler(cfg config.Config, appts *repository.AppointmentRepo) *AppointmentHandler {
	return &AppointmentHandler{Cfg: cfg, Appts: appts}
}

type appointmentRequest struct {
	Title     string `json:"title"`
	Doctor    string `json:"doctor"`
	Location  string `json:"location"`
	ApptDate  string `json:"appt_date"`  // YYYY-MM-DD
	StartTime string `json:"start_time"` // HH:MM
	Notes     string `json:"notes"`
}

func (r *appointmentRequest) validate() string {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return "title is required"
	}
	if _, err := time.Parse("2006-01-02", r.ApptDate); err != nil {
		return "appt_date must be YYYY-MM-DD"
	}
	if _, err := time.Parse("15:04", r.StartTime); err != nil {
		return "start_time must be HH:MM"
	}
	return ""
}

// Create adds an appointment for the caller.
func (h *AppointmentHandler) Create(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	var req appointmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a := &repository.Appointment{
		UserID:    ident.UserID,
		Title:     req.Title,
		Doctor:    req.Doctor,
		Location:  req.Location,
		ApptDate:  req.ApptDate,
		StartTime: req.StartTime,
		Notes:     req.Notes,
	}
	if err := h.Appts.Create(ctx, a); err != nil {
		return serverError(c, h.Cfg, "could not create appointment", err)
	}
	return c.JSON(http.StatusCreated, a)
}

// List returns the caller's appointments, soonest first.
func (h *AppointmentHandler) List(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Appts.ListByUser(ctx, ident.UserID)
	if err != nil {
		return serverError(c, h.Cfg, "could not list appointments", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"appointments": list})
}

// Update replaces an appointment the caller owns.
func (h *AppointmentHandler) Update(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid appointment id"})
	}
	var req appointmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a := &repository.Appointment{
		ID:        id,
		UserID:    ident.UserID,
		Title:     req.Title,
		Doctor:    req.Doctor,
		Location:  req.Location,
		ApptDate:  req.ApptDate,
		StartTime: req.StartTime,
		Notes:     req.Notes,
	}
	if err := h.Appts.Update(ctx, a); err != nil {
		if errors.Is(err, repository.ErrAppointmentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		}
		return serverError(c, h.Cfg, "could not update appointment", err)
	}
	return c.JSON(http.StatusOK, a)
}

// Delete removes an appointment the caller owns.
func (h *AppointmentHandler) Delete(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid appointment id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Appts.Delete(ctx, id, ident.UserID); err != nil {
		if errors.Is(err, repository.ErrAppointmentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		}
		return serverError(c, h.Cfg, "could not delete appointment", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "appointment deleted"})
}
