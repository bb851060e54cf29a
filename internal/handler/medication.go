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

// MedicationHandler serves the caller's daily medication list. Check marks
// reset at local midnight via the scheduler.
type MedicationHandler struct {
	Cfg  config.Config
	Meds *repository.MedicationRepo
}

func NewMedicationHandler(cfg config.Config, meds *repository.MedicationRepo) *MedicationHandler {
	return &MedicationHandler{Cfg: cfg, Meds: meds}
}

// Create registers a medication with one or more time-of-day slots.
func (h *MedicationHandler) Create(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	var req struct {
		Name   string   `json:"name"`
		Dosage string   `json:"dosage"`
		Notes  string   `json:"notes"`
		Times  []string `json:"times"` // HH:MM slots
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if len(req.Times) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "at least one time slot is required"})
	}
	schedules := make([]repository.MedicationSchedule, 0, len(req.Times))
	for _, t := range req.Times {
		if _, err := time.Parse("15:04", t); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "times must be HH:MM"})
		}
		schedules = append(schedules, repository.MedicationSchedule{TimeOfDay: t})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m := &repository.Medication{
		UserID:    ident.UserID,
		Name:      req.Name,
		Dosage:    req.Dosage,
		Notes:     req.Notes,
		Schedules: schedules,
	}
	if err := h.Meds.Create(ctx, m); err != nil {
		return serverError(c, h.Cfg, "could not create medication", err)
	}
	return c.JSON(http.StatusCreated, m)
}

// List returns the caller's medications with today's check state.
func (h *MedicationHandler) List(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Meds.ListByUser(ctx, ident.UserID)
	if err != nil {
		return serverError(c, h.Cfg, "could not list medications", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"medications": list})
}

// SetChecked marks a schedule slot taken or not taken for today.
func (h *MedicationHandler) SetChecked(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	scheduleID, err := pathID(c, "scheduleId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule id"})
	}
	var req struct {
		Checked bool `json:"checked"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Meds.SetChecked(ctx, scheduleID, ident.UserID, req.Checked); err != nil {
		if errors.Is(err, repository.ErrMedicationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
		}
		return serverError(c, h.Cfg, "could not update schedule", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"schedule_id": scheduleID, "checked": req.Checked})
}

// Update changes a medication's name, dosage and notes.
func (h *MedicationHandler) Update(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid medication id"})
	}
	var req struct {
		Name   string `json:"name"`
		Dosage string `json:"dosage"`
		Notes  string `json:"notes"`
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

	m := &repository.Medication{ID: id, UserID: ident.UserID, Name: req.Name, Dosage: req.Dosage, Notes: req.Notes}
	if err := h.Meds.Update(ctx, m); err != nil {
		if errors.Is(err, repository.ErrMedicationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "medication not found"})
		}
		return serverError(c, h.Cfg, "could not update medication", err)
	}
	return c.JSON(http.StatusOK, m)
}

// Delete removes a medication and its schedule slots.
func (h *MedicationHandler) Delete(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid medication id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Meds.Delete(ctx, id, ident.UserID); err != nil {
		if errors.Is(err, repository.ErrMedicationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "medication not found"})
		}
		return serverError(c, h.Cfg, "could not delete medication", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "medication deleted"})
}
