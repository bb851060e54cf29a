package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/oauth2"

	"github.com/everydaycare/server/internal/config"
	"github.com/everydaycare/server/internal/provider"
	"github.com/everydaycare/server/internal/repository"
)

// CalendarHandler wires the Google Calendar consent flow and appointment
// sync. The browser holds the OAuth tokens; the server only relays them.
type CalendarHandler struct {
	Cfg      config.Config
	Calendar *provider.CalendarClient
	Appts    *repository.AppointmentRepo
}

func NewCalendarHandler(cfg config.Config, cal *provider.CalendarClient, appts *repository.AppointmentRepo) *CalendarHandler {
	return &CalendarHandler{Cfg: cfg, Calendar: cal, Appts: appts}
}

// AuthURL returns the Google consent URL with a fresh state value the client
// must echo back on the callback.
func (h *CalendarHandler) AuthURL(c echo.Context) error {
	state := uuid.NewString()
	u, err := h.Calendar.AuthURL(state)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "calendar sync not configured"})
	}
	return c.JSON(http.StatusOK, echo.Map{"url": u, "state": state})
}

// Exchange swaps an authorization code for tokens, which are returned to the
// client for safekeeping.
func (h *CalendarHandler) Exchange(c echo.Context) error {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.Bind(&req); err != nil || req.Code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	tok, err := h.Calendar.Exchange(ctx, req.Code)
	if err != nil {
		if errors.Is(err, provider.ErrCalendarDisabled) {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "calendar sync not configured"})
		}
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "could not exchange authorization code"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  tok.AccessToken,
		"refresh_token": tok.RefreshToken,
		"expiry":        tok.Expiry,
	})
}

// SyncAppointment inserts one of the caller's appointments into their primary
// Google calendar. The slot is one hour from the appointment start.
func (h *CalendarHandler) SyncAppointment(c echo.Context) error {
	ident, ok := callerIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	var req struct {
		AppointmentID uint64    `json:"appointment_id"`
		AccessToken   string    `json:"access_token"`
		RefreshToken  string    `json:"refresh_token"`
		Expiry        time.Time `json:"expiry"`
	}
	if err := c.Bind(&req); err != nil || req.AppointmentID == 0 || req.AccessToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "appointment_id and access_token are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	a, err := h.Appts.GetByIDAndUser(ctx, req.AppointmentID, ident.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrAppointmentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		}
		return serverError(c, h.Cfg, "could not load appointment", err)
	}

	start, err := time.ParseInLocation("2006-01-02 15:04", a.ApptDate+" "+a.StartTime, time.Local)
	if err != nil {
		return serverError(c, h.Cfg, "appointment has an invalid date", err)
	}

	tok := &oauth2.Token{
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		Expiry:       req.Expiry,
	}
	ev := provider.CalendarEvent{
		Summary:     a.Title,
		Description: describeAppointment(a),
		Location:    a.Location,
		Start:       start,
		End:         start.Add(time.Hour),
	}
	if err := h.Calendar.InsertEvent(ctx, tok, ev); err != nil {
		if errors.Is(err, provider.ErrCalendarDisabled) {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "calendar sync not configured"})
		}
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "calendar insert failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "appointment synced"})
}

func describeAppointment(a *repository.Appointment) string {
	desc := ""
	if a.Doctor != "" {
		desc = "Doctor: " + a.Doctor
	}
	if a.Notes != "" {
		if desc != "" {
			desc += "\n"
		}
		desc += a.Notes
	}
	return desc
}
