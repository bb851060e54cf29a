package router

import (
	"github.com/labstack/echo/v4"

	"github.com/everydaycare/server/internal/handler"
	"github.com/everydaycare/server/internal/middleware"
)

// RegisterCare registers the personal care endpoints: appointments,
// medications, emergency contacts and the shared hotline directory. Hotline
// writes are admin-only.
func RegisterCare(e *echo.Echo, jwtSecret string,
	ap *handler.AppointmentHandler, md *handler.MedicationHandler,
	ct *handler.ContactHandler, hl *handler.HotlineHandler) {

	v1 := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	v1.POST("/appointments", ap.Create)
	v1.GET("/appointments", ap.List)
	v1.PUT("/appointments/:id", ap.Update)
	v1.DELETE("/appointments/:id", ap.Delete)

	v1.POST("/medications", md.Create)
	v1.GET("/medications", md.List)
	v1.PUT("/medications/:id", md.Update)
	v1.PATCH("/medications/schedules/:scheduleId", md.SetChecked)
	v1.DELETE("/medications/:id", md.Delete)

	v1.POST("/contacts", ct.Create)
	v1.GET("/contacts", ct.List)
	v1.PUT("/contacts/:id", ct.Update)
	v1.DELETE("/contacts/:id", ct.Delete)

	v1.GET("/hotlines", hl.List)

	admin := middleware.RequireRole("admin")
	v1.POST("/hotlines", hl.Create, admin)
	v1.PUT("/hotlines/:id", hl.Update, admin)
	v1.DELETE("/hotlines/:id", hl.Delete, admin)
}
