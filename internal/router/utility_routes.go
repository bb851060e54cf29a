package router

import (
	"github.com/labstack/echo/v4"

	"github.com/everydaycare/server/internal/handler"
	"github.com/everydaycare/server/internal/middleware"
)

// RegisterUtilities registers saved places, live bus arrivals and the Google
// Calendar sync flow.
func RegisterUtilities(e *echo.Echo, jwtSecret string,
	pl *handler.PlaceHandler, bus *handler.BusHandler, cal *handler.CalendarHandler) {

	v1 := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	v1.POST("/places", pl.Create)
	v1.GET("/places", pl.List)
	v1.DELETE("/places/:id", pl.Delete)
	v1.POST("/places/:id/notes", pl.AddNote)
	v1.GET("/places/:id/notes", pl.ListNotes)
	v1.DELETE("/places/notes/:noteId", pl.DeleteNote)

	v1.GET("/bus/:stop/arrivals", bus.Arrivals)

	v1.GET("/calendar/auth-url", cal.AuthURL)
	v1.POST("/calendar/exchange", cal.Exchange)
	v1.POST("/calendar/sync", cal.SyncAppointment)
}
