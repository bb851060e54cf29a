package router

import (
	"github.com/labstack/echo/v4"

	"github.com/everydaycare/server/internal/handler"
	"github.com/everydaycare/server/internal/middleware"
)

// RegisterSocial registers friends, private messages and help requests.
func RegisterSocial(e *echo.Echo, jwtSecret string,
	fr *handler.FriendHandler, ms *handler.MessageHandler, hr *handler.HelpRequestHandler) {

	v1 := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	v1.POST("/friends/requests", fr.SendRequest)
	v1.GET("/friends/requests", fr.ListIncoming)
	v1.POST("/friends/requests/:id/accept", fr.Accept)
	v1.POST("/friends/requests/:id/decline", fr.Decline)
	v1.GET("/friends", fr.List)
	v1.DELETE("/friends/:userId", fr.Unfriend)

	v1.POST("/messages/:userId", ms.Send)
	v1.GET("/messages/:userId", ms.Conversation)
	v1.POST("/translate", ms.Translate)

	v1.POST("/help-requests", hr.Create)
	v1.GET("/help-requests", hr.ListOpen)
	v1.GET("/help-requests/mine", hr.ListMine)
	v1.POST("/help-requests/:id/accept", hr.Accept)
	v1.POST("/help-requests/:id/resolve", hr.Resolve)
}
