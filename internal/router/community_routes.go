package router

import (
	"github.com/labstack/echo/v4"

	"github.com/everydaycare/server/internal/handler"
	"github.com/everydaycare/server/internal/middleware"
)

// RegisterCommunity registers hobby groups, channels, events and channel
// chat. Everything requires a valid access token; owner-only operations pass
// through RequireGroupOwner, which also admits admins.
func RegisterCommunity(e *echo.Echo, jwtSecret string, groups middleware.GroupGetter,
	gh *handler.GroupHandler, ch *handler.ChannelHandler, ev *handler.EventHandler, chat *handler.ChatHandler) {

	v1 := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	v1.POST("/groups", gh.Create)
	v1.GET("/groups", gh.List)
	v1.GET("/groups/:id", gh.Get)
	v1.POST("/groups/:id/join", gh.Join)
	v1.POST("/groups/:id/leave", gh.Leave)
	v1.GET("/groups/:id/members", gh.ListMembers)

	owner := middleware.RequireGroupOwner(groups)
	v1.PATCH("/groups/:id", gh.UpdateDescription, owner)
	v1.DELETE("/groups/:id", gh.Delete, owner)

	v1.GET("/groups/:id/channels", ch.List)
	v1.POST("/groups/:id/channels", ch.Create, owner)
	v1.DELETE("/groups/:id/channels/:name", ch.Delete, owner)

	v1.GET("/groups/:id/events", ev.ListByGroup)
	v1.POST("/groups/:id/events", ev.Create, owner)
	v1.PUT("/events/:id", ev.Update)
	v1.DELETE("/events/:id", ev.Delete)

	v1.GET("/groups/:id/chat/summary", chat.Summary)
	v1.GET("/groups/:id/channels/:name/messages", chat.List)
	v1.POST("/groups/:id/channels/:name/messages", chat.Post)
	v1.PUT("/chat/messages/:messageId", chat.Update)
	v1.DELETE("/chat/messages/:messageId", chat.Delete)
}
