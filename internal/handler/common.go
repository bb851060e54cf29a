package handler // handler defines http handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/everydaycare/server/internal/config"
	"github.com/everydaycare/server/internal/middleware"
	"github.com/everydaycare/server/internal/utils"
)

// callerIdentity pulls the typed Identity attached by the JWT middleware.
func callerIdentity(c echo.Context) (utils.Identity, bool) {
	return middleware.CurrentIdentity(c)
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// serverError reports a 500 with a generic message. Detail is attached only
// outside production.
func serverError(c echo.Context, cfg config.Config, msg string, err error) error {
	body := echo.Map{"error": msg}
	if !cfg.IsProd() && err != nil {
		body["details"] = err.Error()
	}
	return c.JSON(http.StatusInternalServerError, body)
}
