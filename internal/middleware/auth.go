package middleware // middleware contains reusable HTTP middleware functions

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/everydaycare/server/internal/utils"
)

// identityKey is the context key the authenticated Identity is stored under.
const identityKey = "identity"

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// attaches the decoded Identity to the request context. The gate follows a
// strict split: a missing token is 401, a present-but-invalid token is 403.
// Handlers downstream read the caller via CurrentIdentity and never parse
// claims themselves.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			id, err := utils.DecodeIdentity(secret, raw)
			if err != nil {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "invalid token"})
			}

			c.Set(identityKey, id)
			// String form for the rate limiter's key builder.
			c.Set("user_id", strconv.FormatUint(id.UserID, 10))
			return next(c)
		}
	}
}

// CurrentIdentity returns the Identity attached by JWTAuth. The boolean is
// false on routes that did not pass through the middleware.
func CurrentIdentity(c echo.Context) (utils.Identity, bool) {
	id, ok := c.Get(identityKey).(utils.Identity)
	return id, ok
}
