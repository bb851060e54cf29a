package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/everydaycare/server/internal/repository"
)

// GroupGetter loads a group by id; satisfied by *repository.GroupRepo.
type GroupGetter interface {
	GetByID(ctx context.Context, id uint64) (*repository.HobbyGroup, error)
}

// RequireGroupOwner gates group-mutating routes: the group named by the :id
// path parameter is loaded and its owner id compared against the caller. An
// admin passes regardless of ownership. Composes with JWTAuth, which must run
// first. The ownership state is re-read on every request rather than cached,
// so the check always reflects the latest stored owner.
func RequireGroupOwner(groups GroupGetter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := CurrentIdentity(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			groupID, err := strconv.ParseUint(c.Param("id"), 10, 64)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid group id"})
			}

			g, err := groups.GetByID(c.Request().Context(), groupID)
			if err != nil {
				if errors.Is(err, repository.ErrGroupNotFound) {
					return c.JSON(http.StatusNotFound, echo.Map{"error": "group not found"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
			}
			if g.OwnerID != id.UserID && !id.IsAdmin() {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
