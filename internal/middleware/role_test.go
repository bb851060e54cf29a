package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/everydaycare/server/internal/utils"
)

func runRole(t *testing.T, ident *utils.Identity, allowed ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if ident != nil {
		c.Set(identityKey, *ident)
	}
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	require.NoError(t, RequireRole(allowed...)(next)(c))
	return rec
}

func TestRequireRoleAllows(t *testing.T) {
	rec := runRole(t, &utils.Identity{UserID: 1, Role: "admin"}, "admin")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleForbidsOtherRole(t *testing.T) {
	rec := runRole(t, &utils.Identity{UserID: 1, Role: "user"}, "admin")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleForbidsMissingIdentity(t *testing.T) {
	rec := runRole(t, nil, "admin")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
