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

const testSecret = "test-secret"

func runJWT(t *testing.T, authHeader string) (*httptest.ResponseRecorder, utils.Identity, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var (
		got    utils.Identity
		gotOK  bool
		called bool
	)
	next := func(c echo.Context) error {
		called = true
		got, gotOK = CurrentIdentity(c)
		return c.NoContent(http.StatusOK)
	}
	err := JWTAuth(testSecret)(next)(c)
	require.NoError(t, err)
	if !called {
		return rec, utils.Identity{}, false
	}
	return rec, got, gotOK
}

func TestJWTAuthMissingToken(t *testing.T) {
	rec, _, ok := runJWT(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, ok)
}

func TestJWTAuthInvalidToken(t *testing.T) {
	rec, _, ok := runJWT(t, "Bearer garbage")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, ok)
}

func TestJWTAuthWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("other-secret", utils.Identity{UserID: 1, Role: "user"}, 5)
	require.NoError(t, err)

	rec, _, ok := runJWT(t, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, ok)
}

func TestJWTAuthAttachesIdentity(t *testing.T) {
	want := utils.Identity{UserID: 9, Email: "lim@example.com", FullName: "Lim Wei", Role: "admin"}
	tok, err := utils.NewAccessToken(testSecret, want, 5)
	require.NoError(t, err)

	rec, got, ok := runJWT(t, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, ok)
	assert.Equal(t, want, got)
}
