package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/everydaycare/server/internal/repository"
	"github.com/everydaycare/server/internal/utils"
)

type fakeGroups struct {
	group *repository.HobbyGroup
}

func (f *fakeGroups) GetByID(_ context.Context, id uint64) (*repository.HobbyGroup, error) {
	if f.group == nil || f.group.ID != id {
		return nil, repository.ErrGroupNotFound
	}
	return f.group, nil
}

func runGroupOwner(t *testing.T, groups GroupGetter, ident utils.Identity, param string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(param)
	c.Set(identityKey, ident)

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	require.NoError(t, RequireGroupOwner(groups)(next)(c))
	return rec
}

func TestRequireGroupOwnerAllowsOwner(t *testing.T) {
	groups := &fakeGroups{group: &repository.HobbyGroup{ID: 5, OwnerID: 10}}
	rec := runGroupOwner(t, groups, utils.Identity{UserID: 10, Role: "user"}, "5")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireGroupOwnerAllowsAdmin(t *testing.T) {
	groups := &fakeGroups{group: &repository.HobbyGroup{ID: 5, OwnerID: 10}}
	rec := runGroupOwner(t, groups, utils.Identity{UserID: 99, Role: "admin"}, "5")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireGroupOwnerForbidsNonOwner(t *testing.T) {
	groups := &fakeGroups{group: &repository.HobbyGroup{ID: 5, OwnerID: 10}}
	rec := runGroupOwner(t, groups, utils.Identity{UserID: 11, Role: "user"}, "5")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireGroupOwnerMissingGroup(t *testing.T) {
	rec := runGroupOwner(t, &fakeGroups{}, utils.Identity{UserID: 10, Role: "user"}, "5")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequireGroupOwnerBadID(t *testing.T) {
	rec := runGroupOwner(t, &fakeGroups{}, utils.Identity{UserID: 10, Role: "user"}, "abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
