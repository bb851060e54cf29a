package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/everydaycare/server/internal/config"
	"github.com/everydaycare/server/internal/provider"
	"github.com/everydaycare/server/internal/utils"
)

// newTestContext builds an echo context carrying an authenticated identity,
// the way the JWT middleware leaves it.
func newTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("identity", utils.Identity{UserID: 1, Email: "a@b.c", FullName: "A B", Role: "user"})
	return c, rec
}

func TestRegisterValidation(t *testing.T) {
	h := &AuthHandler{Cfg: config.Config{Env: "dev"}}

	cases := []struct {
		name string
		body string
	}{
		{"missing email", `{"password":"longenough","first_name":"A"}`},
		{"missing password", `{"email":"a@b.c","first_name":"A"}`},
		{"short password", `{"email":"a@b.c","password":"short","first_name":"A"}`},
		{"missing first name", `{"email":"a@b.c","password":"longenough"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newTestContext(t, http.MethodPost, "/v1/auth/register", tc.body)
			require.NoError(t, h.Register(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestLoginValidation(t *testing.T) {
	h := &AuthHandler{Cfg: config.Config{Env: "dev"}}
	c, rec := newTestContext(t, http.MethodPost, "/v1/auth/login", `{"email":"a@b.c"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMedicationCreateValidation(t *testing.T) {
	h := &MedicationHandler{Cfg: config.Config{Env: "dev"}}

	cases := []struct {
		name string
		body string
	}{
		{"missing name", `{"times":["08:00"]}`},
		{"no times", `{"name":"Metformin"}`},
		{"bad time format", `{"name":"Metformin","times":["8am"]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newTestContext(t, http.MethodPost, "/v1/medications", tc.body)
			require.NoError(t, h.Create(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestEventRequestValidate(t *testing.T) {
	good := eventRequest{Title: "Walk", EventDate: "2025-06-01", StartTime: "09:00", EndTime: "10:00"}
	assert.Empty(t, good.validate())
	assert.Equal(t, "event", good.ChannelName)

	bad := eventRequest{Title: "Walk", EventDate: "June 1", StartTime: "09:00"}
	assert.Equal(t, "event_date must be YYYY-MM-DD", bad.validate())

	reversed := eventRequest{Title: "Walk", EventDate: "2025-06-01", StartTime: "10:00", EndTime: "09:00"}
	assert.Equal(t, "end_time must not be before start_time", reversed.validate())

	untitled := eventRequest{EventDate: "2025-06-01", StartTime: "09:00"}
	assert.Equal(t, "title is required", untitled.validate())
}

func TestChannelCreateNameValidation(t *testing.T) {
	h := NewChannelHandler(config.Config{Env: "dev"}, nil, nil, nil)

	for _, name := range []string{"", "Has Spaces", "UPPER", "-leading", strings.Repeat("x", 40)} {
		c, rec := newTestContext(t, http.MethodPost, "/", `{"name":"`+name+`"}`)
		c.SetParamNames("id")
		c.SetParamValues("1")
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "name %q", name)
	}
}

func TestChatUpdateRejectsBadMessageID(t *testing.T) {
	h := NewChatHandler(config.Config{Env: "dev"}, nil, nil, nil, nil)
	c, rec := newTestContext(t, http.MethodPut, "/", `{"text":"hi"}`)
	c.SetParamNames("messageId")
	c.SetParamValues("not-an-objectid")
	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBusArrivalsRejectsBadStop(t *testing.T) {
	h := &BusHandler{Cfg: config.Config{Env: "dev"}}
	for _, stop := range []string{"", "123", "123456", "abcde"} {
		c, rec := newTestContext(t, http.MethodGet, "/", "")
		c.SetParamNames("stop")
		c.SetParamValues(stop)
		require.NoError(t, h.Arrivals(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "stop %q", stop)
	}
}

func TestCalendarDisabledWithoutCredentials(t *testing.T) {
	h := NewCalendarHandler(config.Config{Env: "dev"}, provider.NewCalendarClient("", "", ""), nil)

	c, rec := newTestContext(t, http.MethodGet, "/v1/calendar/auth-url", "")
	require.NoError(t, h.AuthURL(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestTranslateValidation(t *testing.T) {
	h := &MessageHandler{Cfg: config.Config{Env: "dev"}}

	c, rec := newTestContext(t, http.MethodPost, "/v1/translate", `{"text":"hi","lang":"fr"}`)
	require.NoError(t, h.Translate(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newTestContext(t, http.MethodPost, "/v1/translate", `{"lang":"zh"}`)
	require.NoError(t, h.Translate(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
