package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/mkuznec/pizza_orders/internal/service"
)

func newContext(t *testing.T, header string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/orders/orders", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestRequireAuth(t *testing.T) {
	tokens := &service.TokenService{
		JWTSecret:     []byte("test_jwt_secret"),
		RefreshSecret: []byte("test_refresh_secret"),
	}
	mw := NewSimpleAuth(tokens)

	access, err := tokens.SignAccessToken("test_user")
	require.NoError(t, err)

	var seen string
	next := func(c echo.Context) error {
		seen, _ = c.Get("username").(string)
		return c.NoContent(http.StatusOK)
	}

	c := newContext(t, "Bearer "+access)
	require.NoError(t, mw.RequireAuth(next)(c))
	require.Equal(t, "test_user", seen)
}

func TestRequireAuthRejects(t *testing.T) {
	tokens := &service.TokenService{
		JWTSecret:     []byte("test_jwt_secret"),
		RefreshSecret: []byte("test_refresh_secret"),
	}
	mw := NewSimpleAuth(tokens)
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	refresh, err := tokens.SignRefreshToken("test_user")
	require.NoError(t, err)

	cases := []string{
		"",
		"Bearer garbage",
		"Token " + refresh,
		// refresh tokens must not pass as access tokens
		"Bearer " + refresh,
	}
	for _, header := range cases {
		c := newContext(t, header)
		err := mw.RequireAuth(next)(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok, "expected HTTPError for header %q", header)
		require.Equal(t, http.StatusUnauthorized, he.Code)
	}
}
