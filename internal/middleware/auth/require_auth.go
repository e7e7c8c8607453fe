package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mkuznec/pizza_orders/internal/service"
)

type SimpleAuth struct {
	Tokens *service.TokenService
}

func NewSimpleAuth(tokens *service.TokenService) *SimpleAuth {
	return &SimpleAuth{Tokens: tokens}
}

// RequireAuth accepts only access-class bearer tokens and puts the
// username claim into the echo context for the handlers.
func (m *SimpleAuth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := BearerToken(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := m.Tokens.ParseAccessToken(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		c.Set("username", claims.Subject)
		return next(c)
	}
}

func BearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
