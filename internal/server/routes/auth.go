package routes

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// BearerAuthMiddleware enforces a static bearer token on API routes. Health
// and metrics endpoints stay open for probes and scrapers. The presented
// token is compared in constant time and never logged.
func BearerAuthMiddleware(token string) echo.MiddlewareFunc {
	expected := []byte(token)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if authSkipper(c) {
				return next(c)
			}
			presented, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok || subtle.ConstantTimeCompare([]byte(presented), expected) != 1 {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing bearer token")
			}
			return next(c)
		}
	}
}

func authSkipper(c echo.Context) bool {
	switch c.Request().URL.Path {
	case "/healthz", "/metrics":
		return true
	default:
		return false
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
