package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// identityKey is the echo context key the middleware stores claims under.
const identityKey = "auth.claims"

// Middleware returns an echo middleware that requires a valid bearer token
// and stashes the caller identity in the request context. Handlers read the
// owner id exclusively through CallerID.
func Middleware(tokens *TokenManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := bearerToken(c.Request())
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}
			claims, err := tokens.Parse(raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}
			c.Set(identityKey, claims)
			return next(c)
		}
	}
}

// CallerID returns the authenticated user id, if any.
func CallerID(c echo.Context) (string, bool) {
	claims, ok := c.Get(identityKey).(*Claims)
	if !ok || claims.UserID == "" {
		return "", false
	}
	return claims.UserID, true
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrTokenInvalid
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrTokenInvalid
	}
	return strings.TrimSpace(token), nil
}
