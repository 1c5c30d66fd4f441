package token

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

// CreateCookie builds an httpOnly cookie for one of the token pair.
func CreateCookie(name, value, path string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// SetPair writes both token cookies on the response.
func SetPair(c echo.Context, access, refresh string) {
	c.SetCookie(CreateCookie(AccessCookie, access, "/", time.Now().Add(AccessTTL)))
	c.SetCookie(CreateCookie(RefreshCookie, refresh, "/", time.Now().Add(RefreshTTL)))
}

// RequireAuth authenticates the request from the access cookie. An
// expired access token is refreshed transparently from the refresh
// cookie, rotating the pair and re-setting both cookies.
func (s *Service) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if cookie, err := c.Cookie(AccessCookie); err == nil {
			claims, parseErr := s.ParseAccess(cookie.Value)
			if parseErr == nil {
				setUserContext(c, claims)
				return next(c)
			}
		}

		rfCookie, err := c.Cookie(RefreshCookie)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}
		access, refresh, err := s.Rotate(c.Request().Context(), rfCookie.Value)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "cannot refresh session")
		}
		SetPair(c, access, refresh)

		claims, err := s.ParseAccess(access)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "cannot refresh session")
		}
		setUserContext(c, claims)
		return next(c)
	}
}

// RequireAdmin allows only requests already authenticated with the
// admin role. It must be chained after RequireAuth.
func (s *Service) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if Role(c) != "admin" {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return next(c)
	}
}

func setUserContext(c echo.Context, claims jwt.MapClaims) {
	if sub, ok := claims["sub"].(float64); ok {
		c.Set("userID", uint(sub))
	}
	if role, ok := claims["role"].(string); ok {
		c.Set("role", role)
	}
}

// UserID returns the authenticated user's id, or 0 when unauthenticated.
func UserID(c echo.Context) uint {
	id, _ := c.Get("userID").(uint)
	return id
}

// Role returns the authenticated user's role.
func Role(c echo.Context) string {
	role, _ := c.Get("role").(string)
	return role
}
