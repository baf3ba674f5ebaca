package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Middleware authenticates the bearer access token and places the caller's
// identity into the echo context. Role gating goes through RequireRole so
// the allow-list lives in one place instead of per-handler string checks.
type Middleware struct {
	JWTSecret []byte
}

func (m *Middleware) parseBearer(c echo.Context) (jwt.MapClaims, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "malformed authorization header")
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.JWTSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
	}
	return claims, nil
}

func (m *Middleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := m.parseBearer(c)
		if err != nil {
			return err
		}
		sub, ok := claims["sub"].(float64)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid subject claim")
		}
		role, _ := claims["role"].(string)
		c.Set("userID", uint(sub))
		c.Set("role", role)
		return next(c)
	}
}

// RequireRole allows the request through only when the authenticated role is
// in the given set. Must run after Authenticate.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := Role(c)
			if _, ok := allowed[role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
			}
			return next(c)
		}
	}
}

func UserID(c echo.Context) (uint, error) {
	id, ok := c.Get("userID").(uint)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return id, nil
}

func Role(c echo.Context) string {
	role, _ := c.Get("role").(string)
	return role
}

// IsStaff reports whether the role may see broadcast notifications and
// privileged queues.
func IsStaff(role string) bool {
	switch role {
	case "admin", "finance", "owner":
		return true
	}
	return false
}
