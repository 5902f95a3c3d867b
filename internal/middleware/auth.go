package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/arena-backend/internal/auth"
	"github.com/shinyyama/arena-backend/internal/httperr"
	"github.com/shinyyama/arena-backend/internal/logging"
	"github.com/shinyyama/arena-backend/internal/model"
)

const (
	ContextUserID   = "uid"
	ContextRole     = "role"
	ContextUsername = "username"
)

type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
}

func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authz := c.Request().Header.Get("Authorization")
		if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
			return httperr.Write(c, http.StatusUnauthorized, "invalid_token", "Missing bearer token")
		}
		tokenStr := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
		claims, err := m.verifier.Verify(tokenStr)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				return httperr.Write(c, http.StatusUnauthorized, "token_expired", "Token has expired")
			}
			return httperr.Write(c, http.StatusUnauthorized, "invalid_token", "Invalid token")
		}
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, model.Role(claims.Role))
		c.Set(ContextUsername, claims.Username)

		req := c.Request()
		l := logging.FromContext(req.Context()).With().Str("user_id", claims.UserID).Logger()
		c.SetRequest(req.WithContext(logging.WithLogger(req.Context(), l)))
		return next(c)
	}
}

// RequireRole admits requests whose authenticated role is one of roles.
// It must run after RequireAuth.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ContextRole).(model.Role)
			for _, r := range roles {
				if role == r {
					return next(c)
				}
			}
			return httperr.Write(c, http.StatusForbidden, "forbidden", "Insufficient permissions")
		}
	}
}

// UserID returns the authenticated user id, or "" outside RequireAuth.
func UserID(c echo.Context) string {
	uid, _ := c.Get(ContextUserID).(string)
	return uid
}
