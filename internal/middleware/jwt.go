package middleware // reusable HTTP middleware: authentication, roles, caching, rate limiting

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/book-lending/internal/model"
	"github.com/iliyamo/book-lending/internal/service"
)

// Context keys set by JWTAuth and OptionalAuth.
const (
	KeyIdentity = "identity"
	KeyUserID   = "user_id"
	KeyRole     = "role"
)

// Authenticator resolves a bearer token; service.AuthService implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (model.Identity, error)
}

// BearerToken returns the token of an "Authorization: Bearer <token>"
// header, or "" when the header is missing or malformed.
func BearerToken(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(h) < 7 || !strings.EqualFold(h[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// JWTAuth rejects requests without a valid, unrevoked bearer token and
// stores the caller's identity in the context.
func JWTAuth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := BearerToken(c)
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "No token provided"})
			}
			id, err := auth.Authenticate(c.Request().Context(), raw)
			if err != nil {
				if kind, ok := service.KindOf(err); ok && kind == service.KindInvalidToken {
					return c.JSON(http.StatusUnauthorized, echo.Map{"message": service.MsgInvalidToken})
				}
				return err
			}
			setIdentity(c, id)
			return next(c)
		}
	}
}

// OptionalAuth stores the caller's identity when a valid token is present
// and lets anonymous requests through untouched.
func OptionalAuth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if raw := BearerToken(c); raw != "" {
				if id, err := auth.Authenticate(c.Request().Context(), raw); err == nil {
					setIdentity(c, id)
				}
			}
			return next(c)
		}
	}
}

func setIdentity(c echo.Context, id model.Identity) {
	c.Set(KeyIdentity, id)
	c.Set(KeyUserID, id.UserID)
	c.Set(KeyRole, id.Role)
}

// IdentityFrom returns the identity stored by JWTAuth or OptionalAuth.
func IdentityFrom(c echo.Context) (model.Identity, bool) {
	id, ok := c.Get(KeyIdentity).(model.Identity)
	return id, ok
}
