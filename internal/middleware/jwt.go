// Package middleware provides reusable HTTP middleware: access-token
// verification, role-based authorization, response caching and rate
// limiting.
package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/epinapi/epin-store/internal/model"
)

// Context keys set by JWTAuth for downstream middleware and handlers.
const (
	ctxUserID = "user_id"
	ctxEmail  = "email"
	ctxRole   = "role"
)

// JWTAuth returns middleware that validates a Bearer access token and
// injects the subject id, email and role claims into the request context.
// Verification is pure computation: signature check plus expiry with zero
// clock-skew tolerance. The role claim is stored as the raw string so the
// role gate can report unknown values instead of masking them.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				// Reject tokens signed with anything but HMAC; otherwise a
				// crafted token could downgrade the algorithm.
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid or expired token"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid claims"})
			}

			// Numeric JSON claims decode as float64.
			sub, ok := claims["sub"].(float64)
			if !ok || sub <= 0 {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid subject"})
			}
			c.Set(ctxUserID, uint64(sub))
			if email, ok := claims["email"].(string); ok {
				c.Set(ctxEmail, email)
			}
			if role, ok := claims["role"].(string); ok {
				c.Set(ctxRole, role)
			}
			return next(c)
		}
	}
}

// CurrentUserID returns the authenticated user's id, or 0 when the request
// carries no verified token.
func CurrentUserID(c echo.Context) uint64 {
	if v, ok := c.Get(ctxUserID).(uint64); ok {
		return v
	}
	return 0
}

// CurrentRole returns the caller's role claim parsed against the closed
// role set. The boolean is false when the claim is absent or unknown.
func CurrentRole(c echo.Context) (model.Role, bool) {
	v, ok := c.Get(ctxRole).(string)
	if !ok {
		return "", false
	}
	return model.ParseRole(v)
}

// rawRole returns the unparsed role claim for diagnostics in deny
// responses; empty string when absent.
func rawRole(c echo.Context) string {
	v, _ := c.Get(ctxRole).(string)
	return v
}
