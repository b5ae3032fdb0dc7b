package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/epinapi/epin-store/internal/model"
)

// anonymousRole is reported in deny responses when the request carries no
// usable role claim at all.
const anonymousRole = "anonymous"

// RequireRole returns middleware that allows the request through only when
// the caller's role claim parses to one of the given roles. The decision is
// a pure function of the claims set by JWTAuth; on deny it answers 403 with
// a structured body naming the required roles and the caller's actual role
// so clients can distinguish "wrong account" from "not logged in".
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	required := make([]string, 0, len(roles))
	for _, r := range roles {
		allowed[r] = true
		required = append(required, r.String())
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := CurrentRole(c)
			if !ok || !allowed[role] {
				userRole := rawRole(c)
				if userRole == "" {
					userRole = anonymousRole
				}
				return c.JSON(http.StatusForbidden, echo.Map{
					"message":       "you are not allowed to perform this action",
					"requiredRoles": required,
					"userRole":      userRole,
				})
			}
			return next(c)
		}
	}
}
