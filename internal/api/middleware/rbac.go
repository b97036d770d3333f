package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/talentsphere/talentsphere/internal/core/domain"
)

// RBAC enforces role-based access control on the effective role, so a
// recruiter token without company_id only passes where recruiter_unassociated
// is allowed.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			companyID, _ := c.Get("company_id").(string)
			if _, ok := allowed[domain.ResolveRole(domain.Role(role), companyID != "")]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}
