package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/talentsphere/talentsphere/internal/core/domain"
)

// claims is what the Auth middleware leaves on the echo context.
type claims struct {
	UserID    string
	Role      domain.Role
	CompanyID string
}

// EffectiveRole treats a recruiter token without company_id as unassociated.
func (c claims) EffectiveRole() domain.Role {
	return domain.ResolveRole(c.Role, c.CompanyID != "")
}

// ctxClaims extracts the auth claims injected by the Auth middleware and
// performs a fast-fail check before any service call: user_id and role must be
// non-empty (presence proves the middleware ran).
func ctxClaims(c echo.Context) (claims, error) {
	userID, _ := c.Get("user_id").(string)
	role, _ := c.Get("role").(string)
	if userID == "" || role == "" {
		return claims{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	companyID, _ := c.Get("company_id").(string)
	return claims{UserID: userID, Role: domain.Role(role), CompanyID: companyID}, nil
}
