// Package guard decides, for a page and the current session, whether to
// render the page or send the user somewhere else.
package guard

import (
	"net/url"
	"strings"

	"github.com/talentsphere/talentsphere/internal/core/domain"
	"github.com/talentsphere/talentsphere/internal/core/session"
)

// Kind is the outcome of evaluating a route.
type Kind int

const (
	// Loading means an auth operation is in flight and no decision is made.
	Loading Kind = iota
	// RedirectToLogin sends an anonymous visitor to the login page.
	RedirectToLogin
	// RedirectAuthenticated moves a logged-in user off an auth-flow page.
	RedirectAuthenticated
	// RedirectRoleMismatch moves a user away from a page their role may not see.
	RedirectRoleMismatch
	// Allow renders the requested page.
	Allow
	// Forbidden refuses the page when every redirect target leads back to it.
	// Nothing is rendered and no navigation happens.
	Forbidden
)

func (k Kind) String() string {
	switch k {
	case Loading:
		return "loading"
	case RedirectToLogin:
		return "redirect_to_login"
	case RedirectAuthenticated:
		return "redirect_authenticated"
	case RedirectRoleMismatch:
		return "redirect_role_mismatch"
	case Allow:
		return "allow"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Decision is what the guard concluded. Target is set for redirects only.
type Decision struct {
	Kind   Kind
	Target string
}

// Redirect reports whether the decision requires navigation.
func (d Decision) Redirect() bool {
	return d.Target != ""
}

// Page is the guard configuration a protected page declares.
type Page struct {
	// RequiredRoles restricts the page; empty means any authenticated user.
	RequiredRoles []domain.Role
	// RedirectTo overrides where unauthenticated or mismatched users are sent.
	RedirectTo string
}

// Routes names the application's well-known paths.
type Routes struct {
	Login      string
	Home       string
	Jobs       string
	Onboarding string
	Dashboard  string
	// ReturnParam is the query parameter carrying the path to resume after login.
	ReturnParam string
	// AuthFlow pages are only for anonymous visitors.
	AuthFlow []string
	// Public pages need no session.
	Public []string
}

// DefaultRoutes returns the TalentSphere route table.
func DefaultRoutes() Routes {
	return Routes{
		Login:       "/login",
		Home:        "/",
		Jobs:        "/jobs",
		Onboarding:  "/recruiter/onboarding",
		Dashboard:   "/dashboard",
		ReturnParam: "redirect",
		AuthFlow:    []string{"/login", "/register", "/forgot-password", "/reset-password", "/verify-email"},
		Public:      []string{"/", "/jobs", "/companies", "/about", "/pricing", "/contact", "/privacy", "/terms"},
	}
}

// Decide evaluates the route state machine for path.
func Decide(st session.State, path string, page Page, routes Routes) Decision {
	if st.IsLoading {
		return Decision{Kind: Loading}
	}

	current := pathOnly(path)

	if !st.IsAuthenticated {
		if routes.isAuthFlow(current) || routes.isPublic(current) {
			return Decision{Kind: Allow}
		}
		login := routes.Login + "?" + url.Values{routes.ReturnParam: {path}}.Encode()
		return deny(RedirectToLogin, current, page.RedirectTo, login)
	}

	if routes.isAuthFlow(current) {
		return redirect(RedirectAuthenticated, routes.Landing(st.Identity), current)
	}

	if len(page.RequiredRoles) > 0 && !hasRole(st.Identity, page.RequiredRoles) {
		return deny(RedirectRoleMismatch, current, page.RedirectTo, routes.Landing(st.Identity), routes.Home)
	}

	return Decision{Kind: Allow}
}

// Landing is where a logged-in user belongs, chosen by effective role.
func (r Routes) Landing(identity *domain.Identity) string {
	if identity == nil {
		return r.Home
	}
	switch identity.EffectiveRole() {
	case domain.RoleCandidate:
		return r.Jobs
	case domain.RoleRecruiterUnassociated:
		return r.Onboarding
	case domain.RoleRecruiter, domain.RoleAdmin:
		return r.Dashboard
	default:
		return r.Home
	}
}

func (r Routes) isAuthFlow(path string) bool {
	return matchAny(r.AuthFlow, path)
}

func (r Routes) isPublic(path string) bool {
	return matchAny(r.Public, path)
}

// deny redirects to the first candidate that leads off the current page. A
// rejected page is never rendered, so with no candidate left it is Forbidden.
func deny(kind Kind, current string, candidates ...string) Decision {
	for _, target := range candidates {
		if target != "" && pathOnly(target) != current {
			return Decision{Kind: kind, Target: target}
		}
	}
	return Decision{Kind: Forbidden}
}

// redirect turns a redirect back onto the current page into Allow. Only used
// for pages the visitor is allowed to see.
func redirect(kind Kind, target, current string) Decision {
	if pathOnly(target) == current {
		return Decision{Kind: Allow}
	}
	return Decision{Kind: kind, Target: target}
}

func hasRole(identity *domain.Identity, roles []domain.Role) bool {
	if identity == nil {
		return false
	}
	role := identity.EffectiveRole()
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// matchAny matches exact paths and their sub-paths; "/" matches only itself.
func matchAny(prefixes []string, path string) bool {
	for _, p := range prefixes {
		if path == p {
			return true
		}
		if p != "/" && strings.HasPrefix(path, strings.TrimSuffix(p, "/")+"/") {
			return true
		}
	}
	return false
}

func pathOnly(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "/"
	}
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}
