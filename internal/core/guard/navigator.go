package guard

import (
	"github.com/rs/zerolog"

	"github.com/talentsphere/talentsphere/internal/core/domain"
	"github.com/talentsphere/talentsphere/internal/core/session"
)

// SessionReader is the read-only view of the session a page guard borrows.
type SessionReader interface {
	State() session.State
}

// Navigator performs the navigation a redirect decision asks for.
type Navigator interface {
	Navigate(target string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(target string)

func (f NavigatorFunc) Navigate(target string) { f(target) }

// Result is what a guarded page renders with.
type Result struct {
	IsAuthenticated bool
	Identity        *domain.Identity
	IsLoading       bool
	Decision        Decision
}

// Guard evaluates pages against the live session and navigates on redirects.
type Guard struct {
	session   SessionReader
	navigator Navigator
	routes    Routes
	log       zerolog.Logger
}

func New(sess SessionReader, navigator Navigator, routes Routes, log zerolog.Logger) *Guard {
	return &Guard{session: sess, navigator: navigator, routes: routes, log: log}
}

// Routes returns the route table the guard evaluates against.
func (g *Guard) Routes() Routes {
	return g.routes
}

// Check evaluates path and, when the decision is a redirect, navigates.
func (g *Guard) Check(path string, page Page) Result {
	st := g.session.State()
	d := Decide(st, path, page, g.routes)

	if d.Redirect() {
		g.log.Debug().
			Str("path", path).
			Str("decision", d.Kind.String()).
			Str("target", d.Target).
			Msg("route guard redirect")
		g.navigator.Navigate(d.Target)
	}

	return Result{
		IsAuthenticated: st.IsAuthenticated,
		Identity:        st.Identity,
		IsLoading:       st.IsLoading,
		Decision:        d,
	}
}
