// Package cli is the TalentSphere command-line shell. It owns no state of its
// own: every command drives the session store or asks the route guard.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/talentsphere/talentsphere/internal/core/domain"
	"github.com/talentsphere/talentsphere/internal/core/guard"
	"github.com/talentsphere/talentsphere/internal/core/session"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// Session is the part of the session store the shell drives.
type Session interface {
	State() session.State
	Login(ctx context.Context, creds domain.Credentials) bool
	Register(ctx context.Context, data domain.RegistrationPayload) bool
	Logout()
	CheckAuthStatus(ctx context.Context)
	UpdateUserCompanyAssociation(companyID, companyName string)
}

// App wires a session to standard streams.
type App struct {
	Session Session
	Routes  guard.Routes
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Log     zerolog.Logger
}

type command struct {
	summary string
	run     func(a *App, ctx context.Context, args []string) int
}

var commands = map[string]command{
	"login":     {"sign in with email and password", (*App).login},
	"register":  {"create an account and sign in", (*App).register},
	"logout":    {"end the session", (*App).logout},
	"status":    {"re-validate the stored session against the backend", (*App).status},
	"whoami":    {"print the stored session without contacting the backend", (*App).whoami},
	"associate": {"attach the signed-in recruiter to a company", (*App).associate},
	"open":      {"evaluate the route guard for a page path", (*App).open},
}

var commandOrder = []string{"login", "register", "logout", "status", "whoami", "associate", "open"}

// Run dispatches args[0] and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		a.usage()
		return ExitUsage
	}
	name := args[0]
	if name == "help" || name == "-h" || name == "--help" {
		a.usage()
		return ExitOK
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(a.Stderr, "unknown command %q\n\n", name)
		a.usage()
		return ExitUsage
	}

	a.Log.Debug().Str("command", name).Msg("running command")
	return cmd.run(a, ctx, args[1:])
}

func (a *App) usage() {
	fmt.Fprintln(a.Stderr, "usage: talentsphere <command> [flags]")
	fmt.Fprintln(a.Stderr)
	fmt.Fprintln(a.Stderr, "commands:")
	for _, name := range commandOrder {
		fmt.Fprintf(a.Stderr, "  %-10s %s\n", name, commands[name].summary)
	}
}

// newFlagSet returns a flag set that reports errors instead of exiting.
func (a *App) newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.Stderr)
	fs.SortFlags = false
	return fs
}

// parse maps flag errors to exit codes. ok is false when the caller should return code.
func parse(fs *pflag.FlagSet, args []string) (code int, ok bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return ExitOK, false
		}
		return ExitUsage, false
	}
	return ExitOK, true
}

func (a *App) usageError(fs *pflag.FlagSet, format string, args ...any) int {
	fmt.Fprintf(a.Stderr, format+"\n", args...)
	fs.PrintDefaults()
	return ExitUsage
}

func (a *App) login(ctx context.Context, args []string) int {
	fs := a.newFlagSet("login")
	email := fs.StringP("email", "e", "", "account email")
	password := fs.StringP("password", "p", "", "account password")
	passwordStdin := fs.Bool("password-stdin", false, "read the password from standard input")
	if code, ok := parse(fs, args); !ok {
		return code
	}

	if *passwordStdin {
		pw, err := a.readSecret()
		if err != nil {
			fmt.Fprintf(a.Stderr, "read password: %v\n", err)
			return ExitFailure
		}
		*password = pw
	}
	if *email == "" || *password == "" {
		return a.usageError(fs, "login requires --email and --password")
	}

	if !a.Session.Login(ctx, domain.Credentials{Email: *email, Password: *password}) {
		return a.failed("login", a.Session.State())
	}
	a.printState(a.Session.State())
	return ExitOK
}

func (a *App) register(ctx context.Context, args []string) int {
	fs := a.newFlagSet("register")
	email := fs.StringP("email", "e", "", "account email")
	password := fs.StringP("password", "p", "", "account password (at least 8 characters)")
	passwordStdin := fs.Bool("password-stdin", false, "read the password from standard input")
	fullName := fs.StringP("name", "n", "", "full name")
	role := fs.StringP("role", "r", string(domain.RoleCandidate), "candidate or recruiter")
	company := fs.String("company", "", "company to create (recruiters only)")
	if code, ok := parse(fs, args); !ok {
		return code
	}

	if *passwordStdin {
		pw, err := a.readSecret()
		if err != nil {
			fmt.Fprintf(a.Stderr, "read password: %v\n", err)
			return ExitFailure
		}
		*password = pw
	}
	if *email == "" || *password == "" || *fullName == "" {
		return a.usageError(fs, "register requires --email, --password and --name")
	}
	r := domain.Role(*role)
	if r != domain.RoleCandidate && r != domain.RoleRecruiter {
		return a.usageError(fs, "--role must be candidate or recruiter")
	}
	if *company != "" && r != domain.RoleRecruiter {
		return a.usageError(fs, "--company is only valid with --role recruiter")
	}

	ok := a.Session.Register(ctx, domain.RegistrationPayload{
		Email:       *email,
		Password:    *password,
		FullName:    *fullName,
		Role:        r,
		CompanyName: *company,
	})
	if !ok {
		return a.failed("register", a.Session.State())
	}
	a.printState(a.Session.State())
	return ExitOK
}

func (a *App) logout(_ context.Context, args []string) int {
	fs := a.newFlagSet("logout")
	if code, ok := parse(fs, args); !ok {
		return code
	}
	a.Session.Logout()
	fmt.Fprintln(a.Stdout, "logged out")
	return ExitOK
}

func (a *App) status(ctx context.Context, args []string) int {
	fs := a.newFlagSet("status")
	if code, ok := parse(fs, args); !ok {
		return code
	}

	a.Session.CheckAuthStatus(ctx)
	st := a.Session.State()
	if st.LastError != nil {
		return a.failed("session check", st)
	}
	a.printState(st)
	return ExitOK
}

func (a *App) whoami(_ context.Context, args []string) int {
	fs := a.newFlagSet("whoami")
	if code, ok := parse(fs, args); !ok {
		return code
	}
	a.printState(a.Session.State())
	return ExitOK
}

func (a *App) associate(_ context.Context, args []string) int {
	fs := a.newFlagSet("associate")
	companyID := fs.String("company-id", "", "company id from the invitation or creation flow")
	companyName := fs.String("company-name", "", "company display name")
	if code, ok := parse(fs, args); !ok {
		return code
	}
	if *companyID == "" || *companyName == "" {
		return a.usageError(fs, "associate requires --company-id and --company-name")
	}

	if !a.Session.State().IsAuthenticated {
		fmt.Fprintln(a.Stderr, "not logged in")
		return ExitFailure
	}

	a.Session.UpdateUserCompanyAssociation(*companyID, *companyName)
	a.printState(a.Session.State())
	return ExitOK
}

func (a *App) open(_ context.Context, args []string) int {
	fs := a.newFlagSet("open")
	roles := fs.StringArray("role", nil, "role allowed on the page (repeatable)")
	redirectTo := fs.String("redirect-to", "", "where to send visitors the page rejects")
	if code, ok := parse(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		return a.usageError(fs, "open requires exactly one page path")
	}
	path := fs.Arg(0)
	if !strings.HasPrefix(path, "/") {
		return a.usageError(fs, "page path must start with /")
	}

	page := guard.Page{RedirectTo: *redirectTo}
	for _, r := range *roles {
		role := domain.Role(r)
		if !role.Valid() {
			return a.usageError(fs, "unknown role %q", r)
		}
		page.RequiredRoles = append(page.RequiredRoles, role)
	}

	nav := guard.NavigatorFunc(func(target string) {
		fmt.Fprintf(a.Stdout, "redirect %s\n", target)
	})
	res := guard.New(a.Session, nav, a.Routes, a.Log).Check(path, page)

	switch res.Decision.Kind {
	case guard.Allow:
		fmt.Fprintf(a.Stdout, "allow %s\n", path)
	case guard.Loading:
		fmt.Fprintln(a.Stdout, "loading")
	case guard.Forbidden:
		fmt.Fprintf(a.Stdout, "forbidden %s\n", path)
	}
	return ExitOK
}

func (a *App) failed(op string, st session.State) int {
	msg := "unknown error"
	if st.LastError != nil {
		msg = st.LastError.Error()
	}
	fmt.Fprintf(a.Stderr, "%s failed: %s\n", op, msg)
	return ExitFailure
}

func (a *App) readSecret() (string, error) {
	if a.Stdin == nil {
		return "", errors.New("no standard input")
	}
	line, err := bufio.NewReader(a.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (a *App) printState(st session.State) {
	if !st.IsAuthenticated || st.Identity == nil {
		fmt.Fprintln(a.Stdout, "not logged in")
		return
	}
	id := st.Identity
	fmt.Fprintf(a.Stdout, "logged in as %s <%s>\n", id.FullName, id.Email)
	fmt.Fprintf(a.Stdout, "  id:      %s\n", id.ID)
	if eff := id.EffectiveRole(); eff != id.Role {
		fmt.Fprintf(a.Stdout, "  role:    %s (acting as %s)\n", id.Role, eff)
	} else {
		fmt.Fprintf(a.Stdout, "  role:    %s\n", id.Role)
	}
	if id.Company != nil {
		fmt.Fprintf(a.Stdout, "  company: %s (%s)\n", id.Company.Name, id.Company.ID)
	}
	fmt.Fprintf(a.Stdout, "  home:    %s\n", a.Routes.Landing(id))
}
