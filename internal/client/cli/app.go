package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/resumecli/internal/client/analysis"
	"github.com/dmitrijs2005/resumecli/internal/client/client"
	"github.com/dmitrijs2005/resumecli/internal/client/config"
	"github.com/dmitrijs2005/resumecli/internal/client/guard"
	"github.com/dmitrijs2005/resumecli/internal/client/session"
	"github.com/dmitrijs2005/resumecli/internal/client/tokenstore"
	"github.com/dmitrijs2005/resumecli/internal/client/upload"
	"github.com/dmitrijs2005/resumecli/internal/filex"
	"github.com/dmitrijs2005/resumecli/internal/logging"
)

var errLoginRequired = errors.New("login required")

type App struct {
	log    logging.Logger
	reader *bufio.Reader
	out    io.Writer

	session  *session.Manager
	guard    *guard.Guard
	uploads  *upload.Controller
	analysis *analysis.Fetcher

	detach  func()
	closers []io.Closer
}

// NewApp opens the credential store named by c and connects the components
// to the backend at c.ServerURL. Close releases what it opened.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	var (
		store   tokenstore.Store
		closers []io.Closer
	)
	if c.Ephemeral {
		store = tokenstore.NewMemoryStore()
	} else {
		if _, err := filex.EnsureParentDir(c.DatabasePath); err != nil {
			return nil, err
		}
		s, err := tokenstore.Open(ctx, c.DatabasePath)
		if err != nil {
			log.Error(ctx, "error initializing token store", "path", c.DatabasePath, "error", err)
			return nil, err
		}
		store = s
		closers = append(closers, s)
	}

	api := client.NewHTTPClient(c.ServerURL, c.RequestTimeout, store, client.WithLogger(log))

	a := newApp(api, store, log, os.Stdin, os.Stdout)
	a.closers = closers
	return a, nil
}

func newApp(api client.Client, store tokenstore.Store, log logging.Logger, in io.Reader, out io.Writer) *App {
	if log == nil {
		log = logging.Discard()
	}
	a := &App{
		log:      log.With("component", "cli"),
		reader:   bufio.NewReader(in),
		out:      out,
		session:  session.NewManager(api, store, log),
		uploads:  upload.NewController(api, log),
		analysis: analysis.NewFetcher(api, log),
	}
	a.guard = guard.New(a.redirect)
	return a
}

// Run restores the session and serves commands until exit or EOF.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	fmt.Fprintln(a.out, "Resume Analyzer CLI (type 'help' for commands)")
	a.start(ctx)

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) start(ctx context.Context) {
	a.detach = a.guard.Attach(a.session)
	s := a.session.Init(ctx)
	if s.Authenticated() {
		fmt.Fprintf(a.out, "Signed in as %s\n", s.User.DisplayName())
	}
}

// Close tears the components down. It is safe to call more than once.
func (a *App) Close() error {
	if a.detach != nil {
		a.detach()
		a.detach = nil
	}
	a.uploads.Dispose()
	a.session.Dispose()

	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) redirect(target string) {
	a.log.Debug(context.Background(), "redirect", "view", target)
	fmt.Fprintln(a.out, "Please log in first.")
}

// dropRejectedSession signs out when err says the backend no longer accepts
// the stored credential. The guard then prints the login redirect.
func (a *App) dropRejectedSession(ctx context.Context, err error) bool {
	if !a.session.Invalidate(ctx, err) {
		return false
	}
	a.uploads.Clear()
	a.log.Warn(ctx, "session ended by backend", "error", client.Message(err))
	return true
}

func (a *App) isLoggedIn() bool {
	return a.session.Snapshot().Authenticated()
}

// requireAuth runs the route guard for a protected command.
func (a *App) requireAuth() bool {
	switch a.guard.Check(a.session.Snapshot()) {
	case guard.DecisionRender:
		return true
	case guard.DecisionWait:
		fmt.Fprintln(a.out, "Still checking your session, try again in a moment.")
	default:
		fmt.Fprintln(a.out, "This command needs an account. Type 'login' or 'register'.")
	}
	return false
}

func (a *App) getStatus() string {
	s := a.session.Snapshot()
	switch s.Phase {
	case session.PhaseAuthenticated:
		return fmt.Sprintf("(%s)", s.User.Email)
	case session.PhaseLoading:
		return "(loading)"
	default:
		return "(guest)"
	}
}
