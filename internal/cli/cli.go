package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/term"

	"github.com/iba200/otaku-wireframe/internal/api"
	"github.com/iba200/otaku-wireframe/internal/config"
	"github.com/iba200/otaku-wireframe/internal/session"
	"github.com/iba200/otaku-wireframe/internal/validator"
	"github.com/iba200/otaku-wireframe/internal/view"
)

// errReported marks errors whose message already reached the user, so the
// top-level handler only sets the exit code.
var errReported = errors.New("reported")

const usageText = `otaku is a terminal client for the community backend.

Usage:
  otaku <command> [arguments]

Account:
  login       sign in (prompts for missing credentials)
  register    create an account and sign in
  logout      drop the stored session
  whoami      show the signed-in profile

Browsing:
  home        landing page: articles, topics and categories
  search      search articles and topics at once
  ping        check that the backend is up

Content:
  articles    list|view|new|edit|delete|like
  topics      list|view|new|edit|delete|reply
  categories  list forum categories
  comments    list|new|reply|edit|delete|like|moderate
  users       show|update|list|leaderboard

Environment:
  OTAKU_SERVER_URL   backend base URL (default http://localhost:8080)
  OTAKU_TOKEN_FILE   token file location
  OTAKU_NO_COLOR     disable colored output
`

// App wires one command invocation: configuration, the API client, the
// session and both output streams.
type App struct {
	cfg    *config.Config
	client *api.Client
	sess   *session.Session
	check  *validator.Validator

	render *view.Renderer // stdout: requested content
	status *view.Renderer // stderr: notices and errors

	rawIn  io.Reader
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer
}

// New builds the command dispatcher. in, out and errOut are the process
// streams; tests substitute buffers.
func New(cfg *config.Config, client *api.Client, sess *session.Session, in io.Reader, out, errOut io.Writer) *App {
	return &App{
		cfg:    cfg,
		client: client,
		sess:   sess,
		check:  validator.NewValidator(),
		render: view.NewRenderer(out, cfg.NoColor),
		status: view.NewRenderer(errOut, cfg.NoColor),
		rawIn:  in,
		in:     bufio.NewReader(in),
		out:    out,
		errOut: errOut,
	}
}

// Run dispatches one command and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(a.errOut, usageText)
		return 2
	}

	switch args[0] {
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usageText)
		return 0
	case "version", "--version":
		fmt.Fprintln(a.out, "otaku "+api.Version)
		return 0
	}

	if err := a.sess.Init(ctx); err != nil {
		a.status.Notice("Could not restore your session: %v", err)
	}

	var err error
	switch args[0] {
	case "login":
		err = a.cmdLogin(ctx, args[1:])
	case "register":
		err = a.cmdRegister(ctx, args[1:])
	case "logout":
		err = a.cmdLogout(ctx, args[1:])
	case "whoami":
		err = a.cmdWhoami(ctx, args[1:])
	case "home":
		err = a.cmdHome(ctx, args[1:])
	case "ping":
		err = a.cmdPing(ctx, args[1:])
	case "search":
		err = a.cmdSearch(ctx, args[1:])
	case "articles":
		err = a.cmdArticles(ctx, args[1:])
	case "topics":
		err = a.cmdTopics(ctx, args[1:])
	case "categories":
		err = a.cmdCategories(ctx, args[1:])
	case "comments":
		err = a.cmdComments(ctx, args[1:])
	case "users":
		err = a.cmdUsers(ctx, args[1:])
	default:
		a.status.Error("unknown command %q", args[0])
		fmt.Fprint(a.errOut, usageText)
		return 2
	}
	return a.exitCode(err)
}

func (a *App) exitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	a.reportError(err)
	return 1
}

// reportError prints err unless the transport notifier or the command
// already did.
func (a *App) reportError(err error) {
	switch {
	case errors.Is(err, errReported):
	case errors.Is(err, api.ErrSessionExpired):
	case api.IsForbidden(err), api.IsServerError(err):
	default:
		a.status.Error("%v", err)
	}
}

func (a *App) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

// validate runs a pre-submit check and prints per-field messages on
// failure.
func (a *App) validate(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(validation.Errors); ok {
		a.status.ValidationErrors(validator.Messages(err))
		return errReported
	}
	return err
}

// requireAuth lets the command proceed for a signed-in user and otherwise
// runs an inline sign-in before returning to the command.
func (a *App) requireAuth(ctx context.Context) error {
	if a.sess.IsAuthenticated() {
		return nil
	}
	a.status.Notice("You need to sign in first.")

	email, err := a.prompt("email")
	if err != nil {
		return err
	}
	password, err := a.promptSecret("password")
	if err != nil {
		return err
	}
	req := api.LoginRequest{Email: email, Password: password}
	if err := a.validate(a.check.ValidateLogin(&req)); err != nil {
		return err
	}
	user, err := a.sess.Login(ctx, req)
	if err != nil {
		return err
	}
	a.render.Success("Signed in as %s.", user.Username)
	return nil
}

// requireModerator additionally needs a moderator or admin role. Without
// it the user is told why and sent to the landing page instead.
func (a *App) requireModerator(ctx context.Context) error {
	if err := a.requireAuth(ctx); err != nil {
		return err
	}
	if a.sess.IsModerator() {
		return nil
	}
	a.status.Notice("Moderator access required.")
	if err := a.cmdHome(ctx, nil); err != nil {
		a.reportError(err)
	}
	return errReported
}

// requireAdmin needs the admin role, with the same redirect behavior.
func (a *App) requireAdmin(ctx context.Context) error {
	if err := a.requireAuth(ctx); err != nil {
		return err
	}
	if a.sess.IsAdmin() {
		return nil
	}
	a.status.Notice("Admin access required.")
	if err := a.cmdHome(ctx, nil); err != nil {
		a.reportError(err)
	}
	return errReported
}

func (a *App) prompt(label string) (string, error) {
	fmt.Fprintf(a.errOut, "%s: ", label)
	return a.readLine()
}

// promptSecret reads without echo when stdin is a terminal and falls back
// to a plain line read otherwise.
func (a *App) promptSecret(label string) (string, error) {
	fmt.Fprintf(a.errOut, "%s: ", label)
	if f, ok := a.rawIn.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.errOut)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	return a.readLine()
}

func (a *App) readLine() (string, error) {
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// confirm asks a yes/no question, defaulting to no.
func (a *App) confirm(question string) bool {
	fmt.Fprintf(a.errOut, "%s [y/N]: ", question)
	line, err := a.readLine()
	if err != nil {
		return false
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true
	}
	return false
}

// promptIfEmpty keeps flag-provided values and prompts for the rest.
func (a *App) promptIfEmpty(value, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	return a.prompt(label)
}

// splitIDArg peels a leading positional id off args, so flags may be given
// either before or after it.
func splitIDArg(args []string) (id string, rest []string) {
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		return args[0], args[1:]
	}
	return "", args
}

func flagWasSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// contentFromFlags resolves the content of a post: the inline flag wins,
// then a file, then an interactive prompt.
func (a *App) contentFromFlags(inline, file string) (string, error) {
	if inline != "" {
		return inline, nil
	}
	if file != "" {
		b, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read content file: %w", err)
		}
		return strings.TrimRight(string(b), "\n"), nil
	}
	return a.prompt("content")
}
