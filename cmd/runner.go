package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/SwopeYT/espybot-dashboard/internal/services"
	"github.com/SwopeYT/espybot-dashboard/internal/session"
	"github.com/SwopeYT/espybot-dashboard/internal/shared"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config    *shared.Config
	api       *services.APIService
	dashboard *services.DashboardService
	tokens    *shared.TokenStore
	navigator session.Navigator
	logger    *log.Logger
	output    io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config    *shared.Config
	API       *services.APIService
	Tokens    *shared.TokenStore
	Navigator session.Navigator
	Logger    *log.Logger
	Output    io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.API == nil {
		opts.API = services.NewAPIService(opts.Config.Client.BackendURL, nil)
	}
	if opts.Navigator == nil {
		opts.Navigator = session.NavigatorFunc(shared.OpenBrowser)
	}
	if opts.Tokens == nil {
		path, err := opts.Config.Client.ResolvedTokenPath()
		if err != nil {
			opts.Logger.Warn("could not resolve token path, using working directory", "error", err)
			path = ".espy-token"
		}
		opts.Tokens = shared.NewTokenStore(path)
	}

	return &Runner{
		config:    opts.Config,
		api:       opts.API,
		dashboard: services.NewDashboardService(opts.API),
		tokens:    opts.Tokens,
		navigator: opts.Navigator,
		logger:    opts.Logger,
		output:    opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, setupCommand, authCommand, guildsCommand, statusCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the runner's logger
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// session builds an auth state holder over the dashboard client.
func (r *Runner) newSession() *session.Session {
	return session.New(r.dashboard, r.navigator, shared.WithLogger(r.logger, "component", "session"))
}

// restoreToken seeds the client with the saved session token, if any.
func (r *Runner) restoreToken() (bool, error) {
	token, err := r.tokens.Load()
	if err != nil {
		return false, err
	}
	if token == "" {
		return false, nil
	}
	if err := r.dashboard.SetToken(token); err != nil {
		return false, err
	}
	return true, nil
}

// requireToken is restoreToken for commands that cannot run signed out.
func (r *Runner) requireToken() error {
	ok, err := r.restoreToken()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: no saved session at %s", shared.ErrNotAuthenticated, r.tokens.Path())
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
