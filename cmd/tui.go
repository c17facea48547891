package main

import (
	"context"
	"fmt"

	"github.com/SwopeYT/espybot-dashboard/internal/server"
	"github.com/SwopeYT/espybot-dashboard/internal/session"
	"github.com/SwopeYT/espybot-dashboard/internal/shared"
	"github.com/SwopeYT/espybot-dashboard/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
)

// terminalAuth is the session holder with sign-in routed through the loopback receiver
// and sign-out also dropping the saved token.
type terminalAuth struct {
	*session.Session
	runner *Runner
}

func (a *terminalAuth) Login(ctx context.Context) error {
	return a.runner.loopbackLogin(ctx, a.Session, server.DefaultLoginTimeout)
}

func (a *terminalAuth) Logout(ctx context.Context) {
	a.Session.Logout(ctx)
	if err := a.runner.tokens.Clear(); err != nil {
		a.runner.logger.Warn("failed to clear saved session", "error", err)
	}
}

// TUI launches the interactive dashboard.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	if _, err := r.restoreToken(); err != nil {
		r.logger.Warn("ignoring saved session", "error", err)
	}

	auth := &terminalAuth{Session: r.newSession(), runner: r}
	model := ui.NewModel(ctx, auth, r.dashboard)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
