package main

import (
	"context"
	"fmt"
	"time"

	"github.com/SwopeYT/espybot-dashboard/internal/models"
	"github.com/SwopeYT/espybot-dashboard/internal/server"
	"github.com/SwopeYT/espybot-dashboard/internal/session"
	"github.com/SwopeYT/espybot-dashboard/internal/shared"
	"github.com/urfave/cli/v3"
)

// loopbackLogin signs in through the browser and the loopback receiver, then saves the session token.
func (r *Runner) loopbackLogin(ctx context.Context, sess *session.Session, timeout time.Duration) error {
	token, err := server.SignIn(ctx, r.config.Client.CallbackAddr(), timeout, r.logger,
		func(ctx context.Context, returnTo string) error {
			r.dashboard.SetReturnTo(returnTo)
			defer r.dashboard.SetReturnTo("")
			return sess.Login(ctx)
		})
	if err != nil {
		return err
	}

	if err := r.dashboard.SetToken(token); err != nil {
		return err
	}
	if err := r.tokens.Save(token); err != nil {
		r.logger.Warn("signed in but could not save the session", "path", r.tokens.Path(), "error", err)
	}
	return nil
}

// AuthLogin signs in with Discord and stores the session for later commands.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("no-browser") {
		r.navigator = session.NavigatorFunc(func(url string) error {
			return r.writePlain("Open this URL to sign in:\n\n  %s\n\n", url)
		})
	}

	sess := r.newSession()
	r.logger.Info("waiting for Discord sign-in", "callback", r.config.Client.CallbackAddr())

	if err := r.loopbackLogin(ctx, sess, cmd.Duration("timeout")); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}

	st := sess.CheckSession(ctx)
	if !st.Authenticated {
		return fmt.Errorf("%w: the dashboard API did not accept the new session", shared.ErrAuthFailed)
	}

	return r.writePlain("✓ Signed in as %s\n", st.User.DisplayName())
}

// AuthStatus reports who the saved session belongs to.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	ok, err := r.restoreToken()
	if err != nil {
		return err
	}
	if !ok {
		return r.writePlain("✗ Not signed in\n")
	}

	st := r.newSession().CheckSession(ctx)
	if !st.Authenticated {
		return r.writePlain("✗ Session expired, run `espy auth login`\n")
	}

	r.writePlainHeader("Signed in")
	return r.writeUser(st.User)
}

func (r *Runner) writeUser(u *models.User) error {
	r.writePlain("User:   %s\n", u.DisplayName())
	r.writePlain("ID:     %s\n", u.ID)
	return r.writePlain("Avatar: %s\n", u.Avatar)
}

// AuthLogout ends the session on the server and removes the saved token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	ok, err := r.restoreToken()
	if err != nil {
		return err
	}
	if ok {
		r.newSession().Logout(ctx)
	}

	if err := r.tokens.Clear(); err != nil {
		return err
	}
	return r.writePlain("✓ Signed out\n")
}
