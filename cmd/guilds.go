package main

import (
	"context"
	"fmt"

	"github.com/SwopeYT/espybot-dashboard/internal/formatter"
	"github.com/SwopeYT/espybot-dashboard/internal/models"
	"github.com/SwopeYT/espybot-dashboard/internal/services"
	"github.com/SwopeYT/espybot-dashboard/internal/shared"
	"github.com/urfave/cli/v3"
)

// signedIn maps a 401 from the API to [shared.ErrNotAuthenticated].
func signedIn(err error) error {
	if services.IsUnauthorized(err) {
		return fmt.Errorf("%w: %w", shared.ErrNotAuthenticated, err)
	}
	return err
}

// GuildsBot lists the servers the bot is installed in.
func (r *Runner) GuildsBot(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireToken(); err != nil {
		return err
	}

	guilds, err := r.dashboard.BotGuilds(ctx)
	if err != nil {
		return signedIn(err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(guilds, cmd.Bool("pretty"))
	}
	if format, output := cmd.String("format"), cmd.String("output"); format != "" || output != "" {
		return r.exportGuilds(guilds, format, output)
	}
	if len(guilds) == 0 {
		return r.writePlain("no servers found\nmake sure espy bot is added to your server\n")
	}

	r.writePlainHeader(fmt.Sprintf("Bot servers (%d)", len(guilds)))
	for _, g := range guilds {
		owner := ""
		if g.Owner {
			owner = " (owner)"
		}
		r.writePlain("%s%s\n", g.Label(), owner)
	}
	return nil
}

func (r *Runner) exportGuilds(guilds []models.Guild, format, output string) error {
	const title = "espy bot servers"
	if output == "" {
		data, err := formatter.Export(guilds, format, title)
		if err != nil {
			return err
		}
		_, err = r.output.Write(data)
		return err
	}

	if err := formatter.WriteExport(guilds, format, title, output); err != nil {
		return err
	}
	r.logger.Info("exported servers", "count", len(guilds), "path", output)
	return r.writePlain("✓ Wrote %d servers to %s\n", len(guilds), output)
}

// GuildsMine lists the servers the signed-in user belongs to.
func (r *Runner) GuildsMine(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireToken(); err != nil {
		return err
	}

	sess := r.newSession()
	if st := sess.CheckSession(ctx); !st.Authenticated {
		return fmt.Errorf("%w: saved session was rejected", shared.ErrNotAuthenticated)
	}
	guilds := sess.UserGuilds(ctx)

	if cmd.Bool("json") {
		return r.writeJSON(guilds, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Your servers (%d)", len(guilds)))
	for _, g := range guilds {
		manage := ""
		if g.CanManage() {
			manage = " [manage]"
		}
		r.writePlain("%s%s\n", g.Name, manage)
	}
	return nil
}

// BotStatus prints the bot account summary.
func (r *Runner) BotStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireToken(); err != nil {
		return err
	}

	status, err := r.dashboard.BotStatus(ctx)
	if err != nil {
		return signedIn(err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, false)
	}

	r.writePlainHeader("Bot status")
	r.writePlain("Status:  %s\n", status.Status)
	if status.Username != "" {
		r.writePlain("Account: %s\n", status.Username)
	}
	r.writePlain("Servers: %d\n", status.GuildsCount)
	return r.writePlain("Members: %d\n", status.UserCount)
}
