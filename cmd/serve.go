package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/SwopeYT/espybot-dashboard/internal/repositories"
	"github.com/SwopeYT/espybot-dashboard/internal/services"
	"github.com/SwopeYT/espybot-dashboard/internal/shared"
	"github.com/SwopeYT/espybot-dashboard/internal/web"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

// Serve runs the dashboard API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := *r.config
	if host := cmd.String("host"); host != "" {
		cfg.Server.Host = host
	}
	if cmd.IsSet("port") {
		cfg.Server.Port = cmd.Int("port")
	}
	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	if !cfg.Discord.Configured() {
		return fmt.Errorf("%w: set DISCORD_CLIENT_ID and DISCORD_CLIENT_SECRET", shared.ErrMissingConfig)
	}
	if cfg.Discord.BotToken == "" {
		r.logger.Warn("no bot token configured, bot endpoints will report offline")
	}

	db, err := shared.OpenDatabase(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	discord, err := services.NewDiscordService(cfg.Discord, nil)
	if err != nil {
		return err
	}

	srv, err := web.NewServer(web.Deps{
		Config:   cfg.Server,
		Discord:  discord,
		Users:    repositories.NewUserRepository(db),
		Sessions: repositories.NewSessionRepository(db),
		Logger:   shared.WithLogger(r.logger, "component", "api"),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx)
}
