package ui

import (
	"github.com/SwopeYT/espybot-dashboard/internal/dashboard"
	"github.com/SwopeYT/espybot-dashboard/internal/session"
)

// sessionCheckedMsg reports that the auth holder resolved its session check.
type sessionCheckedMsg struct {
	state session.State
}

// loginDoneMsg reports the end of a sign-in attempt.
type loginDoneMsg struct {
	err error
}

// guildsFetchedMsg carries the bot guild list for the server-selection view.
type guildsFetchedMsg struct {
	gen    uint64
	guilds dashboard.GuildList
}

// signedOutMsg reports that the logout request finished.
type signedOutMsg struct{}
