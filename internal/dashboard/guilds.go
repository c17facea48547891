package dashboard

import "github.com/SwopeYT/espybot-dashboard/internal/models"

// GuildStatus is the outcome of the bot guild fetch.
type GuildStatus int

const (
	GuildsPending GuildStatus = iota
	GuildsLoaded
	GuildsEmpty
	GuildsFailed
)

func (s GuildStatus) String() string {
	return [...]string{"pending", "loaded", "empty", "failed"}[s]
}

// GuildList is the server-selection list. An empty list and a failed fetch are distinct.
type GuildList struct {
	Status GuildStatus
	Guilds []models.Guild
	Err    error
}

// NewGuildList classifies a fetch result.
func NewGuildList(guilds []models.Guild, err error) GuildList {
	switch {
	case err != nil:
		return GuildList{Status: GuildsFailed, Err: err}
	case len(guilds) == 0:
		return GuildList{Status: GuildsEmpty, Guilds: []models.Guild{}}
	default:
		return GuildList{Status: GuildsLoaded, Guilds: guilds}
	}
}

const (
	TextLoading        = "LOADING"
	TextAuthenticating = "authenticating..."
	TextSignIn         = "Sign in with Discord"
	TextLoadingServers = "LOADING SERVERS"
	TextNoServers      = "no servers found"
	TextAddBot         = "make sure espy bot is added to your server"
	TextFetchFailed    = "could not load servers"
)

// ManageTitle is the heading of the management view.
func ManageTitle(g models.Guild) string {
	return "Managing: " + g.Name
}
