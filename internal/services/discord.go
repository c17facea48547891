// Discord API access for the dashboard backend
//
// OAuth2 code exchange goes through [oauth2.Config]; REST lookups go through [discordgo.Session]
// with a "Bearer" token for signed-in users and a "Bot" token for the bot itself.
package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/SwopeYT/espybot-dashboard/internal/models"
	"github.com/SwopeYT/espybot-dashboard/internal/shared"
	"github.com/bwmarrin/discordgo"
	"golang.org/x/oauth2"
)

const (
	discordAuthURL  = "https://discord.com/api/oauth2/authorize"
	discordTokenURL = "https://discord.com/api/oauth2/token"

	// discordPageSize is the maximum page size of GET /users/@me/guilds.
	discordPageSize = 200
)

// DiscordScopes are requested on sign-in.
var DiscordScopes = []string{"identify", "guilds"}

// DiscordService talks to Discord on behalf of the dashboard API.
type DiscordService struct {
	config     *oauth2.Config
	botToken   string
	httpClient *http.Client
}

// NewDiscordService creates a Discord service from the application credentials.
//
// The bot token is optional; without it bot lookups fail with [shared.ErrMissingCredentials].
func NewDiscordService(cfg shared.DiscordConfig, client *http.Client) (*DiscordService, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: discord client_id", shared.ErrMissingCredentials)
	}
	if cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: discord client_secret", shared.ErrMissingCredentials)
	}
	if client == nil {
		client = http.DefaultClient
	}

	config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Scopes:       DiscordScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   discordAuthURL,
			TokenURL:  discordTokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	return &DiscordService{config: config, botToken: cfg.BotToken, httpClient: client}, nil
}

// HasBot reports whether a bot token is configured.
func (s *DiscordService) HasBot() bool {
	return s.botToken != ""
}

// AuthCodeURL returns the Discord authorization URL carrying state.
func (s *DiscordService) AuthCodeURL(state string) string {
	return s.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for the user's access token.
func (s *DiscordService) Exchange(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)

	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%w: failed to exchange code: %w", shared.ErrAuthFailed, err)
	}
	return token.AccessToken, nil
}

func (s *DiscordService) session(auth string) (*discordgo.Session, error) {
	dg, err := discordgo.New(auth)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrDiscordRequest, err)
	}
	dg.Client = s.httpClient
	dg.MaxRestRetries = 1
	return dg, nil
}

func (s *DiscordService) botSession() (*discordgo.Session, error) {
	if s.botToken == "" {
		return nil, fmt.Errorf("%w: discord bot_token", shared.ErrMissingCredentials)
	}
	return s.session("Bot " + s.botToken)
}

// CurrentUser fetches the profile of the user owning accessToken.
func (s *DiscordService) CurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	dg, err := s.session("Bearer " + accessToken)
	if err != nil {
		return nil, err
	}

	u, err := dg.User("@me", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: get user: %w", shared.ErrDiscordRequest, err)
	}
	return toUser(u), nil
}

// UserGuilds lists the guilds the owner of accessToken belongs to.
func (s *DiscordService) UserGuilds(ctx context.Context, accessToken string) ([]models.UserGuild, error) {
	dg, err := s.session("Bearer " + accessToken)
	if err != nil {
		return nil, err
	}

	all, err := listGuilds(ctx, dg, false)
	if err != nil {
		return nil, err
	}

	guilds := make([]models.UserGuild, 0, len(all))
	for _, g := range all {
		guilds = append(guilds, models.UserGuild{
			ID:          g.ID,
			Name:        g.Name,
			Icon:        guildIcon(g.ID, g.Icon),
			Owner:       g.Owner,
			Permissions: g.Permissions,
		})
	}
	return guilds, nil
}

// BotGuilds lists the guilds the bot is installed in with approximate member counts.
//
// Permissions are the bot's own; Owner is left false for the caller to fill in.
func (s *DiscordService) BotGuilds(ctx context.Context) ([]models.Guild, error) {
	dg, err := s.botSession()
	if err != nil {
		return nil, err
	}

	all, err := listGuilds(ctx, dg, true)
	if err != nil {
		return nil, err
	}

	guilds := make([]models.Guild, 0, len(all))
	for _, g := range all {
		guilds = append(guilds, models.Guild{
			ID:          g.ID,
			Name:        g.Name,
			Icon:        guildIcon(g.ID, g.Icon),
			MemberCount: g.ApproximateMemberCount,
			Permissions: g.Permissions,
		})
	}
	return guilds, nil
}

// BotStatus summarises the bot account. Without a bot token it reports "offline".
func (s *DiscordService) BotStatus(ctx context.Context) (*models.BotStatus, error) {
	if !s.HasBot() {
		return &models.BotStatus{Status: "offline"}, nil
	}

	dg, err := s.botSession()
	if err != nil {
		return nil, err
	}

	u, err := dg.User("@me", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: get bot user: %w", shared.ErrDiscordRequest, err)
	}

	guilds, err := s.BotGuilds(ctx)
	if err != nil {
		return nil, err
	}

	status := &models.BotStatus{
		Status:      "online",
		GuildsCount: len(guilds),
		Username:    u.Username,
		Avatar:      u.AvatarURL(""),
	}
	for _, g := range guilds {
		status.UserCount += g.MemberCount
	}
	return status, nil
}

func listGuilds(ctx context.Context, dg *discordgo.Session, withCounts bool) ([]*discordgo.UserGuild, error) {
	var (
		all   []*discordgo.UserGuild
		after string
	)
	for {
		page, err := dg.UserGuilds(discordPageSize, "", after, withCounts, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("%w: list guilds: %w", shared.ErrDiscordRequest, err)
		}

		all = append(all, page...)
		if len(page) < discordPageSize {
			return all, nil
		}
		after = page[len(page)-1].ID
	}
}

func toUser(u *discordgo.User) *models.User {
	discriminator := u.Discriminator
	if discriminator == "" {
		discriminator = "0"
	}
	return &models.User{
		ID:            u.ID,
		Username:      u.Username,
		Discriminator: discriminator,
		Avatar:        u.AvatarURL(""),
	}
}

func guildIcon(id, hash string) string {
	if hash == "" {
		return ""
	}
	return discordgo.EndpointGuildIcon(id, hash)
}
