// Package services holds the HTTP clients of the dashboard.
//
// # Dashboard API client
//
// [APIService] is a raw client for the dashboard API. It keeps a cookie jar so the
// auth_token cookie issued on sign-in is replayed on every request. [DashboardService]
// layers typed calls on top of it:
//   - GET  /api/auth/user   → [DashboardService.CurrentUser]
//   - GET  /api/auth/login  → [DashboardService.LoginURL]
//   - POST /api/auth/logout → [DashboardService.Logout]
//   - GET  /api/auth/guilds → [DashboardService.UserGuilds]
//   - GET  /api/bot/guilds  → [DashboardService.BotGuilds]
//   - GET  /api/bot/status  → [DashboardService.BotStatus]
//
// Non-2xx responses are returned as [*APIError], which matches [shared.ErrAPIRequest]
// and, for 401, [shared.ErrNotAuthenticated].
//
// # Discord
//
// [DiscordService] is used by the API server. It exchanges OAuth2 codes with
// golang.org/x/oauth2 and reads users and guilds with discordgo.
package services
