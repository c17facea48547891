// Package ui renders the dashboard in the terminal using bubbletea's Elm architecture.
//
// The [Model] asks a [dashboard.Shell] which screen to show on every render:
//  1. loading, while the session check is in flight
//  2. sign in, when nobody is signed in (l or enter opens the Discord login page)
//  3. server selection, listing the guilds the bot is installed in
//  4. management, for the selected guild (c changes server, o signs out)
//
// Network calls run as [tea.Cmd]s. The guild list is fetched once each time the server-selection
// screen is entered; a failed fetch shows an error with r to retry.
package ui
