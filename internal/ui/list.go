package ui

import (
	"fmt"

	"github.com/SwopeYT/espybot-dashboard/internal/models"
	"github.com/charmbracelet/bubbles/list"
)

var _ list.Item = guildItem{}

// guildItem wraps [models.Guild] to implement [list.Item].
type guildItem struct {
	guild models.Guild
}

// avatar is the guild's initial, or a marker when Discord has an icon for it.
func (i guildItem) avatar() string {
	if i.guild.Icon != "" {
		return styles.avatar.Render("◉")
	}
	return styles.avatar.Render(i.guild.Initial())
}

func (i guildItem) FilterValue() string { return i.guild.Name }
func (i guildItem) Title() string       { return fmt.Sprintf("%s  %s", i.avatar(), i.guild.Name) }
func (i guildItem) Description() string {
	return fmt.Sprintf("   %d members", i.guild.MemberCount)
}

func guildItems(guilds []models.Guild) []list.Item {
	items := make([]list.Item, len(guilds))
	for i, g := range guilds {
		items[i] = guildItem{guild: g}
	}
	return items
}
