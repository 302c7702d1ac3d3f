package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Slash command names.
const (
	CommandEnable  = "enable"
	CommandDisable = "disable"
	CommandAbout   = "about"
)

// Commands returns the application commands registered on ready.
// enable and disable default to members with Manage Server.
func Commands() []*discordgo.ApplicationCommand {
	manage := int64(discordgo.PermissionManageServer)
	dm := false
	return []*discordgo.ApplicationCommand{
		{
			Name:                     CommandEnable,
			Description:              "Enable automatic link conversion in this server",
			DefaultMemberPermissions: &manage,
			DMPermission:             &dm,
		},
		{
			Name:                     CommandDisable,
			Description:              "Disable automatic link conversion in this server",
			DefaultMemberPermissions: &manage,
			DMPermission:             &dm,
		},
		{
			Name:        CommandAbout,
			Description: "Show information about the bot",
		},
	}
}

func aboutEmbed(self *discordgo.User) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "About",
		Description: "Replies to TikTok, Instagram and X/Twitter links with versions that embed properly.",
		Color:       0x7289DA,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "Usage",
				Value: "Run `/enable` to turn on link conversion for this server and `/disable` to turn it off.",
			},
			{
				Name: "Credits",
				Value: "- [vxtiktok](https://github.com/dylanpdx/vxtiktok), created by dylanpdx\n" +
					"- [InstaFix](https://github.com/Wikidepia/InstaFix), created by Wikidepia\n" +
					"- [BetterTwitFix](https://github.com/dylanpdx/BetterTwitFix), created by dylanpdx",
			},
		},
	}
	setFooter(embed, self)
	return embed
}

func setFooter(embed *discordgo.MessageEmbed, self *discordgo.User) {
	if self == nil {
		return
	}
	embed.Footer = &discordgo.MessageEmbedFooter{
		Text:    fmt.Sprintf("%s | %s", self.Username, Version),
		IconURL: self.AvatarURL(""),
	}
}
