package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Intents needed to read guild message content and receive guild state.
const Intents = discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent | discordgo.IntentsGuilds

// NewSession creates a bot session for token. The connection is not opened.
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = Intents
	return s, nil
}
