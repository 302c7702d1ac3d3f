// Package discord adapts a discordgo session to the operations the pipeline uses.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"vxlinks/internal/delivery"
)

// session is the subset of *discordgo.Session the client calls.
type session interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
}

// Client implements delivery.Platform on top of discordgo.
type Client struct {
	s session
}

var _ delivery.Platform = (*Client)(nil)

// NewClient wraps s.
func NewClient(s *discordgo.Session) *Client {
	return &Client{s: s}
}

// SendReply posts text as a reply to original. The replied-to author is not pinged.
func (c *Client) SendReply(ctx context.Context, original delivery.MessageRef, text string) (delivery.MessageRef, error) {
	msg, err := c.s.ChannelMessageSendComplex(original.ChannelID, &discordgo.MessageSend{
		Content: text,
		Reference: &discordgo.MessageReference{
			MessageID: original.MessageID,
			ChannelID: original.ChannelID,
			GuildID:   original.GuildID,
		},
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{
				discordgo.AllowedMentionTypeUsers,
				discordgo.AllowedMentionTypeRoles,
			},
			RepliedUser: false,
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return delivery.MessageRef{}, fmt.Errorf("send message to channel %s: %w", original.ChannelID, err)
	}
	return delivery.MessageRef{GuildID: original.GuildID, ChannelID: msg.ChannelID, MessageID: msg.ID}, nil
}

// FetchMessage reloads ref and reports how many embeds it carries.
func (c *Client) FetchMessage(ctx context.Context, ref delivery.MessageRef) (*delivery.Message, error) {
	msg, err := c.s.ChannelMessage(ref.ChannelID, ref.MessageID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch message %s: %w", ref.MessageID, err)
	}
	return &delivery.Message{Ref: ref, Embeds: len(msg.Embeds)}, nil
}

// DeleteMessage deletes ref.
func (c *Client) DeleteMessage(ctx context.Context, ref delivery.MessageRef) error {
	if err := c.s.ChannelMessageDelete(ref.ChannelID, ref.MessageID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("delete message %s: %w", ref.MessageID, err)
	}
	return nil
}

// SuppressEmbeds sets the SUPPRESS_EMBEDS flag on ref. The bot needs the
// Manage Messages permission to do this on other users' messages.
func (c *Client) SuppressEmbeds(ctx context.Context, ref delivery.MessageRef) error {
	edit := discordgo.NewMessageEdit(ref.ChannelID, ref.MessageID)
	edit.Flags = discordgo.MessageFlagsSuppressEmbeds
	if _, err := c.s.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("suppress embeds on %s: %w", ref.MessageID, err)
	}
	return nil
}

// RespondEphemeral answers an interaction with a message only its invoker sees.
func (c *Client) RespondEphemeral(ctx context.Context, i *discordgo.Interaction, text string) error {
	return c.respond(ctx, i, &discordgo.InteractionResponseData{
		Content: text,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
}

// RespondEmbed answers an interaction with a single public embed.
func (c *Client) RespondEmbed(ctx context.Context, i *discordgo.Interaction, embed *discordgo.MessageEmbed) error {
	return c.respond(ctx, i, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
}

func (c *Client) respond(ctx context.Context, i *discordgo.Interaction, data *discordgo.InteractionResponseData) error {
	err := c.s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("respond to interaction %s: %w", i.ID, err)
	}
	return nil
}
