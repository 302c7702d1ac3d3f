// Package bot connects the link pipeline and guild settings to a Discord
// gateway session: it registers slash commands, routes message and
// interaction events, and rotates the presence status.
package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"vxlinks/internal/delivery"
	"vxlinks/internal/pipeline"
	"vxlinks/internal/rewrite"
)

// Version is reported in embed footers. Overridden at build time with -ldflags.
var Version = "dev"

// DefaultStatusInterval is how long each presence status is shown.
const DefaultStatusInterval = 60 * time.Second

// MessageHandler processes one guild message.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg pipeline.Message) error
}

// Toggler flips the per-guild conversion switch.
type Toggler interface {
	SetEnabled(ctx context.Context, guildID string, enabled bool) (changed bool, err error)
}

// Responder answers interactions.
type Responder interface {
	RespondEphemeral(ctx context.Context, i *discordgo.Interaction, text string) error
	RespondEmbed(ctx context.Context, i *discordgo.Interaction, embed *discordgo.MessageEmbed) error
}

// gateway is the part of *discordgo.Session used outside of responses.
type gateway interface {
	ApplicationCommandBulkOverwrite(appID, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
	UpdateStatusComplex(usd discordgo.UpdateStatusData) error
}

// Bot owns the gateway session and dispatches its events.
type Bot struct {
	session   *discordgo.Session
	messages  MessageHandler
	toggles   Toggler
	responder Responder
	log       *zap.Logger

	statuses       []string
	statusInterval time.Duration
}

// New returns a Bot for an unopened session.
func New(session *discordgo.Session, messages MessageHandler, toggles Toggler, responder Responder, log *zap.Logger) *Bot {
	return &Bot{
		session:        session,
		messages:       messages,
		toggles:        toggles,
		responder:      responder,
		log:            log,
		statuses:       Statuses(rewrite.Rules()),
		statusInterval: DefaultStatusInterval,
	}
}

// Run opens the gateway connection and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	removers := []func(){
		b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
			b.onReady(ctx, s, r)
		}),
		b.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
			b.onMessageCreate(ctx, selfID(s), m)
		}),
		b.session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			b.onInteractionCreate(ctx, selfUser(s), i)
		}),
	}
	defer func() {
		for _, remove := range removers {
			remove()
		}
	}()

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	b.log.Info("gateway connected")

	b.rotateStatus(ctx, b.session)

	b.log.Info("shutting down")
	if err := b.session.Close(); err != nil {
		return fmt.Errorf("close gateway: %w", err)
	}
	return nil
}

func (b *Bot) onReady(ctx context.Context, g gateway, r *discordgo.Ready) {
	if r.User == nil {
		return
	}
	b.log.Info("logged in", zap.String("user", r.User.Username), zap.Int("guilds", len(r.Guilds)))

	registered, err := g.ApplicationCommandBulkOverwrite(r.User.ID, "", Commands(), discordgo.WithContext(ctx))
	if err != nil {
		b.log.Error("register commands", zap.Error(err))
		return
	}
	b.log.Info("commands registered", zap.Int("count", len(registered)))
}

func (b *Bot) onMessageCreate(ctx context.Context, self string, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.Author.ID == self {
		return
	}
	if m.GuildID == "" {
		return
	}

	err := b.messages.HandleMessage(ctx, pipeline.Message{
		Ref:      refOf(m.Message),
		AuthorID: m.Author.ID,
		Content:  m.Content,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		b.log.Error("handle message",
			zap.String("guild_id", m.GuildID),
			zap.String("channel_id", m.ChannelID),
			zap.String("message_id", m.ID),
			zap.Error(err))
	}
}

func (b *Bot) onInteractionCreate(ctx context.Context, self *discordgo.User, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	var err error
	name := i.ApplicationCommandData().Name
	switch name {
	case CommandEnable:
		err = b.toggle(ctx, i.Interaction, true)
	case CommandDisable:
		err = b.toggle(ctx, i.Interaction, false)
	case CommandAbout:
		err = b.responder.RespondEmbed(ctx, i.Interaction, aboutEmbed(self))
	default:
		return
	}
	if err != nil {
		b.log.Error("command failed",
			zap.String("command", name),
			zap.String("guild_id", i.GuildID),
			zap.Error(err))
	}
}

func (b *Bot) toggle(ctx context.Context, i *discordgo.Interaction, enabled bool) error {
	if i.GuildID == "" {
		return b.responder.RespondEphemeral(ctx, i, "This command can only be used in a server")
	}

	changed, err := b.toggles.SetEnabled(ctx, i.GuildID, enabled)
	if err != nil {
		if rerr := b.responder.RespondEphemeral(ctx, i, "Could not update the setting, try again later"); rerr != nil {
			b.log.Warn("respond after failure", zap.Error(rerr))
		}
		return fmt.Errorf("set enabled=%t: %w", enabled, err)
	}
	b.log.Info("conversion toggled",
		zap.String("guild_id", i.GuildID),
		zap.Bool("enabled", enabled),
		zap.Bool("changed", changed))
	return b.responder.RespondEphemeral(ctx, i, toggleReply(enabled, changed))
}

func toggleReply(enabled, changed bool) string {
	switch {
	case enabled && changed:
		return "Link conversion enabled"
	case enabled:
		return "Link conversion already enabled"
	case changed:
		return "Link conversion disabled"
	default:
		return "Link conversion already disabled"
	}
}

func refOf(m *discordgo.Message) delivery.MessageRef {
	return delivery.MessageRef{GuildID: m.GuildID, ChannelID: m.ChannelID, MessageID: m.ID}
}

func selfUser(s *discordgo.Session) *discordgo.User {
	if s == nil || s.State == nil {
		return nil
	}
	return s.State.User
}

func selfID(s *discordgo.Session) string {
	if u := selfUser(s); u != nil {
		return u.ID
	}
	return ""
}
