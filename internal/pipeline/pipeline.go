// Package pipeline runs one chat message through link rewriting and delivery.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"vxlinks/internal/delivery"
	"vxlinks/internal/guildconfig"
	"vxlinks/internal/metrics"
	"vxlinks/internal/rewrite"
)

// Configs looks up guild settings.
type Configs interface {
	Load(ctx context.Context, guildID string) (guildconfig.GuildConfig, error)
}

// Message is an incoming guild message.
type Message struct {
	Ref      delivery.MessageRef
	AuthorID string
	Content  string
}

// Pipeline wires the rewrite and delivery steps together.
type Pipeline struct {
	configs    Configs
	rewriter   *rewrite.Rewriter
	platform   delivery.Platform
	dispatcher *delivery.Dispatcher
	metrics    *metrics.Metrics
	log        *zap.Logger
}

// New creates a Pipeline. dispatcher must post through platform.
func New(configs Configs, rewriter *rewrite.Rewriter, platform delivery.Platform, dispatcher *delivery.Dispatcher, m *metrics.Metrics, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		configs:    configs,
		rewriter:   rewriter,
		platform:   platform,
		dispatcher: dispatcher,
		metrics:    m,
		log:        log,
	}
}

// HandleMessage rewrites the links in msg and posts them as replies when the
// guild has conversion enabled. Messages outside a guild are ignored.
//
// Steps run strictly in order: load config, rewrite, suppress the original's
// embeds, deliver each batch, suppress the original again. The first failing
// step aborts the rest.
func (p *Pipeline) HandleMessage(ctx context.Context, msg Message) error {
	if msg.Ref.GuildID == "" {
		return nil
	}
	p.metrics.MessageSeen()

	cfg, err := p.configs.Load(ctx, msg.Ref.GuildID)
	if err != nil {
		p.metrics.Failed("config")
		return fmt.Errorf("load guild config: %w", err)
	}
	if !cfg.Enabled {
		return nil
	}

	urls := p.rewriter.Rewrite(msg.Content)
	if len(urls) == 0 {
		return nil
	}
	p.metrics.Rewritten(len(urls))

	log := p.log.With(
		zap.String("guild_id", msg.Ref.GuildID),
		zap.String("channel_id", msg.Ref.ChannelID),
		zap.String("message_id", msg.Ref.MessageID),
		zap.String("author_id", msg.AuthorID),
	)
	log.Debug("rewrote links", zap.Strings("urls", urls))

	// Suppression hides every preview on the message, including ones for
	// unrelated sites; Discord has no per-embed switch.
	if err := p.platform.SuppressEmbeds(ctx, msg.Ref); err != nil {
		p.metrics.Failed("suppress")
		return err
	}

	for i, b := range delivery.Compose(urls) {
		state, err := p.dispatcher.Send(ctx, msg.Ref, b)
		if err != nil {
			p.metrics.Failed("dispatch")
			return fmt.Errorf("batch %d: %w", i, err)
		}
		log.Info("batch delivered", zap.Int("batch", i), zap.Int("urls", len(b.URLs)), zap.Stringer("state", state))
	}

	if err := p.dispatcher.Resuppress(ctx, msg.Ref); err != nil {
		p.metrics.Failed("resuppress")
		return err
	}
	return nil
}
