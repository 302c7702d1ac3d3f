package bot

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"vxlinks/internal/rewrite"
)

type presence interface {
	UpdateStatusComplex(usd discordgo.UpdateStatusData) error
}

// Statuses returns one "Watching for <name> links" line per rule.
func Statuses(rules []rewrite.Rule) []string {
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		out = append(out, "for "+r.Name+" links")
	}
	return out
}

// rotateStatus cycles the presence through b.statuses until ctx is done.
func (b *Bot) rotateStatus(ctx context.Context, p presence) {
	if len(b.statuses) == 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(b.statusInterval)
	defer ticker.Stop()

	idx := 0
	b.setStatus(p, b.statuses[idx])
	for {
		select {
		case <-ticker.C:
			idx = (idx + 1) % len(b.statuses)
			b.setStatus(p, b.statuses[idx])
		case <-ctx.Done():
			return
		}
	}
}

func (b *Bot) setStatus(p presence, text string) {
	err := p.UpdateStatusComplex(discordgo.UpdateStatusData{
		Activities: []*discordgo.Activity{{Name: text, Type: discordgo.ActivityTypeWatching}},
	})
	if err != nil {
		b.log.Debug("update status", zap.String("status", text), zap.Error(err))
	}
}
