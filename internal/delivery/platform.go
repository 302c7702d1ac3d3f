// Package delivery batches rewritten links and posts them as replies, checking
// that the chat platform actually produced a preview for each one.
package delivery

import "context"

// MessageRef addresses a message on the chat platform.
type MessageRef struct {
	GuildID   string
	ChannelID string
	MessageID string
}

// Message is the part of a fetched message the dispatcher inspects.
type Message struct {
	Ref    MessageRef
	Embeds int
}

// Platform is the set of chat operations the pipeline needs.
type Platform interface {
	// SendReply posts text as a reply to original without pinging its author.
	SendReply(ctx context.Context, original MessageRef, text string) (MessageRef, error)
	FetchMessage(ctx context.Context, ref MessageRef) (*Message, error)
	DeleteMessage(ctx context.Context, ref MessageRef) error
	// SuppressEmbeds hides the previews attached to ref without touching its text.
	SuppressEmbeds(ctx context.Context, ref MessageRef) error
}
