package delivery

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"vxlinks/internal/metrics"
)

// Default delays give the mirror sites time to render a preview.
const (
	DefaultConfirmDelay    = 5 * time.Second
	DefaultResuppressDelay = 2 * time.Second
)

// State is a step of the per-batch confirmation protocol.
type State int

// Confirmation states. StateConfirmed and StateResent are terminal.
const (
	StateSent State = iota
	StateConfirming
	StateConfirmed
	StateResent
)

func (s State) String() string {
	switch s {
	case StateSent:
		return "sent"
	case StateConfirming:
		return "confirming"
	case StateConfirmed:
		return "confirmed"
	case StateResent:
		return "resent"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	return s == StateConfirmed || s == StateResent
}

// Timing holds the dispatcher delays. Zero values fall back to the defaults.
type Timing struct {
	ConfirmDelay    time.Duration
	ResuppressDelay time.Duration
}

// Dispatcher sends batches and retries once when no embed shows up.
// It keeps no state between calls.
type Dispatcher struct {
	platform Platform
	timing   Timing
	metrics  *metrics.Metrics
	log      *zap.Logger

	wait func(ctx context.Context, d time.Duration) error
}

// NewDispatcher creates a Dispatcher posting through p.
func NewDispatcher(p Platform, timing Timing, m *metrics.Metrics, log *zap.Logger) *Dispatcher {
	if timing.ConfirmDelay <= 0 {
		timing.ConfirmDelay = DefaultConfirmDelay
	}
	if timing.ResuppressDelay <= 0 {
		timing.ResuppressDelay = DefaultResuppressDelay
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		platform: p,
		timing:   timing,
		metrics:  m,
		log:      log,
		wait:     sleep,
	}
}

// Send delivers b as a reply to original and drives it to a terminal state.
// Platform errors are wrapped with the step that failed and are not retried.
func (d *Dispatcher) Send(ctx context.Context, original MessageRef, b Batch) (State, error) {
	text := b.Text()
	log := d.log.With(zap.String("channel_id", original.ChannelID), zap.String("message_id", original.MessageID))

	sent, err := d.platform.SendReply(ctx, original, text)
	if err != nil {
		return StateSent, fmt.Errorf("send reply: %w", err)
	}

	state := StateSent
	for !state.Terminal() {
		switch state {
		case StateSent:
			state = StateConfirming
		case StateConfirming:
			if err := d.wait(ctx, d.timing.ConfirmDelay); err != nil {
				return state, err
			}
			msg, err := d.platform.FetchMessage(ctx, sent)
			if err != nil {
				return state, fmt.Errorf("fetch reply: %w", err)
			}
			if msg.Embeds > 0 {
				state = StateConfirmed
				continue
			}

			log.Debug("reply has no embed, resending", zap.String("reply_id", sent.MessageID))
			if err := d.platform.DeleteMessage(ctx, sent); err != nil {
				return state, fmt.Errorf("delete reply: %w", err)
			}
			if _, err := d.platform.SendReply(ctx, original, text); err != nil {
				return state, fmt.Errorf("resend reply: %w", err)
			}
			state = StateResent
		}
	}

	d.metrics.BatchDone(state.String())
	log.Debug("batch delivered", zap.Stringer("state", state), zap.Int("urls", len(b.URLs)))
	return state, nil
}

// Resuppress hides embeds on original again after a delay. Discord may attach
// a preview after the first suppression call has returned.
func (d *Dispatcher) Resuppress(ctx context.Context, original MessageRef) error {
	if err := d.wait(ctx, d.timing.ResuppressDelay); err != nil {
		return err
	}
	if err := d.platform.SuppressEmbeds(ctx, original); err != nil {
		return fmt.Errorf("suppress embeds: %w", err)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
