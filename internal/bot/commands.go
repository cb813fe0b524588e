package bot

import (
	"context"
	"strings"
)

const usageText = "Commands:\n/check - check the next batch of feeds\n/digest - re-check and send a fresh digest\n/help - show this message"

// Triggerer exposes the two pass entry points to the command layer.
type Triggerer interface {
	Trigger(ctx context.Context, reason string)
	TriggerDigest(ctx context.Context)
}

// Handler is a thin dispatcher over chat text commands. It schedules
// background work and returns the reply to send; it never waits for a
// pass to finish.
type Handler struct {
	runner Triggerer
}

// NewHandler wires the pass runner.
func NewHandler(runner Triggerer) *Handler {
	return &Handler{runner: runner}
}

// Handle parses one incoming message and returns the reply text. An
// empty reply means the message was not a command.
func (h *Handler) Handle(ctx context.Context, text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}

	// Commands may arrive as /check@botname from group chats.
	command, _, _ := strings.Cut(fields[0], "@")

	switch command {
	case "/check":
		if h.runner != nil {
			h.runner.Trigger(ctx, "manual")
		}
		return "Check scheduled."
	case "/digest":
		if h.runner != nil {
			h.runner.TriggerDigest(ctx)
		}
		return "Digest scheduled."
	case "/help", "/start":
		return usageText
	default:
		return usageText
	}
}
