package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeTriggerer struct {
	triggers []string
	digests  int
}

func (f *fakeTriggerer) Trigger(_ context.Context, reason string) {
	f.triggers = append(f.triggers, reason)
}

func (f *fakeTriggerer) TriggerDigest(_ context.Context) {
	f.digests++
}

func TestHandleDispatch(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantReply    string
		wantTriggers int
		wantDigests  int
	}{
		{name: "check command", text: "/check", wantReply: "Check scheduled.", wantTriggers: 1},
		{name: "check with bot suffix", text: "/check@sitemapwatcher_bot", wantReply: "Check scheduled.", wantTriggers: 1},
		{name: "digest command", text: "/digest", wantReply: "Digest scheduled.", wantDigests: 1},
		{name: "help command", text: "/help", wantReply: usageText},
		{name: "start command", text: "/start", wantReply: usageText},
		{name: "unknown command", text: "/frobnicate now", wantReply: usageText},
		{name: "plain text ignored", text: "hello there", wantReply: ""},
		{name: "empty text ignored", text: "   ", wantReply: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeTriggerer{}
			handler := NewHandler(runner)

			reply := handler.Handle(context.Background(), tt.text)

			assert.Equal(t, tt.wantReply, reply)
			assert.Len(t, runner.triggers, tt.wantTriggers)
			assert.Equal(t, tt.wantDigests, runner.digests)
		})
	}
}

func TestHandleManualTriggerReason(t *testing.T) {
	runner := &fakeTriggerer{}
	handler := NewHandler(runner)

	handler.Handle(context.Background(), "/check")

	assert.Equal(t, []string{"manual"}, runner.triggers)
}
