package bot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SitemapWatcher/internal/ports"
)

type fakeNotifier struct {
	mu      sync.Mutex
	targets []string
	texts   []string
}

func (f *fakeNotifier) SendText(_ context.Context, target, text string, _ ports.SendOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.targets = append(f.targets, target)
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeNotifier) SendAttachment(_ context.Context, _ string, _ []byte, _, _ string) error {
	return nil
}

func (f *fakeNotifier) waitForTexts(n int, timeout time.Duration) []string {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		f.mu.Lock()
		if len(f.texts) >= n {
			texts := append([]string(nil), f.texts...)
			f.mu.Unlock()
			return texts
		}
		f.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	return nil
}

func TestWebhookDispatchesCommandAndReplies(t *testing.T) {
	runner := &fakeTriggerer{}
	notifier := &fakeNotifier{}
	webhook := NewWebhook("127.0.0.1:0", NewHandler(runner), notifier, nil)

	server := httptest.NewServer(webhook.server.Handler)
	defer server.Close()

	payload := `{"message":{"text":"/check","chat":{"id":1234}}}`
	resp, err := http.Post(server.URL+"/webhook", "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"manual"}, runner.triggers)

	texts := notifier.waitForTexts(1, 2*time.Second)
	require.Len(t, texts, 1)
	assert.Equal(t, "Check scheduled.", texts[0])

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	assert.Equal(t, []string{"1234"}, notifier.targets)
}

func TestWebhookIgnoresMalformedPayload(t *testing.T) {
	runner := &fakeTriggerer{}
	webhook := NewWebhook("127.0.0.1:0", NewHandler(runner), &fakeNotifier{}, nil)

	server := httptest.NewServer(webhook.server.Handler)
	defer server.Close()

	resp, err := http.Post(server.URL+"/webhook", "application/json", strings.NewReader("not json"))
	require.NoError(t, err)
	resp.Body.Close()

	// Always 200 so Telegram does not redeliver a bad update.
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, runner.triggers)
}

func TestWebhookIgnoresNonCommandMessages(t *testing.T) {
	runner := &fakeTriggerer{}
	notifier := &fakeNotifier{}
	webhook := NewWebhook("127.0.0.1:0", NewHandler(runner), notifier, nil)

	server := httptest.NewServer(webhook.server.Handler)
	defer server.Close()

	payload := `{"message":{"text":"just chatting","chat":{"id":1234}}}`
	resp, err := http.Post(server.URL+"/webhook", "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, runner.triggers)
	assert.Nil(t, notifier.waitForTexts(1, 50*time.Millisecond))
}
