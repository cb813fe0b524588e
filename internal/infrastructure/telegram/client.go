package telegram

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"SitemapWatcher/internal/ports"
)

const defaultBaseURL = "https://api.telegram.org"

// Client sends messages and documents to a Telegram chat via the bot
// API. Rate-limit and server errors are retried with exponential
// backoff; the scheduler core above it never retries.
type Client struct {
	botToken     string
	baseURL      string
	client       *http.Client
	maxRetries   uint64
	retryInitial time.Duration
}

var _ ports.Notifier = (*Client)(nil)

// NewClient registers the bot token.
func NewClient(botToken string) *Client {
	return &Client{
		botToken:     botToken,
		baseURL:      defaultBaseURL,
		client:       &http.Client{Timeout: 10 * time.Second},
		maxRetries:   3,
		retryInitial: 200 * time.Millisecond,
	}
}

// SendText posts a plain-text message to the chat.
func (c *Client) SendText(ctx context.Context, chatID, text string, opts ports.SendOptions) error {
	if c.botToken == "" || chatID == "" {
		return fmt.Errorf("telegram client misconfigured")
	}

	form := url.Values{}
	form.Set("chat_id", chatID)
	form.Set("text", text)
	if opts.SuppressLinkPreview {
		form.Set("disable_web_page_preview", "true")
	}

	build := func() (io.Reader, string, error) {
		return strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", nil
	}
	return c.post(ctx, "sendMessage", build)
}

// SendAttachment uploads a document to the chat with an optional caption.
func (c *Client) SendAttachment(ctx context.Context, chatID string, blob []byte, filename, caption string) error {
	if c.botToken == "" || chatID == "" {
		return fmt.Errorf("telegram client misconfigured")
	}

	build := func() (io.Reader, string, error) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		if err := w.WriteField("chat_id", chatID); err != nil {
			return nil, "", fmt.Errorf("write chat_id: %w", err)
		}
		if caption != "" {
			if err := w.WriteField("caption", caption); err != nil {
				return nil, "", fmt.Errorf("write caption: %w", err)
			}
		}
		part, err := w.CreateFormFile("document", filename)
		if err != nil {
			return nil, "", fmt.Errorf("create form file: %w", err)
		}
		if _, err := part.Write(blob); err != nil {
			return nil, "", fmt.Errorf("write document: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, "", fmt.Errorf("close form: %w", err)
		}
		return &buf, w.FormDataContentType(), nil
	}
	return c.post(ctx, "sendDocument", build)
}

// post sends one bot API call, rebuilding the body on every retry
// attempt. 429 and 5xx are retried; anything else 4xx is permanent.
func (c *Client) post(ctx context.Context, method string, build func() (io.Reader, string, error)) error {
	operation := func() error {
		body, contentType, err := build()
		if err != nil {
			return backoff.Permanent(err)
		}

		endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.botToken, method)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("new request: %w", err))
		}
		req.Header.Set("Content-Type", contentType)

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("do request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("telegram %s: %s", method, resp.Status)
		}
		if resp.StatusCode != http.StatusOK {
			payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return backoff.Permanent(fmt.Errorf("telegram %s: %s: %s", method, resp.Status, strings.TrimSpace(string(payload))))
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryInitial
	policy.MaxInterval = 5 * time.Second

	return backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, c.maxRetries), ctx))
}
