package bot

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"SitemapWatcher/internal/ports"
)

// update is the subset of a Telegram webhook payload the dispatcher
// needs.
type update struct {
	Message struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

// Webhook receives Telegram updates over HTTP and feeds them to the
// command handler. Replies go back through the notifier asynchronously;
// the webhook endpoint itself always answers 200 so Telegram does not
// redeliver.
type Webhook struct {
	handler  *Handler
	notifier ports.Notifier
	logger   *slog.Logger
	server   *http.Server
}

// NewWebhook wires the command handler and reply channel.
func NewWebhook(addr string, handler *Handler, notifier ports.Notifier, log *slog.Logger) *Webhook {
	w := &Webhook{handler: handler, notifier: notifier, logger: log}

	mux := http.NewServeMux()
	// Go 1.21 ServeMux has no method patterns; guard POST explicitly
	// like the 1.22+ "POST /webhook" pattern would.
	mux.HandleFunc("/webhook", func(rw http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			rw.Header().Set("Allow", http.MethodPost)
			http.Error(rw, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		w.serve(rw, req)
	})
	w.server = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	return w
}

// Start listens until the context is done.
func (w *Webhook) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = w.server.Shutdown(shutdownCtx)
	}()

	err := w.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (w *Webhook) serve(rw http.ResponseWriter, req *http.Request) {
	var upd update
	if err := json.NewDecoder(req.Body).Decode(&upd); err != nil {
		w.warn("webhook payload rejected", "error", err)
		rw.WriteHeader(http.StatusOK)
		return
	}

	// The pass outlives this request, so detach its context from the
	// request lifetime.
	reply := w.handler.Handle(context.WithoutCancel(req.Context()), upd.Message.Text)
	rw.WriteHeader(http.StatusOK)

	if reply == "" || w.notifier == nil || upd.Message.Chat.ID == 0 {
		return
	}

	chatID := strconv.FormatInt(upd.Message.Chat.ID, 10)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := w.notifier.SendText(ctx, chatID, reply, ports.SendOptions{SuppressLinkPreview: true}); err != nil {
			w.warn("command reply failed", "chat", chatID, "error", err)
		}
	}()
}

func (w *Webhook) warn(msg string, args ...any) {
	if w.logger != nil {
		w.logger.Warn(msg, args...)
	}
}
