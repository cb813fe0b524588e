package telegram

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"SitemapWatcher/internal/ports"
)

func newTestClient(serverURL string) *Client {
	c := NewClient("test-token")
	c.baseURL = serverURL
	c.retryInitial = time.Millisecond
	return c
}

func TestSendTextFormEncoding(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotForm map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotForm = map[string]string{
			"chat_id":                  r.PostFormValue("chat_id"),
			"text":                     r.PostFormValue("text"),
			"disable_web_page_preview": r.PostFormValue("disable_web_page_preview"),
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	err := client.SendText(context.Background(), "42", "hello", ports.SendOptions{SuppressLinkPreview: true})
	if err != nil {
		t.Fatalf("SendText error: %v", err)
	}

	if gotPath != "/bottest-token/sendMessage" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotForm["chat_id"] != "42" || gotForm["text"] != "hello" {
		t.Fatalf("unexpected form: %v", gotForm)
	}
	if gotForm["disable_web_page_preview"] != "true" {
		t.Fatalf("expected link preview suppression, got %v", gotForm)
	}
}

func TestSendTextRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	err := client.SendText(context.Background(), "42", "hello", ports.SendOptions{})
	if err != nil {
		t.Fatalf("SendText error after retry: %v", err)
	}
	if hits != 2 {
		t.Fatalf("expected one retry, got %d hits", hits)
	}
}

func TestSendTextClientErrorIsPermanent(t *testing.T) {
	t.Parallel()

	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	err := client.SendText(context.Background(), "42", "hello", ports.SendOptions{})
	if err == nil {
		t.Fatalf("expected error for 400 response")
	}
	if hits != 1 {
		t.Fatalf("client errors must not be retried, got %d hits", hits)
	}
}

func TestSendAttachmentMultipart(t *testing.T) {
	t.Parallel()

	var gotChatID, gotCaption, gotFilename string
	var gotBlob []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bottest-token/sendDocument" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		gotChatID = r.FormValue("chat_id")
		gotCaption = r.FormValue("caption")

		file, header, err := r.FormFile("document")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		defer file.Close()
		gotFilename = header.Filename
		gotBlob, _ = io.ReadAll(file)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	err := client.SendAttachment(context.Background(), "42", []byte("<urlset/>"), "site-feed.xml", "https://site.test/sitemap.xml")
	if err != nil {
		t.Fatalf("SendAttachment error: %v", err)
	}

	if gotChatID != "42" || gotCaption != "https://site.test/sitemap.xml" {
		t.Fatalf("unexpected fields: chat=%s caption=%s", gotChatID, gotCaption)
	}
	if gotFilename != "site-feed.xml" || string(gotBlob) != "<urlset/>" {
		t.Fatalf("unexpected document: %s %q", gotFilename, gotBlob)
	}
}

func TestMisconfiguredClient(t *testing.T) {
	t.Parallel()

	client := NewClient("")
	if err := client.SendText(context.Background(), "42", "hi", ports.SendOptions{}); err == nil {
		t.Fatalf("expected error without bot token")
	}

	client = NewClient("token")
	if err := client.SendText(context.Background(), "", "hi", ports.SendOptions{}); err == nil {
		t.Fatalf("expected error without chat id")
	}
}
