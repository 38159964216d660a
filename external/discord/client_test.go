package discord

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Volence/elemental-website-sub005/internal/platform/logging"
	"github.com/Volence/elemental-website-sub005/internal/usecase"
)

func newTestClient(serverURL string, retries int) *Client {
	return NewClient(ClientConfig{
		BaseURL:    serverURL,
		BotToken:   "bot-secret",
		Timeout:    2 * time.Second,
		MaxRetries: retries,
		Logger:     logging.NewNop(),
	})
}

func TestClient_CreateMessage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/channels/chan-1/messages" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bot bot-secret" {
			t.Errorf("unexpected authorization header %q", r.Header.Get("Authorization"))
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"title":"Elemental"`) || !strings.Contains(string(body), `"allowed_mentions":{"parse":[]}`) {
			t.Errorf("unexpected body: %s", body)
		}
		_, _ = w.Write([]byte(`{"id":"998877","channel_id":"chan-1"}`))
	}))
	defer server.Close()

	stamp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	id, err := newTestClient(server.URL, 0).CreateMessage(context.Background(), "chan-1", usecase.MessageContent{
		Embeds: []usecase.MessageEmbed{{Title: "Elemental", Timestamp: &stamp, Footer: "Season s1"}},
	})
	if err != nil {
		t.Fatalf("create message: %v", err)
	}
	if id != "998877" {
		t.Fatalf("expected message id 998877, got=%s", id)
	}
}

func TestClient_EditMissingMessageMapsToNotFound(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("expected PATCH, got %s", r.Method)
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Unknown Message","code":10008}`))
	}))
	defer server.Close()

	err := newTestClient(server.URL, 2).EditMessage(context.Background(), "chan-1", "msg-1", usecase.MessageContent{Content: "x"})
	if !errors.Is(err, usecase.ErrMessageNotFound) {
		t.Fatalf("expected ErrMessageNotFound, got %v", err)
	}
}

func TestClient_DeleteUnknownChannelIsNotMessageNotFound(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Unknown Channel","code":10003}`))
	}))
	defer server.Close()

	err := newTestClient(server.URL, 0).DeleteMessage(context.Background(), "chan-1", "msg-1")
	if err == nil || errors.Is(err, usecase.ErrMessageNotFound) {
		t.Fatalf("expected a permanent error, got %v", err)
	}
}

func TestClient_RetriesAfterRateLimit(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"message":"You are being rate limited.","retry_after":0.01,"global":false}`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	if err := newTestClient(server.URL, 1).DeleteMessage(context.Background(), "chan-1", "msg-1"); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got=%d", calls.Load())
	}
}

func TestClient_ServerErrorExhaustsRetries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	err := newTestClient(server.URL, 1).EditMessage(context.Background(), "chan-1", "msg-1", usecase.MessageContent{})
	if err == nil || errors.Is(err, usecase.ErrMessageNotFound) {
		t.Fatalf("expected transient failure, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got=%d", calls.Load())
	}
}

func TestClient_RejectsMissingIDs(t *testing.T) {
	t.Parallel()

	client := newTestClient("http://127.0.0.1:1", 0)
	if _, err := client.CreateMessage(context.Background(), " ", usecase.MessageContent{}); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if err := client.DeleteMessage(context.Background(), "chan-1", ""); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
