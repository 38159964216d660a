package jobqueue

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
	"github.com/Volence/elemental-website-sub005/internal/platform/resilience"
	"github.com/Volence/elemental-website-sub005/internal/usecase"
)

func TestQStashPublisher_Enqueue(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/publish/https://sync.example.com/v1/internal/jobs/sync-competitions" {
			t.Errorf("unexpected publish path: %s", r.URL.Path)
		}
		if r.Header.Get(headerDelay) != "30s" || r.Header.Get(headerDedupID) != "sync-competitions-team-b-20260301T120100Z" {
			t.Errorf("unexpected upstash headers: %v", r.Header)
		}
		if r.Header.Get(headerForwardToken) != "job-secret" || r.Header.Get("Authorization") != "Bearer qstash-token" {
			t.Errorf("unexpected auth headers: %v", r.Header)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"after_team_id":"team-b"`) {
			t.Errorf("unexpected body: %s", body)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"messageId":"msg_1"}`))
	}))
	defer server.Close()

	publisher, err := NewQStashPublisher(QStashPublisherConfig{
		BaseURL:          server.URL,
		Token:            "qstash-token",
		TargetBaseURL:    "https://sync.example.com/",
		InternalJobToken: "job-secret",
	}, logging.NewNop())
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}

	err = publisher.Enqueue(context.Background(), "v1/internal/jobs/sync-competitions", map[string]any{"after_team_id": "team-b"}, 30*time.Second, "sync-competitions-team-b-20260301T120100Z")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
}

func TestNewQStashPublisher_RejectsBadConfig(t *testing.T) {
	t.Parallel()

	if _, err := NewQStashPublisher(QStashPublisherConfig{BaseURL: "ftp://qstash", TargetBaseURL: "https://sync.example.com"}, logging.NewNop()); err == nil {
		t.Fatalf("expected invalid base url error")
	}
	if _, err := NewQStashPublisher(QStashPublisherConfig{BaseURL: "https://qstash.upstash.io"}, logging.NewNop()); err == nil {
		t.Fatalf("expected missing target url error")
	}

	publisher, err := NewQStashPublisher(QStashPublisherConfig{BaseURL: "https://qstash.upstash.io", TargetBaseURL: "https://sync.example.com"}, logging.NewNop())
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	if err := publisher.Enqueue(context.Background(), " ", nil, 0, ""); err == nil {
		t.Fatalf("expected missing path error")
	}
}

func TestQStashPublisher_ServerErrorsOpenBreaker(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	publisher, err := NewQStashPublisher(QStashPublisherConfig{
		BaseURL:        server.URL,
		TargetBaseURL:  "https://sync.example.com",
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 1, OpenTimeout: time.Minute},
	}, logging.NewNop())
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}

	if err := publisher.Enqueue(context.Background(), "/jobs", nil, 0, ""); err == nil {
		t.Fatalf("expected 502 to fail")
	}
	err = publisher.Enqueue(context.Background(), "/jobs", nil, 0, "")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected open breaker to reject, got=%v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one upstream call, got=%d", calls.Load())
	}
}

func TestDescribeHeaders_MasksSecrets(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	h.Set(headerDelay, "5s")
	h.Set(headerForwardToken, "secret")
	h.Set("Authorization", "Bearer qstash-token")

	got := describeHeaders(h)
	if strings.Contains(got, "secret") || strings.Contains(got, "qstash-token") || !strings.Contains(got, "Upstash-Delay: 5s") {
		t.Fatalf("unexpected description: %s", got)
	}
}

func TestFormatDelay(t *testing.T) {
	t.Parallel()

	if got := formatDelay(1500 * time.Millisecond); got != "2s" {
		t.Fatalf("expected 2s, got=%s", got)
	}
	if got := formatDelay(-time.Second); got != "0s" {
		t.Fatalf("expected 0s, got=%s", got)
	}
}
