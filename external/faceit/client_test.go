package faceit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Volence/elemental-website-sub005/internal/platform/logging"
	"github.com/Volence/elemental-website-sub005/internal/platform/resilience"
	"github.com/Volence/elemental-website-sub005/internal/usecase"
)

var testContext = usecase.LeagueContext{ChampionshipID: "champ-1", SeasonID: "s1", StageID: "regular"}

func newTestClient(serverURL string, cfg ClientConfig) *Client {
	cfg.BaseURL = serverURL
	cfg.Logger = logging.NewNop()
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = time.Millisecond
	}
	return NewClient(cfg)
}

func TestClient_FetchStandings(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != standingsPath {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("championshipId") != "champ-1" || r.URL.Query().Get("participantId") != "team-ours" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		if r.Header.Get("Authorization") != "" {
			t.Errorf("expected unauthenticated request")
		}
		_, _ = w.Write([]byte(`{"payload":{"standings":[{"teamId":"team-ours","rank":13,"wins":5,"losses":3}]}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, ClientConfig{})
	got, found, err := client.FetchStandings(context.Background(), "team-ours", testContext)
	if err != nil {
		t.Fatalf("fetch standings: %v", err)
	}
	if !found || got.Rank != 13 || got.Wins != 5 || got.Losses != 3 {
		t.Fatalf("unexpected standings found=%t got=%+v", found, got)
	}
}

func TestClient_FetchStandings_NotFound(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, found, err := newTestClient(server.URL, ClientConfig{}).FetchStandings(context.Background(), "team-ours", testContext)
	if err != nil || found {
		t.Fatalf("expected not found without error, found=%t err=%v", found, err)
	}
}

func TestClient_FetchMatches_Paginates(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		switch offset {
		case 0:
			_, _ = w.Write([]byte(`{"payload":{"items":[{"id":"m1","status":"SCHEDULED"},{"id":"m2","status":"SCHEDULED"}]}}`))
		case 2:
			_, _ = w.Write([]byte(`{"payload":{"items":[{"id":"m3","status":"SCHEDULED"}]}}`))
		default:
			t.Errorf("unexpected offset %d", offset)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL, ClientConfig{PageSize: 2})
	got, err := client.FetchMatches(context.Background(), "team-ours", testContext)
	if err != nil {
		t.Fatalf("fetch matches: %v", err)
	}
	if len(got) != 3 || got[2].ExternalID != "m3" {
		t.Fatalf("unexpected matches: %+v", got)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 page requests, got=%d", calls.Load())
	}
}

func TestClient_FetchMatches_FailingPageReturnsNoData(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") == "0" {
			_, _ = w.Write([]byte(`{"payload":{"items":[{"id":"m1"},{"id":"m2"}]}}`))
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	got, err := newTestClient(server.URL, ClientConfig{PageSize: 2}).FetchMatches(context.Background(), "team-ours", testContext)
	if err == nil || got != nil {
		t.Fatalf("expected error without partial data, got=%v err=%v", got, err)
	}
	fetchErr, ok := usecase.AsFetchError(err)
	if !ok || fetchErr.Kind != usecase.FetchErrorStatus || fetchErr.StatusCode != http.StatusForbidden {
		t.Fatalf("expected status fetch error, got %v", err)
	}
	if fetchErr.Transient() {
		t.Fatalf("expected 403 to be permanent")
	}
}

func TestClient_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"payload":{"items":[]}}`))
	}))
	defer server.Close()

	got, err := newTestClient(server.URL, ClientConfig{MaxRetries: 2}).FetchMatches(context.Background(), "team-ours", testContext)
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if len(got) != 0 || calls.Load() != 2 {
		t.Fatalf("expected empty result after 2 calls, got=%d calls=%d", len(got), calls.Load())
	}
}

func TestClient_DecodeError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, ClientConfig{}).FetchMatches(context.Background(), "team-ours", testContext)
	fetchErr, ok := usecase.AsFetchError(err)
	if !ok || fetchErr.Kind != usecase.FetchErrorDecode {
		t.Fatalf("expected decode fetch error, got %v", err)
	}
}

func TestClient_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := newTestClient(server.URL, ClientConfig{MaxRetries: 3}).FetchMatches(ctx, "team-ours", testContext)
	fetchErr, ok := usecase.AsFetchError(err)
	if !ok || fetchErr.Kind != usecase.FetchErrorTimeout {
		t.Fatalf("expected timeout fetch error, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded in chain, got %v", err)
	}
}

func TestClient_CircuitOpensAfterTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.URL, ClientConfig{CircuitBreaker: resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	}})
	for i := 0; i < 2; i++ {
		_, _ = client.FetchMatches(context.Background(), "team-ours", testContext)
	}

	_, err := client.FetchMatches(context.Background(), "team-ours", testContext)
	fetchErr, ok := usecase.AsFetchError(err)
	if !ok || fetchErr.Kind != usecase.FetchErrorUnavailable {
		t.Fatalf("expected unavailable fetch error, got %v", err)
	}
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable in chain, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected open circuit to skip the request, calls=%d", calls.Load())
	}
}

func TestClient_RequiresExternalID(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{Logger: logging.NewNop()})
	if _, err := client.FetchMatches(context.Background(), " ", testContext); !errors.Is(err, usecase.ErrMissingIdentifier) {
		t.Fatalf("expected ErrMissingIdentifier, got %v", err)
	}
}
