package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Volence/elemental-website-sub005/internal/domain/match"
	"github.com/Volence/elemental-website-sub005/internal/domain/season"
	"github.com/Volence/elemental-website-sub005/internal/domain/seasonarchive"
	"github.com/Volence/elemental-website-sub005/internal/domain/user"
	"github.com/Volence/elemental-website-sub005/internal/platform/logging"
	"github.com/Volence/elemental-website-sub005/internal/usecase"
	sonic "github.com/bytedance/sonic"
)

const testJobToken = "job-token"

type stubSyncer struct {
	inputs    []usecase.SyncTeamInput
	err       error
	republish int
}

func (s *stubSyncer) SyncTeam(_ context.Context, input usecase.SyncTeamInput) (usecase.TeamSyncResult, error) {
	s.inputs = append(s.inputs, input)
	if s.err != nil {
		return usecase.TeamSyncResult{}, s.err
	}
	return usecase.TeamSyncResult{TeamID: input.TeamID, Success: true, MatchesCreated: 2}, nil
}

func (s *stubSyncer) RepublishAnnouncements(context.Context) (usecase.RepublishResult, error) {
	s.republish++
	return usecase.RepublishResult{Deleted: 1, Created: 1}, nil
}

type stubJobRunner struct {
	inputs []usecase.JobSyncInput
}

func (j *stubJobRunner) RunCompetitionSync(_ context.Context, input usecase.JobSyncInput) (usecase.JobSyncResult, error) {
	j.inputs = append(j.inputs, input)
	return usecase.JobSyncResult{DispatchID: input.DispatchID, Batch: usecase.BatchSyncResult{TeamsTotal: 3, TeamsSynced: 3}}, nil
}

type stubArchives struct {
	items map[string]seasonarchive.Archive
}

func (a *stubArchives) ListArchives(_ context.Context, teamID string) ([]seasonarchive.Archive, error) {
	out := make([]seasonarchive.Archive, 0)
	for _, item := range a.items {
		if item.TeamID == teamID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (a *stubArchives) SetArchiveHidden(_ context.Context, archiveID string, hidden bool) (seasonarchive.Archive, error) {
	item, ok := a.items[archiveID]
	if !ok {
		return seasonarchive.Archive{}, fmt.Errorf("%w: archive=%s", usecase.ErrNotFound, archiveID)
	}
	item.Hidden = hidden
	a.items[archiveID] = item
	return item, nil
}

type routerHarness struct {
	syncer   *stubSyncer
	jobs     *stubJobRunner
	archives *stubArchives
	router   http.Handler
}

func newRouterHarness() *routerHarness {
	h := &routerHarness{
		syncer: &stubSyncer{},
		jobs:   &stubJobRunner{},
		archives: &stubArchives{items: map[string]seasonarchive.Archive{
			"arch-1": {
				ID:        "arch-1",
				TeamID:    "team-1",
				SeasonKey: "s1",
				Standings: season.Standings{Rank: 4, Wins: 5, Losses: 3},
				Matches: []seasonarchive.ArchivedMatch{
					{ExternalID: "ext_1", Opponent: "Nova", Result: match.ResultWin, ScheduledAt: time.Date(2026, 2, 20, 19, 0, 0, 0, time.UTC)},
				},
				Record:     seasonarchive.Record{Wins: 1},
				ArchivedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			},
		}},
	}
	verifier := &stubVerifier{principals: map[string]user.Principal{
		"staff-token": {UserID: "u-1", Roles: []string{"staff"}},
	}}
	handler := NewHandler(h.syncer, h.jobs, h.archives, logging.NewNop())
	h.router = NewRouter(handler, RouterConfig{
		Verifier:         verifier,
		Logger:           logging.NewNop(),
		InternalJobToken: testJobToken,
		AdminRoles:       []string{"admin", "staff"},
	})
	return h
}

func (h *routerHarness) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

var staffAuth = map[string]string{"Authorization": "Bearer staff-token"}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body struct {
		Data map[string]any `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	return body.Data
}

func TestRouter_Healthz(t *testing.T) {
	t.Parallel()

	h := newRouterHarness()
	rec := h.do(http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got=%d", rec.Code)
	}
}

func TestRouter_SyncCompetitionsJob(t *testing.T) {
	t.Parallel()

	h := newRouterHarness()
	rec := h.do(http.MethodPost, "/v1/internal/jobs/sync-competitions",
		`{"dispatch_id":"qstash-1","after_team_id":"team-b"}`,
		map[string]string{"X-Internal-Job-Token": testJobToken},
	)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got=%d body=%s", rec.Code, rec.Body.String())
	}
	if len(h.jobs.inputs) != 1 || h.jobs.inputs[0].AfterTeamID != "team-b" || h.jobs.inputs[0].DispatchID != "qstash-1" {
		t.Fatalf("unexpected job input: %+v", h.jobs.inputs)
	}
	data := decodeData(t, rec)
	if data["dispatch_id"] != "qstash-1" {
		t.Fatalf("expected dispatch id in response, got=%v", data["dispatch_id"])
	}
}

func TestRouter_SyncCompetitionsJob_EmptyBodyAndBadToken(t *testing.T) {
	t.Parallel()

	h := newRouterHarness()
	if rec := h.do(http.MethodPost, "/v1/internal/jobs/sync-competitions", "", map[string]string{"X-Internal-Job-Token": testJobToken}); rec.Code != http.StatusOK {
		t.Fatalf("expected empty body to be accepted, got=%d", rec.Code)
	}
	if rec := h.do(http.MethodPost, "/v1/internal/jobs/sync-competitions", "", map[string]string{"X-Internal-Job-Token": "wrong"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got=%d", rec.Code)
	}
	if rec := h.do(http.MethodPost, "/v1/internal/jobs/sync-competitions", `{"unknown":1}`, map[string]string{"X-Internal-Job-Token": testJobToken}); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected unknown fields to be rejected, got=%d", rec.Code)
	}
	if len(h.jobs.inputs) != 1 {
		t.Fatalf("expected one accepted trigger, got=%d", len(h.jobs.inputs))
	}
}

func TestRouter_AdminSyncTeam(t *testing.T) {
	t.Parallel()

	h := newRouterHarness()
	rec := h.do(http.MethodPost, "/v1/admin/teams/team-1/sync", "", staffAuth)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got=%d body=%s", rec.Code, rec.Body.String())
	}
	if h.syncer.inputs[0].TeamID != "team-1" || h.syncer.inputs[0].Context != nil {
		t.Fatalf("unexpected sync input: %+v", h.syncer.inputs[0])
	}

	rec = h.do(http.MethodPost, "/v1/admin/teams/team-1/sync",
		`{"context":{"championship_id":"champ-9","season_id":"s9","stage_id":"playoffs"}}`,
		staffAuth,
	)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected override sync to succeed, got=%d body=%s", rec.Code, rec.Body.String())
	}
	override := h.syncer.inputs[1].Context
	if override == nil || override.ChampionshipID != "champ-9" || override.SeasonKey() != "s9:playoffs" {
		t.Fatalf("unexpected override: %+v", override)
	}
}

func TestRouter_AdminSyncTeam_Rejections(t *testing.T) {
	t.Parallel()

	h := newRouterHarness()
	if rec := h.do(http.MethodPost, "/v1/admin/teams/team-1/sync", `{"context":{"championship_id":"champ-9"}}`, staffAuth); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected override without season_id to be rejected, got=%d", rec.Code)
	}
	if rec := h.do(http.MethodPost, "/v1/admin/teams/team-1/sync", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without token, got=%d", rec.Code)
	}
	if len(h.syncer.inputs) != 0 {
		t.Fatalf("expected no sync calls, got=%d", len(h.syncer.inputs))
	}

	h.syncer.err = fmt.Errorf("%w: team=team-1", usecase.ErrSyncInProgress)
	if rec := h.do(http.MethodPost, "/v1/admin/teams/team-1/sync", "", staffAuth); rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409 for running sync, got=%d", rec.Code)
	}
}

func TestRouter_ArchiveEndpoints(t *testing.T) {
	t.Parallel()

	h := newRouterHarness()
	rec := h.do(http.MethodGet, "/v1/admin/teams/team-1/archives", "", staffAuth)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got=%d", rec.Code)
	}
	var list struct {
		Data []archiveDTO `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("unmarshal archives: %v", err)
	}
	if len(list.Data) != 1 || list.Data[0].Standings.Rank != 4 || list.Data[0].Wins != 1 {
		t.Fatalf("unexpected archives: %+v", list.Data)
	}
	if list.Data[0].Matches[0].ScheduledAt != "2026-02-20T19:00:00Z" {
		t.Fatalf("unexpected scheduled_at: %q", list.Data[0].Matches[0].ScheduledAt)
	}

	rec = h.do(http.MethodPatch, "/v1/admin/archives/arch-1", `{"hidden":true}`, staffAuth)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got=%d body=%s", rec.Code, rec.Body.String())
	}
	if !h.archives.items["arch-1"].Hidden {
		t.Fatalf("expected archive to be hidden")
	}

	if rec := h.do(http.MethodPatch, "/v1/admin/archives/arch-1", `{}`, staffAuth); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected missing hidden flag to be rejected, got=%d", rec.Code)
	}
	if rec := h.do(http.MethodPatch, "/v1/admin/archives/missing", `{"hidden":false}`, staffAuth); rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got=%d", rec.Code)
	}
}

func TestRouter_Republish(t *testing.T) {
	t.Parallel()

	h := newRouterHarness()
	rec := h.do(http.MethodPost, "/v1/admin/announcements/republish", "", staffAuth)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got=%d", rec.Code)
	}
	if h.syncer.republish != 1 {
		t.Fatalf("expected one republish, got=%d", h.syncer.republish)
	}
	if data := decodeData(t, rec); data["created"] != float64(1) {
		t.Fatalf("expected created=1, got=%v", data["created"])
	}
}

func TestRouter_RecoversPanics(t *testing.T) {
	t.Parallel()

	handler := recoverPanic(logging.NewNop(), http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/admin/teams/x/archives", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got=%d", rec.Code)
	}
}
