package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	t.Parallel()

	const console = "https://admin.elemental.gg"
	cases := []struct {
		name       string
		allowed    []string
		method     string
		origin     string
		wantOrigin string
		wantStatus int
		wantVary   bool
	}{
		{name: "listed origin", allowed: []string{" " + console + " "}, method: http.MethodGet, origin: console, wantOrigin: console, wantStatus: http.StatusTeapot, wantVary: true},
		{name: "wildcard preflight", allowed: []string{"*"}, method: http.MethodOptions, origin: console, wantOrigin: "*", wantStatus: http.StatusNoContent},
		{name: "unlisted origin", allowed: []string{"https://allowed.example.com"}, method: http.MethodGet, origin: console, wantStatus: http.StatusTeapot},
		{name: "no origin header", allowed: []string{"*"}, method: http.MethodOptions, wantStatus: http.StatusTeapot},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			handler := CORS(tc.allowed, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusTeapot)
			}))
			req := httptest.NewRequest(tc.method, "/v1/admin/teams/team-1/archives", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got=%d", tc.wantStatus, rec.Code)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tc.wantOrigin {
				t.Fatalf("expected allow-origin %q, got=%q", tc.wantOrigin, got)
			}
			if gotVary := rec.Header().Get("Vary") == "Origin"; gotVary != tc.wantVary {
				t.Fatalf("expected vary=%t, got=%t", tc.wantVary, gotVary)
			}
		})
	}
}
