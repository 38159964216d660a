package httpapi

import (
	"net/http"

	"github.com/Volence/elemental-website-sub005/internal/platform/logging"
)

type RouterConfig struct {
	Verifier           TokenVerifier
	Logger             *logging.Logger
	CORSAllowedOrigins []string
	InternalJobToken   string

	// AdminRoles are the Anubis roles allowed on /v1/admin routes.
	AdminRoles []string
}

type middleware func(http.Handler) http.Handler

// NewRouter mounts every route on a ServeMux and wraps it, outermost first, in
// tracing, access logging, CORS and panic recovery.
func NewRouter(handler *Handler, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handler.Healthz)

	jobs := RequireInternalJobToken(cfg.InternalJobToken, http.HandlerFunc(handler.RunSyncCompetitionsJob))
	mux.Handle("POST /v1/internal/jobs/sync-competitions", jobs)

	admin := func(next http.HandlerFunc) http.Handler {
		return RequireAuth(cfg.Verifier, RequireAnyRole(cfg.AdminRoles, next))
	}
	mux.Handle("POST /v1/admin/teams/{teamID}/sync", admin(handler.SyncTeam))
	mux.Handle("GET /v1/admin/teams/{teamID}/archives", admin(handler.ListTeamArchives))
	mux.Handle("PATCH /v1/admin/archives/{archiveID}", admin(handler.UpdateArchive))
	// Deletes every bound card and posts them again in display order.
	mux.Handle("POST /v1/admin/announcements/republish", admin(handler.RepublishAnnouncements))

	return chain(mux,
		RequestTracing,
		func(next http.Handler) http.Handler { return RequestLogging(logger, next) },
		func(next http.Handler) http.Handler { return CORS(cfg.CORSAllowedOrigins, next) },
		func(next http.Handler) http.Handler { return recoverPanic(logger, next) },
	)
}

func chain(h http.Handler, outermostFirst ...middleware) http.Handler {
	for i := len(outermostFirst) - 1; i >= 0; i-- {
		h = outermostFirst[i](h)
	}
	return h
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.ErrorContext(r.Context(), "handler panicked", "panic", rec, "method", r.Method, "path", r.URL.Path)
			writeInternalError(r.Context(), w)
		}()
		next.ServeHTTP(w, r)
	})
}
