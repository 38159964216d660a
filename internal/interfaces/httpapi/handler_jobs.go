package httpapi

import (
	"fmt"
	"net/http"

	"github.com/Volence/elemental-website-sub005/internal/usecase"
)

// RunSyncCompetitionsJob is the batch trigger called by cron and by queued
// continuations. Dispatch bookkeeping happens in the orchestrator.
func (h *Handler) RunSyncCompetitionsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncCompetitionsJob")
	defer span.End()

	if h.jobs == nil {
		writeError(ctx, w, fmt.Errorf("%w: job orchestrator is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req internalJobSyncRequest
	if _, err := decodeJSONBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.jobs.RunCompetitionSync(ctx, usecase.JobSyncInput{
		DispatchID:  req.DispatchID,
		AfterTeamID: req.AfterTeamID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "run sync competitions job failed",
			"dispatch_id", req.DispatchID,
			"after_team_id", req.AfterTeamID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}
