package httpapi

import (
	"fmt"
	"net/http"

	"github.com/Volence/elemental-website-sub005/internal/usecase"
)

func (h *Handler) SyncTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SyncTeam")
	defer span.End()

	if h.syncer == nil {
		writeError(ctx, w, fmt.Errorf("%w: competition sync is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req syncTeamRequest
	if _, err := decodeJSONBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.SyncTeamInput{TeamID: r.PathValue("teamID")}
	if req.Context != nil {
		input.Context = req.Context.toUsecase()
	}

	principal, _ := principalFromContext(ctx)
	result, err := h.syncer.SyncTeam(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "admin team sync failed",
			"team_id", input.TeamID,
			"user_id", principal.UserID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}
	h.logger.InfoContext(ctx, "admin team sync finished",
		"team_id", input.TeamID,
		"user_id", principal.UserID,
		"success", result.Success,
		"override", input.Context != nil,
	)

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RepublishAnnouncements(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RepublishAnnouncements")
	defer span.End()

	if h.syncer == nil {
		writeError(ctx, w, fmt.Errorf("%w: competition sync is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	result, err := h.syncer.RepublishAnnouncements(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "republish announcements failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) ListTeamArchives(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeamArchives")
	defer span.End()

	if h.archives == nil {
		writeError(ctx, w, fmt.Errorf("%w: season archives are not configured", usecase.ErrDependencyUnavailable))
		return
	}

	teamID := r.PathValue("teamID")
	items, err := h.archives.ListArchives(ctx, teamID)
	if err != nil {
		h.logger.WarnContext(ctx, "list season archives failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]archiveDTO, 0, len(items))
	for _, item := range items {
		out = append(out, archiveToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

// UpdateArchive only toggles visibility; archived standings are read-only.
func (h *Handler) UpdateArchive(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateArchive")
	defer span.End()

	if h.archives == nil {
		writeError(ctx, w, fmt.Errorf("%w: season archives are not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req updateArchiveRequest
	present, err := decodeJSONBody(r, &req)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if !present {
		writeError(ctx, w, fmt.Errorf("%w: request body is required", usecase.ErrInvalidInput))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	archiveID := r.PathValue("archiveID")
	item, err := h.archives.SetArchiveHidden(ctx, archiveID, *req.Hidden)
	if err != nil {
		h.logger.WarnContext(ctx, "update season archive failed", "archive_id", archiveID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, archiveToDTO(item))
}
