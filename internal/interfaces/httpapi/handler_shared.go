package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Volence/elemental-website-sub005/internal/domain/seasonarchive"
	"github.com/Volence/elemental-website-sub005/internal/platform/logging"
	"github.com/Volence/elemental-website-sub005/internal/usecase"
	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
)

// CompetitionSyncer is the admin surface of the sync engine.
type CompetitionSyncer interface {
	SyncTeam(ctx context.Context, input usecase.SyncTeamInput) (usecase.TeamSyncResult, error)
	RepublishAnnouncements(ctx context.Context) (usecase.RepublishResult, error)
}

type JobRunner interface {
	RunCompetitionSync(ctx context.Context, input usecase.JobSyncInput) (usecase.JobSyncResult, error)
}

type ArchiveManager interface {
	ListArchives(ctx context.Context, teamID string) ([]seasonarchive.Archive, error)
	SetArchiveHidden(ctx context.Context, archiveID string, hidden bool) (seasonarchive.Archive, error)
}

type Handler struct {
	syncer    CompetitionSyncer
	jobs      JobRunner
	archives  ArchiveManager
	logger    *logging.Logger
	validator *validator.Validate
}

func NewHandler(
	syncer CompetitionSyncer,
	jobs JobRunner,
	archives ArchiveManager,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		syncer:    syncer,
		jobs:      jobs,
		archives:  archives,
		logger:    logger,
		validator: validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeJSONBody reports false when the request carried no body.
func decodeJSONBody(r *http.Request, dst any) (bool, error) {
	if r.Body == nil || r.ContentLength == 0 {
		return false, nil
	}

	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return true, nil
}

type internalJobSyncRequest struct {
	DispatchID  string `json:"dispatch_id" validate:"omitempty,max=200"`
	AfterTeamID string `json:"after_team_id" validate:"omitempty,max=128"`
}

type leagueContextRequest struct {
	ChampionshipID string `json:"championship_id" validate:"required,max=128"`
	LeagueID       string `json:"league_id" validate:"omitempty,max=128"`
	SeasonID       string `json:"season_id" validate:"required,max=128"`
	StageID        string `json:"stage_id" validate:"omitempty,max=128"`
	Region         string `json:"region" validate:"omitempty,max=64"`
	Division       string `json:"division" validate:"omitempty,max=64"`
}

func (r leagueContextRequest) toUsecase() *usecase.LeagueContext {
	return &usecase.LeagueContext{
		ChampionshipID: r.ChampionshipID,
		LeagueID:       r.LeagueID,
		SeasonID:       r.SeasonID,
		StageID:        r.StageID,
		Region:         r.Region,
		Division:       r.Division,
	}
}

type syncTeamRequest struct {
	Context *leagueContextRequest `json:"context"`
}

type updateArchiveRequest struct {
	Hidden *bool `json:"hidden" validate:"required"`
}

type standingsDTO struct {
	Rank     int    `json:"rank"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	Ties     int    `json:"ties"`
	Points   int    `json:"points"`
	Division string `json:"division,omitempty"`
	Region   string `json:"region,omitempty"`
}

type archivedMatchDTO struct {
	ExternalID  string `json:"external_id"`
	Opponent    string `json:"opponent"`
	ScheduledAt string `json:"scheduled_at,omitempty"`
	Result      string `json:"result"`
	RoomURL     string `json:"room_url,omitempty"`
}

type archiveDTO struct {
	ID         string             `json:"id"`
	TeamID     string             `json:"team_id"`
	SeasonID   string             `json:"season_id"`
	SeasonKey  string             `json:"season_key"`
	Standings  standingsDTO       `json:"standings"`
	Wins       int                `json:"wins"`
	Losses     int                `json:"losses"`
	Matches    []archivedMatchDTO `json:"matches"`
	Hidden     bool               `json:"hidden"`
	ArchivedAt string             `json:"archived_at"`
}

func archiveToDTO(item seasonarchive.Archive) archiveDTO {
	matches := make([]archivedMatchDTO, 0, len(item.Matches))
	for _, m := range item.Matches {
		matches = append(matches, archivedMatchDTO{
			ExternalID:  m.ExternalID,
			Opponent:    m.Opponent,
			ScheduledAt: formatTime(m.ScheduledAt),
			Result:      string(m.Result),
			RoomURL:     m.RoomURL,
		})
	}

	return archiveDTO{
		ID:        item.ID,
		TeamID:    item.TeamID,
		SeasonID:  item.SeasonID,
		SeasonKey: item.SeasonKey,
		Standings: standingsDTO{
			Rank:     item.Standings.Rank,
			Wins:     item.Standings.Wins,
			Losses:   item.Standings.Losses,
			Ties:     item.Standings.Ties,
			Points:   item.Standings.Points,
			Division: item.Standings.Division,
			Region:   item.Standings.Region,
		},
		Wins:       item.Record.Wins,
		Losses:     item.Record.Losses,
		Matches:    matches,
		Hidden:     item.Hidden,
		ArchivedAt: formatTime(item.ArchivedAt),
	}
}

func formatTime(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}
