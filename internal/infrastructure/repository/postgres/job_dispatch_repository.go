package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Volence/elemental-website-sub005/internal/domain/jobscheduler"
	qb "github.com/Volence/elemental-website-sub005/internal/platform/querybuilder"
	"github.com/jmoiron/sqlx"
)

// A failed row keeps its error until a later completed or deferred status
// clears it. sent_at is written once.
const jobDispatchOnConflict = `ON CONFLICT (dispatch_id) DO UPDATE SET
	job_name    = EXCLUDED.job_name,
	job_path    = EXCLUDED.job_path,
	scope       = EXCLUDED.scope,
	payload     = EXCLUDED.payload,
	status      = EXCLUDED.status,
	sent_at     = COALESCE(job_dispatches.sent_at, EXCLUDED.sent_at),
	finished_at = COALESCE(EXCLUDED.finished_at, job_dispatches.finished_at),
	failed_at   = CASE EXCLUDED.status
		WHEN 'failed' THEN EXCLUDED.failed_at
		WHEN 'sent' THEN job_dispatches.failed_at
		ELSE NULL END,
	last_error  = CASE WHEN EXCLUDED.status = 'failed' THEN EXCLUDED.last_error END,
	trace_id    = COALESCE(EXCLUDED.trace_id, job_dispatches.trace_id),
	span_id     = COALESCE(EXCLUDED.span_id, job_dispatches.span_id),
	updated_at  = NOW()`

// JobDispatchRepository stores one row per dispatch id in job_dispatches.
type JobDispatchRepository struct {
	db *sqlx.DB
}

func NewJobDispatchRepository(db *sqlx.DB) *JobDispatchRepository {
	return &JobDispatchRepository{db: db}
}

func (r *JobDispatchRepository) UpsertEvent(ctx context.Context, event jobscheduler.DispatchEvent) error {
	event = event.Normalized(time.Now())
	if event.DispatchID == "" {
		return fmt.Errorf("dispatch id is required")
	}

	model, err := newJobDispatchInsertModel(event)
	if err != nil {
		return err
	}
	query, args, err := qb.InsertModel("job_dispatches", model, jobDispatchOnConflict)
	if err != nil {
		return fmt.Errorf("build job dispatch upsert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert job dispatch id=%s status=%s: %w", event.DispatchID, event.Status, err)
	}
	return nil
}
