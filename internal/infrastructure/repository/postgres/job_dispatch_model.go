package postgres

import (
	"fmt"
	"time"

	"github.com/Volence/elemental-website-sub005/internal/domain/jobscheduler"
)

type jobDispatchInsertModel struct {
	DispatchID string     `db:"dispatch_id"`
	JobName    string     `db:"job_name"`
	JobPath    string     `db:"job_path"`
	Scope      string     `db:"scope"`
	Payload    string     `db:"payload"`
	Status     string     `db:"status"`
	SentAt     *time.Time `db:"sent_at"`
	FinishedAt *time.Time `db:"finished_at"`
	FailedAt   *time.Time `db:"failed_at"`
	LastError  *string    `db:"last_error"`
	TraceID    *string    `db:"trace_id"`
	SpanID     *string    `db:"span_id"`
}

// newJobDispatchInsertModel stamps OccurredAt onto the timestamp column that
// matches the event status.
func newJobDispatchInsertModel(event jobscheduler.DispatchEvent) (jobDispatchInsertModel, error) {
	payload := "{}"
	if len(event.Payload) > 0 {
		encoded, err := encodeJSON(event.Payload)
		if err != nil {
			return jobDispatchInsertModel{}, fmt.Errorf("marshal job dispatch payload: %w", err)
		}
		payload = encoded
	}

	at := event.OccurredAt
	model := jobDispatchInsertModel{
		DispatchID: event.DispatchID,
		JobName:    event.JobName,
		JobPath:    event.JobPath,
		Scope:      event.Scope,
		Payload:    payload,
		Status:     string(event.Status),
		TraceID:    optionalString(event.TraceID),
		SpanID:     optionalString(event.SpanID),
	}
	switch {
	case event.Status == jobscheduler.StatusSent:
		model.SentAt = &at
	case event.Status == jobscheduler.StatusFailed:
		model.FailedAt = &at
		model.LastError = optionalString(event.ErrorMessage)
	case event.Status.Terminal():
		model.FinishedAt = &at
	}
	return model, nil
}
