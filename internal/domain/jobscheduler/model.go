package jobscheduler

import (
	"strings"
	"time"
)

type DispatchStatus string

const (
	StatusSent      DispatchStatus = "sent"
	StatusCompleted DispatchStatus = "completed"
	// StatusDeferred marks a batch that ran out of wall-clock budget and left
	// teams for the next trigger.
	StatusDeferred DispatchStatus = "deferred"
	StatusFailed   DispatchStatus = "failed"
)

// DispatchEvent records one invocation of a sync trigger, keyed by DispatchID.
type DispatchEvent struct {
	DispatchID   string
	JobName      string
	JobPath      string
	Scope        string
	Status       DispatchStatus
	Payload      map[string]any
	ErrorMessage string
	OccurredAt   time.Time
	TraceID      string
	SpanID       string
}

// Terminal reports whether no later status is expected for the dispatch.
func (s DispatchStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusDeferred || s == StatusFailed
}

// Normalized trims identifiers and fills the defaults storage relies on.
// ErrorMessage is kept only for failed events.
func (e DispatchEvent) Normalized(now time.Time) DispatchEvent {
	e.DispatchID = strings.TrimSpace(e.DispatchID)
	e.JobName = orDefault(e.JobName, "unknown")
	e.JobPath = orDefault(e.JobPath, "/unknown")
	e.Scope = orDefault(e.Scope, "all")
	if e.OccurredAt.IsZero() {
		e.OccurredAt = now
	}
	e.OccurredAt = e.OccurredAt.UTC()
	if e.Status != StatusFailed {
		e.ErrorMessage = ""
	}
	return e
}

func orDefault(value, fallback string) string {
	if value = strings.TrimSpace(value); value == "" {
		return fallback
	}
	return value
}
