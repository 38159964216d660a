package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Volence/elemental-website-sub005/internal/domain/jobscheduler"
)

type JobDispatchRepository struct {
	mu     sync.RWMutex
	events map[string]jobscheduler.DispatchEvent
}

func NewJobDispatchRepository() *JobDispatchRepository {
	return &JobDispatchRepository{events: make(map[string]jobscheduler.DispatchEvent)}
}

func (r *JobDispatchRepository) UpsertEvent(_ context.Context, event jobscheduler.DispatchEvent) error {
	event = event.Normalized(time.Now())
	if event.DispatchID == "" {
		return errors.New("dispatch id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.events[event.DispatchID] = event
	return nil
}

// Get returns the last recorded state of a dispatch.
func (r *JobDispatchRepository) Get(dispatchID string) (jobscheduler.DispatchEvent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	event, ok := r.events[dispatchID]
	return event, ok
}
