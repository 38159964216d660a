package usecase

import (
	"context"
	"sync"
)

// TeamLocker serializes syncs of one team. TryLock never waits: it reports
// false when another sync of the same team holds the lock.
type TeamLocker interface {
	TryLock(ctx context.Context, teamID string) (unlock func(), acquired bool, err error)
}

// InProcessTeamLocker is a TeamLocker for single-instance deployments.
type InProcessTeamLocker struct {
	mu      sync.Mutex
	running map[string]struct{}
}

func NewInProcessTeamLocker() *InProcessTeamLocker {
	return &InProcessTeamLocker{running: make(map[string]struct{})}
}

func (l *InProcessTeamLocker) TryLock(_ context.Context, teamID string) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.running[teamID]; busy {
		return nil, false, nil
	}
	l.running[teamID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.running, teamID)
			l.mu.Unlock()
		})
	}, true, nil
}
