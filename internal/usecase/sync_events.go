package usecase

import "context"

// SyncEventPublisher announces sync outcomes to other services. Delivery is
// best effort and never affects the sync result.
type SyncEventPublisher interface {
	PublishTeamSynced(ctx context.Context, result TeamSyncResult) error
	PublishBatchCompleted(ctx context.Context, result BatchSyncResult) error
}

type noopSyncEventPublisher struct{}

func (noopSyncEventPublisher) PublishTeamSynced(context.Context, TeamSyncResult) error {
	return nil
}

func (noopSyncEventPublisher) PublishBatchCompleted(context.Context, BatchSyncResult) error {
	return nil
}

func NewNoopSyncEventPublisher() SyncEventPublisher {
	return noopSyncEventPublisher{}
}
