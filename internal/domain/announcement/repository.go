package announcement

import "context"

type Repository interface {
	Get(ctx context.Context, ref EntityRef) (Binding, bool, error)
	Upsert(ctx context.Context, item Binding) error
	Delete(ctx context.Context, ref EntityRef) error
	ListByType(ctx context.Context, entityType EntityType) ([]Binding, error)
}
