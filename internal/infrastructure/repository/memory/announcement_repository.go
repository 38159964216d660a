package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Volence/elemental-website-sub005/internal/domain/announcement"
)

type AnnouncementRepository struct {
	mu       sync.RWMutex
	bindings map[announcement.EntityRef]announcement.Binding
}

func NewAnnouncementRepository() *AnnouncementRepository {
	return &AnnouncementRepository{bindings: make(map[announcement.EntityRef]announcement.Binding)}
}

func (r *AnnouncementRepository) Get(_ context.Context, ref announcement.EntityRef) (announcement.Binding, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.bindings[ref]
	return item, ok, nil
}

func (r *AnnouncementRepository) Upsert(_ context.Context, item announcement.Binding) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bindings[item.Ref] = item
	return nil
}

func (r *AnnouncementRepository) Delete(_ context.Context, ref announcement.EntityRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.bindings, ref)
	return nil
}

func (r *AnnouncementRepository) ListByType(_ context.Context, entityType announcement.EntityType) ([]announcement.Binding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]announcement.Binding, 0)
	for ref, item := range r.bindings {
		if ref.Type == entityType {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ref.ID < out[j].Ref.ID })
	return out, nil
}
