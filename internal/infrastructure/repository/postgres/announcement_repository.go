package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Volence/elemental-website-sub005/internal/domain/announcement"
	qb "github.com/Volence/elemental-website-sub005/internal/platform/querybuilder"
	"github.com/jmoiron/sqlx"
)

type announcementBindingModel struct {
	EntityType  string    `db:"entity_type"`
	EntityID    string    `db:"entity_id"`
	ChannelID   string    `db:"channel_id"`
	MessageID   string    `db:"message_id"`
	ContentHash string    `db:"content_hash"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type AnnouncementRepository struct {
	db *sqlx.DB
}

func NewAnnouncementRepository(db *sqlx.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

func (r *AnnouncementRepository) Get(ctx context.Context, ref announcement.EntityRef) (announcement.Binding, bool, error) {
	query, args, err := qb.Select("entity_type", "entity_id", "channel_id", "message_id", "content_hash", "updated_at").
		From("announcement_bindings").
		Where(
			qb.Eq("entity_type", string(ref.Type)),
			qb.Eq("entity_id", ref.ID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return announcement.Binding{}, false, fmt.Errorf("build select announcement binding query: %w", err)
	}

	var row announcementBindingModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return announcement.Binding{}, false, nil
		}
		return announcement.Binding{}, false, fmt.Errorf("get announcement binding %s: %w", ref, err)
	}
	return bindingFromRow(row), true, nil
}

func (r *AnnouncementRepository) Upsert(ctx context.Context, item announcement.Binding) error {
	if err := item.Ref.Validate(); err != nil {
		return err
	}
	updatedAt := item.UpdatedAt.UTC()
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	query, args, err := qb.InsertModel("announcement_bindings", announcementBindingModel{
		EntityType:  string(item.Ref.Type),
		EntityID:    item.Ref.ID,
		ChannelID:   item.ChannelID,
		MessageID:   item.MessageID,
		ContentHash: item.ContentHash,
		UpdatedAt:   updatedAt,
	}, `ON CONFLICT (entity_type, entity_id)
DO UPDATE SET
    channel_id = EXCLUDED.channel_id,
    message_id = EXCLUDED.message_id,
    content_hash = EXCLUDED.content_hash,
    updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build upsert announcement binding query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert announcement binding %s: %w", item.Ref, err)
	}
	return nil
}

func (r *AnnouncementRepository) Delete(ctx context.Context, ref announcement.EntityRef) error {
	const query = `DELETE FROM announcement_bindings WHERE entity_type = $1 AND entity_id = $2`
	if _, err := r.db.ExecContext(ctx, query, string(ref.Type), ref.ID); err != nil {
		return fmt.Errorf("delete announcement binding %s: %w", ref, err)
	}
	return nil
}

func (r *AnnouncementRepository) ListByType(ctx context.Context, entityType announcement.EntityType) ([]announcement.Binding, error) {
	query, args, err := qb.Select("entity_type", "entity_id", "channel_id", "message_id", "content_hash", "updated_at").
		From("announcement_bindings").
		Where(qb.Eq("entity_type", string(entityType))).
		OrderBy("entity_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list announcement bindings query: %w", err)
	}

	var rows []announcementBindingModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list announcement bindings type=%s: %w", entityType, err)
	}

	out := make([]announcement.Binding, 0, len(rows))
	for _, row := range rows {
		out = append(out, bindingFromRow(row))
	}
	return out, nil
}

func bindingFromRow(row announcementBindingModel) announcement.Binding {
	return announcement.Binding{
		Ref:         announcement.EntityRef{Type: announcement.EntityType(row.EntityType), ID: row.EntityID},
		ChannelID:   row.ChannelID,
		MessageID:   row.MessageID,
		ContentHash: row.ContentHash,
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
}
