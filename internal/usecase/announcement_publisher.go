package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Volence/elemental-website-sub005/internal/domain/announcement"
	"github.com/Volence/elemental-website-sub005/internal/platform/logging"
	sonic "github.com/bytedance/sonic"
	"github.com/jonboulle/clockwork"
	"github.com/panjf2000/ants/v2"
)

// MessageContent is a rendered chat card.
type MessageContent struct {
	Content string         `json:"content,omitempty"`
	Embeds  []MessageEmbed `json:"embeds,omitempty"`
}

type MessageEmbed struct {
	Title        string       `json:"title,omitempty"`
	Description  string       `json:"description,omitempty"`
	URL          string       `json:"url,omitempty"`
	Color        int          `json:"color,omitempty"`
	ThumbnailURL string       `json:"thumbnail_url,omitempty"`
	Footer       string       `json:"footer,omitempty"`
	Timestamp    *time.Time   `json:"timestamp,omitempty"`
	Fields       []EmbedField `json:"fields,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Hash fingerprints the visible content. The embed timestamp is excluded so a
// re-render at a later time does not count as a change.
func (c MessageContent) Hash() string {
	stripped := MessageContent{Content: c.Content, Embeds: make([]MessageEmbed, 0, len(c.Embeds))}
	for _, embed := range c.Embeds {
		embed.Timestamp = nil
		stripped.Embeds = append(stripped.Embeds, embed)
	}
	raw, err := sonic.Marshal(stripped)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// ChatMessenger is the chat surface. Implementations return ErrMessageNotFound
// when the target message no longer exists.
type ChatMessenger interface {
	CreateMessage(ctx context.Context, channelID string, content MessageContent) (string, error)
	EditMessage(ctx context.Context, channelID, messageID string, content MessageContent) error
	DeleteMessage(ctx context.Context, channelID, messageID string) error
}

type AnnouncementPublisherConfig struct {
	ChannelID     string
	DeleteWorkers int
}

// AnnouncementItem is one entity taking part in a bulk republish.
type AnnouncementItem struct {
	Ref      announcement.EntityRef
	Region   string
	Division string
	Rating   int
	Content  MessageContent
}

type AnnouncementItemError struct {
	Ref   string `json:"ref"`
	Stage string `json:"stage"`
	Error string `json:"error"`
}

type RepublishResult struct {
	Deleted int                     `json:"deleted"`
	Created int                     `json:"created"`
	Errors  []AnnouncementItemError `json:"errors"`
}

// AnnouncementPublisher keeps at most one live chat message per entity.
type AnnouncementPublisher struct {
	bindings  announcement.Repository
	messenger ChatMessenger
	cfg       AnnouncementPublisherConfig
	logger    *logging.Logger
	clock     clockwork.Clock
}

func NewAnnouncementPublisher(
	bindings announcement.Repository,
	messenger ChatMessenger,
	cfg AnnouncementPublisherConfig,
	logger *logging.Logger,
	clock clockwork.Clock,
) *AnnouncementPublisher {
	if logger == nil {
		logger = logging.Default()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if cfg.DeleteWorkers <= 0 {
		cfg.DeleteWorkers = 4
	}
	cfg.ChannelID = strings.TrimSpace(cfg.ChannelID)

	return &AnnouncementPublisher{
		bindings:  bindings,
		messenger: messenger,
		cfg:       cfg,
		logger:    logger,
		clock:     clock,
	}
}

// PublishOrUpdate edits the bound message in place, or creates one when the
// entity has no binding or its message was deleted out of band. Unchanged
// content makes no chat call at all.
func (p *AnnouncementPublisher) PublishOrUpdate(ctx context.Context, ref announcement.EntityRef, content MessageContent) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnnouncementPublisher.PublishOrUpdate")
	defer span.End()

	if err := ref.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if p.cfg.ChannelID == "" {
		return "", fmt.Errorf("%w: announcement channel is not configured", ErrInvalidInput)
	}

	hash := content.Hash()
	binding, exists, err := p.bindings.Get(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("get announcement binding ref=%s: %w", ref, err)
	}

	if exists && binding.ChannelID != p.cfg.ChannelID {
		// Channel was reconfigured: retire the old message and start over.
		if err := p.deleteBound(ctx, binding); err != nil {
			return "", err
		}
		exists = false
	}

	if exists {
		if binding.ContentHash != "" && binding.ContentHash == hash {
			return binding.MessageID, nil
		}
		err := p.messenger.EditMessage(ctx, binding.ChannelID, binding.MessageID, content)
		switch {
		case err == nil:
			binding.ContentHash = hash
			binding.UpdatedAt = p.clock.Now().UTC()
			if err := p.bindings.Upsert(ctx, binding); err != nil {
				return "", fmt.Errorf("save announcement binding ref=%s: %w", ref, err)
			}
			return binding.MessageID, nil
		case errors.Is(err, ErrMessageNotFound):
			p.logger.WarnContext(ctx, "bound announcement message missing, recreating",
				"ref", ref.String(),
				"message_id", binding.MessageID,
			)
			if err := p.bindings.Delete(ctx, ref); err != nil {
				return "", fmt.Errorf("clear stale announcement binding ref=%s: %w", ref, err)
			}
		default:
			return "", fmt.Errorf("edit announcement ref=%s message=%s: %w", ref, binding.MessageID, err)
		}
	}

	return p.create(ctx, ref, content, hash)
}

func (p *AnnouncementPublisher) create(ctx context.Context, ref announcement.EntityRef, content MessageContent, hash string) (string, error) {
	messageID, err := p.messenger.CreateMessage(ctx, p.cfg.ChannelID, content)
	if err != nil {
		return "", fmt.Errorf("create announcement ref=%s: %w", ref, err)
	}
	binding := announcement.Binding{
		Ref:         ref,
		ChannelID:   p.cfg.ChannelID,
		MessageID:   messageID,
		ContentHash: hash,
		UpdatedAt:   p.clock.Now().UTC(),
	}
	if err := p.bindings.Upsert(ctx, binding); err != nil {
		return "", fmt.Errorf("save announcement binding ref=%s message=%s: %w", ref, messageID, err)
	}
	return messageID, nil
}

func (p *AnnouncementPublisher) deleteBound(ctx context.Context, binding announcement.Binding) error {
	err := p.messenger.DeleteMessage(ctx, binding.ChannelID, binding.MessageID)
	if err != nil && !errors.Is(err, ErrMessageNotFound) {
		return fmt.Errorf("delete announcement ref=%s message=%s: %w", binding.Ref, binding.MessageID, err)
	}
	if err := p.bindings.Delete(ctx, binding.Ref); err != nil {
		return fmt.Errorf("clear announcement binding ref=%s: %w", binding.Ref, err)
	}
	return nil
}

// RepublishAll deletes every bound message of items, then posts all items
// again ordered by region, division and rating. It is the only path that
// intentionally gives bound entities new message ids.
func (p *AnnouncementPublisher) RepublishAll(ctx context.Context, items []AnnouncementItem) (RepublishResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnnouncementPublisher.RepublishAll")
	defer span.End()

	if p.cfg.ChannelID == "" {
		return RepublishResult{}, fmt.Errorf("%w: announcement channel is not configured", ErrInvalidInput)
	}
	for _, item := range items {
		if err := item.Ref.Validate(); err != nil {
			return RepublishResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	result := RepublishResult{Errors: make([]AnnouncementItemError, 0)}
	bound := make([]announcement.Binding, 0, len(items))
	for _, item := range items {
		binding, exists, err := p.bindings.Get(ctx, item.Ref)
		if err != nil {
			return RepublishResult{}, fmt.Errorf("get announcement binding ref=%s: %w", item.Ref, err)
		}
		if exists {
			bound = append(bound, binding)
		}
	}

	deleteFailed, deleted, err := p.deleteAll(ctx, bound, &result)
	if err != nil {
		return RepublishResult{}, err
	}
	result.Deleted = deleted

	ordered := append([]AnnouncementItem(nil), items...)
	sortAnnouncementItems(ordered)
	for _, item := range ordered {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if _, failed := deleteFailed[item.Ref]; failed {
			continue
		}
		if _, err := p.create(ctx, item.Ref, item.Content, item.Content.Hash()); err != nil {
			p.logger.WarnContext(ctx, "republish create failed", "ref", item.Ref.String(), "error", err)
			result.Errors = append(result.Errors, AnnouncementItemError{Ref: item.Ref.String(), Stage: "create", Error: err.Error()})
			continue
		}
		result.Created++
	}

	return result, nil
}

// deleteAll removes bound messages concurrently. Entities whose delete failed
// are returned so they are not posted a second time.
func (p *AnnouncementPublisher) deleteAll(ctx context.Context, bound []announcement.Binding, result *RepublishResult) (map[announcement.EntityRef]struct{}, int, error) {
	failed := make(map[announcement.EntityRef]struct{})
	if len(bound) == 0 {
		return failed, 0, nil
	}

	workers := p.cfg.DeleteWorkers
	if workers > len(bound) {
		workers = len(bound)
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, 0, fmt.Errorf("create delete worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		deleted int
	)
	for _, binding := range bound {
		binding := binding
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			err := p.deleteBound(ctx, binding)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed[binding.Ref] = struct{}{}
				result.Errors = append(result.Errors, AnnouncementItemError{Ref: binding.Ref.String(), Stage: "delete", Error: err.Error()})
				return
			}
			deleted++
		}); err != nil {
			wg.Done()
			wg.Wait()
			return nil, 0, fmt.Errorf("submit delete to worker pool: %w", err)
		}
	}
	wg.Wait()

	return failed, deleted, nil
}

func sortAnnouncementItems(items []AnnouncementItem) {
	sort.SliceStable(items, func(i, j int) bool {
		left, right := items[i], items[j]
		if !strings.EqualFold(left.Region, right.Region) {
			return strings.ToLower(left.Region) < strings.ToLower(right.Region)
		}
		if !strings.EqualFold(left.Division, right.Division) {
			return strings.ToLower(left.Division) < strings.ToLower(right.Division)
		}
		if left.Rating != right.Rating {
			return left.Rating > right.Rating
		}
		return left.Ref.ID < right.Ref.ID
	})
}
