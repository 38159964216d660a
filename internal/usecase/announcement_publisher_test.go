package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/Volence/elemental-website-sub005/internal/domain/announcement"
	"github.com/Volence/elemental-website-sub005/internal/infrastructure/repository/memory"
	announcementmock "github.com/Volence/elemental-website-sub005/internal/mocks/domain/announcement"
	"github.com/Volence/elemental-website-sub005/internal/platform/logging"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/mock"
)

func newTestPublisher(bindings announcement.Repository, messenger ChatMessenger, channelID string) *AnnouncementPublisher {
	return NewAnnouncementPublisher(bindings, messenger, AnnouncementPublisherConfig{ChannelID: channelID, DeleteWorkers: 2}, logging.NewNop(), clockwork.NewFakeClock())
}

func teamRef(teamID string) announcement.EntityRef {
	return announcement.EntityRef{Type: announcement.EntityTeam, ID: teamID}
}

func TestAnnouncementPublisher_CreateThenEdit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	bindings := memory.NewAnnouncementRepository()
	messenger := newFakeMessenger()
	publisher := newTestPublisher(bindings, messenger, "chan-1")

	first, err := publisher.PublishOrUpdate(ctx, teamRef("team-1"), MessageContent{Content: "rank 13"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := publisher.PublishOrUpdate(ctx, teamRef("team-1"), MessageContent{Content: "rank 12"})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if first != second {
		t.Fatalf("expected message id to be stable, got=%s then %s", first, second)
	}
	if messenger.creates != 1 || messenger.edits != 1 {
		t.Fatalf("expected 1 create and 1 edit, got creates=%d edits=%d", messenger.creates, messenger.edits)
	}
}

func TestAnnouncementPublisher_UnchangedContentSkipsChat(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	messenger := newFakeMessenger()
	publisher := newTestPublisher(memory.NewAnnouncementRepository(), messenger, "chan-1")

	content := MessageContent{Embeds: []MessageEmbed{{Title: "Elemental", Description: "Rank #13"}}}
	for i := 0; i < 3; i++ {
		if _, err := publisher.PublishOrUpdate(ctx, teamRef("team-1"), content); err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
	}
	if messenger.creates != 1 || messenger.edits != 0 {
		t.Fatalf("expected no chat calls after the first, got creates=%d edits=%d", messenger.creates, messenger.edits)
	}
}

func TestAnnouncementPublisher_RecreatesDeletedMessage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	bindings := memory.NewAnnouncementRepository()
	messenger := newFakeMessenger()
	publisher := newTestPublisher(bindings, messenger, "chan-1")

	original, _ := publisher.PublishOrUpdate(ctx, teamRef("team-1"), MessageContent{Content: "v1"})
	messenger.removeOutOfBand("chan-1", original)

	replacement, err := publisher.PublishOrUpdate(ctx, teamRef("team-1"), MessageContent{Content: "v2"})
	if err != nil {
		t.Fatalf("expected self-healing publish, got %v", err)
	}
	if replacement == original {
		t.Fatalf("expected new message id")
	}
	binding, exists, _ := bindings.Get(ctx, teamRef("team-1"))
	if !exists || binding.MessageID != replacement {
		t.Fatalf("expected binding on %s, got=%+v", replacement, binding)
	}
}

func TestAnnouncementPublisher_ChannelChangeRetiresOldMessage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	bindings := memory.NewAnnouncementRepository()
	messenger := newFakeMessenger()

	if _, err := newTestPublisher(bindings, messenger, "chan-old").PublishOrUpdate(ctx, teamRef("team-1"), MessageContent{Content: "x"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := newTestPublisher(bindings, messenger, "chan-new").PublishOrUpdate(ctx, teamRef("team-1"), MessageContent{Content: "x"}); err != nil {
		t.Fatalf("move: %v", err)
	}
	if messenger.deletes != 1 || messenger.live() != 1 {
		t.Fatalf("expected old message deleted and one live, got deletes=%d live=%d", messenger.deletes, messenger.live())
	}
	binding, _, _ := bindings.Get(ctx, teamRef("team-1"))
	if binding.ChannelID != "chan-new" {
		t.Fatalf("expected binding in chan-new, got=%s", binding.ChannelID)
	}
}

func TestAnnouncementPublisher_EditFailureKeepsBinding(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	bindings := announcementmock.NewRepository(t)
	messenger := newFakeMessenger()
	publisher := newTestPublisher(bindings, messenger, "chan-1")

	messenger.failWith = errors.New("discord returned 502")
	bindings.
		On("Get", mock.Anything, teamRef("team-1")).
		Return(announcement.Binding{Ref: teamRef("team-1"), ChannelID: "chan-1", MessageID: "msg-9", ContentHash: "old"}, true, nil).
		Once()

	if _, err := publisher.PublishOrUpdate(ctx, teamRef("team-1"), MessageContent{Content: "new"}); err == nil {
		t.Fatalf("expected edit error")
	}
	bindings.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	bindings.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestAnnouncementPublisher_RejectsInvalidInput(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	publisher := newTestPublisher(memory.NewAnnouncementRepository(), newFakeMessenger(), "")
	if _, err := publisher.PublishOrUpdate(ctx, teamRef("team-1"), MessageContent{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing channel, got %v", err)
	}
	publisher = newTestPublisher(memory.NewAnnouncementRepository(), newFakeMessenger(), "chan-1")
	if _, err := publisher.PublishOrUpdate(ctx, announcement.EntityRef{Type: "guild", ID: "x"}, MessageContent{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown entity type, got %v", err)
	}
}

func TestAnnouncementPublisher_RepublishAllOrdersAndTolerantOfMissing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	bindings := memory.NewAnnouncementRepository()
	messenger := newFakeMessenger()
	publisher := newTestPublisher(bindings, messenger, "chan-1")

	items := []AnnouncementItem{
		{Ref: teamRef("team-c"), Region: "NA", Division: "Open", Rating: 3000, Content: MessageContent{Content: "c"}},
		{Ref: teamRef("team-a"), Region: "EMEA", Division: "Advanced", Rating: 3600, Content: MessageContent{Content: "a"}},
		{Ref: teamRef("team-b"), Region: "NA", Division: "Open", Rating: 3400, Content: MessageContent{Content: "b"}},
	}
	for _, item := range items {
		if _, err := publisher.PublishOrUpdate(ctx, item.Ref, MessageContent{Content: "old-" + item.Ref.ID}); err != nil {
			t.Fatalf("seed %s: %v", item.Ref.ID, err)
		}
	}
	stale, _, _ := bindings.Get(ctx, teamRef("team-b"))
	messenger.removeOutOfBand("chan-1", stale.MessageID)

	result, err := publisher.RepublishAll(ctx, items)
	if err != nil {
		t.Fatalf("republish: %v", err)
	}
	if result.Deleted != 3 || result.Created != 3 || len(result.Errors) != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if messenger.live() != 3 {
		t.Fatalf("expected 3 live messages, got=%d", messenger.live())
	}

	// Fresh messages get ascending ids; posting order follows region, division, rating.
	a, _, _ := bindings.Get(ctx, teamRef("team-a"))
	b, _, _ := bindings.Get(ctx, teamRef("team-b"))
	c, _, _ := bindings.Get(ctx, teamRef("team-c"))
	if !(a.MessageID == "msg-4" && b.MessageID == "msg-5" && c.MessageID == "msg-6") {
		t.Fatalf("unexpected posting order a=%s b=%s c=%s", a.MessageID, b.MessageID, c.MessageID)
	}
}

func TestSortAnnouncementItems_RatingDescendingWithinDivision(t *testing.T) {
	t.Parallel()

	items := []AnnouncementItem{
		{Ref: teamRef("z"), Region: "na", Division: "open", Rating: 100},
		{Ref: teamRef("y"), Region: "NA", Division: "Open", Rating: 200},
		{Ref: teamRef("x"), Region: "NA", Division: "Open", Rating: 200},
	}
	sortAnnouncementItems(items)
	if items[0].Ref.ID != "x" || items[1].Ref.ID != "y" || items[2].Ref.ID != "z" {
		t.Fatalf("unexpected order: %s %s %s", items[0].Ref.ID, items[1].Ref.ID, items[2].Ref.ID)
	}
}
