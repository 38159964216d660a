package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/Volence/elemental-website-sub005/internal/domain/seasonarchive"
)

type fakeFeed struct {
	standings ExternalStandings
	found     bool
	matches   []ExternalMatch
	err       error
}

type fakeCompetitionProvider struct {
	mu    sync.Mutex
	feeds map[string]fakeFeed
	calls int
	hook  func(teamExternalID string)
}

func newFakeCompetitionProvider() *fakeCompetitionProvider {
	return &fakeCompetitionProvider{feeds: make(map[string]fakeFeed)}
}

func (p *fakeCompetitionProvider) set(teamExternalID string, feed fakeFeed) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.feeds[teamExternalID] = feed
}

func (p *fakeCompetitionProvider) FetchStandings(_ context.Context, teamExternalID string, _ LeagueContext) (ExternalStandings, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	feed := p.feeds[teamExternalID]
	if feed.err != nil {
		return ExternalStandings{}, false, feed.err
	}
	return feed.standings, feed.found, nil
}

func (p *fakeCompetitionProvider) FetchMatches(_ context.Context, teamExternalID string, _ LeagueContext) ([]ExternalMatch, error) {
	p.mu.Lock()
	p.calls++
	hook := p.hook
	feed := p.feeds[teamExternalID]
	p.mu.Unlock()

	if hook != nil {
		hook(teamExternalID)
	}
	if feed.err != nil {
		return nil, feed.err
	}
	return append([]ExternalMatch(nil), feed.matches...), nil
}

type fakeMessenger struct {
	mu       sync.Mutex
	next     int
	messages map[string]MessageContent
	creates  int
	edits    int
	deletes  int
	failWith error
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{messages: make(map[string]MessageContent)}
}

func (m *fakeMessenger) CreateMessage(_ context.Context, channelID string, content MessageContent) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return "", m.failWith
	}
	m.next++
	m.creates++
	messageID := fmt.Sprintf("msg-%d", m.next)
	m.messages[channelID+"/"+messageID] = content
	return messageID, nil
}

func (m *fakeMessenger) EditMessage(_ context.Context, channelID, messageID string, content MessageContent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	key := channelID + "/" + messageID
	if _, ok := m.messages[key]; !ok {
		return fmt.Errorf("discord edit: %w", ErrMessageNotFound)
	}
	m.edits++
	m.messages[key] = content
	return nil
}

func (m *fakeMessenger) DeleteMessage(_ context.Context, channelID, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := channelID + "/" + messageID
	if _, ok := m.messages[key]; !ok {
		return fmt.Errorf("discord delete: %w", ErrMessageNotFound)
	}
	m.deletes++
	delete(m.messages, key)
	return nil
}

func (m *fakeMessenger) live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

// removeOutOfBand simulates a moderator deleting the message in the client.
func (m *fakeMessenger) removeOutOfBand(channelID, messageID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.messages, channelID+"/"+messageID)
}

type staticResolver map[string]LeagueContext

func (r staticResolver) Resolve(key string) (LeagueContext, bool) {
	lc, ok := r[key]
	return lc, ok
}

type failingArchiveRepository struct {
	seasonarchive.Repository
	err error
}

func (r failingArchiveRepository) CreateOnce(context.Context, seasonarchive.Archive) (seasonarchive.Archive, bool, error) {
	return seasonarchive.Archive{}, false, r.err
}
