package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"offline-chat-be/internal/pkg/logger"
	"offline-chat-be/internal/repository/migration"
	"offline-chat-be/internal/repository/unitofwork"
	"offline-chat-be/pkg/database"
	"offline-chat-be/pkg/events"
	"offline-chat-be/pkg/llm"

	"github.com/stretchr/testify/require"
)

func newTestFactory(t *testing.T) unitofwork.RepositoryFactory {
	t.Helper()

	db, err := database.NewInMemorySQLite()
	require.NoError(t, err)
	require.NoError(t, migration.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return unitofwork.NewRepositoryFactory(db)
}

var testLogger = logger.NewNopLogger()

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.EventType())
	}
	return types
}

// fakeClock hands out strictly increasing times.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Minute)
	return c.now
}

// fakeProvider answers from reply, or blocks until release is closed or the
// context is cancelled. With ignoreCancel it behaves like a backend that
// finishes the generation anyway.
type fakeProvider struct {
	mu           sync.Mutex
	reply        string
	err          error
	release      chan struct{}
	started      chan struct{}
	ignoreCancel bool
	received     [][]llm.Message
}

func (p *fakeProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	p.mu.Lock()
	p.received = append(p.received, history)
	release, started, ignoreCancel := p.release, p.started, p.ignoreCancel
	p.started = nil
	p.mu.Unlock()

	if started != nil {
		close(started)
	}
	if release != nil && ignoreCancel {
		<-release
	} else if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return p.reply, p.err
}

func (p *fakeProvider) lastMessages() []llm.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.received) == 0 {
		return nil
	}
	return p.received[len(p.received)-1]
}

type recordingAnalysis struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *recordingAnalysis) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *recordingAnalysis) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.payloads)
}
