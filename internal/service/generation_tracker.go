package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Generation is one tracked model call.
type Generation struct {
	Id      string
	cancel  context.CancelFunc
	stopped bool
	// preempted is set when a newer request replaced this one.
	preempted bool
}

// GenerationTracker holds the single in-flight generation. Starting a new
// one cancels the previous; a result is only accepted through Finish, which
// rejects stopped or superseded generations under the same lock Stop takes.
type GenerationTracker struct {
	mu      sync.Mutex
	current *Generation
}

func NewGenerationTracker() *GenerationTracker {
	return &GenerationTracker{}
}

func (t *GenerationTracker) Start(parent context.Context) (context.Context, *Generation) {
	ctx, cancel := context.WithCancel(parent)
	g := &Generation{Id: uuid.New().String(), cancel: cancel}

	t.mu.Lock()
	defer t.mu.Unlock()

	if prev := t.current; prev != nil {
		prev.preempted = true
		prev.cancel()
	}
	t.current = g
	return ctx, g
}

// Stop cancels the in-flight generation. It returns the stopped generation,
// or nil when nothing was running.
func (t *GenerationTracker) Stop() *Generation {
	t.mu.Lock()
	defer t.mu.Unlock()

	g := t.current
	if g == nil {
		return nil
	}
	g.stopped = true
	g.cancel()
	t.current = nil
	return g
}

// Finish releases g and reports whether its result may be committed.
func (t *GenerationTracker) Finish(g *Generation) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	defer g.cancel()
	if t.current == g {
		t.current = nil
	}
	return !g.stopped && !g.preempted
}

// InFlight returns the id of the running generation, or "".
func (t *GenerationTracker) InFlight() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		return ""
	}
	return t.current.Id
}
