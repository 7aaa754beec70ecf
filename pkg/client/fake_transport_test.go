package client

import (
	"context"
	"errors"
	"sync"
)

// fakeTransport answers Ask from result/err, optionally blocking until
// release is closed. ignoreCancel makes a blocked Ask finish anyway, like a
// response already on the wire.
type fakeTransport struct {
	mu           sync.Mutex
	result       *AskResult
	err          error
	release      chan struct{}
	started      chan struct{}
	ignoreCancel bool
	stopErr      error

	hits       map[string][]SearchHit
	searchGate chan struct{}

	stops       chan struct{}
	prompts     []string
	deleted     []string
	submissions []Submission
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{stops: make(chan struct{}, 8)}
}

func (f *fakeTransport) Ask(ctx context.Context, sub Submission) (*AskResult, error) {
	f.mu.Lock()
	f.submissions = append(f.submissions, sub)
	release, started, ignoreCancel := f.release, f.started, f.ignoreCancel
	f.started = nil
	f.mu.Unlock()

	if started != nil {
		close(started)
	}
	if release != nil {
		if ignoreCancel {
			<-release
		} else {
			select {
			case <-release:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result, f.err
}

func (f *fakeTransport) Stop(ctx context.Context) error {
	f.stops <- struct{}{}
	return f.stopErr
}

func (f *fakeTransport) RecordPrompt(ctx context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, text)
	return nil
}

func (f *fakeTransport) DeleteChat(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id == "missing" {
		return &APIError{StatusCode: 404, Message: "not found"}
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeTransport) DeleteCategory(ctx context.Context, kind CategoryKind, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, string(kind)+"/"+id)
	return nil
}

// Search answers from hits. A query of "slow" waits for searchGate.
func (f *fakeTransport) Search(ctx context.Context, query string) ([]SearchHit, error) {
	if query == "slow" && f.searchGate != nil {
		<-f.searchGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[query], nil
}

func (f *fakeTransport) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

var errNetwork = errors.New("connection refused")
