package engine_test

import (
	"context"
	"sync"

	"github.com/papercomputeco/pilotlight/pkg/eventstream"
	"github.com/papercomputeco/pilotlight/pkg/llm"
)

// fakeCompleter returns reply and records what it was sent.
type fakeCompleter struct {
	mu      sync.Mutex
	reply   string
	calls   [][]llm.Message
	during  func()
	release chan struct{}
}

func (f *fakeCompleter) Complete(_ context.Context, msgs []llm.Message) string {
	if f.during != nil {
		f.during()
	}
	if f.release != nil {
		<-f.release
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, msgs)
	return f.reply
}

func (f *fakeCompleter) Calls() [][]llm.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]llm.Message(nil), f.calls...)
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*eventstream.TurnAppendedEvent
}

func (p *recordingPublisher) PublishTurn(_ context.Context, ev *eventstream.TurnAppendedEvent) error {
	if ev == nil {
		return eventstream.ErrNilTurnEvent
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Events() []*eventstream.TurnAppendedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*eventstream.TurnAppendedEvent(nil), p.events...)
}
