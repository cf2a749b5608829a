package testutil

import (
	"context"
	"sync"

	"github.com/dukex/leadflow/pkg/eventbus"
)

// RecordingPublisher keeps every published event in order.
type RecordingPublisher struct {
	mu     sync.Mutex
	Keys   []string
	Events []eventbus.Event
}

func (p *RecordingPublisher) Publish(_ context.Context, key string, event eventbus.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Keys = append(p.Keys, key)
	p.Events = append(p.Events, event)

	return nil
}

// Published returns a copy of the recorded events.
func (p *RecordingPublisher) Published() []eventbus.Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]eventbus.Event(nil), p.Events...)
}
