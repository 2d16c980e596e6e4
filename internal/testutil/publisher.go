package testutil

import (
	"context"
	"sync"

	"github.com/nurpe/recycle-disposals/internal/events"
)

// MemoryPublisher records published events.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []events.Event
	Err    error
}

func (p *MemoryPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *MemoryPublisher) Close() error { return nil }

func (p *MemoryPublisher) Events() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

func (p *MemoryPublisher) Types() []events.Type {
	var types []events.Type
	for _, e := range p.Events() {
		types = append(types, e.Type)
	}
	return types
}
