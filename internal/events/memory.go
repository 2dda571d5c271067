package events

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Recorded is one captured event.
type Recorded struct {
	MarketID uuid.UUID
	Type     string
	Data     interface{}
}

// MemoryPublisher captures events in memory. Used in tests to assert
// what a service published without a running broker.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Recorded
}

var _ Publisher = (*MemoryPublisher)(nil)

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Publish(_ context.Context, marketID uuid.UUID, eventType string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, Recorded{MarketID: marketID, Type: eventType, Data: data})
	return nil
}

func (p *MemoryPublisher) Close() error { return nil }

// Events returns a copy of everything published so far.
func (p *MemoryPublisher) Events() []Recorded {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Recorded, len(p.events))
	copy(out, p.events)
	return out
}
