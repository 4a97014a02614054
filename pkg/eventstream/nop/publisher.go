// Package nop provides the publisher used when turn events are disabled.
package nop

import (
	"context"
	"sync/atomic"

	"github.com/papercomputeco/pilotlight/pkg/eventstream"
)

// Publisher discards turn events, counting the ones it accepted.
type Publisher struct {
	published atomic.Int64
}

func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishTurn drops event. Nil events are still rejected so callers see the
// same contract as the broker-backed publishers.
func (p *Publisher) PublishTurn(_ context.Context, event *eventstream.TurnAppendedEvent) error {
	if event == nil {
		return eventstream.ErrNilTurnEvent
	}
	p.published.Add(1)
	return nil
}

// Published returns how many events were accepted.
func (p *Publisher) Published() int64 {
	return p.published.Load()
}

func (p *Publisher) Close() error {
	return nil
}
