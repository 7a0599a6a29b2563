// Package nop provides the publisher used when events.provider is "none".
package nop

import (
	"context"
	"sync/atomic"

	"github.com/papercomputeco/sagestream/pkg/eventstream"
)

// Publisher accepts invocation events and drops them, counting what it saw.
type Publisher struct {
	published atomic.Int64
}

func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishInvocation rejects nil events and drops the rest.
func (p *Publisher) PublishInvocation(_ context.Context, event *eventstream.InvocationEvent) error {
	if event == nil {
		return eventstream.ErrNilInvocationEvent
	}

	p.published.Add(1)
	return nil
}

// Published reports how many events were accepted.
func (p *Publisher) Published() int64 {
	return p.published.Load()
}

func (p *Publisher) Close() error {
	return nil
}
