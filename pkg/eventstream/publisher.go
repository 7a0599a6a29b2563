package eventstream

import "context"

// Publisher ships invocation events to a backend. Implementations must be
// safe for concurrent use.
type Publisher interface {
	PublishInvocation(ctx context.Context, event *InvocationEvent) error
	Close() error
}
