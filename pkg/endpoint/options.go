package endpoint

import "log/slog"

// Option configures an Invoker.
type Option func(*Invoker)

// WithLogger sets the logger used for invocation debug logs.
func WithLogger(l *slog.Logger) Option {
	return func(inv *Invoker) {
		if l != nil {
			inv.logger = l
		}
	}
}

// WithStrictFraming makes streams that end mid-record fail with a
// *FramingError instead of dropping the partial record.
func WithStrictFraming() Option {
	return func(inv *Invoker) {
		inv.strict = true
	}
}

// WithStreamObserver registers fn to receive the counters of every stream
// once it ends, whether it completed, failed, or was abandoned.
func WithStreamObserver(fn func(StreamStats)) Option {
	return func(inv *Invoker) {
		inv.observer = fn
	}
}
