package sagemaker

import "log/slog"

// Option configures a Transport.
type Option func(*Transport)

// WithLogger sets the logger used for event stream diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(t *Transport) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithCustomAttributes sets the opaque CustomAttributes header forwarded to
// the model container on every request.
func WithCustomAttributes(attrs string) Option {
	return func(t *Transport) {
		t.customAttributes = attrs
	}
}
