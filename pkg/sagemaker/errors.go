package sagemaker

import "errors"

// ErrNoEventStream is returned when a streaming invocation succeeds without
// an event stream attached to its output.
var ErrNoEventStream = errors.New("response carried no event stream")
