package eventstream

import "errors"

// ErrNilInvocationEvent is returned by publishers handed a nil event.
var ErrNilInvocationEvent = errors.New("nil invocation event")
