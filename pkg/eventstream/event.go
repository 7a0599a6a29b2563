package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeInvocationCompleted is emitted after an endpoint invocation ends,
	// successfully or not.
	EventTypeInvocationCompleted = "sagestream.invocation.completed"
)

// InvocationEvent is a transport-neutral event payload for one endpoint
// invocation.
type InvocationEvent struct {
	SchemaVersion int            `json:"schema_version"`
	EventType     string         `json:"event_type"`
	EventID       string         `json:"event_id"`
	EmittedAt     time.Time      `json:"emitted_at"`
	Endpoint      EventEndpoint  `json:"endpoint"`
	RequestMeta   RequestMeta    `json:"request"`
	Stream        *StreamMeta    `json:"stream,omitempty"`
	Prompt        string         `json:"prompt"`
	Parameters    map[string]any `json:"parameters,omitempty"`
	Response      string         `json:"response"`
	Error         string         `json:"error,omitempty"`
}

// EventEndpoint identifies the endpoint that served the invocation.
type EventEndpoint struct {
	Name               string `json:"name"`
	InferenceComponent string `json:"inference_component,omitempty"`
	Region             string `json:"region,omitempty"`
	Codec              string `json:"codec"`
}

// RequestMeta captures request lifecycle metadata for the event.
type RequestMeta struct {
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DurationMs  int64     `json:"duration_ms"`
	Streaming   bool      `json:"streaming"`
}

// StreamMeta carries the framing counters of a streamed invocation.
type StreamMeta struct {
	Chunks    int `json:"chunks"`
	Bytes     int `json:"bytes"`
	Records   int `json:"records"`
	Discarded int `json:"discarded"`
}

// NewInvocationEvent creates an event with a fresh ID, stamped now, whose
// request metadata spans startedAt to now.
func NewInvocationEvent(endpoint EventEndpoint, startedAt time.Time, streaming bool) *InvocationEvent {
	now := time.Now().UTC()
	return &InvocationEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeInvocationCompleted,
		EventID:       uuid.NewString(),
		EmittedAt:     now,
		Endpoint:      endpoint,
		RequestMeta: RequestMeta{
			StartedAt:   startedAt.UTC(),
			CompletedAt: now,
			DurationMs:  now.Sub(startedAt).Milliseconds(),
			Streaming:   streaming,
		},
	}
}
