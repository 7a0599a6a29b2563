package config

import "slices"

const (
	defaultCodec = "tgi"

	// EventsProviderNone disables invocation event publishing.
	EventsProviderNone = "none"

	// EventsProviderKafka publishes invocation events to a Kafka topic.
	EventsProviderKafka = "kafka"

	defaultEventsTopic = "sagestream.invocations"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Endpoint: EndpointConfig{
			Codec: defaultCodec,
		},
		Events: EventsConfig{
			Provider: EventsProviderNone,
			Topic:    defaultEventsTopic,
		},
	}
}

// EventsProviders returns the recognized events.provider values.
func EventsProviders() []string {
	return []string{EventsProviderNone, EventsProviderKafka}
}

// IsValidEventsProvider reports whether name is a recognized events provider.
func IsValidEventsProvider(name string) bool {
	return slices.Contains(EventsProviders(), name)
}
