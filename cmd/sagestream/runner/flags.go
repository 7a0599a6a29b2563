package runner

import "github.com/papercomputeco/sagestream/pkg/config"

// invocationFlags registers the flags shared by invoke and stream.
var invocationFlags = config.FlagSet{
	config.FlagEndpoint: {
		Name:        "endpoint",
		Shorthand:   "e",
		ViperKey:    "endpoint.name",
		Description: "SageMaker endpoint name",
	},
	config.FlagInferenceComponent: {
		Name:        "inference-component",
		Shorthand:   "i",
		ViperKey:    "endpoint.inference_component",
		Description: "Inference component on a multi-model endpoint",
	},
	config.FlagRegion: {
		Name:        "region",
		Shorthand:   "r",
		ViperKey:    "endpoint.region",
		Description: "AWS region (default: resolved by the AWS SDK)",
	},
	config.FlagCodec: {
		Name:        "codec",
		Shorthand:   "c",
		ViperKey:    "endpoint.codec",
		Description: "Payload codec (raw, tgi, token)",
	},
	config.FlagContentType: {
		Name:        "content-type",
		ViperKey:    "endpoint.content_type",
		Description: "Request content type (default: from codec)",
	},
	config.FlagAccept: {
		Name:        "accept",
		ViperKey:    "endpoint.accept",
		Description: "Response content type (default: from codec)",
	},
	config.FlagStrictFraming: {
		Name:        "strict-framing",
		ViperKey:    "endpoint.strict_framing",
		Description: "Fail when a stream ends in the middle of a record",
	},
	config.FlagEventsProvider: {
		Name:        "events-provider",
		ViperKey:    "events.provider",
		Description: "Invocation event publisher (none, kafka)",
	},
	config.FlagEventsTopic: {
		Name:        "events-topic",
		ViperKey:    "events.topic",
		Description: "Kafka topic for invocation events",
	},
}
