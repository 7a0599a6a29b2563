package eventstream_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/sagestream/pkg/eventstream"
)

var _ = Describe("Event", func() {
	It("marshals InvocationEvent with expected top-level keys", func() {
		now := time.Unix(1735689600, 0).UTC()
		event := eventstream.InvocationEvent{
			SchemaVersion: eventstream.SchemaVersionV1,
			EventType:     eventstream.EventTypeInvocationCompleted,
			EventID:       "evt_123",
			EmittedAt:     now,
			Endpoint: eventstream.EventEndpoint{
				Name:               "my-endpoint",
				InferenceComponent: "my-inference-component",
				Region:             "us-east-1",
				Codec:              "tgi",
			},
			RequestMeta: eventstream.RequestMeta{
				StartedAt:   now.Add(-2 * time.Second),
				CompletedAt: now,
				DurationMs:  2000,
				Streaming:   true,
			},
			Stream: &eventstream.StreamMeta{
				Chunks:  3,
				Bytes:   64,
				Records: 3,
			},
			Prompt:     "What is Sagemaker endpoints?",
			Parameters: map[string]any{"max_new_tokens": 50},
			Response:   "SageMaker",
		}

		payload, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(payload, &got)).To(Succeed())

		Expect(got).To(HaveKey("schema_version"))
		Expect(got).To(HaveKey("event_type"))
		Expect(got).To(HaveKey("event_id"))
		Expect(got).To(HaveKey("emitted_at"))
		Expect(got).To(HaveKey("endpoint"))
		Expect(got).To(HaveKey("request"))
		Expect(got).NotTo(HaveKey("request_meta"))
		Expect(got["request"]).To(HaveKey("duration_ms"))
		Expect(got["request"]).To(HaveKey("streaming"))
		Expect(got).To(HaveKey("stream"))
		Expect(got).To(HaveKey("prompt"))
		Expect(got).To(HaveKey("response"))
		Expect(got).NotTo(HaveKey("error"))
	})

	It("omits stream metadata for blocking invocations", func() {
		event := eventstream.NewInvocationEvent(eventstream.EventEndpoint{Name: "e", Codec: "raw"}, time.Now(), false)

		payload, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(payload)).NotTo(ContainSubstring(`"stream"`))
	})

	Describe("NewInvocationEvent", func() {
		It("stamps identity and timing", func() {
			started := time.Now().Add(-1500 * time.Millisecond)
			event := eventstream.NewInvocationEvent(eventstream.EventEndpoint{Name: "my-endpoint"}, started, true)

			Expect(event.SchemaVersion).To(Equal(eventstream.SchemaVersionV1))
			Expect(event.EventType).To(Equal(eventstream.EventTypeInvocationCompleted))
			Expect(event.EventID).NotTo(BeEmpty())
			Expect(event.Endpoint.Name).To(Equal("my-endpoint"))
			Expect(event.RequestMeta.Streaming).To(BeTrue())
			Expect(event.RequestMeta.DurationMs).To(BeNumerically(">=", 1500))
			Expect(event.RequestMeta.CompletedAt).To(Equal(event.EmittedAt))
		})

		It("generates unique event IDs", func() {
			a := eventstream.NewInvocationEvent(eventstream.EventEndpoint{}, time.Now(), false)
			b := eventstream.NewInvocationEvent(eventstream.EventEndpoint{}, time.Now(), false)
			Expect(a.EventID).NotTo(Equal(b.EventID))
		})
	})

	It("defines stable event constants", func() {
		Expect(eventstream.SchemaVersionV1).To(BeNumerically(">", 0))
		Expect(eventstream.EventTypeInvocationCompleted).To(Equal("sagestream.invocation.completed"))
	})

	It("provides ErrNilInvocationEvent for nil payload validation", func() {
		Expect(eventstream.ErrNilInvocationEvent).To(MatchError("nil invocation event"))
	})
})
