package codec_test

import (
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/sagestream/pkg/codec"
)

var _ = Describe("Codec", func() {
	Describe("Raw", func() {
		var c *codec.Raw

		BeforeEach(func() {
			c = codec.NewRaw()
		})

		It("sends the prompt bytes verbatim", func() {
			payload, err := c.Encode("What is X?", codec.Params{})
			Expect(err).NotTo(HaveOccurred())
			Expect(payload.Body).To(Equal([]byte("What is X?")))
			Expect(payload.ContentType).To(Equal(codec.ContentTypeJSON))
		})

		It("ignores params", func() {
			payload, err := c.Encode("hi", codec.Params{"parameters": map[string]any{"max_new_tokens": 50}})
			Expect(err).NotTo(HaveOccurred())
			Expect(string(payload.Body)).To(Equal("hi"))
		})

		It("decodes the first generated_text", func() {
			text, err := c.Decode([]byte(`[{"generated_text": "Answer"}, {"generated_text": "Other"}]`))
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("Answer"))
		})

		It("keeps an empty generated_text", func() {
			text, err := c.Decode([]byte(`[{"generated_text": ""}]`))
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(BeEmpty())
		})

		DescribeTable("rejects malformed bodies",
			func(body string) {
				_, err := c.Decode([]byte(body))
				Expect(err).To(HaveOccurred())
			},
			Entry("not JSON", `not json`),
			Entry("object instead of array", `{"generated_text": "x"}`),
			Entry("empty array", `[]`),
			Entry("missing field", `[{"text": "x"}]`),
		)

		It("reports missing fields as ErrUnexpectedShape", func() {
			_, err := c.Decode([]byte(`[]`))
			Expect(errors.Is(err, codec.ErrUnexpectedShape)).To(BeTrue())
		})
	})

	Describe("TGI", func() {
		var c *codec.TGI

		BeforeEach(func() {
			c = codec.NewTGI()
		})

		It("merges params next to inputs", func() {
			payload, err := c.Encode("What is Sagemaker endpoints?", codec.Params{
				"parameters": map[string]any{"max_new_tokens": 50},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(payload.ContentType).To(Equal(codec.ContentTypeJSON))
			Expect(payload.Body).To(MatchJSON(`{
				"inputs": "What is Sagemaker endpoints?",
				"parameters": {"max_new_tokens": 50}
			}`))
		})

		It("encodes nil params", func() {
			payload, err := c.Encode("hello", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(payload.Body).To(MatchJSON(`{"inputs": "hello"}`))
		})

		It("lets the prompt win over an inputs param", func() {
			payload, err := c.Encode("real", codec.Params{"inputs": "shadowed"})
			Expect(err).NotTo(HaveOccurred())

			var body map[string]any
			Expect(json.Unmarshal(payload.Body, &body)).To(Succeed())
			Expect(body["inputs"]).To(Equal("real"))
		})

		It("fails on params that cannot be encoded", func() {
			_, err := c.Encode("x", codec.Params{"bad": make(chan int)})
			Expect(err).To(HaveOccurred())
		})

		DescribeTable("decodes records",
			func(record, expected string) {
				text, err := c.Decode([]byte(record))
				Expect(err).NotTo(HaveOccurred())
				Expect(text).To(Equal(expected))
			},
			Entry("outputs", `{"outputs": ["S"]}`, "S"),
			Entry("outputs with trailing whitespace", `{"outputs": ["age"]}  `, "age"),
			Entry("generated_text object", `{"generated_text": "whole"}`, "whole"),
			Entry("generated_text array", `[{"generated_text": "Answer"}]`, "Answer"),
		)

		It("rejects an unterminated record", func() {
			_, err := c.Decode([]byte(`{"outputs": ["partial"`))
			Expect(err).To(HaveOccurred())
		})

		It("rejects records without outputs", func() {
			_, err := c.Decode([]byte(`{"other": 1}`))
			Expect(err).To(MatchError(codec.ErrUnexpectedShape))
		})
	})

	Describe("Token", func() {
		var c *codec.Token

		BeforeEach(func() {
			c = codec.NewToken()
		})

		DescribeTable("decodes token records",
			func(record, expected string) {
				text, err := c.Decode([]byte(record))
				Expect(err).NotTo(HaveOccurred())
				Expect(text).To(Equal(expected))
			},
			Entry("plain", `{"token": {"id": 1, "text": "Sage", "special": false}}`, "Sage"),
			Entry("data prefixed", `data:{"token": {"id": 2, "text": "Maker"}}`, "Maker"),
			Entry("data prefixed with space", `data: {"token": {"id": 3, "text": "!"}}`, "!"),
			Entry("special token", `{"token": {"id": 0, "text": "</s>", "special": true}}`, ""),
			Entry("final summary record", `{"token": null, "generated_text": "SageMaker"}`, ""),
		)

		It("rejects records without a token", func() {
			_, err := c.Decode([]byte(`{"details": {}}`))
			Expect(err).To(MatchError(codec.ErrUnexpectedShape))
		})

		It("encodes like TGI", func() {
			payload, err := c.Encode("p", codec.Params{"stream": true})
			Expect(err).NotTo(HaveOccurred())
			Expect(payload.Body).To(MatchJSON(`{"inputs": "p", "stream": true}`))
		})
	})

	Describe("Funcs", func() {
		It("delegates to the wrapped functions", func() {
			c := codec.Funcs{
				EncodeFunc: func(prompt string, _ codec.Params) (codec.Payload, error) {
					return codec.Payload{Body: []byte("<" + prompt + ">"), ContentType: "text/plain"}, nil
				},
				DecodeFunc: func(record []byte) (string, error) {
					return string(record) + "!", nil
				},
			}

			payload, err := c.Encode("p", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(payload.Body)).To(Equal("<p>"))

			text, err := c.Decode([]byte("r"))
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("r!"))
		})
	})

	Describe("Lookup", func() {
		It("finds built-in codecs case-insensitively", func() {
			c, err := codec.Lookup(" TGI ")
			Expect(err).NotTo(HaveOccurred())
			Expect(c).To(BeAssignableToTypeOf(&codec.TGI{}))
		})

		It("returns fresh codecs that describe their content types", func() {
			for _, name := range codec.Names() {
				c, err := codec.Lookup(name)
				Expect(err).NotTo(HaveOccurred())

				described, ok := c.(codec.Described)
				Expect(ok).To(BeTrue(), "codec %s should describe its content types", name)
				Expect(described.ContentType()).To(Equal(codec.ContentTypeJSON))
				Expect(described.Accept()).To(Equal(codec.ContentTypeJSON))
			}
		})

		It("errors on unknown names", func() {
			_, err := codec.Lookup("nope")
			Expect(err).To(MatchError(ContainSubstring(`unknown codec "nope"`)))
		})

		It("lists names in order", func() {
			Expect(codec.Names()).To(Equal([]string{"raw", "tgi", "token"}))
		})
	})

	Describe("WithContentType", func() {
		It("declares every payload with the given content type", func() {
			c := codec.WithContentType(codec.NewRaw(), "text/plain")

			payload, err := c.Encode("hello", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(payload.ContentType).To(Equal("text/plain"))
			Expect(string(payload.Body)).To(Equal("hello"))

			described, ok := c.(codec.Described)
			Expect(ok).To(BeTrue())
			Expect(described.ContentType()).To(Equal("text/plain"))
			Expect(described.Accept()).To(Equal(codec.ContentTypeJSON))
		})

		It("keeps decoding with the wrapped codec", func() {
			c := codec.WithContentType(codec.NewTGI(), "application/x-text")
			text, err := c.Decode([]byte(`{"outputs": ["Sage"]}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("Sage"))
		})

		It("returns the codec unchanged for an empty content type", func() {
			raw := codec.NewRaw()
			Expect(codec.WithContentType(raw, "")).To(BeIdenticalTo(raw))
		})
	})
})
