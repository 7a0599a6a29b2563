package cliui_test

import (
	"bytes"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/sagestream/pkg/cliui"
)

var _ = Describe("Step", func() {
	It("prints a success mark and returns nil", func() {
		var buf bytes.Buffer
		err := cliui.Step(&buf, "Invoking my-endpoint", func() error { return nil })
		Expect(err).NotTo(HaveOccurred())
		Expect(buf.String()).To(ContainSubstring("Invoking my-endpoint"))
		Expect(buf.String()).To(ContainSubstring(cliui.SuccessMark))
		Expect(buf.String()).To(HaveSuffix("\n"))
	})

	It("prints a fail mark and returns the error", func() {
		var buf bytes.Buffer
		boom := errors.New("throttled")
		err := cliui.Step(&buf, "Invoking my-endpoint", func() error { return boom })
		Expect(err).To(BeIdenticalTo(boom))
		Expect(buf.String()).To(ContainSubstring(cliui.FailMark))
	})
})

var _ = Describe("FormatDuration", func() {
	DescribeTable("formats durations",
		func(d time.Duration, expected string) {
			Expect(cliui.FormatDuration(d)).To(Equal(expected))
		},
		Entry("milliseconds", 12*time.Millisecond, "12ms"),
		Entry("seconds", 3200*time.Millisecond, "3.2s"),
	)
})

var _ = Describe("RenderMarkdown", func() {
	It("renders markdown text", func() {
		out, err := cliui.RenderMarkdown("# SageMaker\n\nAn **endpoint**.")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("SageMaker"))
		Expect(out).To(ContainSubstring("endpoint"))
	})
})

var _ = Describe("Mark", func() {
	It("marks success and failure", func() {
		Expect(cliui.Mark(nil)).To(Equal(cliui.SuccessMark))
		Expect(cliui.Mark(errors.New("boom"))).To(Equal(cliui.FailMark))
	})
})

var _ = Describe("StreamSummary", func() {
	It("reports counts and elapsed time", func() {
		line := cliui.StreamSummary{
			Endpoint: "my-endpoint",
			Records:  1,
			Chunks:   3,
			Bytes:    64,
			Elapsed:  250 * time.Millisecond,
		}.Render()

		Expect(line).To(ContainSubstring(cliui.SuccessMark))
		Expect(line).To(ContainSubstring("my-endpoint"))
		Expect(line).To(ContainSubstring("1 record · 3 chunks · 64 bytes · 250ms"))
		Expect(line).NotTo(ContainSubstring("discarded"))
	})

	It("reports discarded bytes and failures", func() {
		line := cliui.StreamSummary{
			Endpoint:  "my-endpoint",
			Records:   2,
			Discarded: 7,
			Err:       errors.New("decoding response"),
		}.Render()

		Expect(line).To(ContainSubstring(cliui.FailMark))
		Expect(line).To(ContainSubstring("7 bytes discarded"))
	})
})
