package endpoint_test

import (
	"context"
	"errors"
	"io"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/sagestream/pkg/codec"
	"github.com/papercomputeco/sagestream/pkg/endpoint"
	testutils "github.com/papercomputeco/sagestream/pkg/utils/test"
)

// drain reads every unit from d until it stops, returning the units and the
// terminal error (nil for a clean io.EOF).
func drain(d *endpoint.Decoder) ([]string, error) {
	var units []string
	for {
		text, err := d.Next(context.Background())
		if err == io.EOF {
			return units, nil
		}
		if err != nil {
			return units, err
		}
		units = append(units, text)
	}
}

func decodeChunks(chunks [][]byte, opts ...endpoint.DecoderOption) ([]string, error) {
	d := endpoint.NewDecoder(testutils.NewMockChunkStream(chunks...), codec.NewTGI().Decode, opts...)
	defer d.Close()
	return drain(d)
}

var _ = Describe("Decoder", func() {
	Describe("Next", func() {
		It("decodes one record per chunk", func() {
			units, err := decodeChunks(testutils.StringChunks(
				`{"outputs": ["S"]}`+"\n",
				`{"outputs": ["age"]}`+"\n",
				`{"outputs": ["Maker"]}`+"\n",
			))
			Expect(err).NotTo(HaveOccurred())
			Expect(units).To(Equal([]string{"S", "age", "Maker"}))
		})

		It("reassembles a record split across chunks and decodes it once", func() {
			calls := 0
			decode := func(record []byte) (string, error) {
				calls++
				return codec.NewTGI().Decode(record)
			}

			stream := testutils.NewMockChunkStream(testutils.StringChunks(
				`{"outputs": ["Sa`,
				`ge"]}`+"\n",
			)...)
			d := endpoint.NewDecoder(stream, decode)

			units, err := drain(d)
			Expect(err).NotTo(HaveOccurred())
			Expect(units).To(Equal([]string{"Sage"}))
			Expect(calls).To(Equal(1))
		})

		It("decodes several records delivered in one chunk", func() {
			units, err := decodeChunks(testutils.StringChunks(
				`{"outputs": ["a"]}` + "\n" + `{"outputs": ["b"]}` + "\n" + `{"outputs": ["c"]}` + "\n",
			))
			Expect(err).NotTo(HaveOccurred())
			Expect(units).To(Equal([]string{"a", "b", "c"}))
		})

		It("drops a trailing partial record without error", func() {
			units, err := decodeChunks(testutils.StringChunks(
				`{"outputs": ["done"]}`+"\n",
				`{"outputs": ["partial"`,
			))
			Expect(err).NotTo(HaveOccurred())
			Expect(units).To(Equal([]string{"done"}))
		})

		It("emits nothing for a stream that is only a partial record", func() {
			units, err := decodeChunks(testutils.StringChunks(`{"outputs": ["partial"`))
			Expect(err).NotTo(HaveOccurred())
			Expect(units).To(BeEmpty())
		})

		It("handles an empty stream", func() {
			units, err := decodeChunks(nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(units).To(BeEmpty())
		})

		It("tolerates empty chunks", func() {
			units, err := decodeChunks(testutils.StringChunks(
				"", `{"outputs": ["x"]}`, "", "\n", "",
			))
			Expect(err).NotTo(HaveOccurred())
			Expect(units).To(Equal([]string{"x"}))
		})

		It("skips blank records", func() {
			units, err := decodeChunks(testutils.StringChunks(
				"\n\n" + `{"outputs": ["x"]}` + "\n\n\r\n" + `{"outputs": ["y"]}` + "\n",
			))
			Expect(err).NotTo(HaveOccurred())
			Expect(units).To(Equal([]string{"x", "y"}))
		})

		It("strips carriage returns before the delimiter", func() {
			var seen []string
			decode := func(record []byte) (string, error) {
				seen = append(seen, string(record))
				return string(record), nil
			}

			d := endpoint.NewDecoder(testutils.NewMockChunkStream(testutils.StringChunks("one\r\ntwo\n")...), decode)
			units, err := drain(d)
			Expect(err).NotTo(HaveOccurred())
			Expect(units).To(Equal([]string{"one", "two"}))
			Expect(seen).To(Equal([]string{"one", "two"}))
		})

		It("reads only as many chunks as the caller demands", func() {
			stream := testutils.NewMockChunkStream(testutils.StringChunks(
				`{"outputs": ["1"]}`+"\n",
				`{"outputs": ["2"]}`+"\n",
				`{"outputs": ["3"]}`+"\n",
			)...)
			d := endpoint.NewDecoder(stream, codec.NewTGI().Decode)

			text, err := d.Next(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("1"))
			Expect(stream.Received).To(Equal(1))

			text, err = d.Next(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("2"))
			Expect(stream.Received).To(Equal(2))
		})
	})

	Describe("chunk boundary invariance", func() {
		const body = `{"outputs": ["S"]}` + "\n" +
			`{"outputs": ["age"]}` + "\n" +
			"\n" +
			`{"outputs": ["Maker"]}` + "\n" +
			`{"outputs": ["tail"`

		expected := []string{"S", "age", "Maker"}

		It("yields the same units for every single split point", func() {
			for i := 0; i <= len(body); i++ {
				units, err := decodeChunks(testutils.StringChunks(body[:i], body[i:]))
				Expect(err).NotTo(HaveOccurred(), "split at %d", i)
				Expect(units).To(Equal(expected), "split at %d", i)
			}
		})

		It("yields the same units for every pair of split points", func() {
			for i := 0; i <= len(body); i++ {
				for j := i; j <= len(body); j++ {
					units, err := decodeChunks(testutils.StringChunks(body[:i], body[i:j], body[j:]))
					Expect(err).NotTo(HaveOccurred(), "split at %d,%d", i, j)
					Expect(units).To(Equal(expected), "split at %d,%d", i, j)
				}
			}
		})

		It("yields the same units when every byte is its own chunk", func() {
			chunks := make([][]byte, 0, len(body))
			for i := range len(body) {
				chunks = append(chunks, []byte{body[i]})
			}

			units, err := decodeChunks(chunks)
			Expect(err).NotTo(HaveOccurred())
			Expect(units).To(Equal(expected))
		})
	})

	Describe("strict framing", func() {
		It("reports trailing bytes as a FramingError", func() {
			units, err := decodeChunks(testutils.StringChunks(
				`{"outputs": ["ok"]}`+"\n",
				`{"outputs": ["partial"`,
			), endpoint.StrictFraming(true))

			Expect(units).To(Equal([]string{"ok"}))
			Expect(err).To(MatchError(endpoint.ErrTruncatedRecord))

			var framingErr *endpoint.FramingError
			Expect(errors.As(err, &framingErr)).To(BeTrue())
			Expect(framingErr.Residual).To(Equal(len(`{"outputs": ["partial"`)))
		})

		It("accepts a stream that ends on a delimiter", func() {
			units, err := decodeChunks(testutils.StringChunks(`{"outputs": ["ok"]}`+"\n"), endpoint.StrictFraming(true))
			Expect(err).NotTo(HaveOccurred())
			Expect(units).To(Equal([]string{"ok"}))
		})

		It("ignores trailing whitespace", func() {
			units, err := decodeChunks(testutils.StringChunks(`{"outputs": ["ok"]}`+"\n  "), endpoint.StrictFraming(true))
			Expect(err).NotTo(HaveOccurred())
			Expect(units).To(Equal([]string{"ok"}))
		})
	})

	Describe("failures", func() {
		It("stops at a malformed record after delivering earlier units", func() {
			units, err := decodeChunks(testutils.StringChunks(
				`{"outputs": ["good"]}`+"\n",
				`{"outputs": oops}`+"\n",
				`{"outputs": ["never"]}`+"\n",
			))

			Expect(units).To(Equal([]string{"good"}))
			Expect(err).To(MatchError(endpoint.ErrDecode))

			var decodeErr *endpoint.DecodeError
			Expect(errors.As(err, &decodeErr)).To(BeTrue())
			Expect(string(decodeErr.Record)).To(Equal(`{"outputs": oops}`))
		})

		It("keeps returning the terminal error", func() {
			d := endpoint.NewDecoder(
				testutils.NewMockChunkStream(testutils.StringChunks("bad\n", `{"outputs": ["x"]}`+"\n")...),
				codec.NewTGI().Decode,
			)

			_, err := d.Next(context.Background())
			Expect(err).To(MatchError(endpoint.ErrDecode))

			_, again := d.Next(context.Background())
			Expect(again).To(Equal(err))
		})

		It("returns transport errors unchanged", func() {
			boom := errors.New("connection reset")
			stream := testutils.NewMockChunkStream(testutils.StringChunks(`{"outputs": ["a"]}` + "\n")...)
			stream.EndErr = boom

			units, err := drain(endpoint.NewDecoder(stream, codec.NewTGI().Decode))
			Expect(units).To(Equal([]string{"a"}))
			Expect(err).To(BeIdenticalTo(boom))
		})

		It("stops on context cancellation before reading more", func() {
			stream := testutils.NewMockChunkStream(testutils.StringChunks(`{"outputs": ["a"]}` + "\n")...)
			d := endpoint.NewDecoder(stream, codec.NewTGI().Decode)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := d.Next(ctx)
			Expect(err).To(MatchError(context.Canceled))
			Expect(stream.Received).To(Equal(0))
		})
	})

	Describe("Close", func() {
		It("closes the stream once and ends the sequence", func() {
			stream := testutils.NewMockChunkStream(testutils.StringChunks(`{"outputs": ["a"]}` + "\n")...)
			d := endpoint.NewDecoder(stream, codec.NewTGI().Decode)

			Expect(d.Close()).To(Succeed())
			Expect(d.Close()).To(Succeed())
			Expect(stream.Closes).To(Equal(1))

			_, err := d.Next(context.Background())
			Expect(err).To(Equal(io.EOF))
			Expect(stream.Received).To(Equal(0))
		})
	})

	Describe("Stats", func() {
		It("counts chunks, bytes, records and discarded bytes", func() {
			chunks := testutils.StringChunks(`{"outputs": ["a"]}`+"\n"+`{"outp`, `uts": ["b"]}`+"\n", "tail")
			d := endpoint.NewDecoder(testutils.NewMockChunkStream(chunks...), codec.NewTGI().Decode)

			units, err := drain(d)
			Expect(err).NotTo(HaveOccurred())
			Expect(units).To(Equal([]string{"a", "b"}))

			total := 0
			for _, c := range chunks {
				total += len(c)
			}

			stats := d.Stats()
			Expect(stats.Chunks).To(Equal(3))
			Expect(stats.Bytes).To(Equal(total))
			Expect(stats.Records).To(Equal(2))
			Expect(stats.Discarded).To(Equal(len("tail")))
		})
	})
})
