package endpoint

import (
	"bytes"
	"context"
	"errors"
	"io"
)

// recordDelimiter terminates every record in a streamed response body.
const recordDelimiter = '\n'

// DecodeFunc turns one complete record into text. The record slice is only
// valid for the duration of the call.
type DecodeFunc func(record []byte) (string, error)

// StreamStats summarizes one decoded stream.
type StreamStats struct {
	// Chunks is the number of chunks received from the transport.
	Chunks int

	// Bytes is the total number of bytes received.
	Bytes int

	// Records is the number of records decoded.
	Records int

	// Discarded is the number of trailing bytes dropped at end of stream.
	Discarded int
}

// Decoder frames a ChunkStream into newline-delimited records and decodes
// them one at a time. It reads from the stream only when no complete record
// is buffered.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	stream ChunkStream
	decode DecodeFunc
	strict bool

	// buf[off:] holds bytes received but not yet cut into a record.
	buf []byte
	off int

	stats  StreamStats
	err    error
	closed bool
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// StrictFraming makes a stream that ends with undelimited bytes fail with a
// *FramingError instead of silently dropping them.
func StrictFraming(strict bool) DecoderOption {
	return func(d *Decoder) {
		d.strict = strict
	}
}

// NewDecoder returns a Decoder reading chunks from stream and decoding each
// record with decode.
func NewDecoder(stream ChunkStream, decode DecodeFunc, opts ...DecoderOption) *Decoder {
	d := &Decoder{
		stream: stream,
		decode: decode,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Next returns the next decoded record. It returns io.EOF once every
// complete record has been returned and the stream is exhausted.
//
// Any other error is terminal: a transport error from Recv is returned
// unchanged, a codec failure as *DecodeError, and leftover bytes under
// strict framing as *FramingError. Later calls return the same error.
func (d *Decoder) Next(ctx context.Context) (string, error) {
	if d.err != nil {
		return "", d.err
	}

	for {
		if record, ok := d.cut(); ok {
			// Keep-alive blank lines carry no record.
			if len(record) == 0 {
				continue
			}

			text, err := d.decode(record)
			if err != nil {
				return "", d.fail(&DecodeError{
					Record: bytes.Clone(record),
					Err:    err,
				})
			}

			d.stats.Records++
			return text, nil
		}

		if err := ctx.Err(); err != nil {
			return "", d.fail(err)
		}

		chunk, err := d.stream.Recv()
		if errors.Is(err, io.EOF) {
			return "", d.finish()
		}
		if err != nil {
			return "", d.fail(err)
		}

		d.stats.Chunks++
		d.stats.Bytes += len(chunk)
		d.fill(chunk)
	}
}

// Stats returns counters for the records decoded so far.
func (d *Decoder) Stats() StreamStats {
	return d.stats
}

// Close releases the residual buffer and closes the underlying stream.
// Close is idempotent; Next returns io.EOF after Close unless the decoder
// had already failed.
func (d *Decoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true

	d.release()
	if d.err == nil {
		d.err = io.EOF
	}
	return d.stream.Close()
}

// cut removes the first complete record from the buffer. The returned slice
// aliases the buffer and is only valid until the next fill.
func (d *Decoder) cut() ([]byte, bool) {
	i := bytes.IndexByte(d.buf[d.off:], recordDelimiter)
	if i < 0 {
		return nil, false
	}

	record := d.buf[d.off : d.off+i]
	d.off += i + 1

	return bytes.TrimSuffix(record, []byte{'\r'}), true
}

// fill appends chunk to the residual bytes, compacting consumed records out
// of the front of the buffer first.
func (d *Decoder) fill(chunk []byte) {
	if d.off > 0 {
		n := copy(d.buf, d.buf[d.off:])
		d.buf = d.buf[:n]
		d.off = 0
	}
	d.buf = append(d.buf, chunk...)
}

// finish handles end of stream: trailing bytes without a delimiter are
// dropped, or reported under strict framing.
func (d *Decoder) finish() error {
	residual := d.buf[d.off:]
	d.stats.Discarded = len(residual)

	truncated := len(bytes.TrimSpace(residual)) > 0
	if d.strict && truncated {
		return d.fail(&FramingError{Residual: d.stats.Discarded})
	}
	return d.fail(io.EOF)
}

// fail records a terminal error and drops whatever is still buffered.
func (d *Decoder) fail(err error) error {
	d.err = err
	d.release()
	return err
}

func (d *Decoder) release() {
	d.buf = nil
	d.off = 0
}
