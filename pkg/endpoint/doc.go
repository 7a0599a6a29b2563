// Package endpoint invokes a hosted model-serving endpoint through a
// caller-supplied Transport, either as one blocking request/response
// exchange or as a lazily decoded stream of text fragments.
//
// The streaming path frames the transport's byte chunks into
// newline-delimited records, decodes each complete record with the
// endpoint's codec, and yields the result before reading further:
//
//	┌──────────────────┐   ┌──────────────────┐   ┌────────────┐
//	│ ChunkStream.Recv │──▶│ residual buffer  │──▶│ codec      │──▶ yield
//	└──────────────────┘   │ (cut at '\n')    │   │ .Decode    │
//	                       └──────────────────┘   └────────────┘
//
// A record split across chunks is decoded once, after its bytes are
// reassembled. Bytes left without a trailing newline when the stream ends
// are dropped unless strict framing is enabled.
package endpoint
