package query

import (
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/metrics"
)

// StreamNormalizer wraps a live answer stream and suppresses long
// "no information" responses before they leak to the client. It buffers
// the first probeWindow characters; if the buffered prefix matches a
// no-result phrase the stream is cut off and replaced with the fixed
// no-result reply, otherwise the buffer is flushed and every later chunk
// passes through untouched.
//
// A normalizer serves exactly one stream and is driven by a single
// reader, so plain sticky fields are enough: passthrough and completed
// only ever flip from false to true.
type StreamNormalizer struct {
	upstream    domain.TokenStream
	probeWindow int

	buf         strings.Builder
	passthrough bool
	completed   bool
}

var _ domain.TokenStream = (*StreamNormalizer)(nil)

// NewStreamNormalizer wraps upstream with probe-buffer normalization.
func NewStreamNormalizer(upstream domain.TokenStream, probeWindow int) *StreamNormalizer {
	return &StreamNormalizer{upstream: upstream, probeWindow: probeWindow}
}

// Recv returns the next normalized chunk, io.EOF on completion, or the
// upstream error unchanged. Chunks are forwarded in arrival order.
func (n *StreamNormalizer) Recv() (string, error) {
	if n.completed {
		return "", io.EOF
	}

	if n.passthrough {
		chunk, err := n.upstream.Recv()
		if err != nil {
			n.completed = true
			return "", err
		}
		return chunk, nil
	}

	// Probing: accumulate until a verdict.
	for {
		chunk, err := n.upstream.Recv()
		if err != nil {
			n.completed = true
			if errors.Is(err, io.EOF) {
				// The answer ended inside the probe window. Short
				// no-result replies land here, so run the buffered text
				// through the same normalization as sync answers.
				return normalizeAnswer(n.buf.String()), nil
			}
			return "", err
		}

		n.buf.WriteString(chunk)
		text := n.buf.String()

		if isNoResultLike(text) {
			// Unsubscribe before signaling completion so no further
			// upstream chunk can race past the verdict.
			n.upstream.Close()
			n.completed = true
			metrics.StreamShortCircuitTotal.Inc()
			metrics.NoResultTotal.WithLabelValues("stream_probe").Inc()
			return NoResultResponse, nil
		}

		if utf8.RuneCountInString(text) >= n.probeWindow {
			n.passthrough = true
			n.buf.Reset()
			return text, nil
		}
	}
}

// Close cancels the stream on behalf of the consumer: the upstream
// subscription is released and no further chunks are emitted.
func (n *StreamNormalizer) Close() {
	n.completed = true
	n.upstream.Close()
}

// staticStream emits one fixed message and completes. Used for outcomes
// decided before any model streaming starts.
type staticStream struct {
	msg  string
	done bool
}

func newStaticStream(msg string) *staticStream {
	return &staticStream{msg: msg}
}

func (s *staticStream) Recv() (string, error) {
	if s.done {
		return "", io.EOF
	}
	s.done = true
	return s.msg, nil
}

func (s *staticStream) Close() {
	s.done = true
}
