package query

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

// --- Mocks ---

// fakeStream plays back a fixed chunk sequence, then finalErr (io.EOF by
// default). recvCount tracks how far the consumer got.
type fakeStream struct {
	chunks    []string
	finalErr  error
	recvCount int
	closed    bool
}

func (f *fakeStream) Recv() (string, error) {
	if f.recvCount >= len(f.chunks) {
		if f.finalErr != nil {
			return "", f.finalErr
		}
		return "", io.EOF
	}
	chunk := f.chunks[f.recvCount]
	f.recvCount++
	return chunk, nil
}

func (f *fakeStream) Close() {
	f.closed = true
}

func drain(t *testing.T, s domain.TokenStream) []string {
	t.Helper()
	var out []string
	for {
		chunk, err := s.Recv()
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("unexpected stream error: %v", err)
		}
		out = append(out, chunk)
	}
}

// --- StreamNormalizer tests ---

func TestStreamNormalizer_ShortCircuit(t *testing.T) {
	upstream := &fakeStream{chunks: []string{"抱歉，", "未检索到", "相关信息。", "后面还有很多内容"}}
	n := NewStreamNormalizer(upstream, 120)

	chunk, err := n.Recv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chunk != NoResultResponse {
		t.Errorf("got %q, want NoResultResponse", chunk)
	}
	if !upstream.closed {
		t.Error("upstream must be closed on short circuit")
	}
	// "未检索到相关信息" completes on the third chunk; the fourth is never pulled.
	if upstream.recvCount != 3 {
		t.Errorf("expected 3 upstream reads, got %d", upstream.recvCount)
	}
	if _, err := n.Recv(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF after short circuit, got %v", err)
	}
}

func TestStreamNormalizer_PassthroughAfterProbe(t *testing.T) {
	prefix := strings.Repeat("答", 120)
	upstream := &fakeStream{chunks: []string{prefix[:30], prefix[30:], "之后的内容", "原样透传"}}
	n := NewStreamNormalizer(upstream, 120)

	got := drain(t, n)
	if len(got) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %v", len(got), got)
	}
	if got[0] != prefix {
		t.Errorf("probe buffer must flush as one chunk, got %q", got[0])
	}
	if got[1] != "之后的内容" || got[2] != "原样透传" {
		t.Errorf("post-probe chunks must pass through verbatim, got %v", got[1:])
	}
}

func TestStreamNormalizer_ProbeCountsRunes(t *testing.T) {
	// 60 CJK runes are far fewer than 120 bytes; the window must count
	// characters, not bytes, so this stays inside the probe.
	upstream := &fakeStream{chunks: []string{strings.Repeat("字", 60)}}
	n := NewStreamNormalizer(upstream, 120)

	got := drain(t, n)
	if len(got) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(got))
	}
	if got[0] != strings.Repeat("字", 60) {
		t.Errorf("got %q", got[0])
	}
}

func TestStreamNormalizer_ShortNaturalCompletion(t *testing.T) {
	upstream := &fakeStream{chunks: []string{"是的，", "支持该功能。"}}
	n := NewStreamNormalizer(upstream, 120)

	got := drain(t, n)
	if len(got) != 1 {
		t.Fatalf("expected 1 chunk, got %d: %v", len(got), got)
	}
	if got[0] != "是的，支持该功能。" {
		t.Errorf("got %q", got[0])
	}
}

func TestStreamNormalizer_EmptyCompletionNormalized(t *testing.T) {
	upstream := &fakeStream{chunks: []string{"  ", "\n"}}
	n := NewStreamNormalizer(upstream, 120)

	got := drain(t, n)
	if len(got) != 1 || got[0] != NoResultResponse {
		t.Errorf("blank stream must normalize to NoResultResponse, got %v", got)
	}
}

func TestStreamNormalizer_ErrorWhileProbing(t *testing.T) {
	upstream := &fakeStream{chunks: []string{"部分输出"}, finalErr: errors.New("connection reset")}
	n := NewStreamNormalizer(upstream, 120)

	_, err := n.Recv()
	if err == nil || err.Error() != "connection reset" {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if _, err := n.Recv(); !errors.Is(err, io.EOF) {
		t.Errorf("stream must be terminal after error, got %v", err)
	}
}

func TestStreamNormalizer_ErrorAfterPassthrough(t *testing.T) {
	upstream := &fakeStream{
		chunks:   []string{strings.Repeat("a", 120), "more"},
		finalErr: errors.New("stream broke"),
	}
	n := NewStreamNormalizer(upstream, 120)

	if _, err := n.Recv(); err != nil { // probe flush
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := n.Recv(); err != nil { // passthrough chunk
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := n.Recv()
	if err == nil || err.Error() != "stream broke" {
		t.Errorf("expected upstream error, got %v", err)
	}
}

func TestStreamNormalizer_Close(t *testing.T) {
	upstream := &fakeStream{chunks: []string{"未读取的内容"}}
	n := NewStreamNormalizer(upstream, 120)

	n.Close()
	if !upstream.closed {
		t.Error("Close must propagate upstream")
	}
	if _, err := n.Recv(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF after Close, got %v", err)
	}
}

// --- Static stream tests ---

func TestStaticStream(t *testing.T) {
	s := newStaticStream(NoResultResponse)

	chunk, err := s.Recv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chunk != NoResultResponse {
		t.Errorf("got %q", chunk)
	}
	if _, err := s.Recv(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

// --- AnswerStream tests ---

func TestAnswerStream_BlankInput(t *testing.T) {
	svc := newTestService(&mockRetriever{}, &mockChat{}, nil, testSettings())

	got := drain(t, svc.AnswerStream(context.Background(), []string{"kb-1"}, "   "))
	if len(got) != 1 || got[0] != NoResultResponse {
		t.Errorf("got %v, want single NoResultResponse chunk", got)
	}
}

func TestAnswerStream_NoEffectiveHit(t *testing.T) {
	svc := newTestService(&mockRetriever{}, &mockChat{}, nil, testSettings())

	got := drain(t, svc.AnswerStream(context.Background(), []string{"kb-1"}, "没有任何命中的问题？"))
	if len(got) != 1 || got[0] != NoResultResponse {
		t.Errorf("got %v, want single NoResultResponse chunk", got)
	}
}

func TestAnswerStream_StartFailure(t *testing.T) {
	question := "流式启动失败怎么办？"
	retriever := &mockRetriever{results: map[string][]domain.Document{
		question: docs("相关文档"),
	}}
	chat := &mockChat{streamErr: errors.New("provider down")}
	svc := newTestService(retriever, chat, nil, testSettings())

	got := drain(t, svc.AnswerStream(context.Background(), []string{"kb-1"}, question))
	if len(got) != 1 || got[0] != StreamErrorResponse {
		t.Errorf("got %v, want single StreamErrorResponse chunk", got)
	}
}

func TestAnswerStream_NormalizesModelStream(t *testing.T) {
	question := "流式回答会被探测吗？"
	retriever := &mockRetriever{results: map[string][]domain.Document{
		question: docs("相关文档"),
	}}
	upstream := &fakeStream{chunks: []string{"很抱歉，根据资料", "无法根据提供内容回答", "。"}}
	chat := &mockChat{stream: upstream}
	svc := newTestService(retriever, chat, nil, testSettings())

	got := drain(t, svc.AnswerStream(context.Background(), []string{"kb-1"}, question))
	if len(got) != 1 || got[0] != NoResultResponse {
		t.Errorf("got %v, want single NoResultResponse chunk", got)
	}
	if !upstream.closed {
		t.Error("model stream must be closed on short circuit")
	}
}
