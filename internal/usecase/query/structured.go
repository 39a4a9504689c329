package query

import (
	"context"

	"github.com/kailas-cloud/ragdex/internal/metrics"
	"github.com/kailas-cloud/ragdex/internal/prompt"
)

// StructuredAnswer is the typed form of a knowledge-base answer.
type StructuredAnswer struct {
	Answer    string   `json:"answer"`
	KeyPoints []string `json:"key_points"`
}

// StructuredInvoker extracts a typed JSON value from the model.
type StructuredInvoker interface {
	Invoke(ctx context.Context, systemPrompt, userPrompt string, out any) error
}

// WithStructured enables the structured answer path.
func (s *Service) WithStructured(inv StructuredInvoker) *Service {
	s.invoker = inv
	return s
}

// AnswerStructured runs the retrieval pipeline and asks the model for a
// JSON-shaped answer. The pre-flight and retrieval behavior matches
// Answer; only the synthesis call differs.
func (s *Service) AnswerStructured(ctx context.Context, kbIDs []string, question string) (StructuredAnswer, error) {
	normalized := normalizeQuestion(question)
	if len(kbIDs) == 0 || normalized == "" {
		metrics.NoResultTotal.WithLabelValues("input").Inc()
		return StructuredAnswer{Answer: NoResultResponse}, nil
	}

	s.recordScopeAccess(ctx, kbIDs)

	qc := s.buildQueryContext(ctx, normalized)
	docs := s.retrieveRelevantDocs(ctx, qc, kbIDs)
	if !hasEffectiveHit(normalized, docs) {
		metrics.NoResultTotal.WithLabelValues("retrieval").Inc()
		return StructuredAnswer{Answer: NoResultResponse}, nil
	}

	userPrompt, err := prompt.QueryUser(buildContextBlock(docs), normalized)
	if err != nil {
		return StructuredAnswer{}, err
	}

	var out StructuredAnswer
	if err := s.invoker.Invoke(ctx, prompt.QueryStructuredSystem(), userPrompt, &out); err != nil {
		return StructuredAnswer{}, err
	}

	out.Answer = normalizeAnswer(out.Answer)
	if out.Answer == NoResultResponse {
		metrics.NoResultTotal.WithLabelValues("answer").Inc()
		out.KeyPoints = nil
	}
	return out, nil
}
