// Package query implements the RAG question answering pipeline: query
// normalization and rewrite, adaptive search parameters, multi-candidate
// retrieval with hit validation, and answer synthesis in both single-shot
// and streamed form.
package query

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/metrics"
	"github.com/kailas-cloud/ragdex/internal/prompt"
)

// contextSeparator joins retrieved chunk texts into one context block.
const contextSeparator = "\n\n---\n\n"

// Service answers questions against a set of knowledge bases.
type Service struct {
	retriever Retriever
	chat      ChatModel
	scopes    ScopeRecorder
	invoker   StructuredInvoker
	settings  Settings
	logger    *zap.Logger
}

// New creates a query service.
func New(retriever Retriever, chat ChatModel, scopes ScopeRecorder, settings Settings, logger *zap.Logger) *Service {
	return &Service{
		retriever: retriever,
		chat:      chat,
		scopes:    scopes,
		settings:  settings,
		logger:    logger,
	}
}

// Answer runs the full pipeline and returns the normalized final answer.
// "No usable information" cases return NoResultResponse, not an error;
// only a failed synthesis call after successful retrieval is an error.
func (s *Service) Answer(ctx context.Context, kbIDs []string, question string) (string, error) {
	normalized := normalizeQuestion(question)
	if len(kbIDs) == 0 || normalized == "" {
		metrics.NoResultTotal.WithLabelValues("input").Inc()
		return NoResultResponse, nil
	}

	s.recordScopeAccess(ctx, kbIDs)

	qc := s.buildQueryContext(ctx, normalized)
	docs := s.retrieveRelevantDocs(ctx, qc, kbIDs)
	if !hasEffectiveHit(normalized, docs) {
		metrics.NoResultTotal.WithLabelValues("retrieval").Inc()
		return NoResultResponse, nil
	}

	userPrompt, err := prompt.QueryUser(buildContextBlock(docs), normalized)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrQueryFailed, err)
	}

	answer, err := s.chat.Complete(ctx, prompt.QuerySystem(), userPrompt)
	if err != nil {
		s.logger.Error("knowledge base query failed", zap.Strings("kb_ids", kbIDs), zap.Error(err))
		return "", fmt.Errorf("%w: %w", domain.ErrQueryFailed, err)
	}

	final := normalizeAnswer(answer)
	if final == NoResultResponse {
		metrics.NoResultTotal.WithLabelValues("answer").Inc()
	}
	s.logger.Info("knowledge base query answered", zap.Strings("kb_ids", kbIDs))
	return final, nil
}

// AnswerStream runs the pipeline and returns the answer as a normalized
// token stream. Pre-stream outcomes (blank input, no effective hit, chat
// start failure) come back as a single-chunk stream, so callers always
// get a stream to drain.
func (s *Service) AnswerStream(ctx context.Context, kbIDs []string, question string) domain.TokenStream {
	normalized := normalizeQuestion(question)
	if len(kbIDs) == 0 || normalized == "" {
		metrics.NoResultTotal.WithLabelValues("input").Inc()
		return newStaticStream(NoResultResponse)
	}

	s.recordScopeAccess(ctx, kbIDs)

	qc := s.buildQueryContext(ctx, normalized)
	docs := s.retrieveRelevantDocs(ctx, qc, kbIDs)
	if !hasEffectiveHit(normalized, docs) {
		metrics.NoResultTotal.WithLabelValues("retrieval").Inc()
		return newStaticStream(NoResultResponse)
	}

	userPrompt, err := prompt.QueryUser(buildContextBlock(docs), normalized)
	if err != nil {
		s.logger.Error("render user prompt failed", zap.Error(err))
		return newStaticStream(StreamErrorResponse)
	}

	upstream, err := s.chat.Stream(ctx, prompt.QuerySystem(), userPrompt)
	if err != nil {
		s.logger.Error("start answer stream failed", zap.Strings("kb_ids", kbIDs), zap.Error(err))
		return newStaticStream(StreamErrorResponse)
	}

	s.logger.Info("streaming knowledge base answer", zap.Strings("kb_ids", kbIDs))
	return NewStreamNormalizer(upstream, s.settings.StreamProbeChars)
}

// recordScopeAccess bumps question counters; a counting failure never
// blocks retrieval.
func (s *Service) recordScopeAccess(ctx context.Context, kbIDs []string) {
	if s.scopes == nil {
		return
	}
	if err := s.scopes.IncrementQuestionCounts(ctx, kbIDs); err != nil {
		s.logger.Warn("record question counts failed", zap.Strings("kb_ids", kbIDs), zap.Error(err))
	}
}

// buildQueryContext normalizes, rewrites, and resolves search parameters
// once per request. Candidates are [rewritten, normalized] with duplicates
// removed, first-seen order preserved. Parameters always come from the
// normalized question, not the rewrite.
func (s *Service) buildQueryContext(ctx context.Context, normalized string) queryContext {
	rewritten := s.rewriteQuestion(ctx, normalized)

	candidates := make([]string, 0, 2)
	for _, q := range []string{rewritten, normalized} {
		if !contains(candidates, q) {
			candidates = append(candidates, q)
		}
	}

	return queryContext{
		normalizedQuestion: normalized,
		candidates:         candidates,
		params:             s.resolveSearchParams(normalized),
	}
}

// rewriteQuestion asks the model for a retrieval-friendlier form of the
// question. Best-effort: disabled, blank, failed, or blank-output rewrites
// all fall back to the input unchanged.
func (s *Service) rewriteQuestion(ctx context.Context, question string) string {
	if !s.settings.RewriteEnabled || question == "" {
		metrics.QueryRewriteTotal.WithLabelValues("disabled").Inc()
		return question
	}

	rewritePrompt, err := prompt.Rewrite(question)
	if err != nil {
		metrics.QueryRewriteTotal.WithLabelValues("failed").Inc()
		s.logger.Warn("render rewrite prompt failed", zap.Error(err))
		return question
	}

	rewritten, err := s.chat.Complete(ctx, "", rewritePrompt)
	if err != nil {
		metrics.QueryRewriteTotal.WithLabelValues("failed").Inc()
		s.logger.Warn("query rewrite failed, searching with original question", zap.Error(err))
		return question
	}

	trimmed := strings.TrimSpace(rewritten)
	if trimmed == "" {
		metrics.QueryRewriteTotal.WithLabelValues("unchanged").Inc()
		return question
	}

	if trimmed == question {
		metrics.QueryRewriteTotal.WithLabelValues("unchanged").Inc()
	} else {
		metrics.QueryRewriteTotal.WithLabelValues("rewritten").Inc()
	}
	s.logger.Info("query rewritten",
		zap.String("origin", question),
		zap.String("rewritten", trimmed),
	)
	return trimmed
}

// retrieveRelevantDocs tries each candidate in order and returns the first
// result set that passes hit validation. Candidates are tried strictly
// sequentially: the rewritten form usually wins, and parallel probing
// would waste retrieval calls in that common case. A search failure for
// one candidate counts as "no hit" and the loop moves on.
func (s *Service) retrieveRelevantDocs(
	ctx context.Context, qc queryContext, kbIDs []string,
) []domain.Document {
	for _, candidate := range qc.candidates {
		if candidate == "" {
			continue
		}

		docs, err := s.retriever.SimilaritySearch(ctx, candidate, kbIDs, qc.params.TopK, qc.params.MinScore)
		if err != nil {
			metrics.RetrievalCandidatesTotal.WithLabelValues("error").Inc()
			s.logger.Warn("similarity search failed for candidate",
				zap.String("candidate", candidate), zap.Error(err))
			continue
		}

		s.logger.Info("retrieval candidate tried",
			zap.String("candidate", candidate), zap.Int("hits", len(docs)))

		if hasEffectiveHit(candidate, docs) {
			metrics.RetrievalCandidatesTotal.WithLabelValues("hit").Inc()
			return docs
		}
		metrics.RetrievalCandidatesTotal.WithLabelValues("miss").Inc()
	}
	return nil
}

func buildContextBlock(docs []domain.Document) string {
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}
	return strings.Join(texts, contextSeparator)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
