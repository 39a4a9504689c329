package query

import (
	"context"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

// Retriever is the similarity-search capability context is retrieved through.
// Implementations apply the minScore threshold themselves.
type Retriever interface {
	SimilaritySearch(
		ctx context.Context, query string, kbIDs []string, topK int, minScore float64,
	) ([]domain.Document, error)
}

// ChatModel generates answers, both single-shot and streamed.
type ChatModel interface {
	domain.ChatModel
	domain.StreamingChatModel
}

// ScopeRecorder records that the given knowledge bases were queried.
// Called once per request before retrieval; failures must not block it.
type ScopeRecorder interface {
	IncrementQuestionCounts(ctx context.Context, ids []string) error
}
