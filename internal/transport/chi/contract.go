package chi

import (
	"context"

	"github.com/kailas-cloud/ragdex/internal/domain"
	healthuc "github.com/kailas-cloud/ragdex/internal/usecase/health"
	queryuc "github.com/kailas-cloud/ragdex/internal/usecase/query"
)

// KnowledgeService manages knowledge-base lifecycle.
type KnowledgeService interface {
	Create(ctx context.Context, name, description string) (domain.KnowledgeBase, error)
	Get(ctx context.Context, id string) (domain.KnowledgeBase, error)
	List(ctx context.Context) ([]domain.KnowledgeBase, error)
	Delete(ctx context.Context, id string) error
	// Resolve verifies every id exists and returns the bases in order.
	Resolve(ctx context.Context, ids []string) ([]domain.KnowledgeBase, error)
}

// DocumentService ingests and removes documents.
type DocumentService interface {
	Ingest(ctx context.Context, kbID, source, text string) (string, int, error)
	Delete(ctx context.Context, kbID, docID string) error
}

// AnswerService runs the question answering pipeline.
type AnswerService interface {
	Answer(ctx context.Context, kbIDs []string, question string) (string, error)
	AnswerStream(ctx context.Context, kbIDs []string, question string) domain.TokenStream
	AnswerStructured(ctx context.Context, kbIDs []string, question string) (queryuc.StructuredAnswer, error)
}

// HealthService aggregates component health checks.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}
