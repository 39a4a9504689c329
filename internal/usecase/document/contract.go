package document

import (
	"context"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

// ChunkStore persists chunks and their vector index entries.
type ChunkStore interface {
	Put(ctx context.Context, chunks []domain.Chunk) error
	DeleteByDocument(ctx context.Context, kbID, docID string) (int, error)
}

// ScopeCatalog verifies the target knowledge base and tracks its document count.
type ScopeCatalog interface {
	Get(ctx context.Context, id string) (domain.KnowledgeBase, error)
	AddDocumentCount(ctx context.Context, id string, delta int) error
}
