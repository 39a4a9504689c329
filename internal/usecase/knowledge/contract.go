package knowledge

import (
	"context"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

// Repository persists knowledge-base metadata.
type Repository interface {
	Create(ctx context.Context, kb domain.KnowledgeBase) error
	Get(ctx context.Context, id string) (domain.KnowledgeBase, error)
	GetMulti(ctx context.Context, ids []string) ([]domain.KnowledgeBase, error)
	List(ctx context.Context) ([]domain.KnowledgeBase, error)
	Delete(ctx context.Context, id string) error
}

// ChunkPurger removes indexed chunks scoped to one knowledge base.
type ChunkPurger interface {
	DeleteByKnowledgeBase(ctx context.Context, kbID string) error
}
