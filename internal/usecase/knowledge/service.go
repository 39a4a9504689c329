// Package knowledge handles knowledge-base lifecycle: creation, listing,
// and deletion with cascading chunk cleanup.
package knowledge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

// Service handles knowledge-base CRUD operations.
type Service struct {
	repo   Repository
	chunks ChunkPurger
}

// New creates a knowledge-base service.
func New(repo Repository, chunks ChunkPurger) *Service {
	return &Service{repo: repo, chunks: chunks}
}

// Create validates and stores a new knowledge base.
func (s *Service) Create(ctx context.Context, name, description string) (domain.KnowledgeBase, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.KnowledgeBase{}, fmt.Errorf("%w: knowledge base name is required", domain.ErrEmptyContent)
	}

	kb := domain.KnowledgeBase{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, kb); err != nil {
		return domain.KnowledgeBase{}, fmt.Errorf("create knowledge base: %w", err)
	}
	return kb, nil
}

// Get retrieves a knowledge base by id.
func (s *Service) Get(ctx context.Context, id string) (domain.KnowledgeBase, error) {
	kb, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.KnowledgeBase{}, fmt.Errorf("get knowledge base: %w", err)
	}
	return kb, nil
}

// List returns all knowledge bases.
func (s *Service) List(ctx context.Context) ([]domain.KnowledgeBase, error) {
	kbs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list knowledge bases: %w", err)
	}
	return kbs, nil
}

// Delete removes a knowledge base and every chunk indexed under it.
// The metadata is removed first so a failed chunk purge cannot leave a
// base that looks intact but answers from half-deleted content.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete knowledge base: %w", err)
	}
	if err := s.chunks.DeleteByKnowledgeBase(ctx, id); err != nil {
		return fmt.Errorf("purge knowledge base chunks: %w", err)
	}
	return nil
}

// Resolve loads the bases for the given ids, verifying each one exists.
// Query endpoints call this before retrieval so an unknown id fails fast.
func (s *Service) Resolve(ctx context.Context, ids []string) ([]domain.KnowledgeBase, error) {
	kbs, err := s.repo.GetMulti(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve knowledge bases: %w", err)
	}
	return kbs, nil
}
