// Package document ingests raw text into a knowledge base: splitting,
// embedding, and indexing chunks, plus per-document deletion.
package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/repository/chunk"
)

// Settings tunes the text splitter.
type Settings struct {
	ChunkSize    int
	ChunkOverlap int
}

// Service ingests and removes documents.
type Service struct {
	chunks   ChunkStore
	scopes   ScopeCatalog
	embedder domain.Embedder
	settings Settings
	logger   *zap.Logger
}

// New creates a document service.
func New(chunks ChunkStore, scopes ScopeCatalog, embedder domain.Embedder, settings Settings, logger *zap.Logger) *Service {
	return &Service{
		chunks:   chunks,
		scopes:   scopes,
		embedder: embedder,
		settings: settings,
		logger:   logger,
	}
}

// Ingest splits text into chunks, embeds each, and indexes them under the
// given knowledge base. Returns the generated document id and chunk count.
func (s *Service) Ingest(ctx context.Context, kbID, source, text string) (string, int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", 0, fmt.Errorf("%w: document text is required", domain.ErrEmptyContent)
	}

	if _, err := s.scopes.Get(ctx, kbID); err != nil {
		return "", 0, fmt.Errorf("resolve knowledge base: %w", err)
	}

	docID := uuid.NewString()
	parts := splitText(text, s.settings.ChunkSize, s.settings.ChunkOverlap)

	chunks := make([]domain.Chunk, 0, len(parts))
	for seq, part := range parts {
		res, err := s.embedder.Embed(ctx, part)
		if err != nil {
			return "", 0, fmt.Errorf("embed chunk %d: %w", seq, err)
		}
		chunks = append(chunks, domain.Chunk{
			ID:              chunk.ChunkID(kbID, docID, seq),
			DocumentID:      docID,
			KnowledgeBaseID: kbID,
			Seq:             seq,
			Text:            part,
			Source:          source,
			Vector:          res.Embedding,
		})
	}

	if err := s.chunks.Put(ctx, chunks); err != nil {
		return "", 0, fmt.Errorf("index chunks: %w", err)
	}

	if err := s.scopes.AddDocumentCount(ctx, kbID, 1); err != nil {
		// The document is already searchable; a stale counter is not
		// worth failing the ingest over.
		s.logger.Warn("adjust document count failed", zap.String("kb_id", kbID), zap.Error(err))
	}

	s.logger.Info("document ingested",
		zap.String("kb_id", kbID),
		zap.String("doc_id", docID),
		zap.Int("chunks", len(chunks)),
	)
	return docID, len(chunks), nil
}

// Delete removes every chunk of one document from the knowledge base.
func (s *Service) Delete(ctx context.Context, kbID, docID string) error {
	removed, err := s.chunks.DeleteByDocument(ctx, kbID, docID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if removed == 0 {
		return domain.ErrDocumentNotFound
	}

	if err := s.scopes.AddDocumentCount(ctx, kbID, -1); err != nil {
		s.logger.Warn("adjust document count failed", zap.String("kb_id", kbID), zap.Error(err))
	}

	s.logger.Info("document deleted",
		zap.String("kb_id", kbID),
		zap.String("doc_id", docID),
		zap.Int("chunks", removed),
	)
	return nil
}
