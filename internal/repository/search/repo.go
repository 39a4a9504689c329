// Package search implements the similarity-search capability the query
// pipeline retrieves context through: embed the query, run KNN over the
// chunk index scoped to the requested knowledge bases, keep results above
// the score threshold.
package search

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/ragdex/internal/db"
	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/repository/chunk"
)

const (
	fieldKBID   = "kb_id"
	fieldDocID  = "doc_id"
	fieldText   = "text"
	fieldSource = "source"
)

// store is the consumer interface for vector search (ISP).
type store interface {
	db.Searcher
}

// Repo runs scoped similarity search over the chunk index.
type Repo struct {
	store store
	embed domain.Embedder
}

// New creates a search repository. embed vectorizes candidate queries
// (usually the cached embedder).
func New(s store, embed domain.Embedder) *Repo {
	return &Repo{store: s, embed: embed}
}

// SimilaritySearch embeds query and returns up to topK chunks from the
// given knowledge bases whose similarity score is at least minScore.
func (r *Repo) SimilaritySearch(
	ctx context.Context, query string, kbIDs []string, topK int, minScore float64,
) ([]domain.Document, error) {
	embResult, err := r.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	res, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName: chunk.IndexName,
		Vector:    embResult.Embedding,
		K:         topK,
		TagFilter: db.TagFilter{
			Field:  fieldKBID,
			Values: kbIDs,
		},
		ReturnFields: []string{fieldKBID, fieldDocID, fieldText, fieldSource},
	})
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}

	docs := make([]domain.Document, 0, len(res.Entries))
	for _, e := range res.Entries {
		if e.Score < minScore {
			continue
		}
		docs = append(docs, domain.Document{
			ID:              e.Key,
			DocumentID:      e.Fields[fieldDocID],
			KnowledgeBaseID: e.Fields[fieldKBID],
			Text:            e.Fields[fieldText],
			Source:          e.Fields[fieldSource],
			Score:           e.Score,
		})
	}
	return docs, nil
}
