// Package chunk persists document chunks with their embeddings and keeps
// the FT vector index over them.
package chunk

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/kailas-cloud/ragdex/internal/db"
	"github.com/kailas-cloud/ragdex/internal/domain"
)

const (
	keyPrefix = domain.KeyPrefix + "chunk:"

	// IndexName is the FT index over all chunk hashes.
	IndexName = "ragdex_chunks_idx"

	fieldKBID   = "kb_id"
	fieldDocID  = "doc_id"
	fieldSeq    = "seq"
	fieldText   = "text"
	fieldSource = "source"
	fieldVector = "vector"
)

// store is the consumer interface for chunk persistence (ISP).
type store interface {
	db.Hashes
	db.Indexes
}

// HNSWConfig tunes the vector index construction parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo stores chunks as hashes under a common prefix indexed by FT.
type Repo struct {
	store store
	hnsw  HNSWConfig
}

// New creates a chunk repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// WithHNSW overrides HNSW construction parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	r.hnsw = cfg
	return r
}

// EnsureIndex creates the chunk FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context, dimensions int) error {
	err := r.store.CreateIndex(ctx, &db.IndexDefinition{
		Name:      IndexName,
		Prefixes:  []string{keyPrefix},
		TagFields: []string{fieldKBID, fieldDocID},
		TextField: fieldText,
		Vector: db.VectorField{
			Name:        fieldVector,
			Dimensions:  dimensions,
			M:           r.hnsw.M,
			EFConstruct: r.hnsw.EFConstruct,
		},
	})
	if err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create chunk index: %w", err)
	}
	return nil
}

// Put stores all chunks in one batch.
func (r *Repo) Put(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	items := make([]db.HashSetItem, len(chunks))
	for i, c := range chunks {
		items[i] = db.HashSetItem{
			Key: chunkKey(c.ID),
			Fields: map[string]string{
				fieldKBID:   c.KnowledgeBaseID,
				fieldDocID:  c.DocumentID,
				fieldSeq:    strconv.Itoa(c.Seq),
				fieldText:   c.Text,
				fieldSource: c.Source,
				fieldVector: vectorToBytes(c.Vector),
			},
		}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("store chunks: %w", err)
	}
	return nil
}

// DeleteByDocument removes every chunk of one document.
// Returns the number of removed chunks.
func (r *Repo) DeleteByDocument(ctx context.Context, kbID, docID string) (int, error) {
	keys, err := r.store.Scan(ctx, keyPrefix+kbID+":"+docID+":*")
	if err != nil {
		return 0, fmt.Errorf("scan document chunks: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := r.store.Del(ctx, keys...); err != nil {
		return 0, fmt.Errorf("delete document chunks: %w", err)
	}
	return len(keys), nil
}

// DeleteByKnowledgeBase removes every chunk scoped to one knowledge base.
func (r *Repo) DeleteByKnowledgeBase(ctx context.Context, kbID string) error {
	keys, err := r.store.Scan(ctx, keyPrefix+kbID+":*")
	if err != nil {
		return fmt.Errorf("scan knowledge base chunks: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.store.Del(ctx, keys...); err != nil {
		return fmt.Errorf("delete knowledge base chunks: %w", err)
	}
	return nil
}

// ChunkID builds the storage id of one chunk. The kb and document ids are
// part of the key so scoped deletes can work off SCAN patterns alone.
func ChunkID(kbID, docID string, seq int) string {
	return kbID + ":" + docID + ":" + strconv.Itoa(seq)
}

func chunkKey(id string) string {
	return keyPrefix + id
}

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
