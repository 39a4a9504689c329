// Package knowledge persists knowledge-base metadata in Redis hashes.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/ragdex/internal/db"
	"github.com/kailas-cloud/ragdex/internal/domain"
)

const (
	kbKeyPrefix   = domain.KeyPrefix + "kb:"
	nameKeyPrefix = domain.KeyPrefix + "kb_name:"

	fieldQuestionCount = "question_count"
	fieldDocumentCount = "document_count"
)

// store is the consumer interface for knowledge-base persistence (ISP).
type store interface {
	db.KV
	db.Hashes
}

// Repo stores knowledge bases as one hash per base plus a name→id key
// for uniqueness checks.
type Repo struct {
	store store
}

// New creates a knowledge-base repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Create persists a new knowledge base. Names are unique case-insensitively.
func (r *Repo) Create(ctx context.Context, kb domain.KnowledgeBase) error {
	nameKey := r.nameKey(kb.Name)
	if _, err := r.store.Get(ctx, nameKey); err == nil {
		return domain.ErrKnowledgeBaseExists
	} else if !errors.Is(err, db.ErrKeyNotFound) {
		return fmt.Errorf("check name: %w", err)
	}

	if err := r.store.HSet(ctx, r.kbKey(kb.ID), toFields(kb)); err != nil {
		return fmt.Errorf("store knowledge base: %w", err)
	}
	if err := r.store.Set(ctx, nameKey, []byte(kb.ID), 0); err != nil {
		return fmt.Errorf("store name key: %w", err)
	}
	return nil
}

// Get loads one knowledge base by id.
func (r *Repo) Get(ctx context.Context, id string) (domain.KnowledgeBase, error) {
	fields, err := r.store.HGetAll(ctx, r.kbKey(id))
	if err != nil {
		return domain.KnowledgeBase{}, fmt.Errorf("load knowledge base: %w", err)
	}
	if len(fields) == 0 {
		return domain.KnowledgeBase{}, domain.ErrKnowledgeBaseNotFound
	}
	return fromFields(fields), nil
}

// GetMulti loads several knowledge bases in one round-trip. Missing ids
// surface as ErrKnowledgeBaseNotFound.
func (r *Repo) GetMulti(ctx context.Context, ids []string) ([]domain.KnowledgeBase, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.kbKey(id)
	}
	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load knowledge bases: %w", err)
	}
	out := make([]domain.KnowledgeBase, 0, len(maps))
	for i, m := range maps {
		if len(m) == 0 {
			return nil, fmt.Errorf("id %s: %w", ids[i], domain.ErrKnowledgeBaseNotFound)
		}
		out = append(out, fromFields(m))
	}
	return out, nil
}

// List returns all knowledge bases.
func (r *Repo) List(ctx context.Context) ([]domain.KnowledgeBase, error) {
	keys, err := r.store.Scan(ctx, kbKeyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan knowledge bases: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load knowledge bases: %w", err)
	}
	out := make([]domain.KnowledgeBase, 0, len(maps))
	for _, m := range maps {
		if len(m) == 0 {
			continue // deleted between scan and fetch
		}
		out = append(out, fromFields(m))
	}
	return out, nil
}

// Delete removes a knowledge base and its name key.
func (r *Repo) Delete(ctx context.Context, id string) error {
	kb, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := r.store.Del(ctx, r.kbKey(id), r.nameKey(kb.Name)); err != nil {
		return fmt.Errorf("delete knowledge base: %w", err)
	}
	return nil
}

// IncrementQuestionCounts bumps the question counter of each given base.
// Used as the per-request scope-access record before retrieval.
func (r *Repo) IncrementQuestionCounts(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if _, err := r.store.HIncrBy(ctx, r.kbKey(id), fieldQuestionCount, 1); err != nil {
			return fmt.Errorf("increment question count %s: %w", id, err)
		}
	}
	return nil
}

// AddDocumentCount adjusts the document counter of one base (delta may be negative).
func (r *Repo) AddDocumentCount(ctx context.Context, id string, delta int) error {
	if _, err := r.store.HIncrBy(ctx, r.kbKey(id), fieldDocumentCount, int64(delta)); err != nil {
		return fmt.Errorf("adjust document count %s: %w", id, err)
	}
	return nil
}

func (r *Repo) kbKey(id string) string {
	return kbKeyPrefix + id
}

func (r *Repo) nameKey(name string) string {
	return nameKeyPrefix + strings.ToLower(strings.TrimSpace(name))
}
