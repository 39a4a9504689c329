// Package db defines the storage contract the repositories are built on.
// The only implementation ships in db/redis (rueidis, Redis 8+ with the
// query engine), but repositories and tests depend on this package alone.
package db

import (
	"context"
	"time"
)

// Store is the full storage surface consumed by ragdex repositories.
type Store interface {
	KV
	Hashes
	Indexes
	Searcher

	Ping(ctx context.Context) error
	WaitForReady(ctx context.Context, timeout time.Duration) error
	Close()
}

// KV provides plain key-value access (embedding cache).
type KV interface {
	// Get returns ErrKeyNotFound for a missing key.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key; ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Hashes provides hash-map storage (knowledge bases, chunks).
type Hashes interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error)
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Indexes manages FT indexes over hash keys.
type Indexes interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	DropIndex(ctx context.Context, name string) error
}

// Searcher runs vector similarity search.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
}

// HashSetItem is one hash write in a multi-set batch.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}
