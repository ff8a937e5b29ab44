// Package store provides the vector index used for chunk storage and
// nearest-neighbor retrieval, with chromem and postgres/pgvector backends
// behind one interface.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/swaraj404/DeepDoc/internal/config"
)

// Record is one chunk to persist: id, embedding, content and metadata.
type Record struct {
	ID        string
	Content   string
	Metadata  map[string]string
	Embedding []float32
}

// Hit is one nearest-neighbor result. Distance is the backend's vector
// distance; callers derive similarity as 1 - Distance.
type Hit struct {
	ID       string
	Content  string
	Metadata map[string]string
	Distance float64
}

var (
	// ErrWrite wraps backend failures while adding or deleting records.
	ErrWrite = errors.New("vector store write failed")
	// ErrQuery wraps backend failures while querying.
	ErrQuery = errors.New("vector store query failed")
)

// Index is the vector index contract. Query returns up to k hits in
// ascending distance order; an empty index yields an empty result, not an
// error. Implementations must be safe for concurrent use.
type Index interface {
	Add(ctx context.Context, records []Record) error
	Query(ctx context.Context, embedding []float32, k int) ([]Hit, error)
	DeleteBySource(ctx context.Context, sourceID string) error
	Count(ctx context.Context) (int, error)
	Close() error
}

// Open constructs the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (Index, error) {
	switch cfg.Driver {
	case "chromem":
		return OpenChromem(cfg)
	case "postgres":
		return OpenPostgres(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown database driver: %s", cfg.Driver)
	}
}
