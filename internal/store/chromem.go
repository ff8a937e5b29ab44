package store

import (
	"context"
	"fmt"
	"runtime"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"github.com/swaraj404/DeepDoc/internal/config"
	"github.com/swaraj404/DeepDoc/internal/models"
)

const chromemCompress = false

// ChromemIndex is the embedded chromem-go backend. chromem reports cosine
// similarity; it is converted to a distance here so both backends speak the
// same ascending-distance contract.
type ChromemIndex struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// OpenChromem opens (or creates) a chromem collection, persistent unless
// cfg.InMemory is set.
func OpenChromem(cfg *config.DatabaseConfig) (*ChromemIndex, error) {
	var db *chromem.DB
	var err error
	if cfg.InMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(cfg.Path, chromemCompress)
		if err != nil {
			return nil, fmt.Errorf("failed to open chromem database: %w", err)
		}
	}

	collection, err := db.GetOrCreateCollection(cfg.Collection, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %w", err)
	}

	log.Debug().Str("path", cfg.Path).Str("collection", cfg.Collection).Bool("in_memory", cfg.InMemory).Msg("Opened chromem index")
	return &ChromemIndex{db: db, collection: collection}, nil
}

func (c *ChromemIndex) Add(ctx context.Context, records []Record) error {
	docs := make([]chromem.Document, len(records))
	for i, rec := range records {
		docs[i] = chromem.Document{
			ID:        rec.ID,
			Content:   rec.Content,
			Metadata:  rec.Metadata,
			Embedding: rec.Embedding,
		}
	}
	if err := c.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

func (c *ChromemIndex) Query(ctx context.Context, embedding []float32, k int) ([]Hit, error) {
	// chromem rejects NResults above the collection size.
	if count := c.collection.Count(); count < k {
		k = count
	}
	if k <= 0 {
		return nil, nil
	}

	results, err := c.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: embedding,
		NResults:       k,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}

	hits := make([]Hit, len(results))
	for i, res := range results {
		hits[i] = Hit{
			ID:       res.ID,
			Content:  res.Content,
			Metadata: res.Metadata,
			Distance: 1 - float64(res.Similarity),
		}
	}
	return hits, nil
}

func (c *ChromemIndex) DeleteBySource(ctx context.Context, sourceID string) error {
	where := map[string]string{models.MetaSource: sourceID}
	if err := c.collection.Delete(ctx, where, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

func (c *ChromemIndex) Count(ctx context.Context) (int, error) {
	return c.collection.Count(), nil
}

func (c *ChromemIndex) Close() error {
	// chromem persists on write, nothing to flush.
	return nil
}
