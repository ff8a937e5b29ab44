// Package retrieval turns a query into ranked, threshold-filtered results
// and scores confidence over them.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"github.com/swaraj404/DeepDoc/internal/config"
	"github.com/swaraj404/DeepDoc/internal/embedding"
	"github.com/swaraj404/DeepDoc/internal/models"
	"github.com/swaraj404/DeepDoc/internal/store"
)

// ErrEmbeddingFailed wraps query embedding failures.
var ErrEmbeddingFailed = errors.New("query embedding failed")

const cacheCapacity = 100

// Engine retrieves the most similar chunks for a query. Query embeddings are
// cached by exact query string in a bounded LRU shared across calls.
type Engine struct {
	embedder  embeddings.Embedder
	index     store.Index
	cache     *embedding.Cache
	threshold float64
	maxK      int
	timeout   time.Duration
}

// New builds an engine. timeout bounds each query embedding call.
func New(embedder embeddings.Embedder, index store.Index, cfg *config.RAGConfig, timeout time.Duration) *Engine {
	return &Engine{
		embedder:  embedder,
		index:     index,
		cache:     embedding.NewCache(cacheCapacity),
		threshold: cfg.SimilarityThreshold,
		maxK:      cfg.MaxChunks,
		timeout:   timeout,
	}
}

// ResolveK picks the neighbor count for a query: the caller's override when
// given, otherwise min(marks*2, configured maximum).
func (e *Engine) ResolveK(marks, override int) int {
	if override > 0 {
		return override
	}
	if marks < 1 {
		marks = 1
	}
	k := marks * 2
	if k > e.maxK {
		k = e.maxK
	}
	return k
}

// Retrieve returns up to k results ordered by non-increasing similarity,
// all at or above the relevance threshold. An empty index or nothing above
// threshold yields an empty result and a nil error.
func (e *Engine) Retrieve(ctx context.Context, query string, k int) ([]models.RetrievalResult, error) {
	vec, err := e.queryEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}

	hits, err := e.index.Query(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("failed to query index: %w", err)
	}

	var results []models.RetrievalResult
	for _, hit := range hits {
		similarity := 1 - hit.Distance
		if similarity < e.threshold {
			continue
		}
		results = append(results, models.RetrievalResult{
			Content:    hit.Content,
			Metadata:   hit.Metadata,
			Similarity: similarity,
		})
	}

	// The index already returns ascending distance; the stable sort keeps
	// its order for ties while guaranteeing non-increasing similarity.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	for i := range results {
		results[i].Rank = i + 1
	}

	log.Debug().Str("query", query).Int("k", k).Int("results", len(results)).Msg("Retrieved chunks")
	return results, nil
}

func (e *Engine) queryEmbedding(ctx context.Context, query string) ([]float32, error) {
	if vec, ok := e.cache.Get(query); ok {
		return vec, nil
	}

	embedCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		embedCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	vec, err := e.embedder.EmbedQuery(embedCtx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	e.cache.Put(query, vec)
	return vec, nil
}
