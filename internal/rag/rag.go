// Package rag is the facade over ingestion, retrieval, scoring and answer
// composition. One Engine is constructed at startup and passed by reference;
// there are no package-level singletons.
package rag

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"github.com/swaraj404/DeepDoc/internal/answer"
	"github.com/swaraj404/DeepDoc/internal/config"
	"github.com/swaraj404/DeepDoc/internal/helper"
	"github.com/swaraj404/DeepDoc/internal/ingest"
	"github.com/swaraj404/DeepDoc/internal/llmservice"
	"github.com/swaraj404/DeepDoc/internal/models"
	"github.com/swaraj404/DeepDoc/internal/retrieval"
	"github.com/swaraj404/DeepDoc/internal/segmenter"
	"github.com/swaraj404/DeepDoc/internal/store"
)

// Engine wires the pipeline components around one vector index.
type Engine struct {
	cfg       *config.Config
	index     store.Index
	pipeline  *ingest.Pipeline
	retriever *retrieval.Engine
	scorer    *retrieval.Scorer
	composer  *answer.Composer
}

// Stats describes the current index contents.
type Stats struct {
	TotalChunks int    `json:"total_chunks"`
	Driver      string `json:"driver"`
	Collection  string `json:"collection"`
}

// New assembles an engine from its collaborators. The embedder's dimension
// must match the index's stored vectors.
func New(cfg *config.Config, index store.Index, embedder embeddings.Embedder, generate llmservice.GenerateFunc) *Engine {
	seg := segmenter.New(segmenter.Options{
		MaxChunkSize:   cfg.RAG.ChunkSize,
		OverlapSize:    cfg.RAG.ChunkOverlap,
		MinChunkLength: cfg.RAG.MinChunkLength,
	})
	return &Engine{
		cfg:       cfg,
		index:     index,
		pipeline:  ingest.New(seg, embedder, index, cfg.EmbedLLM.Timeout.Std()),
		retriever: retrieval.New(embedder, index, &cfg.RAG, cfg.EmbedLLM.Timeout.Std()),
		scorer:    retrieval.NewScorer(&cfg.RAG),
		composer:  answer.New(generate, cfg.RAG.ContextChunks, cfg.InferLLM.Timeout.Std()),
	}
}

// Close releases the underlying index.
func (e *Engine) Close() error {
	return e.index.Close()
}

// Ingest adds the document at filePath under sourceID (derived from the
// file name when empty). Re-ingesting a sourceID replaces its chunks.
func (e *Engine) Ingest(ctx context.Context, filePath, sourceID string) (bool, error) {
	if sourceID == "" {
		sourceID = helper.DocumentID(filePath)
	}
	receipt, err := e.pipeline.Ingest(ctx, filePath, sourceID)
	if err != nil {
		log.Error().Err(err).Str("file", filePath).Str("source", sourceID).Msg("Ingestion failed")
		return false, err
	}
	return receipt.ChunkCount > 0, nil
}

// Answer retrieves context for the query and composes an answer scaled to
// marks. maxChunks overrides the retrieved chunk count when positive.
// Confidence scoring and composition run in parallel over the same result
// set. No relevant chunks is a normal outcome: the sentinel answer with
// zero confidence, not an error.
func (e *Engine) Answer(ctx context.Context, query string, marks, maxChunks int, withSources bool) (*models.AnswerRecord, error) {
	k := e.retriever.ResolveK(marks, maxChunks)
	results, err := e.retriever.Retrieve(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve context: %w", err)
	}

	var (
		wg          sync.WaitGroup
		confidence  float64
		composition *answer.Composition
		composeErr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		confidence = e.scorer.Score(results)
	}()
	go func() {
		defer wg.Done()
		composition, composeErr = e.composer.Compose(ctx, query, results, marks)
	}()
	wg.Wait()

	if composeErr != nil {
		return nil, composeErr
	}

	record := &models.AnswerRecord{
		Query:      query,
		Answer:     composition.Text,
		Confidence: confidence,
		ChunksUsed: len(results),
		Results:    results,
	}
	if composition.InsufficientContext {
		record.Confidence = 0
	}
	if withSources {
		record.Sources = sources(results)
	}
	return record, nil
}

// Search exposes raw retrieval results without composition.
func (e *Engine) Search(ctx context.Context, query string, maxChunks int) ([]models.RetrievalResult, error) {
	if maxChunks <= 0 {
		maxChunks = e.cfg.RAG.MaxChunks
	}
	return e.retriever.Retrieve(ctx, query, maxChunks)
}

// Stats reports index contents.
func (e *Engine) Stats(ctx context.Context) (*Stats, error) {
	count, err := e.index.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count chunks: %w", err)
	}
	return &Stats{
		TotalChunks: count,
		Driver:      e.cfg.Database.Driver,
		Collection:  e.cfg.Database.Collection,
	}, nil
}

func sources(results []models.RetrievalResult) []models.Source {
	out := make([]models.Source, len(results))
	for i, r := range results {
		preview := r.Content
		if len(preview) > models.SourcePreviewLength {
			preview = preview[:models.SourcePreviewLength] + "..."
		}
		name := r.Metadata[models.MetaSource]
		if name == "" {
			name = "Unknown"
		}
		out[i] = models.Source{Content: preview, Source: name, Similarity: r.Similarity}
	}
	return out
}
