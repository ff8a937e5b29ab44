// Package ingest orchestrates document ingestion: extract, segment, embed,
// store.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"github.com/swaraj404/DeepDoc/internal/models"
	"github.com/swaraj404/DeepDoc/internal/parser"
	"github.com/swaraj404/DeepDoc/internal/segmenter"
	"github.com/swaraj404/DeepDoc/internal/store"
)

var (
	// ErrNoTextExtracted means the document yielded no usable text.
	ErrNoTextExtracted = errors.New("no text extracted from document")
	// ErrEmbeddingFailed wraps embedding provider failures.
	ErrEmbeddingFailed = errors.New("embedding failed")
)

// Receipt summarizes a completed ingestion.
type Receipt struct {
	SourceID   string
	ChunkCount int
	IngestedAt time.Time
}

// Pipeline ingests documents into the vector index.
//
// Re-ingesting a sourceID replaces its chunks: existing records for the
// source are deleted, then the new ones inserted. That critical section is
// serialized per sourceID so concurrent re-ingestions of the same source
// cannot interleave a delete with another writer's insert. Distinct sources
// proceed concurrently.
type Pipeline struct {
	segmenter *segmenter.Segmenter
	embedder  embeddings.Embedder
	index     store.Index
	timeout   time.Duration

	mu      sync.Mutex
	sources map[string]*sync.Mutex
}

// New builds a pipeline. timeout bounds each embedding call.
func New(seg *segmenter.Segmenter, embedder embeddings.Embedder, index store.Index, timeout time.Duration) *Pipeline {
	return &Pipeline{
		segmenter: seg,
		embedder:  embedder,
		index:     index,
		timeout:   timeout,
		sources:   make(map[string]*sync.Mutex),
	}
}

// Ingest extracts text from the file at filePath and ingests it under
// sourceID.
func (p *Pipeline) Ingest(ctx context.Context, filePath, sourceID string) (*Receipt, error) {
	text, err := parser.ExtractText(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text from %s: %w", filePath, err)
	}
	return p.IngestText(ctx, text, sourceID, filePath)
}

// IngestText segments raw text, embeds the chunks in one batch and replaces
// the source's records in the index.
func (p *Pipeline) IngestText(ctx context.Context, text, sourceID, filePath string) (*Receipt, error) {
	chunks := p.segmenter.Segment(text)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoTextExtracted, sourceID)
	}

	embedCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		embedCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	vectors, err := p.embedder.EmbedDocuments(embedCtx, chunks)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d chunks", ErrEmbeddingFailed, len(vectors), len(chunks))
	}

	now := time.Now().UTC()
	records := make([]store.Record, len(chunks))
	for i, chunk := range chunks {
		records[i] = store.Record{
			ID:        fmt.Sprintf("%s-%d", sourceID, i),
			Content:   chunk,
			Embedding: vectors[i],
			Metadata: map[string]string{
				models.MetaSource:      sourceID,
				models.MetaChunkIndex:  strconv.Itoa(i),
				models.MetaTotalChunks: strconv.Itoa(len(chunks)),
				models.MetaTimestamp:   now.Format(time.RFC3339),
				models.MetaFilePath:    filePath,
			},
		}
	}

	unlock := p.lockSource(sourceID)
	defer unlock()

	if err := p.index.DeleteBySource(ctx, sourceID); err != nil {
		return nil, fmt.Errorf("failed to clear existing chunks for %s: %w", sourceID, err)
	}
	if err := p.index.Add(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to store chunks for %s: %w", sourceID, err)
	}

	log.Info().Str("source", sourceID).Int("chunks", len(chunks)).Msg("Ingested document")
	return &Receipt{SourceID: sourceID, ChunkCount: len(chunks), IngestedAt: now}, nil
}

// lockSource returns after acquiring the per-source mutex; the returned
// function releases it. Mutexes live for the process lifetime, bounded by
// the number of distinct sources seen.
func (p *Pipeline) lockSource(sourceID string) func() {
	p.mu.Lock()
	m, ok := p.sources[sourceID]
	if !ok {
		m = &sync.Mutex{}
		p.sources[sourceID] = m
	}
	p.mu.Unlock()

	m.Lock()
	return m.Unlock
}
