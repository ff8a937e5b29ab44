package models

import "time"

// Document is a source document accepted for ingestion.
type Document struct {
	ID         string
	Text       string
	SourcePath string
	IngestedAt time.Time
}

// Chunk is the atomic retrieval unit: a bounded, normalized span of a document.
// Chunks are created at ingestion and never mutated; re-ingestion replaces them.
type Chunk struct {
	ID         string // document ID + "-" + Index
	Content    string
	DocumentID string
	Index      int // zero-based, contiguous per document
}

// RetrievalResult is one ranked hit from the vector index.
type RetrievalResult struct {
	Content    string
	Metadata   map[string]string
	Similarity float64 // in [0,1], 1 - distance
	Rank       int     // 1-based, monotone with similarity
}

// Query carries a question plus the caller's complexity signal.
type Query struct {
	Text  string
	Marks int
	K     int
}

// Source is a trimmed preview of a chunk used for an answer.
type Source struct {
	Content    string  `json:"content"`
	Source     string  `json:"source"`
	Similarity float64 `json:"similarity"`
}

// AnswerRecord is the full outcome of answering a query.
type AnswerRecord struct {
	Query      string            `json:"query"`
	Answer     string            `json:"answer"`
	Confidence float64           `json:"confidence"`
	ChunksUsed int               `json:"chunks_used"`
	Results    []RetrievalResult `json:"-"`
	Sources    []Source          `json:"sources,omitempty"`
}
