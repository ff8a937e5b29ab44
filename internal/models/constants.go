package models

const (
	// InsufficientContext is returned when retrieval finds no relevant chunks.
	// It is a normal outcome, not an error.
	InsufficientContext = "I don't have enough relevant information to answer this question. Please try rephrasing or provide more context."

	// ContextSeparator joins retrieved chunk contents into the prompt context.
	ContextSeparator = "\n---\n"

	// SourcePreviewLength bounds the chunk preview attached to answer sources.
	SourcePreviewLength = 200
)

// Metadata keys attached to every stored chunk.
const (
	MetaSource      = "source"
	MetaChunkIndex  = "chunk_index"
	MetaTotalChunks = "total_chunks"
	MetaTimestamp   = "timestamp"
	MetaFilePath    = "file_path"
)

var (
	// DefinitionPromptTemplate is used for low-mark questions (marks <= 2).
	DefinitionPromptTemplate = `You are an expert professor. Based on the context below, write a clear, concise and direct definition-style answer to the question.

Context:
%s

Question: %s
Answer:`

	// StructuredPromptTemplate is used for high-mark questions (marks > 2).
	StructuredPromptTemplate = `You are an expert professor. Based on the context below, write a well-structured answer in bullet points. Avoid repeating lines. If the answer has steps, phases, or items, present them cleanly in bullets.

Context:
%s

Question: %s
Answer:`
)
