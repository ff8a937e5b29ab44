package segmenter

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentTwoSentences(t *testing.T) {
	s := New(Options{MaxChunkSize: 15, OverlapSize: 0, MinChunkLength: 1})
	chunks := s.Segment("AAAA BBBB CCCC. DDDD EEEE FFFF.")
	require.Equal(t, []string{"AAAA BBBB CCCC.", "DDDD EEEE FFFF."}, chunks)
}

func TestSegmentEmptyInput(t *testing.T) {
	s := New(Options{MaxChunkSize: 100, MinChunkLength: 1})
	assert.Nil(t, s.Segment(""))
	assert.Nil(t, s.Segment("   \n\n  \t\n"))
}

func TestSegmentNormalization(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "page markers dropped",
			in:   "This is the first full sentence of the document body.\n[PAGE 1]\nThis is the second full sentence of the document body.",
			want: []string{"This is the first full sentence of the document body. This is the second full sentence of the document body."},
		},
		{
			name: "rhetorical questions dropped",
			in:   "What is the meaning of all of this text, really?\nThis is the declarative sentence that should be kept here.",
			want: []string{"This is the declarative sentence that should be kept here."},
		},
		{
			name: "short non-terminal lines dropped",
			in:   "Chapter 3\nThis full sentence is long enough to survive the noise filter.",
			want: []string{"This full sentence is long enough to survive the noise filter."},
		},
		{
			name: "short terminal lines kept",
			in:   "It survives here.\nThis full sentence is long enough to survive the noise filter.",
			want: []string{"It survives here. This full sentence is long enough to survive the noise filter."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(Options{MaxChunkSize: 500, MinChunkLength: 1})
			assert.Equal(t, tt.want, s.Segment(tt.in))
		})
	}
}

func TestSegmentOverlapSeedsNextChunk(t *testing.T) {
	s := New(Options{MaxChunkSize: 40, OverlapSize: 10, MinChunkLength: 1})
	chunks := s.Segment("alpha bravo charlie delta echo emitted. foxtrot golf hotel india juliet emitted.")
	require.Len(t, chunks, 2)
	// The second chunk starts with trailing words of the first, within budget.
	assert.True(t, strings.HasPrefix(chunks[1], "emitted."), "second chunk should be seeded with overlap, got %q", chunks[1])
	assert.Contains(t, chunks[1], "foxtrot golf hotel india juliet emitted.")
}

func TestSegmentNoPunctuationSingleChunk(t *testing.T) {
	s := New(Options{MaxChunkSize: 200, MinChunkLength: 1})
	in := "plain words without any terminal punctuation flowing on and on"
	chunks := s.Segment(in)
	require.Equal(t, []string{in}, chunks)
}

func TestSegmentNoPunctuationHardCut(t *testing.T) {
	var words []string
	for i := 0; i < 50; i++ {
		words = append(words, fmt.Sprintf("word%02d", i))
	}
	in := strings.Join(words, " ")
	s := New(Options{MaxChunkSize: 60, MinChunkLength: 1})
	chunks := s.Segment(in)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 60)
	}
	assert.Equal(t, in, strings.Join(chunks, " "), "hard cut must not lose words")
}

func TestSegmentMinViability(t *testing.T) {
	s := New(Options{MaxChunkSize: 1000, MinChunkLength: 50})
	chunks := s.Segment("Too short to keep but terminal.")
	assert.Empty(t, chunks)
}

func TestSegmentReproducesSignificantSentences(t *testing.T) {
	in := strings.TrimSpace(`
The ingestion pipeline reads every page of the uploaded document in order.
Each page contributes its extracted text to a single running buffer of lines.
Sentences are accumulated greedily until the configured chunk size is reached.
The final buffer is emitted even when it is smaller than one full chunk size.
`)
	s := New(Options{MaxChunkSize: 160, OverlapSize: 0, MinChunkLength: 1})
	chunks := s.Segment(in)
	require.NotEmpty(t, chunks)

	joined := strings.Join(chunks, " ")
	for _, line := range strings.Split(in, "\n") {
		assert.Contains(t, joined, strings.TrimSpace(line))
	}
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 160+80, "chunk overflow must stay bounded")
	}
}

func TestTrailingWords(t *testing.T) {
	tests := []struct {
		text   string
		budget int
		want   string
	}{
		{"one two three", 0, ""},
		{"one two three", 5, "three"},
		{"one two three", 9, "two three"},
		{"one two three", 100, "one two three"},
		{"single", 3, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, trailingWords(tt.text, tt.budget), "budget %d", tt.budget)
	}
}

func TestWordWindowsPathologicalToken(t *testing.T) {
	windows := wordWindows(strings.Repeat("x", 25), 10)
	require.Equal(t, []string{"xxxxxxxxxx", "xxxxxxxxxx", "xxxxx"}, windows)
}
