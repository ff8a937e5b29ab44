package segmenter

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

// Options control chunk sizing. MaxChunkSize is a soft upper bound in bytes:
// a chunk may overflow it by at most the length of its last sentence.
type Options struct {
	MaxChunkSize   int
	OverlapSize    int
	MinChunkLength int
}

const (
	defaultMaxChunkSize   = 1000
	defaultMinChunkLength = 50

	// Lines shorter than this without terminal punctuation are treated as
	// structural noise (headers, footers, column fragments).
	minLineLength = 30
)

var (
	pageMarkerRe = regexp.MustCompile(`^\[PAGE \d+\]$`)
	bulletRe     = regexp.MustCompile(`^(\*|-|•|\d+[.)])\s+`)
	sentenceRe   = regexp.MustCompile(`[^.!?]+[.!?]+`)
)

// Segmenter turns raw document text into ordered retrievable chunks.
type Segmenter struct {
	opts Options
}

func New(opts Options) *Segmenter {
	if opts.MaxChunkSize <= 0 {
		opts.MaxChunkSize = defaultMaxChunkSize
	}
	if opts.OverlapSize < 0 {
		opts.OverlapSize = 0
	}
	if opts.OverlapSize >= opts.MaxChunkSize {
		opts.OverlapSize = opts.MaxChunkSize / 2
	}
	if opts.MinChunkLength <= 0 {
		opts.MinChunkLength = defaultMinChunkLength
	}
	return &Segmenter{opts: opts}
}

// Segment normalizes raw text, tokenizes it into sentences and greedily
// accumulates them into chunks of at most MaxChunkSize bytes, seeding each
// chunk with a trailing-word overlap from its predecessor. Chunks below
// MinChunkLength are discarded. Segment never fails: if sentence tokenization
// produces nothing usable, it falls back to fixed-size word windows.
func (s *Segmenter) Segment(raw string) []string {
	text := s.normalize(raw)
	if text == "" {
		return nil
	}

	sentences := tokenize(text)
	if len(sentences) == 0 {
		log.Warn().Int("text_length", len(text)).Msg("Sentence tokenization produced no sentences, using word-window fallback")
		return s.viable(wordWindows(text, s.opts.MaxChunkSize))
	}

	var chunks []string
	buf := ""
	seedOnly := false
	for _, sentence := range sentences {
		if len(sentence) > s.opts.MaxChunkSize {
			// A single sentence the accumulator can never close; hard-cut it.
			if buf != "" && !seedOnly {
				chunks = append(chunks, buf)
			}
			chunks = append(chunks, wordWindows(sentence, s.opts.MaxChunkSize)...)
			buf, seedOnly = "", false
			continue
		}
		if buf != "" && !seedOnly && len(buf)+1+len(sentence) > s.opts.MaxChunkSize {
			chunks = append(chunks, buf)
			buf = trailingWords(buf, s.opts.OverlapSize)
			seedOnly = buf != ""
		}
		if buf != "" {
			buf += " "
		}
		buf += sentence
		seedOnly = false
	}
	if buf != "" {
		chunks = append(chunks, buf)
	}
	return s.viable(chunks)
}

// normalize splits raw text on line boundaries and drops structural noise:
// empty lines, page markers, rhetorical lines ending in '?', and very short
// lines without terminal punctuation. Bullet lines keep their line break so
// list structure survives into the chunk text.
func (s *Segmenter) normalize(raw string) string {
	var b strings.Builder
	for _, line := range strings.Split(raw, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		if pageMarkerRe.MatchString(stripped) {
			continue
		}
		if strings.HasSuffix(stripped, "?") {
			continue
		}
		if len(stripped) < minLineLength && !hasTerminalPunct(stripped) {
			continue
		}
		if b.Len() > 0 {
			if bulletRe.MatchString(stripped) {
				b.WriteString("\n")
			} else {
				b.WriteString(" ")
			}
		}
		b.WriteString(stripped)
	}
	return b.String()
}

// tokenize splits text into sentence-like spans on terminal punctuation.
// Any trailing text after the last terminal is kept as a final sentence.
func tokenize(text string) []string {
	locs := sentenceRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		return []string{trimmed}
	}
	var sentences []string
	last := 0
	for _, loc := range locs {
		if sent := strings.TrimSpace(text[loc[0]:loc[1]]); sent != "" {
			sentences = append(sentences, sent)
		}
		last = loc[1]
	}
	if tail := strings.TrimSpace(text[last:]); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

// trailingWords returns whole words from the end of text totalling at most
// budget bytes, used to seed the next chunk with overlap context.
func trailingWords(text string, budget int) string {
	if budget <= 0 {
		return ""
	}
	words := strings.Fields(text)
	total := 0
	start := len(words)
	for i := len(words) - 1; i >= 0; i-- {
		next := total + len(words[i])
		if total > 0 {
			next++ // joining space
		}
		if next > budget {
			break
		}
		total = next
		start = i
	}
	if start == len(words) {
		return ""
	}
	return strings.Join(words[start:], " ")
}

// wordWindows cuts text into non-overlapping windows of at most size bytes,
// breaking on word boundaries where possible.
func wordWindows(text string, size int) []string {
	if size <= 0 {
		return nil
	}
	var windows []string
	var buf strings.Builder
	for _, word := range strings.Fields(text) {
		if buf.Len() > 0 && buf.Len()+1+len(word) > size {
			windows = append(windows, buf.String())
			buf.Reset()
		}
		if buf.Len() > 0 {
			buf.WriteString(" ")
		}
		if len(word) > size {
			// Pathological token longer than a whole window.
			for len(word) > size {
				windows = append(windows, word[:size])
				word = word[size:]
			}
		}
		buf.WriteString(word)
	}
	if buf.Len() > 0 {
		windows = append(windows, buf.String())
	}
	return windows
}

func (s *Segmenter) viable(chunks []string) []string {
	var out []string
	for _, chunk := range chunks {
		chunk = strings.TrimSpace(chunk)
		if len(chunk) >= s.opts.MinChunkLength && chunk != "" {
			out = append(out, chunk)
		}
	}
	return out
}

func hasTerminalPunct(line string) bool {
	return strings.HasSuffix(line, ".") || strings.HasSuffix(line, "!") ||
		strings.HasSuffix(line, ":") || strings.HasSuffix(line, ";")
}
