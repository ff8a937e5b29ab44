// Package answer composes final answers from retrieved chunks via the
// inference LLM.
package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/swaraj404/DeepDoc/internal/llmservice"
	"github.com/swaraj404/DeepDoc/internal/models"
)

var (
	// ErrGenerationFailed wraps inference failures.
	ErrGenerationFailed = errors.New("answer generation failed")
	// ErrGenerationTimeout marks generation that exceeded its deadline.
	ErrGenerationTimeout = errors.New("answer generation timed out")
)

// Fragments at or below this length are dropped during post-processing.
const minFragmentLength = 5

// Composition is the outcome of composing an answer.
type Composition struct {
	Text                string
	InsufficientContext bool
}

// Composer builds a prompt from retrieved chunks and invokes the generation
// function with a bounded timeout.
type Composer struct {
	generate      llmservice.GenerateFunc
	contextChunks int
	timeout       time.Duration
}

// New builds a composer using the top contextChunks results per answer
// (0 means all retrieved).
func New(generate llmservice.GenerateFunc, contextChunks int, timeout time.Duration) *Composer {
	return &Composer{generate: generate, contextChunks: contextChunks, timeout: timeout}
}

// Compose answers the query from results. With no results it returns the
// insufficient-context sentinel and never invokes generation. The generated
// text is always post-processed: deduplicated sentence fragments, normalized
// terminal punctuation.
func (c *Composer) Compose(ctx context.Context, query string, results []models.RetrievalResult, marks int) (*Composition, error) {
	if len(results) == 0 {
		return &Composition{Text: models.InsufficientContext, InsufficientContext: true}, nil
	}

	prompt := BuildPrompt(query, c.contextString(results), marks)

	genCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	raw, err := c.generate(genCtx, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || genCtx.Err() != nil && ctx.Err() == nil {
			return nil, fmt.Errorf("%w after %s", ErrGenerationTimeout, c.timeout)
		}
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	text := Postprocess(raw)
	if text == "" {
		log.Warn().Str("query", query).Msg("Generation produced no usable text")
		return nil, fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}
	return &Composition{Text: text}, nil
}

func (c *Composer) contextString(results []models.RetrievalResult) string {
	n := len(results)
	if c.contextChunks > 0 && c.contextChunks < n {
		n = c.contextChunks
	}
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = results[i].Content
	}
	return strings.Join(parts, models.ContextSeparator)
}

// BuildPrompt selects the instruction style from marks: a short definitional
// answer for marks <= 2, a structured bulleted answer above that.
func BuildPrompt(query, context string, marks int) string {
	if marks <= 2 {
		return fmt.Sprintf(models.DefinitionPromptTemplate, context, query)
	}
	return fmt.Sprintf(models.StructuredPromptTemplate, context, query)
}

// Postprocess splits generated text into sentence-like fragments, drops
// fragments of minFragmentLength characters or fewer, removes exact
// duplicates keeping first-seen order, and rejoins with normalized terminal
// punctuation.
func Postprocess(raw string) string {
	fragments := strings.Split(strings.TrimSpace(raw), ".")
	seen := make(map[string]bool)
	var kept []string
	for _, frag := range fragments {
		frag = strings.TrimSpace(frag)
		if frag == "" || len(frag) <= minFragmentLength {
			continue
		}
		if seen[frag] {
			continue
		}
		seen[frag] = true
		kept = append(kept, frag)
	}
	if len(kept) == 0 {
		return ""
	}
	result := strings.Join(kept, ". ")
	if !strings.HasSuffix(result, ".") {
		result += "."
	}
	return result
}
