// Package title derives a short display name for an uploaded document.
package title

import (
	"context"
	"log/slog"
	"strings"
)

// DefaultMaxChars bounds how much document text is sent to the model,
// roughly 16k tokens at 4 characters per token.
const DefaultMaxChars = 64000

const systemPrompt = "You are an expert at reading a document and generating a short, accurate name for it. " +
	"Output ONLY the name. No reasoning, no explanation, no punctuation except inside the name."

// Completer is the LLM call the extractor depends on.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Extractor produces display names via an LLM, degrading to the original
// filename when the model is unavailable. Naming never blocks ingestion.
type Extractor struct {
	completer Completer
	maxChars  int
	logger    *slog.Logger
}

// NewExtractor creates a title extractor. maxChars <= 0 uses the default.
func NewExtractor(completer Completer, maxChars int, logger *slog.Logger) *Extractor {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{completer: completer, maxChars: maxChars, logger: logger}
}

// ExtractName returns a short title for the document text, or fallback if
// the model fails or returns nothing usable.
func (e *Extractor) ExtractName(ctx context.Context, text, fallback string) string {
	truncated := text
	if len(truncated) > e.maxChars {
		truncated = truncated[:e.maxChars]
	}

	name, err := e.completer.Complete(ctx, systemPrompt, "Document text:\n"+truncated)
	if err != nil {
		e.logger.Warn("title extraction failed, using filename", "error", err)
		return fallback
	}

	name = strings.TrimSpace(strings.Trim(strings.TrimSpace(name), `"`))
	if name == "" {
		return fallback
	}
	return name
}
