// Package chunker splits extracted document text into overlapping,
// size-bounded segments for embedding and retrieval.
package chunker

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrEmptyDocument means the extracted text is empty or whitespace-only.
var ErrEmptyDocument = errors.New("empty document")

const (
	// DefaultMaxChunkSize bounds chunk length in bytes.
	DefaultMaxChunkSize = 400
	// DefaultOverlap is the target overlap between adjacent chunks.
	DefaultOverlap = 100
)

// Chunk is one bounded span of document text. Start is the byte offset of
// the span within the concatenated document text, which lets callers
// reconstruct the original by trimming the overlap of each successor.
type Chunk struct {
	Ordinal int
	Start   int
	Text    string
}

// Splitter produces deterministic chunks: identical input and parameters
// always yield identical output.
type Splitter struct {
	maxSize int
	overlap int
}

// NewSplitter creates a splitter with the given bounds. Non-positive
// values fall back to the defaults; the overlap is clamped below the chunk
// size so the walk always makes progress.
func NewSplitter(maxSize, overlap int) *Splitter {
	if maxSize <= 0 {
		maxSize = DefaultMaxChunkSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	if overlap >= maxSize {
		overlap = maxSize / 4
	}
	return &Splitter{maxSize: maxSize, overlap: overlap}
}

// SplitPages concatenates page texts with a blank line between pages (a
// page break is a valid split point but not a mandatory one) and splits
// the result.
func (s *Splitter) SplitPages(pages []string) ([]Chunk, error) {
	return s.Split(strings.Join(pages, "\n\n"))
}

// Split chunks text into spans of at most maxSize bytes. Cut points prefer
// paragraph breaks, then sentence ends, then word boundaries, before
// falling back to a hard cut. Adjacent chunks overlap by at most overlap
// bytes and at least overlap/2 bytes except at the document boundary.
func (s *Splitter) Split(text string) ([]Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}

	var chunks []Chunk
	pos := 0
	for {
		if len(text)-pos <= s.maxSize {
			chunks = append(chunks, Chunk{Ordinal: len(chunks), Start: pos, Text: text[pos:]})
			return chunks, nil
		}

		cut := s.findCut(text, pos)
		chunks = append(chunks, Chunk{Ordinal: len(chunks), Start: pos, Text: text[pos:cut]})

		next := s.nextStart(text, pos, cut)
		pos = next
	}
}

// findCut picks the end of the chunk starting at pos. The search window is
// the second half of the budget so chunks never degenerate to slivers.
func (s *Splitter) findCut(text string, pos int) int {
	end := pos + s.maxSize
	window := text[pos:end]
	minRel := s.maxSize / 2

	// Paragraph break.
	if idx := strings.LastIndex(window, "\n\n"); idx >= minRel {
		return pos + idx + 2
	}
	// Sentence end.
	best := -1
	for _, sep := range []string{". ", "! ", "? ", "\n"} {
		if idx := strings.LastIndex(window, sep); idx >= minRel && idx+len(sep) > best {
			best = idx + len(sep)
		}
	}
	if best > 0 {
		return pos + best
	}
	// Word boundary.
	if idx := strings.LastIndexByte(window, ' '); idx >= minRel {
		return pos + idx + 1
	}
	// Hard cut, backed up to a rune boundary so multibyte text is never
	// severed mid-rune.
	cut := runeStart(text, end)
	if cut <= pos {
		_, size := utf8.DecodeRuneInString(text[pos:])
		cut = pos + size
	}
	return cut
}

// runeStart backs up from i to the nearest rune boundary at or before it.
func runeStart(text string, i int) int {
	for i > 0 && !utf8.RuneStart(text[i]) {
		i--
	}
	return i
}

// nextStart rewinds from the cut by the overlap budget, then advances to
// the next word boundary inside the first half of that budget so the
// overlap region does not begin mid-token. The resulting overlap length
// stays within [overlap/2, overlap].
func (s *Splitter) nextStart(text string, pos, cut int) int {
	if s.overlap == 0 || cut-s.overlap <= pos {
		return cut
	}
	start := cut - s.overlap
	half := s.overlap / 2
	if half > 0 {
		if idx := strings.IndexByte(text[start:start+half], ' '); idx >= 0 {
			start += idx + 1
		}
	}
	// In unspaced multibyte text the rewind can land mid-rune; advance to
	// the next rune boundary (at most three bytes, so the overlap stays
	// within bounds).
	for start < cut && !utf8.RuneStart(text[start]) {
		start++
	}
	return start
}

// Reconstruct joins chunks back into the original text by dropping each
// chunk's overlap with its predecessor. It is the inverse of Split and
// exists so ingestion invariants are directly testable.
func Reconstruct(chunks []Chunk) string {
	var b strings.Builder
	covered := 0
	for i, c := range chunks {
		if i == 0 {
			b.WriteString(c.Text)
			covered = c.Start + len(c.Text)
			continue
		}
		skip := covered - c.Start
		if skip < 0 {
			skip = 0
		}
		if skip > len(c.Text) {
			skip = len(c.Text)
		}
		b.WriteString(c.Text[skip:])
		if end := c.Start + len(c.Text); end > covered {
			covered = end
		}
	}
	return b.String()
}
