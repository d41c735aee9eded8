// Package pdf extracts per-page text from uploaded PDF bytes using pdfcpu.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrExtractionFailed means the file could not be parsed as a PDF.
var ErrExtractionFailed = errors.New("pdf extraction failed")

// Extractor turns PDF bytes into a sequence of page texts.
type Extractor struct {
	conf *model.Configuration
}

// NewExtractor creates a PDF extractor with the default pdfcpu configuration.
func NewExtractor() *Extractor {
	return &Extractor{conf: model.NewDefaultConfiguration()}
}

// ExtractPages returns the text of each page in order. Pages that yield no
// text are returned as empty strings so page numbering stays stable;
// whether the document as a whole is empty is the chunker's call.
func (e *Extractor) ExtractPages(ctx context.Context, data []byte) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	workDir, err := os.MkdirTemp("", "docintel-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	srcFile := filepath.Join(workDir, "upload.pdf")
	if err := os.WriteFile(srcFile, data, 0o644); err != nil {
		return nil, fmt.Errorf("write temp pdf: %w", err)
	}

	pdfCtx, err := api.ReadContextFile(srcFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	pageCount := pdfCtx.PageCount
	if pageCount == 0 {
		return nil, fmt.Errorf("%w: document has no pages", ErrExtractionFailed)
	}

	outDir := filepath.Join(workDir, "pages")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	if err := api.ExtractContentFile(srcFile, outDir, nil, e.conf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	texts, err := readPageFiles(outDir)
	if err != nil {
		return nil, err
	}

	pages := make([]string, pageCount)
	for num, text := range texts {
		if num >= 1 && num <= pageCount {
			pages[num-1] = text
		}
	}
	return pages, nil
}

// readPageFiles collects the per-page content files pdfcpu writes, keyed
// by page number parsed from the filename.
func readPageFiles(dir string) (map[int]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read output dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	// Natural order, so a positional fallback keeps page 10 after page 2.
	sort.Slice(names, func(i, j int) bool { return naturalLess(names[i], names[j]) })

	texts := make(map[int]string, len(names))
	for i, name := range names {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		var pageNum int
		if _, err := fmt.Sscanf(name, "upload_Content_page_%d", &pageNum); err != nil {
			// Fall back to positional order when the name scheme differs.
			pageNum = i + 1
		}
		texts[pageNum] = string(content)
	}
	return texts, nil
}

// naturalLess compares strings with runs of digits ordered numerically,
// so "page_2" sorts before "page_10".
func naturalLess(a, b string) bool {
	for len(a) > 0 && len(b) > 0 {
		if isDigit(a[0]) && isDigit(b[0]) {
			an, aRest := leadingInt(a)
			bn, bRest := leadingInt(b)
			if an != bn {
				return an < bn
			}
			a, b = aRest, bRest
			continue
		}
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// leadingInt consumes the leading digit run and returns its value and
// the remainder.
func leadingInt(s string) (int, string) {
	n := 0
	i := 0
	for i < len(s) && isDigit(s[i]) {
		n = n*10 + int(s[i]-'0')
		i++
	}
	return n, s[i:]
}
