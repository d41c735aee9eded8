package title

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubCompleter struct {
	response string
	err      error
	lastUser string
}

func (s *stubCompleter) Complete(_ context.Context, _, user string) (string, error) {
	s.lastUser = user
	return s.response, s.err
}

func TestExtractName(t *testing.T) {
	stub := &stubCompleter{response: "  \"Q4 Financial Report\" \n"}
	e := NewExtractor(stub, 0, nil)

	got := e.ExtractName(context.Background(), "some document text", "upload.pdf")
	assert.Equal(t, "Q4 Financial Report", got)
}

func TestExtractName_FallsBackOnError(t *testing.T) {
	stub := &stubCompleter{err: errors.New("model unavailable")}
	e := NewExtractor(stub, 0, nil)

	got := e.ExtractName(context.Background(), "text", "upload.pdf")
	assert.Equal(t, "upload.pdf", got)
}

func TestExtractName_FallsBackOnEmptyResponse(t *testing.T) {
	stub := &stubCompleter{response: "   "}
	e := NewExtractor(stub, 0, nil)

	got := e.ExtractName(context.Background(), "text", "upload.pdf")
	assert.Equal(t, "upload.pdf", got)
}

func TestExtractName_TruncatesLongDocuments(t *testing.T) {
	stub := &stubCompleter{response: "Name"}
	e := NewExtractor(stub, 100, nil)

	e.ExtractName(context.Background(), strings.Repeat("x", 10000), "upload.pdf")
	assert.LessOrEqual(t, len(stub.lastUser), 100+len("Document text:\n"))
}
