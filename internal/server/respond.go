package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/docuserve/docintel/internal/chunker"
	"github.com/docuserve/docintel/internal/embedding"
	"github.com/docuserve/docintel/internal/llm"
	"github.com/docuserve/docintel/internal/pdf"
	"github.com/docuserve/docintel/internal/planner"
	"github.com/docuserve/docintel/internal/rag"
	"github.com/docuserve/docintel/internal/scope"
	"github.com/docuserve/docintel/internal/store"
	"github.com/docuserve/docintel/internal/vectorstore"
)

// Stable error codes returned to clients alongside the HTTP status.
const (
	codeUnauthenticated       = "UNAUTHENTICATED"
	codeScopeMismatch         = "SCOPE_MISMATCH"
	codeScopeNotFound         = "SCOPE_NOT_FOUND"
	codeEmptyDocument         = "EMPTY_DOCUMENT"
	codeExtractionFailed      = "EXTRACTION_FAILED"
	codeEmbeddingUnavailable  = "EMBEDDING_UNAVAILABLE"
	codeCollectionUnavailable = "COLLECTION_UNAVAILABLE"
	codeRetrievalFailed       = "RETRIEVAL_FAILED"
	codeGenerationFailed      = "GENERATION_FAILED"
	codeSchemaViolation       = "SCHEMA_VIOLATION"
	codeInvalidRequest        = "INVALID_REQUEST"
	codeConflict              = "CONFLICT"
	codeInternal              = "INTERNAL"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) writeErrorCode(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// writeError maps a domain error onto its HTTP status and stable code.
// More specific sentinels are matched before the failures that wrap
// them, so a retrieval error caused by an unreachable index still
// reports as a retrieval failure of the chat operation.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, code := http.StatusInternalServerError, codeInternal

	switch {
	case errors.Is(err, scope.ErrUnauthenticated):
		status, code = http.StatusUnauthorized, codeUnauthenticated
	case errors.Is(err, scope.ErrMismatch):
		status, code = http.StatusForbidden, codeScopeMismatch
	case errors.Is(err, scope.ErrNotFound), errors.Is(err, store.ErrNotFound):
		status, code = http.StatusNotFound, codeScopeNotFound
	case errors.Is(err, store.ErrDuplicate):
		status, code = http.StatusConflict, codeConflict
	case errors.Is(err, chunker.ErrEmptyDocument):
		status, code = http.StatusUnprocessableEntity, codeEmptyDocument
	case errors.Is(err, pdf.ErrExtractionFailed):
		status, code = http.StatusUnprocessableEntity, codeExtractionFailed
	case errors.Is(err, planner.ErrSchemaViolation):
		status, code = http.StatusBadGateway, codeSchemaViolation
	case errors.Is(err, rag.ErrRetrievalFailed):
		status, code = http.StatusBadGateway, codeRetrievalFailed
	case errors.Is(err, embedding.ErrUnavailable):
		status, code = http.StatusBadGateway, codeEmbeddingUnavailable
	case errors.Is(err, vectorstore.ErrCollectionUnavailable):
		status, code = http.StatusServiceUnavailable, codeCollectionUnavailable
	case errors.Is(err, llm.ErrGenerationFailed):
		status, code = http.StatusBadGateway, codeGenerationFailed
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	s.writeErrorCode(w, status, code, err.Error())
}

// decodeJSON parses and validates a request body.
func (s *Server) decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v); err != nil {
		return fmt.Errorf("malformed body: %w", err)
	}
	if err := s.validate.Struct(v); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return err
		}
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

// token extracts the session token from the X-Token header.
func token(r *http.Request) string {
	return r.Header.Get("X-Token")
}
