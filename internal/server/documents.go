package server

import (
	"net/http"

	"github.com/docuserve/docintel/internal/scope"
	"github.com/docuserve/docintel/internal/store"
)

type documentEntry struct {
	ParentID    string `json:"parent_id"`
	DisplayName string `json:"display_name"`
	ChunkCount  int    `json:"chunk_count"`
	CreatedAt   string `json:"created_at"`
}

func (s *Server) handleCompanyDocuments(w http.ResponseWriter, r *http.Request) {
	company, err := s.resolver.Authenticate(r.Context(), token(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.listDocuments(w, r, scope.Company(company.ID))
}

func (s *Server) handleTeamDocuments(w http.ResponseWriter, r *http.Request) {
	teamID, err := formID(r, "team_id")
	if err != nil {
		s.writeErrorCode(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}
	sc, err := s.resolver.ResolveTeam(r.Context(), token(r), teamID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.listDocuments(w, r, sc)
}

func (s *Server) handleProjectDocuments(w http.ResponseWriter, r *http.Request) {
	projectID, err := formID(r, "project_id")
	if err != nil {
		s.writeErrorCode(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}
	sc, err := s.resolver.ResolveProject(r.Context(), token(r), projectID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.listDocuments(w, r, sc)
}

// listDocuments returns the scope's ingested documents. Only fully
// committed uploads ever appear here.
func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request, sc scope.Scope) {
	docs, err := s.store.ListDocuments(r.Context(), sc)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"documents": documentEntries(docs)})
}

func documentEntries(docs []store.Document) []documentEntry {
	entries := make([]documentEntry, len(docs))
	for i, d := range docs {
		entries[i] = documentEntry{
			ParentID:    d.ParentID,
			DisplayName: d.DisplayName,
			ChunkCount:  d.ChunkCount,
			CreatedAt:   d.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}
	return entries
}
