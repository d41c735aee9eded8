package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/docuserve/docintel/internal/scope"
	"github.com/docuserve/docintel/internal/store"
)

type teamCreateRequest struct {
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type teamLoginRequest struct {
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) handleTeamCreate(w http.ResponseWriter, r *http.Request) {
	company, err := s.resolver.Authenticate(r.Context(), token(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req teamCreateRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeErrorCode(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	team, err := s.store.CreateTeam(r.Context(), store.Team{
		CompanyID: company.ID,
		Name:      req.Name,
		Password:  req.Password,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]any{
		"id":   team.ID,
		"name": team.Name,
	})
}

func (s *Server) handleTeamLogin(w http.ResponseWriter, r *http.Request) {
	company, err := s.resolver.Authenticate(r.Context(), token(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req teamLoginRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeErrorCode(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	team, err := s.store.TeamByName(r.Context(), company.ID, req.Name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if team.Password != req.Password {
		s.writeErrorCode(w, http.StatusUnauthorized, codeUnauthenticated, "bad team credentials")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"id":   team.ID,
		"name": team.Name,
	})
}

func (s *Server) handleTeamUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeErrorCode(w, http.StatusBadRequest, codeInvalidRequest, "expected multipart form with a file field")
		return
	}
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
	s.upload(w, r, sc)
}

func (s *Server) handleTeamChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeErrorCode(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}
	if req.TeamID <= 0 {
		s.writeErrorCode(w, http.StatusBadRequest, codeInvalidRequest, "team_id is required")
		return
	}

	sc, err := s.resolver.ResolveTeam(r.Context(), token(r), req.TeamID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.chatResolved(w, r, sc, req)
}

// chatResolved is chat for handlers that already decoded the body.
func (s *Server) chatResolved(w http.ResponseWriter, r *http.Request, sc scope.Scope, req chatRequest) {
	tok := token(r)
	scopeID := sc.CollectionID()

	history := s.sessions.Get(tok, req.SessionID, scopeID)
	answer, updated, err := s.chatter.Answer(r.Context(), sc, req.Message, history)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.sessions.Replace(tok, req.SessionID, scopeID, updated)

	s.writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

// formID parses a positive integer id from a form field.
func formID(r *http.Request, field string) (int64, error) {
	raw := r.FormValue(field)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", field)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", field)
	}
	return id, nil
}
