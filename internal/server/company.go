package server

import (
	"fmt"
	"io"
	"net/http"

	"github.com/docuserve/docintel/internal/scope"
	"github.com/docuserve/docintel/internal/store"
)

// maxUploadBytes bounds an uploaded PDF.
const maxUploadBytes = 32 << 20

type registerRequest struct {
	Username    string `json:"username" validate:"required"`
	CompanyName string `json:"company_name" validate:"required"`
	Password    string `json:"password" validate:"required,min=8"`
	Email       string `json:"email" validate:"required,email"`
}

type loginRequest struct {
	Username    string `json:"username" validate:"required"`
	CompanyName string `json:"company_name" validate:"required"`
	Password    string `json:"password" validate:"required"`
}

type chatRequest struct {
	Message   string `json:"message" validate:"required"`
	SessionID string `json:"session_id"`
	TeamID    int64  `json:"team_id"`
	ProjectID int64  `json:"project_id"`
}

func (s *Server) handleCompanyRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeErrorCode(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	company, err := s.store.CreateCompany(r.Context(), store.Company{
		Username: req.Username,
		Name:     req.CompanyName,
		Password: req.Password,
		Email:    req.Email,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]any{
		"id":           company.ID,
		"company_name": company.Name,
	})
}

func (s *Server) handleCompanyLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeErrorCode(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	tok, err := s.resolver.Login(r.Context(), req.Username, req.CompanyName, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"token": tok})
}

func (s *Server) handleCompanyMe(w http.ResponseWriter, r *http.Request) {
	company, err := s.resolver.Authenticate(r.Context(), token(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	teams, err := s.store.TeamCount(r.Context(), company.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	projects, err := s.store.ProjectCount(r.Context(), company.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"id":           company.ID,
		"username":     company.Username,
		"company_name": company.Name,
		"email":        company.Email,
		"teams":        teams,
		"projects":     projects,
	})
}

func (s *Server) handleCompanyLogout(w http.ResponseWriter, r *http.Request) {
	tok := token(r)
	if err := s.resolver.Logout(r.Context(), tok); err != nil {
		s.writeError(w, err)
		return
	}
	s.sessions.Clear(tok)
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *Server) handleCompanyUpload(w http.ResponseWriter, r *http.Request) {
	company, err := s.resolver.Authenticate(r.Context(), token(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.upload(w, r, scope.Company(company.ID))
}

func (s *Server) handleCompanyChat(w http.ResponseWriter, r *http.Request) {
	company, err := s.resolver.Authenticate(r.Context(), token(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.chat(w, r, scope.Company(company.ID))
}

// upload reads the multipart file and runs the ingestion pipeline in the
// already-resolved scope.
func (s *Server) upload(w http.ResponseWriter, r *http.Request, sc scope.Scope) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeErrorCode(w, http.StatusBadRequest, codeInvalidRequest, "expected multipart form with a file field")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeErrorCode(w, http.StatusBadRequest, codeInvalidRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		s.writeErrorCode(w, http.StatusBadRequest, codeInvalidRequest, "read upload")
		return
	}
	if len(data) > maxUploadBytes {
		s.writeErrorCode(w, http.StatusRequestEntityTooLarge, codeInvalidRequest,
			fmt.Sprintf("upload exceeds %d bytes", maxUploadBytes))
		return
	}

	res, err := s.ingestor.Ingest(r.Context(), sc, header.Filename, data)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]any{
		"parent_id":    res.ParentID,
		"display_name": res.DisplayName,
		"filename":     header.Filename,
		"chunks":       res.ChunkCount,
	})
}

// chat decodes the message and answers it in the already-resolved scope.
func (s *Server) chat(w http.ResponseWriter, r *http.Request, sc scope.Scope) {
	var req chatRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeErrorCode(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}
	s.chatResolved(w, r, sc, req)
}
