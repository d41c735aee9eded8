package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/docuserve/docintel/internal/planner"
	"github.com/docuserve/docintel/internal/store"
)

type projectCreateRequest struct {
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type projectLoginRequest struct {
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type memberPayload struct {
	Name   string   `json:"name" validate:"required"`
	Role   string   `json:"role" validate:"required"`
	Skills []string `json:"skills"`
}

type projectInfoRequest struct {
	ProjectID   int64           `json:"project_id" validate:"required,gt=0"`
	Description string          `json:"description" validate:"required"`
	Members     []memberPayload `json:"members" validate:"required,min=1,dive"`
	TechStack   string          `json:"tech_stack" validate:"required"`
	Domain      string          `json:"domain" validate:"required"`
}

type projectPlanRequest struct {
	ProjectID int64 `json:"project_id" validate:"required,gt=0"`
}

func (s *Server) handleProjectCreate(w http.ResponseWriter, r *http.Request) {
	company, err := s.resolver.Authenticate(r.Context(), token(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req projectCreateRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeErrorCode(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	project, err := s.store.CreateProject(r.Context(), store.Project{
		CompanyID: company.ID,
		Name:      req.Name,
		Password:  req.Password,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]any{
		"id":   project.ID,
		"name": project.Name,
	})
}

func (s *Server) handleProjectLogin(w http.ResponseWriter, r *http.Request) {
	company, err := s.resolver.Authenticate(r.Context(), token(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req projectLoginRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeErrorCode(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	project, err := s.store.ProjectByName(r.Context(), company.ID, req.Name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if project.Password != req.Password {
		s.writeErrorCode(w, http.StatusUnauthorized, codeUnauthenticated, "bad project credentials")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"id":   project.ID,
		"name": project.Name,
	})
}

func (s *Server) handleProjectUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeErrorCode(w, http.StatusBadRequest, codeInvalidRequest, "expected multipart form with a file field")
		return
	}
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
	s.upload(w, r, sc)
}

func (s *Server) handleProjectChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeErrorCode(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}
	if req.ProjectID <= 0 {
		s.writeErrorCode(w, http.StatusBadRequest, codeInvalidRequest, "project_id is required")
		return
	}

	sc, err := s.resolver.ResolveProject(r.Context(), token(r), req.ProjectID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.chatResolved(w, r, sc, req)
}

func (s *Server) handleProjectInfo(w http.ResponseWriter, r *http.Request) {
	company, err := s.resolver.Authenticate(r.Context(), token(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req projectInfoRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeErrorCode(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	members := make([]store.Member, len(req.Members))
	for i, m := range req.Members {
		members[i] = store.Member{Name: m.Name, Role: m.Role, Skills: m.Skills}
	}

	err = s.store.UpdateProjectInfo(r.Context(), company.ID, req.ProjectID,
		req.Description, len(members), members, req.TechStack, req.Domain)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"project_id":   req.ProjectID,
		"member_count": len(members),
	})
}

func (s *Server) handleProjectPlan(w http.ResponseWriter, r *http.Request) {
	company, err := s.resolver.Authenticate(r.Context(), token(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req projectPlanRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeErrorCode(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	project, err := s.store.ProjectByID(r.Context(), company.ID, req.ProjectID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	plan, err := s.planner.Generate(r.Context(), planInputs(project))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, plan)
}

// planInputs maps the stored project attributes onto the planner's
// input shape, formatting the roster one line per member.
func planInputs(p *store.Project) planner.ProjectInputs {
	members := make([]string, len(p.Members))
	for i, m := range p.Members {
		if len(m.Skills) > 0 {
			members[i] = fmt.Sprintf("%s (%s, skills: %s)", m.Name, m.Role, strings.Join(m.Skills, ", "))
		} else {
			members[i] = fmt.Sprintf("%s (%s)", m.Name, m.Role)
		}
	}

	var stack []string
	for _, item := range strings.Split(p.TechStack, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			stack = append(stack, trimmed)
		}
	}

	return planner.ProjectInputs{
		ProjectName: p.Name,
		Domain:      p.Domain,
		Description: p.Description,
		MemberCount: p.MemberCount,
		Members:     members,
		TechStack:   stack,
	}
}
