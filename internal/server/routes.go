package server

import "net/http"

// routes builds the full HTTP surface. Register, login, and health are
// the only unauthenticated routes; everything else reads X-Token.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/company/register", s.handleCompanyRegister)
	mux.HandleFunc("POST /api/company/login", s.handleCompanyLogin)
	mux.HandleFunc("GET /api/company/me", s.handleCompanyMe)
	mux.HandleFunc("POST /api/company/logout", s.handleCompanyLogout)
	mux.HandleFunc("POST /api/company/upload", s.handleCompanyUpload)
	mux.HandleFunc("POST /api/company/chat", s.handleCompanyChat)
	mux.HandleFunc("GET /api/company/documents", s.handleCompanyDocuments)

	mux.HandleFunc("POST /api/teams", s.handleTeamCreate)
	mux.HandleFunc("POST /api/teams/login", s.handleTeamLogin)
	mux.HandleFunc("POST /api/teams/upload", s.handleTeamUpload)
	mux.HandleFunc("POST /api/teams/chat", s.handleTeamChat)
	mux.HandleFunc("GET /api/teams/documents", s.handleTeamDocuments)

	mux.HandleFunc("POST /api/projects", s.handleProjectCreate)
	mux.HandleFunc("POST /api/projects/login", s.handleProjectLogin)
	mux.HandleFunc("POST /api/projects/upload", s.handleProjectUpload)
	mux.HandleFunc("POST /api/projects/chat", s.handleProjectChat)
	mux.HandleFunc("GET /api/projects/documents", s.handleProjectDocuments)
	mux.HandleFunc("PUT /api/projects/info", s.handleProjectInfo)
	mux.HandleFunc("POST /api/projects/plan", s.handleProjectPlan)

	mux.HandleFunc("GET /api/health", s.handleHealth)

	return s.withRecovery(s.withLogging(s.withCORS(mux)))
}
