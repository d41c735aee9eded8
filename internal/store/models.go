package store

import "time"

// Company is a registered tenant. The session token is the caller
// credential the scope resolver checks; hashing strength is the concern of
// an external auth provider, this core only needs token -> company.
type Company struct {
	ID           int64
	Username     string
	Name         string
	Password     string
	Email        string
	SessionToken string
}

// Team is a sub-tenant nested under a company. Team names are unique per
// company, not globally.
type Team struct {
	ID        int64
	CompanyID int64
	Name      string
	Password  string
}

// Member describes one person on a project roster.
type Member struct {
	Name   string   `json:"name"`
	Role   string   `json:"role"`
	Skills []string `json:"skills"`
}

// Project is a sub-tenant nested under a company, carrying the planning
// inputs used by the structured generation service.
type Project struct {
	ID          int64
	CompanyID   int64
	Name        string
	Password    string
	Description string
	MemberCount int
	Members     []Member
	TechStack   string
	Domain      string
}

// Document records one successfully ingested upload. A row exists only
// once every chunk of the upload is committed to the vector index, so the
// listing never shows a partially indexed document.
type Document struct {
	ParentID       string
	CompanyID      int64
	TeamID         int64 // 0 for company- and project-scoped documents
	ProjectID      int64 // 0 for company- and team-scoped documents
	DisplayName    string
	StoredFilename string
	ChunkCount     int
	CreatedAt      time.Time
}
