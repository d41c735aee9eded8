// Package store persists tenant entities and document records in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/docuserve/docintel/internal/scope"
)

var (
	// ErrNotFound means the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate means a uniqueness constraint was violated.
	ErrDuplicate = errors.New("already exists")
)

const schema = `
CREATE TABLE IF NOT EXISTS companies (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	username      TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL UNIQUE,
	password      TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	session_token TEXT
);
CREATE INDEX IF NOT EXISTS idx_companies_token ON companies(session_token);

CREATE TABLE IF NOT EXISTS teams (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	company_id INTEGER NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
	name       TEXT NOT NULL,
	password   TEXT NOT NULL,
	UNIQUE(company_id, name)
);

CREATE TABLE IF NOT EXISTS projects (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	company_id   INTEGER NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
	name         TEXT NOT NULL,
	password     TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	member_count INTEGER NOT NULL DEFAULT 0,
	members      TEXT NOT NULL DEFAULT '[]',
	tech_stack   TEXT NOT NULL DEFAULT '',
	domain       TEXT NOT NULL DEFAULT '',
	UNIQUE(company_id, name)
);

CREATE TABLE IF NOT EXISTS documents (
	parent_id       TEXT PRIMARY KEY,
	company_id      INTEGER NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
	team_id         INTEGER NOT NULL DEFAULT 0,
	project_id      INTEGER NOT NULL DEFAULT 0,
	display_name    TEXT NOT NULL,
	stored_filename TEXT NOT NULL,
	chunk_count     INTEGER NOT NULL,
	created_at      TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_scope ON documents(company_id, team_id, project_id);
`

// Store wraps the SQLite database holding tenant entities.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database at path and applies the
// schema. Foreign keys are enabled per connection.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// --- companies ---

// CreateCompany inserts a company and returns it with its assigned id.
func (s *Store) CreateCompany(ctx context.Context, c Company) (*Company, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO companies (username, name, password, email) VALUES (?, ?, ?, ?)`,
		c.Username, c.Name, c.Password, c.Email)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("company %q: %w", c.Name, ErrDuplicate)
		}
		return nil, fmt.Errorf("create company: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create company: %w", err)
	}
	c.ID = id
	return &c, nil
}

func (s *Store) scanCompany(row *sql.Row) (*Company, error) {
	var c Company
	var token sql.NullString
	err := row.Scan(&c.ID, &c.Username, &c.Name, &c.Password, &c.Email, &token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan company: %w", err)
	}
	c.SessionToken = token.String
	return &c, nil
}

// CompanyByCredentials looks a company up by username and company name.
func (s *Store) CompanyByCredentials(ctx context.Context, username, name string) (*Company, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, name, password, email, session_token FROM companies WHERE username = ? AND name = ?`,
		username, name)
	return s.scanCompany(row)
}

// CompanyByToken resolves a session token to its company.
func (s *Store) CompanyByToken(ctx context.Context, token string) (*Company, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, name, password, email, session_token FROM companies WHERE session_token = ?`,
		token)
	return s.scanCompany(row)
}

// CompanyByID fetches a company by primary key.
func (s *Store) CompanyByID(ctx context.Context, id int64) (*Company, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, name, password, email, session_token FROM companies WHERE id = ?`,
		id)
	return s.scanCompany(row)
}

// SetSessionToken stores the active session token for a company. An empty
// token logs the company out.
func (s *Store) SetSessionToken(ctx context.Context, companyID int64, token string) error {
	var value any
	if token != "" {
		value = token
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE companies SET session_token = ? WHERE id = ?`, value, companyID)
	if err != nil {
		return fmt.Errorf("set session token: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// TeamCount returns the number of teams under a company.
func (s *Store) TeamCount(ctx context.Context, companyID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM teams WHERE company_id = ?`, companyID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count teams: %w", err)
	}
	return n, nil
}

// ProjectCount returns the number of projects under a company.
func (s *Store) ProjectCount(ctx context.Context, companyID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects WHERE company_id = ?`, companyID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return n, nil
}

// --- teams ---

// CreateTeam inserts a team under a company. Team names are unique within
// the company only.
func (s *Store) CreateTeam(ctx context.Context, t Team) (*Team, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO teams (company_id, name, password) VALUES (?, ?, ?)`,
		t.CompanyID, t.Name, t.Password)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("team %q: %w", t.Name, ErrDuplicate)
		}
		return nil, fmt.Errorf("create team: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create team: %w", err)
	}
	t.ID = id
	return &t, nil
}

func scanTeam(row *sql.Row) (*Team, error) {
	var t Team
	err := row.Scan(&t.ID, &t.CompanyID, &t.Name, &t.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan team: %w", err)
	}
	return &t, nil
}

// TeamByID fetches a team, scoped to the owning company. A team id that
// exists under a different company is reported as not found.
func (s *Store) TeamByID(ctx context.Context, companyID, teamID int64) (*Team, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, company_id, name, password FROM teams WHERE id = ? AND company_id = ?`,
		teamID, companyID)
	return scanTeam(row)
}

// TeamByName fetches a team by its per-company name.
func (s *Store) TeamByName(ctx context.Context, companyID int64, name string) (*Team, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, company_id, name, password FROM teams WHERE company_id = ? AND name = ?`,
		companyID, name)
	return scanTeam(row)
}

// --- projects ---

// CreateProject inserts a project under a company.
func (s *Store) CreateProject(ctx context.Context, p Project) (*Project, error) {
	members, err := json.Marshal(p.Members)
	if err != nil {
		return nil, fmt.Errorf("encode members: %w", err)
	}
	if p.Members == nil {
		members = []byte("[]")
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (company_id, name, password, description, member_count, members, tech_stack, domain)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.CompanyID, p.Name, p.Password, p.Description, p.MemberCount, string(members), p.TechStack, p.Domain)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("project %q: %w", p.Name, ErrDuplicate)
		}
		return nil, fmt.Errorf("create project: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	p.ID = id
	return &p, nil
}

func scanProject(row *sql.Row) (*Project, error) {
	var p Project
	var members string
	err := row.Scan(&p.ID, &p.CompanyID, &p.Name, &p.Password, &p.Description,
		&p.MemberCount, &members, &p.TechStack, &p.Domain)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan project: %w", err)
	}
	if err := json.Unmarshal([]byte(members), &p.Members); err != nil {
		return nil, fmt.Errorf("decode members: %w", err)
	}
	return &p, nil
}

const projectColumns = `id, company_id, name, password, description, member_count, members, tech_stack, domain`

// ProjectByID fetches a project, scoped to the owning company.
func (s *Store) ProjectByID(ctx context.Context, companyID, projectID int64) (*Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ? AND company_id = ?`,
		projectID, companyID)
	return scanProject(row)
}

// ProjectByName fetches a project by its per-company name.
func (s *Store) ProjectByName(ctx context.Context, companyID int64, name string) (*Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE company_id = ? AND name = ?`,
		companyID, name)
	return scanProject(row)
}

// UpdateProjectInfo replaces the planning inputs of a project.
func (s *Store) UpdateProjectInfo(ctx context.Context, companyID, projectID int64, description string, memberCount int, members []Member, techStack, domain string) error {
	if members == nil {
		members = []Member{}
	}
	encoded, err := json.Marshal(members)
	if err != nil {
		return fmt.Errorf("encode members: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET description = ?, member_count = ?, members = ?, tech_stack = ?, domain = ?
		 WHERE id = ? AND company_id = ?`,
		description, memberCount, string(encoded), techStack, domain, projectID, companyID)
	if err != nil {
		return fmt.Errorf("update project info: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- documents ---

// AddDocument records a fully ingested upload.
func (s *Store) AddDocument(ctx context.Context, d Document) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (parent_id, company_id, team_id, project_id, display_name, stored_filename, chunk_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ParentID, d.CompanyID, d.TeamID, d.ProjectID, d.DisplayName, d.StoredFilename, d.ChunkCount, d.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("document %s: %w", d.ParentID, ErrDuplicate)
		}
		return fmt.Errorf("add document: %w", err)
	}
	return nil
}

// ListDocuments returns the documents belonging to exactly the given scope,
// oldest first.
func (s *Store) ListDocuments(ctx context.Context, sc scope.Scope) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT parent_id, company_id, team_id, project_id, display_name, stored_filename, chunk_count, created_at
		 FROM documents WHERE company_id = ? AND team_id = ? AND project_id = ? ORDER BY created_at, parent_id`,
		sc.CompanyID, sc.TeamID, sc.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ParentID, &d.CompanyID, &d.TeamID, &d.ProjectID,
			&d.DisplayName, &d.StoredFilename, &d.ChunkCount, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
