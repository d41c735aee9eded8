package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuserve/docintel/internal/scope"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestCompany(t *testing.T, s *Store, name string) *Company {
	t.Helper()
	c, err := s.CreateCompany(context.Background(), Company{
		Username: name + "-admin",
		Name:     name,
		Password: "secret",
		Email:    name + "@example.com",
	})
	require.NoError(t, err)
	return c
}

func TestCompanyLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	c := createTestCompany(t, s, "acme")
	assert.NotZero(t, c.ID)

	got, err := s.CompanyByCredentials(ctx, "acme-admin", "acme")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, "secret", got.Password)

	// Duplicate registration is rejected.
	_, err = s.CreateCompany(ctx, Company{Username: "acme-admin", Name: "other", Password: "x", Email: "o@example.com"})
	assert.ErrorIs(t, err, ErrDuplicate)

	// Session token round trip.
	require.NoError(t, s.SetSessionToken(ctx, c.ID, "tok-123"))
	got, err = s.CompanyByToken(ctx, "tok-123")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	// Logout clears the token.
	require.NoError(t, s.SetSessionToken(ctx, c.ID, ""))
	_, err = s.CompanyByToken(ctx, "tok-123")
	assert.ErrorIs(t, err, ErrNotFound)

	// Empty token never matches a logged-out row.
	_, err = s.CompanyByToken(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTeamScopedToCompany(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	c1 := createTestCompany(t, s, "acme")
	c2 := createTestCompany(t, s, "globex")

	team, err := s.CreateTeam(ctx, Team{CompanyID: c1.ID, Name: "sales", Password: "pw"})
	require.NoError(t, err)

	// Same team name under another company is fine.
	_, err = s.CreateTeam(ctx, Team{CompanyID: c2.ID, Name: "sales", Password: "pw"})
	require.NoError(t, err)

	// Duplicate within the same company is not.
	_, err = s.CreateTeam(ctx, Team{CompanyID: c1.ID, Name: "sales", Password: "pw"})
	assert.ErrorIs(t, err, ErrDuplicate)

	// Lookup honors the company boundary.
	got, err := s.TeamByID(ctx, c1.ID, team.ID)
	require.NoError(t, err)
	assert.Equal(t, "sales", got.Name)

	_, err = s.TeamByID(ctx, c2.ID, team.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := s.TeamCount(ctx, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestProjectInfoRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	c := createTestCompany(t, s, "acme")
	p, err := s.CreateProject(ctx, Project{CompanyID: c.ID, Name: "ledger", Password: "pw"})
	require.NoError(t, err)

	members := []Member{
		{Name: "Ada", Role: "backend", Skills: []string{"go", "sql"}},
		{Name: "Lin", Role: "frontend", Skills: []string{"ts"}},
	}
	err = s.UpdateProjectInfo(ctx, c.ID, p.ID, "a ledger service", 2, members, "Go, Postgres", "fintech")
	require.NoError(t, err)

	got, err := s.ProjectByID(ctx, c.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "a ledger service", got.Description)
	assert.Equal(t, 2, got.MemberCount)
	assert.Equal(t, members, got.Members)
	assert.Equal(t, "fintech", got.Domain)

	// Updating a project that belongs to another company fails.
	other := createTestCompany(t, s, "globex")
	err = s.UpdateProjectInfo(ctx, other.ID, p.ID, "x", 0, nil, "", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDocumentListingIsScoped(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	c := createTestCompany(t, s, "acme")
	team, err := s.CreateTeam(ctx, Team{CompanyID: c.ID, Name: "sales", Password: "pw"})
	require.NoError(t, err)

	require.NoError(t, s.AddDocument(ctx, Document{
		ParentID: "doc-company", CompanyID: c.ID,
		DisplayName: "Q4 Report", StoredFilename: "q4.pdf", ChunkCount: 7,
	}))
	require.NoError(t, s.AddDocument(ctx, Document{
		ParentID: "doc-team", CompanyID: c.ID, TeamID: team.ID,
		DisplayName: "Sales Notes", StoredFilename: "notes.pdf", ChunkCount: 2,
	}))

	companyDocs, err := s.ListDocuments(ctx, scope.Company(c.ID))
	require.NoError(t, err)
	require.Len(t, companyDocs, 1)
	assert.Equal(t, "doc-company", companyDocs[0].ParentID)

	teamDocs, err := s.ListDocuments(ctx, scope.Team(c.ID, team.ID))
	require.NoError(t, err)
	require.Len(t, teamDocs, 1)
	assert.Equal(t, "doc-team", teamDocs[0].ParentID)

	// A sibling team sees nothing.
	empty, err := s.ListDocuments(ctx, scope.Team(c.ID, team.ID+1))
	require.NoError(t, err)
	assert.Empty(t, empty)
}
