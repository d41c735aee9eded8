// Package scope defines the tenant isolation boundary and the derivation
// of per-scope collection identifiers.
package scope

import "fmt"

// Kind identifies which level of the tenant hierarchy a scope addresses.
type Kind int

const (
	KindCompany Kind = iota
	KindTeam
	KindProject
)

func (k Kind) String() string {
	switch k {
	case KindCompany:
		return "company"
	case KindTeam:
		return "team"
	case KindProject:
		return "project"
	default:
		return "unknown"
	}
}

// Scope is an isolation boundary: a company, a team within a company, or a
// project within a company. Team and project scopes always carry their
// parent company id. Scopes are value types; only the auth resolver mints
// them from caller-supplied identifiers.
type Scope struct {
	Kind      Kind
	CompanyID int64
	TeamID    int64
	ProjectID int64
}

// Company returns a company-level scope.
func Company(companyID int64) Scope {
	return Scope{Kind: KindCompany, CompanyID: companyID}
}

// Team returns a team-level scope nested under a company.
func Team(companyID, teamID int64) Scope {
	return Scope{Kind: KindTeam, CompanyID: companyID, TeamID: teamID}
}

// Project returns a project-level scope nested under a company.
func Project(companyID, projectID int64) Scope {
	return Scope{Kind: KindProject, CompanyID: companyID, ProjectID: projectID}
}

// CollectionID derives the vector collection name for this scope.
// The mapping is a pure function of the scope tuple and injective: the
// three formats use distinct prefixes and ids are rendered as decimal
// integers with fixed separators, so no two distinct tuples collide.
func (s Scope) CollectionID() string {
	switch s.Kind {
	case KindTeam:
		return fmt.Sprintf("team_%d_company_%d_chunks", s.TeamID, s.CompanyID)
	case KindProject:
		return fmt.Sprintf("project_%d_company_%d_chunks", s.ProjectID, s.CompanyID)
	default:
		return fmt.Sprintf("company_%d_chunks", s.CompanyID)
	}
}

func (s Scope) String() string {
	switch s.Kind {
	case KindTeam:
		return fmt.Sprintf("team %d (company %d)", s.TeamID, s.CompanyID)
	case KindProject:
		return fmt.Sprintf("project %d (company %d)", s.ProjectID, s.CompanyID)
	default:
		return fmt.Sprintf("company %d", s.CompanyID)
	}
}
