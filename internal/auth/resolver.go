// Package auth authenticates callers and mints tenant scopes.
//
// The Resolver is the only component allowed to turn caller-supplied
// identifiers into a scope.Scope; everything downstream operates on the
// resolved value and never on raw ids.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/docuserve/docintel/internal/scope"
	"github.com/docuserve/docintel/internal/store"
)

// Resolver authenticates session tokens against the relational store and
// performs the parent-child membership checks when a team or project scope
// is requested.
type Resolver struct {
	store *store.Store
}

// NewResolver creates a scope resolver backed by the given store.
func NewResolver(s *store.Store) *Resolver {
	return &Resolver{store: s}
}

// Authenticate resolves a session token to its company. Returns
// scope.ErrUnauthenticated for a missing or unknown token.
func (r *Resolver) Authenticate(ctx context.Context, token string) (*store.Company, error) {
	if token == "" {
		return nil, fmt.Errorf("missing token: %w", scope.ErrUnauthenticated)
	}
	company, err := r.store.CompanyByToken(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("invalid token: %w", scope.ErrUnauthenticated)
	}
	if err != nil {
		return nil, err
	}
	return company, nil
}

// ResolveCompany mints a company scope for the authenticated caller. The
// requested company must match the caller's own.
func (r *Resolver) ResolveCompany(ctx context.Context, token string, companyID int64) (scope.Scope, error) {
	company, err := r.Authenticate(ctx, token)
	if err != nil {
		return scope.Scope{}, err
	}
	if company.ID != companyID {
		return scope.Scope{}, fmt.Errorf("company %d: %w", companyID, scope.ErrMismatch)
	}
	return scope.Company(company.ID), nil
}

// ResolveTeam mints a team scope after verifying the team belongs to the
// caller's company.
func (r *Resolver) ResolveTeam(ctx context.Context, token string, teamID int64) (scope.Scope, error) {
	company, err := r.Authenticate(ctx, token)
	if err != nil {
		return scope.Scope{}, err
	}
	if _, err := r.store.TeamByID(ctx, company.ID, teamID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return scope.Scope{}, fmt.Errorf("team %d under company %d: %w", teamID, company.ID, scope.ErrNotFound)
		}
		return scope.Scope{}, err
	}
	return scope.Team(company.ID, teamID), nil
}

// ResolveProject mints a project scope after verifying the project belongs
// to the caller's company.
func (r *Resolver) ResolveProject(ctx context.Context, token string, projectID int64) (scope.Scope, error) {
	company, err := r.Authenticate(ctx, token)
	if err != nil {
		return scope.Scope{}, err
	}
	if _, err := r.store.ProjectByID(ctx, company.ID, projectID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return scope.Scope{}, fmt.Errorf("project %d under company %d: %w", projectID, company.ID, scope.ErrNotFound)
		}
		return scope.Scope{}, err
	}
	return scope.Project(company.ID, projectID), nil
}

// Login verifies company credentials and rotates the session token.
func (r *Resolver) Login(ctx context.Context, username, companyName, password string) (string, error) {
	company, err := r.store.CompanyByCredentials(ctx, username, companyName)
	if errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("unknown company: %w", scope.ErrUnauthenticated)
	}
	if err != nil {
		return "", err
	}
	if company.Password != password {
		return "", fmt.Errorf("bad credentials: %w", scope.ErrUnauthenticated)
	}
	token := uuid.NewString()
	if err := r.store.SetSessionToken(ctx, company.ID, token); err != nil {
		return "", err
	}
	return token, nil
}

// Logout invalidates the caller's session token.
func (r *Resolver) Logout(ctx context.Context, token string) error {
	company, err := r.Authenticate(ctx, token)
	if err != nil {
		return err
	}
	return r.store.SetSessionToken(ctx, company.ID, "")
}
