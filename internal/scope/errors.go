package scope

import "errors"

var (
	// ErrUnauthenticated means the caller token is missing, invalid, or expired.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrMismatch means the requested company does not match the caller's company.
	ErrMismatch = errors.New("scope mismatch")
	// ErrNotFound means a requested team or project does not exist under the company.
	ErrNotFound = errors.New("scope not found")
)
