// Package session keeps per-session, per-scope chat history in memory.
package session

import (
	"sync"

	"github.com/docuserve/docintel/internal/rag"
)

// DefaultMaxTurns bounds how many turns are retained per conversation.
const DefaultMaxTurns = 10

type key struct {
	token   string
	session string
	scopeID string
}

// History is a mutex-guarded store of chat turns keyed by session token,
// an optional client-chosen conversation id, and scope, so the same
// login can hold independent conversations in different workspaces.
// Returned slices are copies; callers never share backing arrays with
// the store.
type History struct {
	mu       sync.Mutex
	turns    map[key][]rag.Turn
	maxTurns int
}

// NewHistory creates a history store retaining at most maxTurns turns
// per conversation. Non-positive maxTurns uses the default.
func NewHistory(maxTurns int) *History {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &History{
		turns:    make(map[key][]rag.Turn),
		maxTurns: maxTurns,
	}
}

// Get returns a copy of the conversation for the token, conversation id,
// and scope.
func (h *History) Get(token, session, scopeID string) []rag.Turn {
	h.mu.Lock()
	defer h.mu.Unlock()

	stored := h.turns[key{token, session, scopeID}]
	if len(stored) == 0 {
		return nil
	}
	out := make([]rag.Turn, len(stored))
	copy(out, stored)
	return out
}

// Replace stores the conversation, keeping only the most recent
// maxTurns turns.
func (h *History) Replace(token, session, scopeID string, turns []rag.Turn) {
	if len(turns) > h.maxTurns {
		turns = turns[len(turns)-h.maxTurns:]
	}
	stored := make([]rag.Turn, len(turns))
	copy(stored, turns)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns[key{token, session, scopeID}] = stored
}

// Clear drops every conversation of the token, across all conversation
// ids and scopes. Called on logout so a reissued token starts clean and
// abandoned conversations do not accumulate.
func (h *History) Clear(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for k := range h.turns {
		if k.token == token {
			delete(h.turns, k)
		}
	}
}
