package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuserve/docintel/internal/rag"
)

func TestHistory_ScopesAreIndependent(t *testing.T) {
	h := NewHistory(10)

	h.Replace("tok", "", "company_1_chunks", []rag.Turn{{Question: "q1", Answer: "a1"}})
	h.Replace("tok", "", "team_2_company_1_chunks", []rag.Turn{{Question: "q2", Answer: "a2"}})

	company := h.Get("tok", "", "company_1_chunks")
	require.Len(t, company, 1)
	assert.Equal(t, "q1", company[0].Question)

	team := h.Get("tok", "", "team_2_company_1_chunks")
	require.Len(t, team, 1)
	assert.Equal(t, "q2", team[0].Question)

	assert.Nil(t, h.Get("other", "", "company_1_chunks"))
}

func TestHistory_ConversationIDsAreIndependent(t *testing.T) {
	h := NewHistory(10)

	h.Replace("tok", "s1", "company_1_chunks", []rag.Turn{{Question: "q1"}})
	h.Replace("tok", "s2", "company_1_chunks", []rag.Turn{{Question: "q2"}})

	require.Len(t, h.Get("tok", "s1", "company_1_chunks"), 1)
	require.Len(t, h.Get("tok", "s2", "company_1_chunks"), 1)
	assert.Nil(t, h.Get("tok", "", "company_1_chunks"))
}

func TestHistory_BoundsRetainedTurns(t *testing.T) {
	h := NewHistory(3)

	var turns []rag.Turn
	for i := 0; i < 8; i++ {
		turns = append(turns, rag.Turn{Question: fmt.Sprintf("q%d", i)})
	}
	h.Replace("tok", "", "company_1_chunks", turns)

	got := h.Get("tok", "", "company_1_chunks")
	require.Len(t, got, 3)
	assert.Equal(t, "q5", got[0].Question)
	assert.Equal(t, "q7", got[2].Question)
}

func TestHistory_GetReturnsCopy(t *testing.T) {
	h := NewHistory(10)
	h.Replace("tok", "", "company_1_chunks", []rag.Turn{{Question: "q", Answer: "a"}})

	got := h.Get("tok", "", "company_1_chunks")
	got[0].Answer = "mutated"

	again := h.Get("tok", "", "company_1_chunks")
	assert.Equal(t, "a", again[0].Answer)
}

func TestHistory_ClearDropsAllConversationsOfToken(t *testing.T) {
	h := NewHistory(10)
	h.Replace("tok", "", "company_1_chunks", []rag.Turn{{Question: "q"}})
	h.Replace("tok", "s1", "company_1_chunks", []rag.Turn{{Question: "q"}})
	h.Replace("tok", "s2", "project_3_company_1_chunks", []rag.Turn{{Question: "q"}})
	h.Replace("other", "s1", "company_2_chunks", []rag.Turn{{Question: "q"}})

	h.Clear("tok")

	assert.Nil(t, h.Get("tok", "", "company_1_chunks"))
	assert.Nil(t, h.Get("tok", "s1", "company_1_chunks"))
	assert.Nil(t, h.Get("tok", "s2", "project_3_company_1_chunks"))
	assert.Len(t, h.Get("other", "s1", "company_2_chunks"), 1)
}

func TestHistory_ConcurrentAccess(t *testing.T) {
	h := NewHistory(10)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			scopeID := fmt.Sprintf("company_%d_chunks", n%4)
			h.Replace("tok", "s1", scopeID, []rag.Turn{{Question: "q"}})
			h.Get("tok", "s1", scopeID)
			h.Clear("tok")
		}(i)
	}
	wg.Wait()
}
